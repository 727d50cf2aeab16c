package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-comic-kit/internal/builder"
	"github.com/shouni/go-comic-kit/internal/config"
	"github.com/shouni/go-comic-kit/internal/runner"

	"github.com/spf13/cobra"
)

// generateCmd は、元画像からコミックストリップの生成までを一気に実行するのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "元画像からコミックストリップを生成するのだ。",
	Long: `元画像をAIで解析して台本を作り、各コマのイラストを順番に生成して、
1枚の横長ストリップ画像（PNG）として保存するのだ。`,
	RunE: generateCommand,
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 1. 必須チェック
	if opts.InputFile == "" {
		return fmt.Errorf("元画像（--input）を指定してほしいのだ")
	}

	// 2. 環境変数等から基本設定をロードするのだ
	cfg := config.LoadConfig()
	cfg.ScriptModel = opts.ScriptModel
	cfg.ImageModel = opts.ImageModel
	cfg.Options = opts

	slog.Info("コミック生成パイプラインを起動するのだ！",
		"input", opts.InputFile,
		"panels", opts.PanelCount,
		"script_model", cfg.ScriptModel,
		"image_model", cfg.ImageModel,
		"output", opts.OutputFile)

	// 3. 依存関係を組み立てて実行するのだ
	appCtx, err := builder.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("アプリケーションの初期化に失敗したのだ: %w", err)
	}

	if err := runner.NewComicRunner(appCtx).Run(ctx); err != nil {
		return fmt.Errorf("パイプライン実行中にエラーが発生したのだ: %w", err)
	}

	slog.Info("すべての生成工程が完了したのだ！")
	return nil
}
