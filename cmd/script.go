package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-comic-kit/internal/builder"
	"github.com/shouni/go-comic-kit/internal/config"
	"github.com/shouni/go-comic-kit/internal/runner"

	"github.com/spf13/cobra"
)

// scriptCmd は、台本の生成（JSON出力）のみを実行するのだ。
var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "台本（JSON）のみを生成して保存するのだ。",
	Long: `元画像をAIで解析して、各コマの画像プロンプトとキャプションを含む台本を
JSON形式で出力するのだ。画像生成は行わないのだよ。`,
	RunE: scriptCommand,
}

func scriptCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 1. 入力ソースの必須チェック (opts は addAppFlags で紐付け済みと想定)
	if opts.InputFile == "" {
		return fmt.Errorf("元画像（--input）を指定してほしいのだ")
	}

	// --output-file がユーザーによって指定されなかった場合、
	// scriptコマンド固有のデフォルト値を設定する
	if !cmd.Flags().Changed("output-file") {
		opts.OutputFile = "output/comic_script.json"
	}

	// 2. 設定のロード
	cfg := config.LoadConfig()
	cfg.ScriptModel = opts.ScriptModel
	cfg.Options = opts

	slog.Info("台本生成のみを実行するのだ",
		"input", opts.InputFile,
		"panels", opts.PanelCount,
		"script_model", cfg.ScriptModel,
		"output", opts.OutputFile)

	appCtx, err := builder.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("アプリケーションの初期化に失敗したのだ: %w", err)
	}

	if err := runner.NewScriptRunner(appCtx).Run(ctx); err != nil {
		return fmt.Errorf("台本生成中にエラーが発生したのだ: %w", err)
	}

	slog.Info("台本の保存が完了したのだ！")
	return nil
}
