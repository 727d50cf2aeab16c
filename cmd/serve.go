package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/shouni/go-comic-kit/internal/builder"
	"github.com/shouni/go-comic-kit/internal/config"
	"github.com/shouni/go-comic-kit/internal/webapp"

	"github.com/spf13/cobra"
)

// serveCmd は、アップロードフォーム付きのWebサーバーを起動するのだ。
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "コミック生成のWebサーバーを起動するのだ。",
	Long: `画像をアップロードするフォームと、生成の進捗プレビュー、
完成したストリップ画像のダウンロードを提供するWebサーバーなのだ。`,
	RunE: serveCommand,
}

func serveCommand(cmd *cobra.Command, args []string) error {
	// SIGINT/SIGTERM でグレースフルに停止するのだ
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	cfg.ScriptModel = opts.ScriptModel
	cfg.ImageModel = opts.ImageModel
	cfg.Options = opts

	appCtx, err := builder.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("アプリケーションの初期化に失敗したのだ: %w", err)
	}

	addr := opts.HTTPAddr
	if addr == "" {
		addr = config.DefaultHTTPAddr
	}

	slog.Info("Webモードで起動するのだ！",
		"addr", addr,
		"panels", opts.PanelCount,
		"script_model", cfg.ScriptModel,
		"image_model", cfg.ImageModel)

	srv := webapp.NewServer(*appCtx, addr)
	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("Webサーバーの実行中にエラーが発生したのだ: %w", err)
	}
	return nil
}
