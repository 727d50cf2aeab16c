package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shouni/go-comic-kit/internal/builder"
)

// ScriptRunner は、台本の生成（JSON出力）のみを担当する構造体なのだ。
// 画像生成は行わず、構造化された台本をそのまま保存するのだよ。
type ScriptRunner struct {
	appCtx *builder.AppContext
}

// NewScriptRunner は、ScriptRunnerの新しいインスタンスを生成して返すのだ。
func NewScriptRunner(appCtx *builder.AppContext) *ScriptRunner {
	return &ScriptRunner{appCtx: appCtx}
}

// Run は、元画像から台本を生成し、整形済みJSONとして保存するのだ。
func (sr *ScriptRunner) Run(ctx context.Context) error {
	opts := sr.appCtx.Options

	comicRunner := NewComicRunner(sr.appCtx)
	src, err := comicRunner.readSourceImage(ctx, opts.InputFile)
	if err != nil {
		return fmt.Errorf("元画像 '%s' の読み込みに失敗しました: %w", opts.InputFile, err)
	}

	slog.Info("台本のみを生成するのだ", "source", src.Filename, "panel_count", opts.PanelCount)

	script, err := sr.appCtx.Pipeline.GenerateScript(ctx, src, opts.PanelCount)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(script, "", "  ")
	if err != nil {
		return fmt.Errorf("台本のJSON整形に失敗しました: %w", err)
	}

	if err := sr.appCtx.Writer.Write(ctx, opts.OutputFile, bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("台本の保存に失敗しました (path: %s): %w", opts.OutputFile, err)
	}

	slog.Info("台本（JSON）の生成が完了したのだ！", "output_file", opts.OutputFile, "panels", len(script))
	return nil
}
