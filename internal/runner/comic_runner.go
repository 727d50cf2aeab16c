package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/shouni/go-comic-kit/internal/builder"
	"github.com/shouni/go-comic-kit/internal/config"
	"github.com/shouni/go-comic-kit/pkg/asset"
	"github.com/shouni/go-comic-kit/pkg/domain"
	"github.com/shouni/go-comic-kit/pkg/pipeline"
)

// ComicRunner は、元画像1枚からコミックストリップ1枚までの一括生成を実行する核となる構造体なのだ。
type ComicRunner struct {
	appCtx *builder.AppContext
}

// NewComicRunner は、ComicRunnerの新しいインスタンスを生成して返すのだ。
func NewComicRunner(appCtx *builder.AppContext) *ComicRunner {
	return &ComicRunner{appCtx: appCtx}
}

// Run は、元画像の読み込み、パイプラインの実行、結合ラスターの保存までを一気に行うのだ。
func (cr *ComicRunner) Run(ctx context.Context) error {
	opts := cr.appCtx.Options

	src, err := cr.readSourceImage(ctx, opts.InputFile)
	if err != nil {
		return fmt.Errorf("元画像 '%s' の読み込みに失敗しました: %w", opts.InputFile, err)
	}

	title := opts.Title
	if title == "" {
		title = asset.DeriveTitle(src.Filename)
	}

	doc, err := cr.appCtx.Pipeline.Execute(ctx, src, opts.PanelCount, title, pipeline.NewProgress())
	if err != nil {
		return err
	}

	stripPNG, err := cr.appCtx.Compositor.Stitch(doc)
	if err != nil {
		return fmt.Errorf("結合ラスターの生成に失敗しました: %w", err)
	}

	outputPath := opts.OutputFile
	if err := cr.appCtx.Writer.Write(ctx, outputPath, bytes.NewReader(stripPNG), "image/png"); err != nil {
		return fmt.Errorf("結合ラスターの保存に失敗しました (path: %s): %w", outputPath, err)
	}
	slog.Info("結合ラスターを保存したのだ！", "path", outputPath, "panels", len(doc.Panels))

	if opts.SavePanels {
		if err := cr.savePanels(ctx, doc); err != nil {
			return err
		}
	}

	return nil
}

// panelBaseDir は、パネル個別保存のディレクトリを決めるのだ。
// --output-image-dir が優先、未指定なら結合ラスターと同じディレクトリなのだ。
func panelBaseDir(opts config.GenerateOptions) string {
	if opts.OutputImageDir != "" {
		return opts.OutputImageDir
	}
	return asset.ResolveBaseURL(opts.OutputFile)
}

// savePanels は、解決済みの各コマを連番付きで個別保存するのだ。
func (cr *ComicRunner) savePanels(ctx context.Context, doc domain.ComicDocument) error {
	targetDir := panelBaseDir(cr.appCtx.Options)

	basePath, err := asset.ResolveOutputPath(targetDir, asset.DefaultPanelFileName)
	if err != nil {
		return fmt.Errorf("出力パスの解決に失敗しました: %w", err)
	}

	for i, panel := range doc.Panels {
		panelPath, err := asset.GenerateIndexedPath(basePath, i+1)
		if err != nil {
			return fmt.Errorf("パネル %d の出力パス生成に失敗しました: %w", i+1, err)
		}

		slog.InfoContext(ctx, "パネル画像を保存しています", "index", i+1, "path", panelPath)

		mimeType := panel.MimeType
		if mimeType == "" {
			mimeType = "image/png"
		}
		if err := cr.appCtx.Writer.Write(ctx, panelPath, bytes.NewReader(panel.Illustration), mimeType); err != nil {
			return fmt.Errorf("第 %d パネルの保存に失敗しました (path: %s): %w", i+1, panelPath, err)
		}
	}
	return nil
}

// readSourceImage は、リーダーを使って元画像を読み込むのだ（GCS等も対応！）。
func (cr *ComicRunner) readSourceImage(ctx context.Context, path string) (domain.UploadedImage, error) {
	rc, err := cr.appCtx.Reader.Open(ctx, path)
	if err != nil {
		return domain.UploadedImage{}, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return domain.UploadedImage{}, err
	}
	if len(data) == 0 {
		return domain.UploadedImage{}, fmt.Errorf("元画像が空です")
	}

	return domain.UploadedImage{
		Data:     data,
		Filename: filepath.Base(path),
		MimeType: detectImageMime(path, data),
	}, nil
}

// detectImageMime は、拡張子を優先し、だめなら先頭バイトから MIME タイプを判定するのだ。
func detectImageMime(path string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); strings.HasPrefix(t, "image/") {
		return t
	}
	return http.DetectContentType(data)
}
