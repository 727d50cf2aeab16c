package runner

import (
	"testing"

	"github.com/shouni/go-comic-kit/internal/config"
	"github.com/shouni/go-comic-kit/pkg/asset"
)

func TestPanelBaseDir(t *testing.T) {
	t.Run("--output-image-dir が指定されていればそれを使うのだ", func(t *testing.T) {
		opts := config.GenerateOptions{
			OutputFile:     "output/comic_strip.png",
			OutputImageDir: "gs://bucket/panels",
		}
		if got := panelBaseDir(opts); got != "gs://bucket/panels" {
			t.Errorf("期待 gs://bucket/panels, 実際 %q", got)
		}
	})

	t.Run("未指定なら結合ラスターと同じディレクトリに保存するのだ", func(t *testing.T) {
		opts := config.GenerateOptions{OutputFile: config.DefaultLocalFile}
		want := asset.ResolveBaseURL(config.DefaultLocalFile)
		if got := panelBaseDir(opts); got != want {
			t.Errorf("期待 %q, 実際 %q", want, got)
		}
	})
}

func TestDetectImageMime(t *testing.T) {
	pngMagic := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

	if got := detectImageMime("photo.png", pngMagic); got != "image/png" {
		t.Errorf("拡張子からの判定が不正なのだ: %q", got)
	}
	if got := detectImageMime("photo.bin", pngMagic); got != "image/png" {
		t.Errorf("先頭バイトからの判定が不正なのだ: %q", got)
	}
}
