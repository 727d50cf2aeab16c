package compositor

import (
	"fmt"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// newFontFace は、埋め込みの Go Regular フォントから固定サイズのフェイスを生成します。
// 外部のフォントファイルに依存しないため、出力はどの環境でもピクセル単位で一致します。
func newFontFace(points float64) (font.Face, error) {
	ft, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("埋め込みフォントの解析に失敗しました: %w", err)
	}

	return truetype.NewFace(ft, &truetype.Options{
		Size:    points,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
