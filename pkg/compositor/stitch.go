package compositor

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log/slog"

	// 結合時にデコードし得る形式を登録します。
	_ "image/gif"
	_ "image/jpeg"

	"github.com/shouni/go-comic-kit/pkg/domain"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

const (
	captionFontPoints  = 22
	fallbackFontPoints = 24

	// fallbackLabel はデコードに失敗したコマの代わりに描くラベルです。
	fallbackLabel = "failed to load"
)

// 描画色。背景はフラットなニュートラルカラーで塗りつぶします。
var (
	backgroundGray = [3]int{240, 240, 240}
	fallbackGray   = [3]int{200, 200, 200}
	captionInk     = [3]int{30, 30, 30}
	fallbackInk    = [3]int{90, 90, 90}
)

// Compositor は解決済みのパネルリストを1枚の結合ラスターに描画します。
// 描画面は1回の結合操作の間 Compositor が専有し、他のコンポーネントは触りません。
type Compositor struct {
	layout       Layout
	captionFace  font.Face
	fallbackFace font.Face
}

// New は、レイアウト定数とフォントフェイスを初期化した Compositor を返します。
func New(layout Layout) (*Compositor, error) {
	captionFace, err := newFontFace(captionFontPoints)
	if err != nil {
		return nil, err
	}
	fallbackFace, err := newFontFace(fallbackFontPoints)
	if err != nil {
		return nil, err
	}

	return &Compositor{
		layout:       layout,
		captionFace:  captionFace,
		fallbackFace: fallbackFace,
	}, nil
}

// Layout は設定済みのレイアウト定数を返します。
func (c *Compositor) Layout() Layout {
	return c.layout
}

// Stitch は、全コマをコマ番号の昇順に左から右へ1列に描画し、
// 可逆圧縮の PNG 1枚としてエンコードして返します。
// 同じパネルリストからは常にピクセル単位で同一の出力が得られます。
//
// 個々のコマのイラストがデコードできない場合は、同じ座標にフォールバックの
// 矩形とラベルを描き、そのコマのキャプションも通常どおり描画します。
// 1コマの不良が残りのコマの描画を妨げることはありません。
func (c *Compositor) Stitch(doc domain.ComicDocument) ([]byte, error) {
	n := len(doc.Panels)
	if n == 0 {
		return nil, fmt.Errorf("結合対象のパネルがありません")
	}

	width, height := c.layout.CanvasSize(n)
	dc := gg.NewContext(width, height)

	dc.SetRGB255(backgroundGray[0], backgroundGray[1], backgroundGray[2])
	dc.Clear()

	// 描画順は常にコマ番号の昇順です。到着順には依存しません。
	for i, panel := range doc.Panels {
		x, y := c.layout.PanelOrigin(i)

		img, err := decodeIllustration(panel)
		if err != nil {
			slog.Warn("コマのイラストをデコードできません。フォールバック矩形を描画します",
				"panel", i+1, "error", err)
			c.drawFallback(dc, x, y)
		} else {
			scaled := imaging.Resize(img, c.layout.PanelWidth, c.layout.PanelHeight, imaging.Lanczos)
			dc.DrawImage(scaled, x, y)
		}

		cx, cy := c.layout.CaptionCenter(i)
		dc.SetFontFace(c.captionFace)
		dc.SetRGB255(captionInk[0], captionInk[1], captionInk[2])
		dc.DrawStringAnchored(panel.Caption, cx, cy, 0.5, 0.5)
	}

	// 圧縮レベルを固定してエンコードの決定性を保ちます。
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("結合ラスターのエンコードに失敗しました: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeIllustration はコマのイラストのバイト列を画像にデコードします。
// 生成待ちマーカー（空ペイロード）もデコード失敗として扱います。
func decodeIllustration(panel domain.ComicPanel) (image.Image, error) {
	if !panel.Resolved() {
		return nil, fmt.Errorf("イラストが未解決です")
	}
	img, _, err := image.Decode(bytes.NewReader(panel.Illustration))
	if err != nil {
		return nil, err
	}
	return img, nil
}

// drawFallback は、イラストと同じ座標・同じ寸法のフラットな矩形とラベルを描きます。
func (c *Compositor) drawFallback(dc *gg.Context, x, y int) {
	dc.SetRGB255(fallbackGray[0], fallbackGray[1], fallbackGray[2])
	dc.DrawRectangle(float64(x), float64(y), float64(c.layout.PanelWidth), float64(c.layout.PanelHeight))
	dc.Fill()

	dc.SetFontFace(c.fallbackFace)
	dc.SetRGB255(fallbackInk[0], fallbackInk[1], fallbackInk[2])
	dc.DrawStringAnchored(fallbackLabel,
		float64(x)+float64(c.layout.PanelWidth)/2,
		float64(y)+float64(c.layout.PanelHeight)/2,
		0.5, 0.5)
}
