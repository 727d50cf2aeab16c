package compositor

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/shouni/go-comic-kit/pkg/domain"
)

// encodePNG はテスト用に単色の正方形 PNG を生成します。
func encodePNG(t *testing.T, c color.RGBA, size int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("テスト画像のエンコードに失敗しました: %v", err)
	}
	return buf.Bytes()
}

func testDoc(t *testing.T, n int) domain.ComicDocument {
	t.Helper()
	colors := []color.RGBA{
		{R: 255, A: 255}, {G: 255, A: 255}, {B: 255, A: 255}, {R: 255, G: 255, A: 255},
	}
	doc := domain.ComicDocument{Title: "test strip"}
	for i := 0; i < n; i++ {
		doc.Panels = append(doc.Panels, domain.ComicPanel{
			Caption:      "caption",
			Illustration: encodePNG(t, colors[i%len(colors)], 64),
			MimeType:     "image/png",
		})
	}
	return doc
}

// captionInkPresent は、i 番目のコマのキャプション帯に文字のインク色に
// 近い暗い画素が存在するかどうかを返します。
func captionInkPresent(img image.Image, l Layout, i int) bool {
	x0, _ := l.PanelOrigin(i)
	bandTop := l.Padding + l.PanelHeight
	for y := bandTop; y < bandTop+l.CaptionHeight; y++ {
		for x := x0; x < x0+l.PanelWidth; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r>>8 < 100 && g>>8 < 100 && b>>8 < 100 {
				return true
			}
		}
	}
	return false
}

func TestLayout_CanvasSize(t *testing.T) {
	l := DefaultLayout()

	t.Run("W=500 H=500 C=50 P=20 N=4 のとき 2100x590 であること", func(t *testing.T) {
		w, h := l.CanvasSize(4)
		if w != 2100 || h != 590 {
			t.Errorf("期待値 2100x590, 実際の値 %dx%d", w, h)
		}
	})

	t.Run("N=1 のとき 540x590 であること", func(t *testing.T) {
		w, h := l.CanvasSize(1)
		if w != 540 || h != 590 {
			t.Errorf("期待値 540x590, 実際の値 %dx%d", w, h)
		}
	})
}

func TestLayout_PanelOrigin(t *testing.T) {
	l := DefaultLayout()
	for i, wantX := range []int{20, 540, 1060, 1580} {
		x, y := l.PanelOrigin(i)
		if x != wantX || y != 20 {
			t.Errorf("パネル %d の原点が (%d,%d) です。期待値 (%d,20)", i, x, y, wantX)
		}
	}
}

func TestCompositor_Stitch(t *testing.T) {
	comp, err := New(DefaultLayout())
	if err != nil {
		t.Fatalf("Compositor の初期化に失敗しました: %v", err)
	}

	t.Run("N=4 の出力が 2100x590 の PNG であること", func(t *testing.T) {
		out, err := comp.Stitch(testDoc(t, 4))
		if err != nil {
			t.Fatalf("結合に失敗しました: %v", err)
		}

		img, format, err := image.Decode(bytes.NewReader(out))
		if err != nil {
			t.Fatalf("出力のデコードに失敗しました: %v", err)
		}
		if format != "png" {
			t.Errorf("出力形式が PNG ではありません: %s", format)
		}
		b := img.Bounds()
		if b.Dx() != 2100 || b.Dy() != 590 {
			t.Errorf("出力寸法が 2100x590 ではありません: %dx%d", b.Dx(), b.Dy())
		}
	})

	t.Run("同じパネルリストからの再結合はバイト単位で同一であること", func(t *testing.T) {
		doc := testDoc(t, 3)
		out1, err := comp.Stitch(doc)
		if err != nil {
			t.Fatalf("1回目の結合に失敗しました: %v", err)
		}
		out2, err := comp.Stitch(doc)
		if err != nil {
			t.Fatalf("2回目の結合に失敗しました: %v", err)
		}
		if !bytes.Equal(out1, out2) {
			t.Error("再結合の出力が一致しません。決定性が壊れています")
		}
	})

	t.Run("パネルの描画内容がコマ番号の昇順と一致すること", func(t *testing.T) {
		doc := testDoc(t, 2) // panel 0 = 赤, panel 1 = 緑
		out, err := comp.Stitch(doc)
		if err != nil {
			t.Fatalf("結合に失敗しました: %v", err)
		}
		img, _, err := image.Decode(bytes.NewReader(out))
		if err != nil {
			t.Fatalf("出力のデコードに失敗しました: %v", err)
		}

		l := comp.Layout()
		// 各パネルの中央ピクセルを標本化します。
		x0, y0 := l.PanelOrigin(0)
		r, g, _, _ := img.At(x0+l.PanelWidth/2, y0+l.PanelHeight/2).RGBA()
		if r>>8 < 200 || g>>8 > 50 {
			t.Errorf("1コマ目が赤ではありません: r=%d g=%d", r>>8, g>>8)
		}

		x1, _ := l.PanelOrigin(1)
		r, g, _, _ = img.At(x1+l.PanelWidth/2, y0+l.PanelHeight/2).RGBA()
		if g>>8 < 200 || r>>8 > 50 {
			t.Errorf("2コマ目が緑ではありません: r=%d g=%d", r>>8, g>>8)
		}
	})

	t.Run("1コマのデコード失敗でも残りのコマとキャプションが描かれること", func(t *testing.T) {
		doc := testDoc(t, 4)
		doc.Panels[1].Illustration = []byte("this is not an image")

		out, err := comp.Stitch(doc)
		if err != nil {
			t.Fatalf("不良コマ入りの結合がエラーになりました: %v", err)
		}

		img, _, err := image.Decode(bytes.NewReader(out))
		if err != nil {
			t.Fatalf("出力のデコードに失敗しました: %v", err)
		}
		// キャンバスは N=4 のコマ枠をすべて保持していること。
		if b := img.Bounds(); b.Dx() != 2100 {
			t.Errorf("コマ枠が失われています: 幅 %d", b.Dx())
		}

		// 不良コマの中央付近はフォールバック矩形のグレーであること。
		l := comp.Layout()
		x, y := l.PanelOrigin(1)
		// ラベル文字を避けて矩形の四半分点を標本化します。
		r, g, b8, _ := img.At(x+l.PanelWidth/4, y+l.PanelHeight/4).RGBA()
		if r>>8 != 200 || g>>8 != 200 || b8>>8 != 200 {
			t.Errorf("フォールバック矩形の色が期待と異なります: (%d,%d,%d)", r>>8, g>>8, b8>>8)
		}

		// 健全な隣のコマは通常どおり描画されていること。
		x2, _ := l.PanelOrigin(2)
		_, _, b2, _ := img.At(x2+l.PanelWidth/2, y+l.PanelHeight/2).RGBA()
		if b2>>8 < 200 {
			t.Error("不良コマの後続のコマが描画されていません")
		}

		// 不良コマのキャプションも通常どおり描かれていること。
		// キャプション帯の中からインク色の画素を探します。
		if !captionInkPresent(img, l, 1) {
			t.Error("不良コマのキャプションが描画されていません")
		}
	})

	t.Run("空のパネルリストは拒否されること", func(t *testing.T) {
		if _, err := comp.Stitch(domain.ComicDocument{}); err == nil {
			t.Error("空ドキュメントでエラーが発生しませんでした")
		}
	})
}

func TestCompositor_Stitch_PendingPanelFallsBack(t *testing.T) {
	comp, err := New(DefaultLayout())
	if err != nil {
		t.Fatalf("Compositor の初期化に失敗しました: %v", err)
	}

	doc := testDoc(t, 2)
	doc.Panels[0].Illustration = nil // 生成待ちマーカー

	out, err := comp.Stitch(doc)
	if err != nil {
		t.Fatalf("生成待ちコマ入りの結合がエラーになりました: %v", err)
	}
	if len(out) == 0 {
		t.Error("出力が空です")
	}
}
