package compositor

import (
	"encoding/base64"
	"fmt"

	"github.com/shouni/go-comic-kit/pkg/domain"
)

// PreviewTile はグリッドプレビューの1タイル分の表示モデルです。
// イラストの上にキャプションを添えて描画される前提の、描画ライブラリ非依存の値です。
type PreviewTile struct {
	Caption      string
	ImageDataURI string
	Pending      bool
}

// PreviewTiles はパネルリストの現在の状態からプレビュータイル列を構築します。
//
// 台本が未解決（scriptResolved=false）の間は、最終的な真のコマ数ではなく
// 設定されたデフォルト枚数 placeholderCount のローディングタイルを返します。
// 解決前後でタイル数が食い違い得ることは既知の設計上の未決事項です（DESIGN.md 参照）。
//
// 台本解決後は total 枚のタイルを返し、解決済みのコマにはイラストの
// データURIを、未解決のコマには生成待ちタイルを割り当てます。
func PreviewTiles(panels []domain.ComicPanel, total int, scriptResolved bool, placeholderCount int) []PreviewTile {
	if !scriptResolved {
		tiles := make([]PreviewTile, placeholderCount)
		for i := range tiles {
			tiles[i] = PreviewTile{Pending: true}
		}
		return tiles
	}

	if total < len(panels) {
		total = len(panels)
	}

	tiles := make([]PreviewTile, 0, total)
	for _, p := range panels {
		tiles = append(tiles, PreviewTile{
			Caption:      p.Caption,
			ImageDataURI: DataURI(p.MimeType, p.Illustration),
		})
	}
	for len(tiles) < total {
		tiles = append(tiles, PreviewTile{Pending: true})
	}
	return tiles
}

// DataURI は、エンコード済みの画像バイト列をダウンロード面やプレビューで
// そのまま使えるデータURIに変換します。
func DataURI(mimeType string, data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if mimeType == "" {
		mimeType = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}
