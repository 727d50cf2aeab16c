package domain

// UploadedImage は、ユーザーから供給された元画像を表します。
// パイプライン1回分のライフサイクルでのみ保持され、リセット時に破棄されます。
type UploadedImage struct {
	Data     []byte
	Filename string
	MimeType string
}

// PanelScriptEntry は AI モデルから返される台本1コマ分の構造です。
// JSON タグは外部の構造化生成リクエストの出力契約と一致させています。
type PanelScriptEntry struct {
	PanelNumber int    `json:"panelNumber"`
	ImagePrompt string `json:"imagePrompt"`
	Caption     string `json:"caption"`
}

// PanelScript は台本全体（コマの順序付きリスト）です。
type PanelScript []PanelScriptEntry

// ComicPanel は完成した1コマ（イラストとキャプションのペア）を保持します。
// Illustration が nil の間は「生成待ち」のマーカーとして扱います。
type ComicPanel struct {
	Caption      string
	Illustration []byte
	MimeType     string
}

// Illustration は画像生成呼び出し1回分の結果（インライン画像ペイロード）です。
type Illustration struct {
	Data     []byte
	MimeType string
}

// ComicDocument は1回の実行で組み立てられる最終成果物です。
// Panels の並びは常に台本のコマ番号の昇順と一致します。
type ComicDocument struct {
	Title  string
	Panels []ComicPanel
}

// Resolved はイラストが到着済みかどうかを返します。
func (p ComicPanel) Resolved() bool {
	return len(p.Illustration) > 0
}

// Resolved は全コマのイラストが揃っているかどうかを返します。
func (d ComicDocument) Resolved() bool {
	if len(d.Panels) == 0 {
		return false
	}
	for _, p := range d.Panels {
		if !p.Resolved() {
			return false
		}
	}
	return true
}
