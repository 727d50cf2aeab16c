package compositor

// デフォルトのレイアウト定数です。
const (
	DefaultPanelWidth    = 500
	DefaultPanelHeight   = 500
	DefaultCaptionHeight = 50
	DefaultPadding       = 20
)

// Layout は結合ラスターの座標計算に使う固定レイアウト定数を保持します。
// 計算はすべて決定的で、同じパネルリストからは常に同じ座標が得られます。
type Layout struct {
	PanelWidth    int // W: パネル1枚の幅
	PanelHeight   int // H: パネル1枚の高さ
	CaptionHeight int // C: イラスト下のキャプション帯の高さ
	Padding       int // P: 外周およびパネル間の余白
}

// DefaultLayout は推奨されるデフォルトのレイアウトを返します。
func DefaultLayout() Layout {
	return Layout{
		PanelWidth:    DefaultPanelWidth,
		PanelHeight:   DefaultPanelHeight,
		CaptionHeight: DefaultCaptionHeight,
		Padding:       DefaultPadding,
	}
}

// CanvasSize は N パネル分のキャンバス寸法を返します。
// 幅 = N·W + (N-1)·P + 2·P、高さ = H + C + 2·P。
func (l Layout) CanvasSize(n int) (width, height int) {
	width = n*l.PanelWidth + (n-1)*l.Padding + 2*l.Padding
	height = l.PanelHeight + l.CaptionHeight + 2*l.Padding
	return width, height
}

// PanelOrigin は i 番目（0始まり）のパネルのイラストの左上座標を返します。
func (l Layout) PanelOrigin(i int) (x, y int) {
	return l.Padding + i*(l.PanelWidth+l.Padding), l.Padding
}

// CaptionCenter は i 番目のパネルのキャプション描画の中心座標を返します。
// 水平はパネル中央、垂直はキャプション帯の中央です。
func (l Layout) CaptionCenter(i int) (x, y float64) {
	px, _ := l.PanelOrigin(i)
	x = float64(px) + float64(l.PanelWidth)/2
	y = float64(l.Padding+l.PanelHeight) + float64(l.CaptionHeight)/2
	return x, y
}
