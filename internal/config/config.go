package config

import (
	"time"

	"github.com/shouni/go-comic-kit/pkg/asset"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultScriptModel = "gemini-3-flash-preview"
	DefaultImageModel  = "gemini-3-pro-image-preview"
	DefaultPanelCount  = 4
	DefaultRateLimit   = 10 * time.Second
	DefaultHTTPAddr    = ":8080"

	// DefaultPlaceholderTiles は、台本解決前のプレビューに並べるローディングタイルの枚数。
	// 真のコマ数とは独立した設定値で、食い違いは既知の未決事項なのだ（DESIGN.md 参照）。
	DefaultPlaceholderTiles = DefaultPanelCount

	DefaultLocalFile     = "output/" + asset.DefaultStripFileName // 結合ラスターのデフォルト保存先なのだ
	DefaultLocalImageDir = "output/panels"                        // パネル個別保存のデフォルト保存先なのだ

	DefaultImageStyleSuffix = "Japanese anime style, official art, cel-shaded, clean line art, high-quality manga coloring, expressive eyes, vibrant colors, cinematic lighting, masterpiece, ultra-detailed, flat shading, clear character features, no 3D effect, high resolution"
)

// Config はアプリケーション全体の環境設定（APIキーやモデル設定）を保持する構造体なのだ。
type Config struct {
	GeminiAPIKey     string
	ScriptModel      string
	ImageModel       string
	ImageStyleSuffix string

	Options GenerateOptions
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	cfg := &Config{
		GeminiAPIKey:     envutil.GetEnv("GEMINI_API_KEY", ""),
		ScriptModel:      envutil.GetEnv("GEMINI_MODEL", DefaultScriptModel),
		ImageModel:       envutil.GetEnv("IMAGE_GEMINI_MODEL", DefaultImageModel),
		ImageStyleSuffix: envutil.GetEnv("IMAGE_PROMPT_SUFFIX", DefaultImageStyleSuffix),
	}
	return cfg
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	// ソース入力関連
	InputFile      string // --input: 元画像のパス（ローカル or gs://...）
	OutputFile     string // --output-file: 結合ラスターの保存パス
	OutputImageDir string // --output-image-dir: パネル個別保存のディレクトリ（ローカル or gs://...）
	Title          string // --title: コミックのタイトル（省略時はファイル名から導出）

	// 生成挙動設定
	PanelCount int  // --panels: 生成するコマ数
	SavePanels bool // --save-panels: パネル画像を連番で個別保存するかどうか

	// AIモデル設定
	ScriptModel string // --model: 台本生成用のGeminiモデル
	ImageModel  string // --image-model: 画像生成用のGeminiモデル

	// Webサーバー設定
	HTTPAddr string // --addr

	// 実行制御
	RateInterval time.Duration // --rate-interval: 直列画像生成の呼び出し間隔
}
