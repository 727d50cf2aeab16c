package cmd

import (
	"fmt"
	"os"

	"github.com/shouni/go-comic-kit/internal/config"

	"github.com/spf13/cobra"
)

// opts は全コマンド共通の実行時オプションなのだ。addAppFlags でフラグと紐付ける。
var opts config.GenerateOptions

var rootCmd = &cobra.Command{
	Use:   "comic-kit",
	Short: "1枚の画像からコミックストリップを生成するツールなのだ。",
	Long: `元画像をAIで解析して4コマの台本を作り、各コマのイラストを生成して
1枚の横長ストリップ画像に結合するのだ。CLIでもWebでも使えるのだよ。`,
	PersistentPreRunE: preRunAppE,
	SilenceUsage:      true,
}

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- ソース入力関連 ---
	rootCmd.PersistentFlags().StringVarP(&opts.InputFile, "input", "f", "", "元画像のパス（ローカル or gs://...）なのだ。")

	// --- 生成結果の出力設定 ---
	rootCmd.PersistentFlags().StringVarP(&opts.OutputFile, "output-file", "o", config.DefaultLocalFile, "結合ラスターの保存パス（ローカル or gs://...）なのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.OutputImageDir, "output-image-dir", "i", config.DefaultLocalImageDir, "パネル個別保存のディレクトリ（ローカル or gs://...）なのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.Title, "title", "t", "", "コミックのタイトル（省略時はファイル名から導出するのだ）。")

	// --- AIモデル・挙動設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.ScriptModel, "model", config.DefaultScriptModel, "台本生成に使う Gemini モデル名なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.ImageModel, "image-model", config.DefaultImageModel, "画像生成に使う Gemini モデル名なのだ。")
	rootCmd.PersistentFlags().IntVarP(&opts.PanelCount, "panels", "p", config.DefaultPanelCount, "生成するコマ数なのだ。")
	rootCmd.PersistentFlags().DurationVar(&opts.RateInterval, "rate-interval", config.DefaultRateLimit, "直列画像生成の呼び出し間隔なのだ。")

	// --- コマンド固有設定 ---
	generateCmd.Flags().BoolVarP(&opts.SavePanels, "save-panels", "s", false, "パネル画像を連番で個別保存するのだ。")
	serveCmd.Flags().StringVarP(&opts.HTTPAddr, "addr", "a", config.DefaultHTTPAddr, "Webサーバーの待ち受けアドレスなのだ。")
}

// preRunAppE は、コマンド実行前に環境変数などの必須チェックを行うのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	// Gemini APIを利用するため、APIキーの存在チェックは欠かせないのだ！
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("エラー: 環境変数 GEMINI_API_KEY が設定されていません。Gemini APIの利用には必須なのだ")
	}

	return nil
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	addAppFlags(rootCmd)
	rootCmd.AddCommand(generateCmd, scriptCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
