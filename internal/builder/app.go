package builder

import (
	"github.com/shouni/go-comic-kit/internal/config"
	"github.com/shouni/go-comic-kit/pkg/compositor"
	"github.com/shouni/go-comic-kit/pkg/pipeline"

	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを各コマンドや Web ハンドラーに渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config     *config.Config         // Configは、環境変数から読み込まれたグローバルな設定です（APIキー、モデル名など）。
	Options    config.GenerateOptions // Optionsは、コマンドラインから渡された実行時の設定です。
	Reader     remoteio.InputReader   // Readerは、元画像の読み込みに使用する入力元です。
	Writer     remoteio.OutputWriter  // Writerは、生成された内容を保存するための出力先です。
	Pipeline   *pipeline.Pipeline     // Pipelineは、台本生成とパネル画像生成をオーケストレートする司令塔です。
	Compositor *compositor.Compositor // Compositorは、解決済みパネルを結合ラスターへ描画します。
}

// NewAppContext は AppContext の新しいインスタンスを生成する
func NewAppContext(
	cfg *config.Config,
	reader remoteio.InputReader,
	writer remoteio.OutputWriter,
	pl *pipeline.Pipeline,
	comp *compositor.Compositor,
) AppContext {
	return AppContext{
		Config:     cfg,
		Options:    cfg.Options,
		Reader:     reader,
		Writer:     writer,
		Pipeline:   pl,
		Compositor: comp,
	}
}
