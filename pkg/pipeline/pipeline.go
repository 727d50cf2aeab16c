package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-comic-kit/pkg/domain"
	"github.com/shouni/go-comic-kit/pkg/generator"

	"golang.org/x/time/rate"
)

// Pipeline はコミック生成の全工程をオーケストレートする司令塔です。
// 台本生成を1回、続いてパネル画像生成をコマ番号の昇順に厳密に直列で実行します。
// 直列化は意図した設計です: 外部サービスへの同時リクエストの集中を避け、
// パネルの順序保証を自明にする代わりに、総レイテンシは各コマの合計になります。
type Pipeline struct {
	script  generator.ScriptGenerator
	painter generator.PanelIllustrator
	limiter *rate.Limiter // 直列呼び出しの間隔制御。nil なら待機なし。
}

// New は各コンポーネントのインターフェースを受け取り、Pipeline インスタンスを生成します。
func New(script generator.ScriptGenerator, painter generator.PanelIllustrator, limiter *rate.Limiter) *Pipeline {
	return &Pipeline{
		script:  script,
		painter: painter,
		limiter: limiter,
	}
}

// GenerateScript は台本生成ステージのみを実行します。
// 画像生成には進まず、検証済み・昇順の台本をそのまま返します。
func (pl *Pipeline) GenerateScript(ctx context.Context, src domain.UploadedImage, panelCount int) (domain.PanelScript, error) {
	script, err := pl.script.Generate(ctx, src, panelCount)
	if err != nil {
		return nil, fmt.Errorf("台本生成ステージで失敗しました: %w", err)
	}
	return script, nil
}

// Execute は、元画像から台本の生成、パネル画像の直列生成、ドキュメントの組み立てまでを
// 一気通貫で実行します。いずれかの段階が失敗した場合は、それまでに蓄積した
// パネルをすべて破棄し、段階名でラップした単一のエラーを返します。
// pr が nil でなければ、実行中の進捗が外部から観測できます。
// キャンセル機構は持ちません。発行済みの外部リクエストは中断されません。
func (pl *Pipeline) Execute(ctx context.Context, src domain.UploadedImage, panelCount int, title string, pr *Progress) (domain.ComicDocument, error) {
	if pr == nil {
		pr = NewProgress()
	}
	if panelCount < 1 {
		pr.fail()
		return domain.ComicDocument{}, fmt.Errorf("要求パネル数は1以上である必要があります: %d", panelCount)
	}

	// --- Phase 1: Script (台本生成、外部呼び出しは1回きり) ---
	pr.beginScripting()
	slog.Info("Phase 1: 台本生成を開始します", "panel_count", panelCount, "source", src.Filename)

	script, err := pl.script.Generate(ctx, src, panelCount)
	if err != nil {
		pr.fail()
		return domain.ComicDocument{}, fmt.Errorf("台本生成ステージで失敗しました: %w", err)
	}

	// パネル数はここで確定し、実行の途中で増減することはありません。
	pr.beginPainting(len(script))
	slog.Info("Phase 2: パネル画像生成を開始します", "panels", len(script))

	// --- Phase 2: Paint (コマ番号の昇順に1枚ずつ) ---
	panels := make([]domain.ComicPanel, 0, len(script))
	for _, entry := range script {
		// 前のコマが解決するまで次の呼び出しは発行しません。
		if pl.limiter != nil {
			if err := pl.limiter.Wait(ctx); err != nil {
				pr.fail()
				return domain.ComicDocument{}, fmt.Errorf("パネル画像生成ステージで失敗しました: %w", err)
			}
		}

		slog.Info("パネルを生成中...", "panel", entry.PanelNumber, "total", len(script))
		ill, err := pl.painter.Illustrate(ctx, entry.ImagePrompt)
		if err != nil {
			// 残りのコマは中断し、蓄積済みの結果も破棄します。
			pr.fail()
			return domain.ComicDocument{}, fmt.Errorf("パネル画像生成ステージで失敗しました (パネル %d): %w", entry.PanelNumber, err)
		}

		panel := domain.ComicPanel{
			Caption:      entry.Caption,
			Illustration: ill.Data,
			MimeType:     ill.MimeType,
		}
		panels = append(panels, panel)
		pr.advance(panel)
	}

	doc := domain.ComicDocument{
		Title:  title,
		Panels: panels,
	}
	pr.finish()
	slog.Info("すべてのコマが解決しました", "title", doc.Title, "panels", len(doc.Panels))
	return doc, nil
}
