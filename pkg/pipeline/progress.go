package pipeline

import (
	"sync"

	"github.com/shouni/go-comic-kit/pkg/domain"
)

// Phase は実行中のパイプラインの段階を表します。
type Phase int

const (
	// PhaseIdle は実行前の初期状態です。
	PhaseIdle Phase = iota
	// PhaseScripting は台本生成の外部呼び出しが未解決の状態です。
	// この間は真のパネル数がまだ分かりません。
	PhaseScripting
	// PhasePainting はパネル画像を1枚ずつ生成している状態です。
	PhasePainting
	// PhaseDone は全コマが解決し ComicDocument が組み上がった状態です。
	PhaseDone
	// PhaseFailed はいずれかの段階で中断された状態です。
	PhaseFailed
)

// String は Phase の表示名を返します。
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseScripting:
		return "scripting"
	case PhasePainting:
		return "painting"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Progress は、1回の実行に紐づく「実行中」インジケーターです。
// オーケストレーターが書き込み、コンポジターや Web ハンドラーが読み取ります。
type Progress struct {
	mu       sync.RWMutex
	phase    Phase
	total    int // 台本解決後の真のパネル数。解決前は 0。
	resolved []domain.ComicPanel
}

// Status は Progress のある時点のスナップショットです。
type Status struct {
	Phase Phase
	// ScriptResolved は台本が確定し Total が真のパネル数を指しているかどうかです。
	// false の間、プレビューは設定されたデフォルト枚数のローディングタイルを描きます。
	ScriptResolved bool
	Total          int
	Panels         []domain.ComicPanel
}

// NewProgress は初期状態の Progress を生成します。
func NewProgress() *Progress {
	return &Progress{phase: PhaseIdle}
}

// Snapshot は現在の状態のコピーを返します。
func (pr *Progress) Snapshot() Status {
	pr.mu.RLock()
	defer pr.mu.RUnlock()

	panels := make([]domain.ComicPanel, len(pr.resolved))
	copy(panels, pr.resolved)

	return Status{
		Phase:          pr.phase,
		ScriptResolved: pr.phase == PhasePainting || pr.phase == PhaseDone,
		Total:          pr.total,
		Panels:         panels,
	}
}

// Running は外部呼び出しが未解決のまま残っているかどうかを返します。
func (pr *Progress) Running() bool {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	return pr.phase == PhaseScripting || pr.phase == PhasePainting
}

func (pr *Progress) beginScripting() {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.phase = PhaseScripting
	pr.total = 0
	pr.resolved = nil
}

func (pr *Progress) beginPainting(total int) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.phase = PhasePainting
	pr.total = total
}

func (pr *Progress) advance(panel domain.ComicPanel) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.resolved = append(pr.resolved, panel)
}

func (pr *Progress) finish() {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.phase = PhaseDone
}

// fail は中断時に呼ばれ、それまでに蓄積したパネルをすべて破棄します。
// 部分的な成功ドキュメントは存在させません。
func (pr *Progress) fail() {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.phase = PhaseFailed
	pr.resolved = nil
}
