package webapp

import (
	"sync"
	"time"

	"github.com/shouni/go-comic-kit/pkg/domain"
	"github.com/shouni/go-comic-kit/pkg/pipeline"

	"github.com/google/uuid"
)

// Run は1回のコミック生成リクエストに対応する実行記録なのだ。
// Progress はパイプラインが直接書き込み、結果とエラーは完了時に
// ここへ確定する。永続化はせず、プロセスが落ちれば消えるのだ。
type Run struct {
	ID        uuid.UUID
	Title     string
	CreatedAt time.Time
	Progress  *pipeline.Progress

	mu    sync.RWMutex
	doc   domain.ComicDocument
	strip []byte
	err   error
}

// complete は生成済みドキュメントと結合ラスターを確定させるのだ。
func (r *Run) complete(doc domain.ComicDocument, strip []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.doc = doc
	r.strip = strip
}

// failWith は実行の失敗を記録するのだ。部分結果は保持しない。
func (r *Run) failWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Result は確定済みの結果を返す。実行中はすべてゼロ値なのだ。
func (r *Run) Result() (domain.ComicDocument, []byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.doc, r.strip, r.err
}

// defaultRunTTL は、完了済みの Run を保持する期間なのだ。
const defaultRunTTL = time.Hour

// Store は進行中・完了済みの Run をメモリ上に保持するのだ。
// 期限切れの完了済み Run は新規登録のたびに掃除されるので、
// マップが無限に育つことはないのだ。
type Store struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]*Run
	ttl  time.Duration
}

// NewStore は空の Store を生成するのだ。
func NewStore() *Store {
	return &Store{
		runs: make(map[uuid.UUID]*Run),
		ttl:  defaultRunTTL,
	}
}

// Create は新しい Run を発番して登録するのだ。
func (s *Store) Create(title string) *Run {
	run := &Run{
		ID:        uuid.New(),
		Title:     title,
		CreatedAt: time.Now(),
		Progress:  pipeline.NewProgress(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	s.runs[run.ID] = run
	return run
}

// pruneLocked は、期限切れかつ実行中でない Run を取り除くのだ。
// 呼び出し側が s.mu を保持していること。
func (s *Store) pruneLocked() {
	cutoff := time.Now().Add(-s.ttl)
	for id, run := range s.runs {
		if !run.Progress.Running() && run.CreatedAt.Before(cutoff) {
			delete(s.runs, id)
		}
	}
}

// Get は ID に対応する Run を返すのだ。
func (s *Store) Get(id uuid.UUID) (*Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	return run, ok
}
