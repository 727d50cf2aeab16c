package webapp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/shouni/go-comic-kit/internal/config"
	"github.com/shouni/go-comic-kit/pkg/asset"
	"github.com/shouni/go-comic-kit/pkg/compositor"
	"github.com/shouni/go-comic-kit/pkg/domain"
	"github.com/shouni/go-comic-kit/pkg/pipeline"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxUploadBytes はアップロード画像の上限サイズなのだ。
const maxUploadBytes = 15 << 20

type indexView struct {
	PanelCount int
}

type comicView struct {
	ID           string
	Title        string
	Phase        string
	Running      bool
	Done         bool
	Error        string
	Tiles        []compositor.PreviewTile
	DownloadName string
}

type statusView struct {
	ID             string `json:"id"`
	Phase          string `json:"phase"`
	ScriptResolved bool   `json:"scriptResolved"`
	Resolved       int    `json:"resolved"`
	Total          int    `json:"total"`
	Done           bool   `json:"done"`
	Error          string `json:"error,omitempty"`
}

func (s *Server) handleIndex(w http.ResponseWriter, req *http.Request) {
	s.renderPage(w, "index.html", indexView{PanelCount: s.panelCount()})
}

// handleCreateComic はアップロード画像を受け取り、生成をバックグラウンドで
// 開始してコミックページへリダイレクトするのだ。
func (s *Server) handleCreateComic(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "アップロードの解析に失敗しました", http.StatusBadRequest)
		return
	}

	file, header, err := req.FormFile("image")
	if err != nil {
		http.Error(w, "元画像ファイルが指定されていません", http.StatusBadRequest)
		return
	}
	defer file.Close()

	// 上限+1バイトまで読み、超過を黙って切り詰めずに検出します。
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil || len(data) == 0 {
		http.Error(w, "元画像の読み込みに失敗しました", http.StatusBadRequest)
		return
	}
	if len(data) > maxUploadBytes {
		http.Error(w, "元画像が大きすぎます", http.StatusRequestEntityTooLarge)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}

	title := req.FormValue("title")
	if title == "" {
		title = asset.DeriveTitle(header.Filename)
	}

	src := domain.UploadedImage{
		Data:     data,
		Filename: header.Filename,
		MimeType: mimeType,
	}

	run := s.store.Create(title)
	go s.executeRun(run, src)

	http.Redirect(w, req, "/comics/"+run.ID.String(), http.StatusSeeOther)
}

// executeRun はパイプライン実行と結合ラスター生成をまとめて行うのだ。
// リクエストのライフサイクルから切り離すため、背景コンテキストで走らせる。
// 発行済みの外部リクエストを中断するキャンセル機構は持たないのだ。
func (s *Server) executeRun(run *Run, src domain.UploadedImage) {
	ctx := context.Background()

	doc, err := s.app.Pipeline.Execute(ctx, src, s.panelCount(), run.Title, run.Progress)
	if err != nil {
		slog.Error("コミック生成に失敗しました", "run_id", run.ID, "error", err)
		run.failWith(err)
		return
	}

	strip, err := s.app.Compositor.Stitch(doc)
	if err != nil {
		slog.Error("結合ラスターの生成に失敗しました", "run_id", run.ID, "error", err)
		run.failWith(fmt.Errorf("結合ラスターの生成に失敗しました: %w", err))
		return
	}

	run.complete(doc, strip)
	slog.Info("コミック生成が完了しました", "run_id", run.ID, "panels", len(doc.Panels))
}

func (s *Server) handleShowComic(w http.ResponseWriter, req *http.Request) {
	run, ok := s.runFromRequest(req)
	if !ok {
		http.NotFound(w, req)
		return
	}

	st := run.Progress.Snapshot()
	_, strip, runErr := run.Result()

	view := comicView{
		ID:           run.ID.String(),
		Title:        run.Title,
		Phase:        st.Phase.String(),
		Running:      run.Progress.Running(),
		Done:         st.Phase == pipeline.PhaseDone && len(strip) > 0,
		Tiles:        compositor.PreviewTiles(st.Panels, st.Total, st.ScriptResolved, config.DefaultPlaceholderTiles),
		DownloadName: asset.DownloadFilename(run.Title),
	}
	if runErr != nil {
		view.Error = runErr.Error()
	}

	s.renderPage(w, "comic.html", view)
}

func (s *Server) handleStatus(w http.ResponseWriter, req *http.Request) {
	run, ok := s.runFromRequest(req)
	if !ok {
		http.NotFound(w, req)
		return
	}

	st := run.Progress.Snapshot()
	_, strip, runErr := run.Result()

	view := statusView{
		ID:             run.ID.String(),
		Phase:          st.Phase.String(),
		ScriptResolved: st.ScriptResolved,
		Resolved:       len(st.Panels),
		Total:          st.Total,
		Done:           st.Phase == pipeline.PhaseDone && len(strip) > 0,
	}
	if runErr != nil {
		view.Error = runErr.Error()
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(view); err != nil {
		slog.Error("ステータスの書き出しに失敗しました", "run_id", run.ID, "error", err)
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, req *http.Request) {
	run, ok := s.runFromRequest(req)
	if !ok {
		http.NotFound(w, req)
		return
	}

	_, strip, _ := run.Result()
	if len(strip) == 0 {
		http.Error(w, "結合ラスターはまだ生成されていません", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", asset.DownloadFilename(run.Title)))
	if _, err := w.Write(strip); err != nil {
		slog.Error("結合ラスターの送出に失敗しました", "run_id", run.ID, "error", err)
	}
}

func (s *Server) runFromRequest(req *http.Request) (*Run, bool) {
	id, err := uuid.Parse(chi.URLParam(req, "id"))
	if err != nil {
		return nil, false
	}
	return s.store.Get(id)
}

func (s *Server) panelCount() int {
	if s.app.Options.PanelCount > 0 {
		return s.app.Options.PanelCount
	}
	return config.DefaultPanelCount
}

func (s *Server) renderPage(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("テンプレートの描画に失敗しました", "template", name, "error", err)
	}
}
