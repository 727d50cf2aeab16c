package webapp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/shouni/go-comic-kit/internal/builder"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server はコミック生成のWeb面を提供するHTTPサーバーなのだ。
// 生成そのものは CLI と同じ AppContext のパイプラインに委譲する。
type Server struct {
	app   builder.AppContext
	store *Store
	addr  string
}

// NewServer は AppContext と待ち受けアドレスから Server を生成するのだ。
func NewServer(app builder.AppContext, addr string) *Server {
	return &Server{
		app:   app,
		store: NewStore(),
		addr:  addr,
	}
}

// Router は全ルートを束ねたハンドラーを返すのだ。
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/", s.handleIndex)
	r.Post("/comics", s.handleCreateComic)
	r.Get("/comics/{id}", s.handleShowComic)
	r.Get("/comics/{id}/status", s.handleStatus)
	r.Get("/comics/{id}/strip.png", s.handleDownload)

	return r
}

// ListenAndServe はサーバーを起動し、ctx のキャンセルで
// グレースフルシャットダウンするのだ。
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Webサーバーを起動します", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("Webサーバーを停止します")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// requestLogger はアクセスログを slog に流す薄いミドルウェアなのだ。
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)
		slog.Info("HTTPリクエストを処理しました",
			"method", req.Method,
			"path", req.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
