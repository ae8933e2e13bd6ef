// Package httpapi exposes board synthesis and board management over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jask/kanbanai/internal/service"
)

// OwnerHeader carries the caller's identity. Authentication happens upstream.
const OwnerHeader = "X-User-ID"

const maxBodyBytes = 1 << 20

// Server routes API requests to the services.
type Server struct {
	Synthesis *service.SynthesisService
	Boards    *service.BoardService
	Log       *zap.Logger
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/ai/generate-board", s.withOwner(s.generateBoard))
	mux.HandleFunc("POST /api/ai/suggest-tasks", s.withOwner(s.suggestTasks))
	mux.HandleFunc("GET /api/boards", s.withOwner(s.listBoards))
	mux.HandleFunc("POST /api/boards", s.withOwner(s.createBoard))
	mux.HandleFunc("GET /api/boards/{id}", s.withOwner(s.getBoard))
	mux.HandleFunc("PATCH /api/boards/{id}", s.withOwner(s.updateBoard))
	mux.HandleFunc("DELETE /api/boards/{id}", s.withOwner(s.deleteBoard))
	mux.HandleFunc("POST /api/boards/{id}/lists", s.withOwner(s.addList))
	mux.HandleFunc("GET /api/boards/{id}/stats", s.withOwner(s.boardStats))
	mux.HandleFunc("POST /api/lists/{id}/tasks", s.withOwner(s.addTask))
	return s.logRequests(mux)
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler, log *zap.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Info("http server listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		log.Info("http server stopped")
		return nil
	}
}

type ownedHandler func(w http.ResponseWriter, r *http.Request, owner string)

func (s *Server) withOwner(h ownedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := r.Header.Get(OwnerHeader)
		if owner == "" {
			writeMessage(w, http.StatusUnauthorized, "missing "+OwnerHeader+" header")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		h(w, r, owner)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger().Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)))
	})
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
