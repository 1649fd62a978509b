// Package httpapi exposes research, chat, model listing, title generation
// and memory extraction over HTTP for browser front ends.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Aman-CERP/amanweb/internal/chat"
	"github.com/Aman-CERP/amanweb/internal/ollama"
	"github.com/Aman-CERP/amanweb/internal/research"
)

const shutdownTimeout = 10 * time.Second

// Researcher runs research requests.
type Researcher interface {
	Search(ctx context.Context, req research.Request) (*research.Response, error)
}

// Chatter streams chat turns, names conversations and picks out facts
// worth remembering.
type Chatter interface {
	Stream(ctx context.Context, req chat.Request, onMeta func(chat.Metadata) error, onChunk func(string) error) error
	Title(ctx context.Context, messages []ollama.Message, model string) string
	ExtractMemories(ctx context.Context, messages []ollama.Message, model string) ([]chat.Memory, error)
}

// ModelLister lists installed models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]ollama.Model, error)
}

// HealthCheck checks one dependency.
type HealthCheck func(ctx context.Context) error

var (
	_ Researcher  = (*research.Researcher)(nil)
	_ Chatter     = (*chat.Service)(nil)
	_ ModelLister = (*ollama.Client)(nil)
)

// Deps are the services the API is built on.
type Deps struct {
	Researcher Researcher
	Chat       Chatter
	Models     ModelLister
	// Checks are run by /healthz, keyed by dependency name.
	Checks map[string]HealthCheck
}

// Server is the HTTP API.
type Server struct {
	engine *gin.Engine
	deps   Deps
}

// New builds the router.
func New(deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{engine: gin.New(), deps: deps}
	s.engine.Use(gin.Recovery(), requestID(), accessLog())

	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api")
	api.POST("/search", s.handleSearch)
	api.POST("/chat", s.handleChat)
	api.GET("/models", s.handleModels)
	api.POST("/title", s.handleTitle)
	api.POST("/memory/extract", s.handleMemoryExtract)
	return s
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http_server_listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	slog.Info("http_server_shutdown")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
