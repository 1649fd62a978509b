package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Aman-CERP/amanweb/internal/chat"
	amerrors "github.com/Aman-CERP/amanweb/internal/errors"
	"github.com/Aman-CERP/amanweb/internal/ollama"
	"github.com/Aman-CERP/amanweb/internal/research"
)

const healthTimeout = 3 * time.Second

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error amerrors.JSONError `json:"error"`
}

func writeError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), errorResponse{Error: amerrors.ToJSON(err)})
}

func statusFor(err error) int {
	switch amerrors.GetCategory(err) {
	case amerrors.CategoryValidation:
		return http.StatusBadRequest
	case amerrors.CategoryNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(c *gin.Context, err error) {
	writeError(c, amerrors.ValidationError(amerrors.ErrCodeInvalidInput, "invalid request body: "+err.Error()))
}

// searchRequest mirrors research.Request with fetch_content defaulting to true.
type searchRequest struct {
	Question     string `json:"question"`
	Model        string `json:"model"`
	MaxResults   int    `json:"max_results"`
	FetchContent *bool  `json:"fetch_content"`
	Mode         string `json:"mode"`
}

func (s *Server) handleSearch(c *gin.Context) {
	var body searchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	fetch := true
	if body.FetchContent != nil {
		fetch = *body.FetchContent
	}

	resp, err := s.deps.Researcher.Search(c.Request.Context(), research.Request{
		Question:     body.Question,
		Model:        body.Model,
		MaxResults:   body.MaxResults,
		FetchContent: fetch,
		Mode:         research.Mode(body.Mode),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// handleChat streams the answer as server-sent events: an optional
// {"sources","queries"} event, then {"content"} events.
func (s *Server) handleChat(c *gin.Context) {
	var req chat.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	started := false
	start := func() {
		if started {
			return
		}
		started = true
		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Status(http.StatusOK)
	}
	send := func(v any) error {
		start()
		c.SSEvent("", v)
		c.Writer.Flush()
		return c.Request.Context().Err()
	}

	err := s.deps.Chat.Stream(c.Request.Context(), req,
		func(m chat.Metadata) error { return send(m) },
		func(content string) error { return send(gin.H{"content": content}) })
	if err == nil {
		start()
		return
	}
	if !started {
		writeError(c, err)
		return
	}
	// Headers are already out; report in-band.
	_ = send(gin.H{"error": amerrors.ToJSON(err)})
}

func (s *Server) handleModels(c *gin.Context) {
	models, err := s.deps.Models.ListModels(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(statusFor(err), gin.H{"error": amerrors.ToJSON(err), "models": []ollama.Model{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"models": models})
}

type titleRequest struct {
	Messages []ollama.Message `json:"messages"`
	Model    string           `json:"model"`
}

// handleTitle always answers 200; failures produce the default title.
func (s *Server) handleTitle(c *gin.Context) {
	var body titleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusOK, gin.H{"title": chat.DefaultTitle})
		return
	}
	c.JSON(http.StatusOK, gin.H{"title": s.deps.Chat.Title(c.Request.Context(), body.Messages, body.Model)})
}

// handleMemoryExtract answers {"memories": [...]}. A bad body is treated as
// an empty conversation; a model failure is a 500 with an empty list.
func (s *Server) handleMemoryExtract(c *gin.Context) {
	var body titleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusOK, gin.H{"memories": []chat.Memory{}})
		return
	}
	memories, err := s.deps.Chat.ExtractMemories(c.Request.Context(), body.Messages, body.Model)
	if err != nil {
		slog.Warn("memory_extract_failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to extract memories", "memories": []chat.Memory{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"memories": memories})
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	names := make([]string, 0, len(s.deps.Checks))
	for name := range s.deps.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
	for _, name := range names {
		if err := s.deps.Checks[name](ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			continue
		}
		resp.Checks[name] = "ok"
	}

	code := http.StatusOK
	if resp.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}
