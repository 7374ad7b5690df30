// Package web exposes the service tools as a JSON HTTP API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/sandevgo/zhipukit/pkg/log"
	"github.com/sandevgo/zhipukit/pkg/srv"
)

const maxRequestBytes = 32 << 20

// routes maps fixed endpoints to tool names.
var routes = map[string]string{
	"/api/rerank":                "rerank_documents",
	"/api/top_relevant":          "top_relevant_documents",
	"/api/relevant_by_threshold": "relevant_documents_by_threshold",
	"/api/moderate":              "moderate_content",
	"/api/batch_moderate":        "batch_moderate",
	"/api/search":                "web_search",
	"/api/agent":                 "agent_chat",
	"/api/embed":                 "embed_texts",
	"/api/tokens":                "count_tokens",
	"/api/fetch":                 "fetch_url",
	"/api/vision/analyze":        "analyze_content",
	"/api/vision/describe":       "describe_image",
	"/api/vision/video":          "analyze_video",
	"/api/vision/document":       "extract_document",
	"/api/vision/compare":        "compare_contents",
}

var _ srv.Service = (*Server)(nil)

type Server struct {
	addr    string
	tools   map[string]core.ToolDefinition
	router  chi.Router
	httpSrv *http.Server
	started time.Time
}

func NewServer(addr string, providers ...core.ToolProvider) (*Server, error) {
	tools := make(map[string]core.ToolDefinition)
	for _, p := range providers {
		for name, def := range p.GetDefinitions() {
			if _, dup := tools[name]; dup {
				return nil, fmt.Errorf("duplicate tool %q", name)
			}
			tools[name] = def
		}
	}

	s := &Server{addr: addr, tools: tools, started: time.Now()}
	s.router = s.newRouter()
	return s, nil
}

func (s *Server) newRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)

	for path, name := range routes {
		if def, ok := s.tools[name]; ok {
			r.Post(path, s.callTool(name, def))
		}
	}
	r.Get("/api/models", s.models)
	r.Get("/api/status", s.status)
	if def, ok := s.tools["supported_formats"]; ok {
		r.Get("/api/vision/formats", s.callTool("supported_formats", def))
	}
	r.Get("/api/tools", s.listTools)
	r.Post("/api/tools/{name}", s.callNamed)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not-found", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method-not-allowed", r.Method+" is not allowed on "+r.URL.Path)
	})
	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	log.FromCtx(ctx).Info().Str("addr", s.addr).Int("tools", len(s.tools)).Msg("http api listening")

	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) callNamed(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	def, ok := s.tools[name]
	if !ok {
		writeError(w, http.StatusNotFound, "not-found", fmt.Sprintf("unknown tool %q", name))
		return
	}
	s.callTool(name, def)(w, r)
}

func (s *Server) callTool(name string, def core.ToolDefinition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.FromCtx(r.Context())

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, string(core.KindOutOfRange), "request body too large")
			return
		}

		out, err := def.Handler(r.Context(), body)
		if err != nil {
			status := statusFor(err)
			if status >= http.StatusInternalServerError {
				logger.Warn().Err(err).Str("tool", name).Msg("tool failed")
			}
			writeError(w, status, string(core.KindOf(err)), errorMessage(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if !json.Valid([]byte(out)) {
			data, _ := json.Marshal(map[string]string{"result": out})
			out = string(data)
		}
		_, _ = io.WriteString(w, out)
	}
}

func (s *Server) models(w http.ResponseWriter, r *http.Request) {
	def, ok := s.tools["rerank_models"]
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"models": []string{}})
		return
	}
	s.callTool("rerank_models", def)(w, r)
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"name":    core.AppName,
		"version": core.AppVersion,
		"uptime":  time.Since(s.started).Round(time.Second).String(),
		"tools":   len(s.tools),
	})
}

func (s *Server) listTools(w http.ResponseWriter, r *http.Request) {
	type toolResponse struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		InputSchema json.RawMessage `json:"inputSchema"`
	}
	resp := struct {
		Tools []toolResponse `json:"tools"`
	}{Tools: make([]toolResponse, 0, len(s.tools))}

	for name, def := range s.tools {
		resp.Tools = append(resp.Tools, toolResponse{Name: name, Description: def.Description, InputSchema: json.RawMessage(def.Schema)})
	}
	sort.Slice(resp.Tools, func(i, j int) bool { return resp.Tools[i].Name < resp.Tools[j].Name })
	writeJSON(w, http.StatusOK, resp)
}
