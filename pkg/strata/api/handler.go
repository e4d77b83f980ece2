// Package api adapts the content engine to net/http. It translates
// incoming requests into engine requests, executes them through the
// middleware pipeline, and renders the uniform response envelope with
// chi and render.
package api

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/strata-cms/strata/pkg/strata"
)

// ReadyCheck reports whether the server's dependencies are reachable.
// A postgres ping is the typical implementation.
type ReadyCheck func(ctx context.Context) error

// Handler bridges HTTP traffic into a strata.Engine.
type Handler struct {
	engine    strata.Engine
	prefix    string
	ready     ReadyCheck
	preflight *strata.CORSOptions
}

// HandlerOption configures the HTTP handler.
type HandlerOption func(*Handler)

// WithPrefix sets the path prefix content routes are served under. It must
// match the engine's API prefix.
func WithPrefix(prefix string) HandlerOption {
	return func(h *Handler) {
		h.prefix = prefix
	}
}

// WithReadyCheck wires a dependency probe into the readiness endpoint.
func WithReadyCheck(check ReadyCheck) HandlerOption {
	return func(h *Handler) {
		h.ready = check
	}
}

// WithPreflight answers CORS preflight requests at the HTTP edge. The
// engine's CORS middleware only annotates executed requests; OPTIONS never
// reaches it.
func WithPreflight(opts strata.CORSOptions) HandlerOption {
	return func(h *Handler) {
		h.preflight = &opts
	}
}

// NewHandler creates an HTTP handler around an engine.
func NewHandler(engine strata.Engine, opts ...HandlerOption) *Handler {
	h := &Handler{engine: engine, prefix: strata.DefaultAPIPrefix}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the router serving the engine plus health endpoints.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", h.handleHealth)
	r.Get("/ready", h.handleReady)

	r.HandleFunc(h.prefix, h.handleContent)
	r.HandleFunc(h.prefix+"/*", h.handleContent)

	return r
}

// handleContent forwards one request through the engine and writes the
// envelope it produces. All content semantics, including errors, live in
// the engine; this function only moves bytes.
func (h *Handler) handleContent(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions && h.preflight != nil {
		h.handlePreflight(w, r)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	req := &strata.Request{
		ID:       middleware.GetReqID(r.Context()),
		Method:   r.Method,
		Path:     r.URL.Path,
		Query:    r.URL.Query(),
		Header:   r.Header,
		Body:     body,
		RemoteIP: remoteIP(r),
	}

	resp := h.engine.Execute(r.Context(), req)

	for key, values := range resp.Header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	render.Status(r, resp.Status)
	render.JSON(w, r, resp.Envelope())
}

// handlePreflight answers OPTIONS requests so browsers can reach the API
// cross-origin.
func (h *Handler) handlePreflight(w http.ResponseWriter, r *http.Request) {
	origin := "*"
	if len(h.preflight.AllowedOrigins) > 0 {
		origin = ""
		requested := r.Header.Get("Origin")
		for _, allowed := range h.preflight.AllowedOrigins {
			if allowed == "*" || allowed == requested {
				origin = requested
				break
			}
		}
		if origin == "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Vary", "Origin")
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")
	w.Header().Set("Access-Control-Max-Age", "300")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "healthy"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	render.JSON(w, r, map[string]string{"status": "ready"})
}

// remoteIP strips the port from RemoteAddr. When chi's RealIP middleware
// already rewrote the address to a bare IP, it is returned as is.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
