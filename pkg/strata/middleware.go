package strata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RequestLoggingMiddleware times the rest of the chain and logs one line per
// request.
func RequestLoggingMiddleware(logger *slog.Logger) Middleware {
	return func(ctx context.Context, req *Request, next Handler) *Response {
		start := time.Now()
		resp := next(ctx, req)
		logger.InfoContext(ctx, "request handled",
			"method", req.Method,
			"path", req.Path,
			"status", resp.Status,
			"success", resp.Success,
			"duration", time.Since(start),
			"requestId", req.ID,
		)
		return resp
	}
}

// AuthenticationMiddleware resolves the caller identity before anything else
// touches the store. Paths listed in publicPaths skip the check entirely;
// on failure the chain halts without calling next.
func AuthenticationMiddleware(auth Authenticator, publicPaths ...string) Middleware {
	public := make(map[string]struct{}, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = struct{}{}
	}
	return func(ctx context.Context, req *Request, next Handler) *Response {
		if _, open := public[req.Path]; open {
			return next(ctx, req)
		}
		identity, err := auth.Authenticate(ctx, req)
		switch {
		case err == nil:
			req.Identity = identity
			return next(ctx, req)
		case errors.Is(err, ErrNoCredentials):
			return Fail(CodeAuthenticationRequired, "Authentication required. Supply an API key or bearer token.")
		default:
			return Fail(CodeAuthenticationFailed, "Authentication failed. The supplied credentials were rejected.")
		}
	}
}

// AuthorizationMiddleware gates write verbs behind a writable role. Requests
// without an identity (authentication disabled, or a public path) pass
// through untouched.
func AuthorizationMiddleware() Middleware {
	return func(ctx context.Context, req *Request, next Handler) *Response {
		if req.Identity != nil && isWriteMethod(req.Method) && !req.Identity.Role.CanWrite() {
			return Fail(CodeAuthorizationFailed,
				fmt.Sprintf("Role '%s' is not allowed to modify content", req.Identity.Role))
		}
		return next(ctx, req)
	}
}

func isWriteMethod(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// RateLimitMiddleware enforces a per-client token bucket. Clients are keyed
// by identity subject when authenticated and by remote IP otherwise.
func RateLimitMiddleware(limit rate.Limit, burst int) Middleware {
	var (
		mu      sync.Mutex
		buckets = make(map[string]*rate.Limiter)
	)
	limiterFor := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		lim, ok := buckets[key]
		if !ok {
			lim = rate.NewLimiter(limit, burst)
			buckets[key] = lim
		}
		return lim
	}
	return func(ctx context.Context, req *Request, next Handler) *Response {
		key := req.RemoteIP
		if req.Identity != nil && req.Identity.Subject != "" {
			key = req.Identity.Subject
		}
		if !limiterFor(key).Allow() {
			return Fail(CodeRateLimited, "Rate limit exceeded. Retry shortly.")
		}
		return next(ctx, req)
	}
}

// CORSOptions configures the response annotation applied by the CORS
// middleware. Empty slices fall back to permissive defaults.
type CORSOptions struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// CORSMiddleware always delegates first and then annotates whatever response
// came back with access-control headers. It cannot veto a request; preflight
// handling belongs to the HTTP adapter.
func CORSMiddleware(opts CORSOptions) Middleware {
	methods := strings.Join(defaultIfEmpty(opts.AllowedMethods,
		[]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}), ", ")
	headers := strings.Join(defaultIfEmpty(opts.AllowedHeaders,
		[]string{"Authorization", "Content-Type", "X-API-Key"}), ", ")

	return func(ctx context.Context, req *Request, next Handler) *Response {
		resp := next(ctx, req)
		origin := req.Header.Get("Origin")
		if allowed := resolveOrigin(opts.AllowedOrigins, origin); allowed != "" {
			resp.SetHeader("Access-Control-Allow-Origin", allowed)
			if allowed != "*" {
				resp.SetHeader("Vary", "Origin")
			}
		}
		resp.SetHeader("Access-Control-Allow-Methods", methods)
		resp.SetHeader("Access-Control-Allow-Headers", headers)
		return resp
	}
}

// resolveOrigin picks the Access-Control-Allow-Origin value: "*" when no
// origins are configured, the echoed origin when it is on the allow list,
// and "" (no header) otherwise.
func resolveOrigin(allowedOrigins []string, origin string) string {
	if len(allowedOrigins) == 0 {
		return "*"
	}
	for _, o := range allowedOrigins {
		if o == "*" {
			return "*"
		}
		if strings.EqualFold(o, origin) {
			return origin
		}
	}
	return ""
}

func defaultIfEmpty(v, fallback []string) []string {
	if len(v) == 0 {
		return fallback
	}
	return v
}
