package strata

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"
)

// Environment names the engine distinguishes. Production strips internal
// error details from responses.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Engine executes API requests end to end: middleware pipeline, route
// resolution, verb dispatch, normalization, store access.
type Engine interface {
	Execute(ctx context.Context, req *Request) *Response
}

// service implements the Engine interface
type service struct {
	registry    TypeRegistry
	store       EntryStore
	events      EventSink
	logger      *slog.Logger
	version     string
	environment string
	apiPrefix   string

	authenticator Authenticator
	publicPaths   []string
	cors          *CORSOptions
	rateLimit     rate.Limit
	rateBurst     int
	extra         []namedMiddleware

	router   *Router
	pipeline *Pipeline
	handler  Handler
}

// Option represents a functional option for configuring the engine
type Option func(*service)

// WithTypeRegistry sets the content-type registry for the engine
func WithTypeRegistry(registry TypeRegistry) Option {
	return func(s *service) {
		s.registry = registry
	}
}

// WithEntryStore sets the entry store for the engine
func WithEntryStore(store EntryStore) Option {
	return func(s *service) {
		s.store = store
	}
}

// WithEventSink sets the event sink fired after successful writes
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.events = sink
	}
}

// WithLogger sets the structured logger used by the engine and its pipeline
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithVersion sets the version string stamped into response metadata
func WithVersion(version string) Option {
	return func(s *service) {
		s.version = version
	}
}

// WithEnvironment sets the runtime environment name (EnvProduction omits
// internal error details from responses)
func WithEnvironment(env string) Option {
	return func(s *service) {
		s.environment = env
	}
}

// WithAPIPrefix overrides the router's path prefix
func WithAPIPrefix(prefix string) Option {
	return func(s *service) {
		s.apiPrefix = prefix
	}
}

// WithAuthentication enables the authentication and authorization
// middlewares; publicPaths are reachable without credentials
func WithAuthentication(auth Authenticator, publicPaths ...string) Option {
	return func(s *service) {
		s.authenticator = auth
		s.publicPaths = publicPaths
	}
}

// WithCORS enables the CORS annotation middleware
func WithCORS(opts CORSOptions) Option {
	return func(s *service) {
		s.cors = &opts
	}
}

// WithRateLimit enables the per-client rate limit middleware
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *service) {
		s.rateLimit = rate.Limit(perSecond)
		s.rateBurst = burst
	}
}

// WithMiddleware appends a custom middleware after the built-ins
func WithMiddleware(name string, mw Middleware) Option {
	return func(s *service) {
		s.extra = append(s.extra, namedMiddleware{name: name, mw: mw})
	}
}

// New assembles an engine from the given options. A type registry and an
// entry store are required; everything else has working defaults. The
// middleware pipeline is composed here, once, and never mutated afterwards.
func New(options ...Option) (Engine, error) {
	s := &service{
		version:     "1.0",
		environment: EnvDevelopment,
		apiPrefix:   DefaultAPIPrefix,
	}

	for _, option := range options {
		option(s)
	}

	if s.registry == nil {
		return nil, fmt.Errorf("type registry is required")
	}
	if s.store == nil {
		return nil, fmt.Errorf("entry store is required")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.events == nil {
		s.events = NewNoopEventSink()
	}
	if s.rateLimit > 0 && s.rateBurst < 1 {
		s.rateBurst = 1
	}

	s.router = NewRouter(s.registry, s.apiPrefix)

	p := NewPipeline()
	p.Use("logging", RequestLoggingMiddleware(s.logger))
	if s.authenticator != nil {
		p.Use("authentication", AuthenticationMiddleware(s.authenticator, s.publicPaths...))
		p.Use("authorization", AuthorizationMiddleware())
	}
	if s.cors != nil {
		p.Use("cors", CORSMiddleware(*s.cors))
	}
	if s.rateLimit > 0 {
		p.Use("ratelimit", RateLimitMiddleware(s.rateLimit, s.rateBurst))
	}
	for _, nm := range s.extra {
		p.Use(nm.name, nm.mw)
	}

	s.pipeline = p
	s.handler = p.Build(s.dispatch)

	return s, nil
}
