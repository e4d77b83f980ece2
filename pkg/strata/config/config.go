// Package config assembles a runnable content engine from declarative
// settings: which registry serves content types, which store holds
// entries, how callers authenticate, and how the request pipeline behaves.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/strata-cms/strata/pkg/strata"
	"github.com/strata-cms/strata/pkg/strata/auth"
	cachedregistry "github.com/strata-cms/strata/pkg/strata/registry/cached"
	fileregistry "github.com/strata-cms/strata/pkg/strata/registry/file"
	memoryregistry "github.com/strata-cms/strata/pkg/strata/registry/memory"
	memorystore "github.com/strata-cms/strata/pkg/strata/store/memory"
	postgresstore "github.com/strata-cms/strata/pkg/strata/store/postgres"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of
// library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:        "8080",
		Environment: strata.EnvDevelopment,
		Version:     "1.0",
		APIPrefix:   strata.DefaultAPIPrefix,

		RegistryKind: "memory",
		StoreKind:    "memory",

		AuthMode:       "none",
		JWTDefaultRole: string(strata.RoleViewer),

		EnableCORS:         true,
		EnableEventLogging: true,
	}
}

// ServerConfig represents server configuration for the strata content service
type ServerConfig struct {
	Port        string
	Environment string // development, production
	Version     string
	APIPrefix   string

	// Registry configuration
	RegistryKind string        // "memory", "file"
	SchemaDir    string        // schema directory when RegistryKind is "file"
	WatchSchemas bool          // hot-reload schema files on change
	RegistryTTL  time.Duration // >0 wraps the registry in a TTL cache

	// Store configuration
	StoreKind   string // "memory", "postgres"
	DatabaseURL string

	// Authentication
	AuthMode       string   // "none", "static", "jwt"
	APIKeys        []string // key:role[:subject] specs for static auth
	JWTSecret      string
	JWTDefaultRole string
	PublicPaths    []string

	// Request pipeline
	EnableCORS      bool
	CORSOrigins     []string // empty means any origin
	RateLimitPerSec float64  // 0 disables rate limiting
	RateLimitBurst  int

	// Events
	EnableEventLogging bool
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.Environment != strata.EnvDevelopment && c.Environment != strata.EnvProduction {
		return fmt.Errorf("environment must be '%s' or '%s'", strata.EnvDevelopment, strata.EnvProduction)
	}

	switch c.RegistryKind {
	case "memory":
	case "file":
		if c.SchemaDir == "" {
			return errors.New("schema_dir is required when using the file registry")
		}
	default:
		return errors.New("registry must be 'memory' or 'file'")
	}

	switch c.StoreKind {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("database_url is required when using postgres")
		}
	default:
		return errors.New("store must be 'memory' or 'postgres'")
	}

	switch c.AuthMode {
	case "none", "static", "jwt":
	default:
		return errors.New("auth mode must be 'none', 'static' or 'jwt'")
	}
	if c.AuthMode == "static" && len(c.APIKeys) == 0 {
		return errors.New("api keys are required for static auth")
	}
	if c.AuthMode == "jwt" && c.JWTSecret == "" {
		return errors.New("jwt secret is required for jwt auth")
	}

	if c.RateLimitPerSec < 0 {
		return errors.New("rate limit cannot be negative")
	}

	return nil
}

// Runtime bundles the assembled engine with the handles a server process
// needs around it: the file registry for schema watching and the pgx pool
// for shutdown.
type Runtime struct {
	Engine       strata.Engine
	FileRegistry *fileregistry.Registry // nil unless RegistryKind is "file"
	Pool         *pgxpool.Pool          // nil unless StoreKind is "postgres"
}

// Close releases resources held by the runtime.
func (rt *Runtime) Close() {
	if rt.Pool != nil {
		rt.Pool.Close()
	}
}

// BuildRuntime creates an Engine instance plus its operational handles
// from the server configuration.
func (c *ServerConfig) BuildRuntime() (*Runtime, error) {
	rt := &Runtime{}

	registry, fileReg, err := c.buildRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to build registry: %w", err)
	}
	rt.FileRegistry = fileReg

	store, pool, err := c.buildStore()
	if err != nil {
		return nil, fmt.Errorf("failed to build store: %w", err)
	}
	rt.Pool = pool

	options := []strata.Option{
		strata.WithTypeRegistry(registry),
		strata.WithEntryStore(store),
		strata.WithVersion(c.Version),
		strata.WithEnvironment(c.Environment),
		strata.WithAPIPrefix(c.APIPrefix),
	}

	authenticator, err := c.buildAuthenticator()
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to build authenticator: %w", err)
	}
	if authenticator != nil {
		options = append(options, strata.WithAuthentication(authenticator, c.PublicPaths...))
	}

	if c.EnableCORS {
		options = append(options, strata.WithCORS(strata.CORSOptions{
			AllowedOrigins: c.CORSOrigins,
		}))
	}
	if c.RateLimitPerSec > 0 {
		options = append(options, strata.WithRateLimit(c.RateLimitPerSec, c.RateLimitBurst))
	}
	if c.EnableEventLogging {
		options = append(options, strata.WithEventSink(strata.NewSlogEventSink(slog.Default())))
	}

	engine, err := strata.New(options...)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Engine = engine

	return rt, nil
}

// buildRegistry creates a TypeRegistry based on the configuration. The
// second return value carries the file registry handle when one was built,
// so the caller can start its watcher.
func (c *ServerConfig) buildRegistry() (strata.TypeRegistry, *fileregistry.Registry, error) {
	var (
		registry strata.TypeRegistry
		fileReg  *fileregistry.Registry
	)

	switch c.RegistryKind {
	case "memory":
		registry = memoryregistry.New()
	case "file":
		fr, err := fileregistry.New(c.SchemaDir, nil)
		if err != nil {
			return nil, nil, err
		}
		registry = fr
		fileReg = fr
	default:
		return nil, nil, fmt.Errorf("unsupported registry kind: %s", c.RegistryKind)
	}

	if c.RegistryTTL > 0 {
		registry = cachedregistry.New(registry, c.RegistryTTL)
	}
	return registry, fileReg, nil
}

// buildStore creates an EntryStore based on the configuration.
func (c *ServerConfig) buildStore() (strata.EntryStore, *pgxpool.Pool, error) {
	switch c.StoreKind {
	case "memory":
		return memorystore.New(), nil, nil
	case "postgres":
		if c.DatabaseURL == "" {
			return nil, nil, errors.New("database_url is required for postgres")
		}
		cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		return postgresstore.NewWithPool(pool), pool, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store kind: %s", c.StoreKind)
	}
}

// buildAuthenticator creates an Authenticator based on the configuration.
// A nil return with a nil error means authentication is disabled.
func (c *ServerConfig) buildAuthenticator() (strata.Authenticator, error) {
	switch c.AuthMode {
	case "none":
		return nil, nil
	case "static":
		keys, err := auth.ParseKeySpecs(c.APIKeys)
		if err != nil {
			return nil, err
		}
		return auth.NewStaticKey(keys), nil
	case "jwt":
		role, err := strata.ParseRole(c.JWTDefaultRole)
		if err != nil {
			return nil, err
		}
		return auth.NewJWT([]byte(c.JWTSecret), role), nil
	default:
		return nil, fmt.Errorf("unsupported auth mode: %s", c.AuthMode)
	}
}

// PingPostgres verifies connectivity to Postgres. It is used by readiness
// checks and startup validation.
func PingPostgres(databaseURL string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
