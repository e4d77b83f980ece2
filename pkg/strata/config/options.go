package config

import (
	"fmt"
	"time"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithVersion sets the API version stamped into response metadata
func WithVersion(version string) Option {
	return func(c *ServerConfig) error {
		if version == "" {
			return fmt.Errorf("version cannot be empty")
		}
		c.Version = version
		return nil
	}
}

// WithAPIPrefix sets the path prefix content routes are served under
func WithAPIPrefix(prefix string) Option {
	return func(c *ServerConfig) error {
		if prefix == "" {
			return fmt.Errorf("api prefix cannot be empty")
		}
		c.APIPrefix = prefix
		return nil
	}
}

// WithMemoryRegistry selects the in-memory content-type registry. Types
// must be registered programmatically before the engine serves them.
func WithMemoryRegistry() Option {
	return func(c *ServerConfig) error {
		c.RegistryKind = "memory"
		c.SchemaDir = ""
		return nil
	}
}

// WithFileRegistry selects the file registry over the given schema
// directory. When watch is true the server hot-reloads schemas on change.
func WithFileRegistry(schemaDir string, watch bool) Option {
	return func(c *ServerConfig) error {
		if schemaDir == "" {
			return fmt.Errorf("schema directory cannot be empty")
		}
		c.RegistryKind = "file"
		c.SchemaDir = schemaDir
		c.WatchSchemas = watch
		return nil
	}
}

// WithRegistryCache wraps whichever registry is configured in a TTL cache
func WithRegistryCache(ttl time.Duration) Option {
	return func(c *ServerConfig) error {
		if ttl <= 0 {
			return fmt.Errorf("registry cache TTL must be positive")
		}
		c.RegistryTTL = ttl
		return nil
	}
}

// WithStore configures the entry store backend
func WithStore(kind, databaseURL string) Option {
	return func(c *ServerConfig) error {
		if kind != "memory" && kind != "postgres" {
			return fmt.Errorf("store kind must be 'memory' or 'postgres', got: %s", kind)
		}
		if kind == "postgres" && databaseURL == "" {
			return fmt.Errorf("database URL is required for postgres")
		}
		c.StoreKind = kind
		c.DatabaseURL = databaseURL
		return nil
	}
}

// WithStaticAuth enables static API-key authentication. Each spec is
// key:role or key:role:subject.
func WithStaticAuth(keySpecs []string, publicPaths ...string) Option {
	return func(c *ServerConfig) error {
		if len(keySpecs) == 0 {
			return fmt.Errorf("at least one API key spec is required")
		}
		c.AuthMode = "static"
		c.APIKeys = keySpecs
		c.PublicPaths = publicPaths
		return nil
	}
}

// WithJWTAuth enables HS256 bearer-token authentication
func WithJWTAuth(secret, defaultRole string, publicPaths ...string) Option {
	return func(c *ServerConfig) error {
		if secret == "" {
			return fmt.Errorf("jwt secret cannot be empty")
		}
		c.AuthMode = "jwt"
		c.JWTSecret = secret
		if defaultRole != "" {
			c.JWTDefaultRole = defaultRole
		}
		c.PublicPaths = publicPaths
		return nil
	}
}

// WithCORS sets the allowed origins; an empty list allows any origin
func WithCORS(origins ...string) Option {
	return func(c *ServerConfig) error {
		c.EnableCORS = true
		c.CORSOrigins = origins
		return nil
	}
}

// WithoutCORS disables the CORS annotation stage
func WithoutCORS() Option {
	return func(c *ServerConfig) error {
		c.EnableCORS = false
		c.CORSOrigins = nil
		return nil
	}
}

// WithRateLimit enables per-client request throttling
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *ServerConfig) error {
		if perSecond <= 0 {
			return fmt.Errorf("rate limit must be positive")
		}
		if burst < 1 {
			burst = 1
		}
		c.RateLimitPerSec = perSecond
		c.RateLimitBurst = burst
		return nil
	}
}

// WithEventLogging toggles the slog event sink for entry lifecycle events
func WithEventLogging(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableEventLogging = enabled
		return nil
	}
}
