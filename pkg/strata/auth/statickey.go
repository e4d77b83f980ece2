package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/strata-cms/strata/pkg/strata"
)

// StaticKeyAuthenticator checks caller-supplied API keys against a
// configured allow-list. Keys are accepted from the X-API-Key header or
// as a bearer token.
type StaticKeyAuthenticator struct {
	keys map[string]strata.Identity
}

// NewStaticKey builds an authenticator over a key to identity allow-list.
// The map is copied; later mutation by the caller has no effect.
func NewStaticKey(keys map[string]strata.Identity) *StaticKeyAuthenticator {
	owned := make(map[string]strata.Identity, len(keys))
	for key, identity := range keys {
		owned[key] = identity
	}
	return &StaticKeyAuthenticator{keys: owned}
}

// Authenticate implements strata.Authenticator.
func (a *StaticKeyAuthenticator) Authenticate(ctx context.Context, req *strata.Request) (*strata.Identity, error) {
	credential := req.Header.Get("X-API-Key")
	if credential == "" {
		credential = bearerToken(req)
	}
	if credential == "" {
		return nil, strata.ErrNoCredentials
	}
	identity, ok := a.keys[credential]
	if !ok {
		return nil, strata.ErrInvalidCredentials
	}
	return &identity, nil
}

// ParseKeySpecs parses "key:role" or "key:role:subject" specifications,
// as supplied through STRATA_AUTH_KEYS, into an allow-list. The subject
// defaults to "api-key" when omitted.
func ParseKeySpecs(specs []string) (map[string]strata.Identity, error) {
	keys := make(map[string]strata.Identity, len(specs))
	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		parts := strings.SplitN(spec, ":", 3)
		if len(parts) < 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid key spec %q: expected key:role or key:role:subject", spec)
		}
		role, err := strata.ParseRole(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid key spec %q: %w", spec, err)
		}
		subject := "api-key"
		if len(parts) == 3 && parts[2] != "" {
			subject = parts[2]
		}
		if _, dup := keys[parts[0]]; dup {
			return nil, fmt.Errorf("duplicate API key in key specs")
		}
		keys[parts[0]] = strata.Identity{Subject: subject, Role: role}
	}
	return keys, nil
}
