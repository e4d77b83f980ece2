package auth

import (
	"context"
	"fmt"

	"github.com/go-chi/jwtauth"

	"github.com/strata-cms/strata/pkg/strata"
)

// RoleClaim is the private claim carrying the caller's role.
const RoleClaim = "role"

// JWTAuthenticator verifies HS256 bearer tokens minted by an external
// identity service. The standard "sub" claim becomes the identity subject
// and the "role" claim selects the role; tokens without a usable role
// claim fall back to the configured default.
type JWTAuthenticator struct {
	auth        *jwtauth.JWTAuth
	defaultRole strata.Role
}

// NewJWT builds a JWT authenticator over a shared HS256 secret.
func NewJWT(secret []byte, defaultRole strata.Role) *JWTAuthenticator {
	if defaultRole == "" {
		defaultRole = strata.RoleViewer
	}
	return &JWTAuthenticator{
		auth:        jwtauth.New("HS256", secret, nil),
		defaultRole: defaultRole,
	}
}

// TokenAuth exposes the underlying jwtauth instance so callers (and tests)
// can mint tokens with Encode.
func (a *JWTAuthenticator) TokenAuth() *jwtauth.JWTAuth {
	return a.auth
}

// Authenticate implements strata.Authenticator. Only the Authorization
// bearer scheme is accepted; API-key headers are ignored here so a static
// key and a JWT authenticator can be distinguished by configuration.
func (a *JWTAuthenticator) Authenticate(ctx context.Context, req *strata.Request) (*strata.Identity, error) {
	raw := bearerToken(req)
	if raw == "" {
		return nil, strata.ErrNoCredentials
	}
	token, err := jwtauth.VerifyToken(a.auth, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", strata.ErrInvalidCredentials, err)
	}

	identity := &strata.Identity{Subject: token.Subject(), Role: a.defaultRole}
	if claim, ok := token.Get(RoleClaim); ok {
		if name, ok := claim.(string); ok {
			if role, err := strata.ParseRole(name); err == nil {
				identity.Role = role
			}
		}
	}
	return identity, nil
}
