// Package auth provides Authenticator implementations for the content
// engine: a static API-key allow-list and HS256 JWT bearer tokens.
//
// Both implementations translate missing credentials into
// strata.ErrNoCredentials and rejected credentials into
// strata.ErrInvalidCredentials so the authentication middleware can map
// them to the right error codes.
package auth

import (
	"strings"

	"github.com/strata-cms/strata/pkg/strata"
)

// bearerToken extracts the token from an "Authorization: Bearer ..." header.
// Returns "" when the header is absent or uses a different scheme.
func bearerToken(req *strata.Request) string {
	authz := req.Header.Get("Authorization")
	if len(authz) < 7 || !strings.EqualFold(authz[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authz[7:])
}
