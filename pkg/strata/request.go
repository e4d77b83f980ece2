package strata

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Role gates what an authenticated caller may do with content.
type Role string

// Role constants (typed).
const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// CanWrite reports whether the role may create, update or delete entries.
func (r Role) CanWrite() bool {
	return r == RoleAdmin || r == RoleEditor
}

// ParseRole parses a role name case-insensitively.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleEditor:
		return RoleEditor, nil
	case RoleViewer:
		return RoleViewer, nil
	default:
		return "", fmt.Errorf("unknown role %q (valid roles: admin, editor, viewer)", raw)
	}
}

// Identity describes the authenticated caller attached to a request.
type Identity struct {
	Subject string
	Role    Role
}

// Request is the engine-level view of one inbound API call. The HTTP adapter
// builds it from the raw *http.Request; tests construct it directly. ID is
// generated when left empty.
type Request struct {
	ID       string
	Method   string
	Path     string
	Query    url.Values
	Header   http.Header
	Body     json.RawMessage
	RemoteIP string

	// Identity is attached by the authentication middleware; nil when
	// authentication is disabled or the path is public.
	Identity *Identity
}
