package strata

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultAPIPrefix is the path prefix the router strips before resolving
// content-type segments.
const DefaultAPIPrefix = "/api"

// RouteMatch is a resolved route: the content type addressed by the first
// path segment and, when present, the raw entry id from the second.
type RouteMatch struct {
	ContentType *ContentType
	EntryID     string
}

// Router resolves request paths against the content-type registry. Content
// paths are exactly one or two segments below the prefix; anything deeper
// does not exist.
type Router struct {
	prefix   string
	registry TypeRegistry
}

// NewRouter builds a router over the given registry. An empty prefix falls
// back to DefaultAPIPrefix.
func NewRouter(registry TypeRegistry, prefix string) *Router {
	if prefix == "" {
		prefix = DefaultAPIPrefix
	}
	return &Router{prefix: strings.TrimSuffix(prefix, "/"), registry: registry}
}

// Resolve parses a request path into a RouteMatch. On failure the second
// return value is a ready-to-send error response: BAD_REQUEST for malformed
// paths, NOT_FOUND for unknown content types and for paths deeper than two
// segments.
func (r *Router) Resolve(ctx context.Context, path string) (*RouteMatch, *Response) {
	if path != r.prefix && !strings.HasPrefix(path, r.prefix+"/") {
		return nil, Fail(CodeBadRequest, fmt.Sprintf("Request path must start with %s", r.prefix))
	}

	rest := strings.Trim(strings.TrimPrefix(path, r.prefix), "/")
	var segments []string
	for _, seg := range strings.Split(rest, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}

	if len(segments) == 0 {
		return nil, Fail(CodeBadRequest, "Content type segment is required")
	}
	if len(segments) > 2 {
		return nil, Fail(CodeNotFound, fmt.Sprintf(
			"No resource at '%s'. Content paths are %s/{contentType} or %s/{contentType}/{entryId}",
			path, r.prefix, r.prefix))
	}

	identifier := segments[0]
	ct, err := r.lookup(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrContentTypeNotFound) {
			return nil, Fail(CodeNotFound, fmt.Sprintf(
				"Content type '%s' not found. Create the content type before requesting its entries.", identifier))
		}
		return nil, Fail(CodeInternalServerError, "Content type registry is unavailable", err.Error())
	}

	match := &RouteMatch{ContentType: ct}
	if len(segments) == 2 {
		match.EntryID = segments[1]
	}
	return match, nil
}

// lookup matches the identifier against each type's slug or id; the two are
// interchangeable on the wire.
func (r *Router) lookup(ctx context.Context, identifier string) (*ContentType, error) {
	types, err := r.registry.ListTypes(ctx)
	if err != nil {
		return nil, err
	}
	for i := range types {
		if types[i].Slug == identifier || types[i].ID.String() == identifier {
			return &types[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrContentTypeNotFound, identifier)
}
