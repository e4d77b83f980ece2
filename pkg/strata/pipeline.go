package strata

import "context"

// Handler processes a request and always yields a response. Errors travel
// inside the response, never alongside it.
type Handler func(ctx context.Context, req *Request) *Response

// Middleware wraps a Handler. It may short-circuit by returning its own
// response without calling next, or call next and post-process the response
// that came back.
type Middleware func(ctx context.Context, req *Request, next Handler) *Response

// namedMiddleware pairs a middleware with a stable name for logs and
// introspection.
type namedMiddleware struct {
	name string
	mw   Middleware
}

// Pipeline is an ordered middleware chain. It is assembled once during
// engine construction and must not be mutated while requests are in flight.
type Pipeline struct {
	chain []namedMiddleware
}

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Use appends a named middleware. The first middleware added runs outermost.
func (p *Pipeline) Use(name string, mw Middleware) *Pipeline {
	p.chain = append(p.chain, namedMiddleware{name: name, mw: mw})
	return p
}

// Names lists the installed middleware names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.chain))
	for i, nm := range p.chain {
		names[i] = nm.name
	}
	return names
}

// Build folds the chain right-to-left around the terminal handler so the
// first middleware added is the outermost. The fold happens once; requests
// reuse the composed Handler.
func (p *Pipeline) Build(terminal Handler) Handler {
	h := terminal
	for i := len(p.chain) - 1; i >= 0; i-- {
		mw := p.chain[i].mw
		next := h
		h = func(ctx context.Context, req *Request) *Response {
			return mw(ctx, req, next)
		}
	}
	return h
}
