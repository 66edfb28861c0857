package router

import (
	"context"
	"net/http"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// Router dispatches requests to typed handlers. Every handler runs on the
// process context, so it sees the configs, logger and database of the server.
type Router struct {
	ctx context.Context
	mux *http.ServeMux
}

func New(ctx context.Context) *Router {
	return &Router{ctx: ctx, mux: http.NewServeMux()}
}

func (r *Router) Handler() http.Handler {
	return r.mux
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	register(r, http.MethodGet, pattern, handler)
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	register(r, http.MethodPost, pattern, handler)
}

func register[Request, Response any](
	r *Router, method, pattern string, handler HandlerFunc[Request, Response],
) {
	r.mux.HandleFunc(pattern, func(w http.ResponseWriter, req *http.Request) {
		if req.Method != method {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var body Request
		var err error
		switch method {
		case http.MethodGet:
			err = bindQuery(req, &body)
		default:
			err = bindJSON(req, &body)
		}

		if err != nil {
			writeJSON(r.ctx, w, newErrorResponse(err))
			return
		}

		resp, err := handler(r.ctx, &body)
		if err != nil {
			writeJSON(r.ctx, w, newErrorResponse(err))
			return
		}

		writeJSON(r.ctx, w, newResponse(resp))
	})
}
