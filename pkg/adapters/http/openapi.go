package http

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/go-chi/chi/v5"
)

//go:embed openapi.yaml
var rawSpec []byte

var loadSpec = sync.OnceValues(func() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi spec: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid openapi spec: %w", err)
	}
	return doc, nil
})

// Spec returns the parsed API description.
func Spec() (*openapi3.T, error) {
	return loadSpec()
}

// validateRequest checks requests against the operation chi matched. Routes
// the document does not describe pass through.
func (s *Server) validateRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rctx := chi.RouteContext(r.Context())
		if rctx == nil {
			next.ServeHTTP(w, r)
			return
		}
		pattern := rctx.RoutePattern()
		item := s.spec.Paths.Find(pattern)
		if item == nil {
			next.ServeHTTP(w, r)
			return
		}
		op := item.GetOperation(r.Method)
		if op == nil {
			next.ServeHTTP(w, r)
			return
		}

		params := make(map[string]string, len(rctx.URLParams.Keys))
		for i, k := range rctx.URLParams.Keys {
			params[k] = rctx.URLParams.Values[i]
		}
		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: params,
			Route: &routers.Route{
				Spec:      s.spec,
				Path:      pattern,
				PathItem:  item,
				Method:    r.Method,
				Operation: op,
			},
			Options: &openapi3filter.Options{
				MultiError:         false,
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
			},
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			s.logger.Debug("request rejected by schema", "path", pattern, "err", err)
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}
		next.ServeHTTP(w, r)
	})
}
