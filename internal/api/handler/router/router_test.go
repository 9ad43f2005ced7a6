package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

func TestRouter_MiddlewareOrder(t *testing.T) {
	var calls []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls = append(calls, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	var instrumented string
	rt := New(
		WithInstrumentation(func(path string) func(http.Handler) http.Handler {
			instrumented = path
			return mark("instrument")
		}),
		WithRoutes(Route{
			Path:   "/v1/analysis/runs/:id",
			Method: http.MethodGet,
			Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls = append(calls, httprouter.ParamsFromContext(r.Context()).ByName("id"))
			}),
			Middlewares: []func(http.Handler) http.Handler{mark("first"), mark("second")},
		}),
	)

	rt.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/analysis/runs/abc", nil))

	assert.Equal(t, "/v1/analysis/runs/:id", instrumented)
	assert.Equal(t, []string{"instrument", "first", "second", "abc"}, calls)
}
