package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dropDatabas3/naiad/internal/config"
	"github.com/dropDatabas3/naiad/internal/dispatch"
	"github.com/dropDatabas3/naiad/internal/tenant"
)

// dispatcherFunc adapta una función al Dispatcher del router.
type dispatcherFunc func(ctx context.Context, req *dispatch.Request) (any, error)

func (f dispatcherFunc) Dispatch(ctx context.Context, req *dispatch.Request) (any, error) {
	return f(ctx, req)
}

var testRoutes = []config.Route{
	{Endpoint: "sale.order.search", Pattern: "/orders", Methods: []string{"GET"}},
	{Endpoint: "sale.order.confirm", Pattern: "/orders/{active_id}/confirm", Methods: []string{"POST"}, AutoOptions: true},
}

func newTestRouter(d dispatcherFunc) http.Handler {
	return NewRouter(d, testRoutes, RouterOptions{})
}

func TestRouterBuildsDispatchRequest(t *testing.T) {
	var got *dispatch.Request
	h := newTestRouter(func(_ context.Context, req *dispatch.Request) (any, error) {
		got = req
		return "ok", nil
	})

	rec := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "http://shop.example.com/orders/42/confirm", nil)
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got == nil {
		t.Fatal("dispatcher was not invoked")
	}
	if got.Endpoint != "sale.order.confirm" {
		t.Fatalf("endpoint = %q", got.Endpoint)
	}
	if got.Host != "shop.example.com" {
		t.Fatalf("host = %q", got.Host)
	}
	if got.ViewArgs["active_id"] != "42" {
		t.Fatalf("active_id = %v", got.ViewArgs["active_id"])
	}
	if !got.AutoOptions {
		t.Fatal("auto options flag lost")
	}
}

func TestRouterStringResultIsHTML(t *testing.T) {
	h := newTestRouter(func(context.Context, *dispatch.Request) (any, error) {
		return "<h1>hola</h1>", nil
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/orders", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Fatalf("content type = %q", ct)
	}
	if rec.Body.String() != "<h1>hola</h1>" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestRouterJSONResult(t *testing.T) {
	h := newTestRouter(func(context.Context, *dispatch.Request) (any, error) {
		return map[string]any{"count": 3}, nil
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/orders", nil))

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["count"] != float64(3) {
		t.Fatalf("count = %v", body["count"])
	}
}

func TestRouterResponsePassthrough(t *testing.T) {
	h := newTestRouter(func(context.Context, *dispatch.Request) (any, error) {
		hdr := http.Header{}
		hdr.Set("Location", "/orders/7")
		return &dispatch.Response{Status: http.StatusCreated, Header: hdr, Body: []byte("created")}, nil
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/orders", nil))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/orders/7" {
		t.Fatalf("location = %q", loc)
	}
}

func TestRouterNotFoundGoesThroughDispatch(t *testing.T) {
	var got *dispatch.Request
	h := newTestRouter(func(_ context.Context, req *dispatch.Request) (any, error) {
		got = req
		return nil, req.RoutingErr
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/no-such-path", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if got == nil || !errors.Is(got.RoutingErr, dispatch.ErrRouteNotFound) {
		t.Fatalf("routing error not propagated: %+v", got)
	}
}

func TestRouterMethodNotAllowed(t *testing.T) {
	h := newTestRouter(func(_ context.Context, req *dispatch.Request) (any, error) {
		return nil, req.RoutingErr
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("DELETE", "/orders", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestRouterErrorMapping(t *testing.T) {
	transient := errors.New("serialization conflict")
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"tenant", tenant.ErrNotFound, http.StatusNotFound},
		{"endpoint", dispatch.ErrEndpointNotFound, http.StatusNotFound},
		{"active_id", dispatch.ErrMissingActiveID, http.StatusBadRequest},
		{"transient exhausted", transient, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewRouter(dispatcherFunc(func(context.Context, *dispatch.Request) (any, error) {
				return nil, tc.err
			}), testRoutes, RouterOptions{
				Retryable: func(err error) bool { return errors.Is(err, transient) },
			})

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest("GET", "/orders", nil))

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestRouterInternalErrorHidesDetail(t *testing.T) {
	h := newTestRouter(func(context.Context, *dispatch.Request) (any, error) {
		return nil, errors.New("password for db is hunter2")
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/orders", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body apiError
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Message != http.StatusText(http.StatusInternalServerError) {
		t.Fatalf("internal detail leaked: %q", body.Message)
	}
}

func TestRouterRequestIDHeader(t *testing.T) {
	h := newTestRouter(func(context.Context, *dispatch.Request) (any, error) {
		return nil, nil
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/orders", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("X-Request-ID header missing")
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("nil result should be 204, got %d", rec.Code)
	}
}
