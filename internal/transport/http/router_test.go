package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lodgeguard/internal/jwttoken"
	"lodgeguard/internal/platform/metrics"
	id "lodgeguard/pkg/domain"
	"lodgeguard/pkg/platform/httputil"
	"lodgeguard/pkg/requestcontext"
	"lodgeguard/pkg/testutil"
)

type whoami struct{}

func (whoami) Register(r chi.Router) {
	r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"role":       string(requestcontext.Actor(ctx).Role),
			"request_id": requestcontext.RequestID(ctx),
			"has_time":   !requestcontext.Now(ctx).IsZero(),
		})
	})
	r.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
}

var routerMetrics = metrics.New()

func newTestRouter(health map[string]HealthCheck) (http.Handler, *jwttoken.Service) {
	tokens := jwttoken.New("router-test-key", "lodgeguard")
	return NewRouter(Deps{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:   routerMetrics,
		Validator: tokens,
		Health:    health,
		Handlers:  []Registrar{whoami{}},
	}), tokens
}

func TestRouterAuth(t *testing.T) {
	router, tokens := newTestRouter(nil)

	t.Run("missing token", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/whoami"))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	})

	t.Run("valid token reaches the handler", func(t *testing.T) {
		token, err := tokens.Issue(id.Actor{ID: uuid.New(), Role: id.RoleLandlord}, time.Minute)
		require.NoError(t, err)

		req := testutil.NewRequest(t, http.MethodGet, "/whoami")
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("X-Request-ID", "req-123")
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "role", "landlord")
		testutil.AssertJSONContains(t, rr, "request_id", "req-123")
		testutil.AssertJSONContains(t, rr, "has_time", true)
	})

	t.Run("token from another key", func(t *testing.T) {
		other := jwttoken.New("other-key", "lodgeguard")
		token, err := other.Issue(id.Actor{ID: uuid.New(), Role: id.RoleAdmin}, time.Minute)
		require.NoError(t, err)

		req := testutil.NewRequest(t, http.MethodGet, "/whoami")
		req.Header.Set("Authorization", "Bearer "+token)
		testutil.AssertStatus(t, testutil.DoRequest(router, req), http.StatusUnauthorized)
	})

	t.Run("panics become 500", func(t *testing.T) {
		token, err := tokens.Issue(id.Actor{ID: uuid.New(), Role: id.RoleAdmin}, time.Minute)
		require.NoError(t, err)

		req := testutil.NewRequest(t, http.MethodGet, "/boom")
		req.Header.Set("Authorization", "Bearer "+token)
		testutil.AssertStatus(t, testutil.DoRequest(router, req), http.StatusInternalServerError)
	})
}

func TestRouterProbes(t *testing.T) {
	t.Run("health ok", func(t *testing.T) {
		router, _ := newTestRouter(map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
		})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "status", "ok")
	})

	t.Run("health degraded", func(t *testing.T) {
		router, _ := newTestRouter(map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("refused") },
		})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		body := testutil.UnmarshalResponse[map[string]any](t, rr)
		assert.Equal(t, map[string]any{"postgres": "ok", "redis": "down"}, (*body)["dependencies"])
	})

	t.Run("metrics exposed without a token", func(t *testing.T) {
		router, _ := newTestRouter(nil)
		testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
		testutil.AssertStatusOK(t, rr)
		assert.Contains(t, rr.Body.String(), "lodgeguard_http_requests_total")
	})
}
