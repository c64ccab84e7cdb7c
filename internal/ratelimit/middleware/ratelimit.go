package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"lodgeguard/internal/ratelimit/metrics"
	"lodgeguard/internal/ratelimit/models"
	dErrors "lodgeguard/pkg/domain-errors"
	"lodgeguard/pkg/platform/httputil"
	"lodgeguard/pkg/requestcontext"
)

// Limiter is a sliding window store (store.InMemoryStore, store.RedisStore).
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
}

// Middleware limits complaint submissions per authenticated student.
type Middleware struct {
	primary  Limiter
	fallback Limiter
	breaker  *CircuitBreaker
	limit    int
	window   time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
}

type Option func(*Middleware)

// WithDisabled turns the limiter into a pass-through (demo mode).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

// WithFallback serves checks from fallback while the primary store is failing.
func WithFallback(fallback Limiter) Option {
	return func(m *Middleware) {
		m.fallback = fallback
	}
}

func WithMetrics(metrics *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = metrics
	}
}

func New(primary Limiter, limit int, window time.Duration, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		primary: primary,
		breaker: newCircuitBreaker(5, 3),
		limit:   limit,
		window:  window,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("complaint rate limiting disabled")
	}
	return m
}

// PerStudent must run after auth.RequireActor. Limiter failures fail open.
func (m *Middleware) PerStudent() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			actor := requestcontext.Actor(ctx)

			result, degraded, err := m.check(ctx, models.ComplaintKey(actor.ID.String()))
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check complaint rate limit",
					"error", err,
					"student_id", actor.ID,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)
			if degraded {
				w.Header().Set("X-RateLimit-Status", "degraded")
			}

			if !result.Allowed {
				m.metrics.IncDenied()
				m.logger.WarnContext(ctx, "complaint rate limit exceeded",
					"student_id", actor.ID,
					"retry_after", result.RetryAfter,
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				httputil.WriteError(w, dErrors.New(dErrors.CodeTooManyRequests, "too many complaints submitted, try again later").
					WithDetail("retry_after", result.RetryAfter))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// check consults the primary store, switching to the fallback when the
// primary errors or the circuit is open. While open the primary is still
// probed so the circuit can close.
func (m *Middleware) check(ctx context.Context, key string) (*models.Result, bool, error) {
	if m.fallback == nil {
		result, err := m.primary.Allow(ctx, key, m.limit, m.window)
		if err != nil {
			m.metrics.IncErrors()
		}
		return result, false, err
	}

	wasOpen := m.breaker.IsOpen()
	result, err := m.primary.Allow(ctx, key, m.limit, m.window)
	if err != nil {
		m.metrics.IncErrors()
		if m.breaker.RecordFailure() && !wasOpen {
			m.logger.WarnContext(ctx, "rate limit store failing, circuit opened", "error", err)
		}
		return m.degraded(ctx, key)
	}
	if wasOpen {
		if m.breaker.RecordSuccess() {
			m.logger.InfoContext(ctx, "rate limit store recovered, circuit closed")
		}
		return m.degraded(ctx, key)
	}
	m.breaker.RecordSuccess()
	return result, false, nil
}

func (m *Middleware) degraded(ctx context.Context, key string) (*models.Result, bool, error) {
	m.metrics.IncDegraded()
	result, err := m.fallback.Allow(ctx, key, m.limit, m.window)
	return result, true, err
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.Result) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
