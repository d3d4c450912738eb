package http

import (
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"qa-history/internal/contextutil"
	"qa-history/internal/handlers"
	"qa-history/internal/observability"
	"qa-history/internal/ratelimit"
)

// LoggerMiddleware adds a structured logger to the request context.
func LoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := contextutil.LoggerFromContext(r.Context()).With(
			"request_id", uuid.NewString(),
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)
		ctx := contextutil.WithLogger(r.Context(), logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// responseWriter records the status code written by a handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs one line per completed request.
// Successful health checks are not logged.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		if r.URL.Path == "/health" && rw.statusCode == http.StatusOK {
			return
		}

		ctx := r.Context()
		contextutil.LoggerFromContext(ctx).InfoContext(ctx, "request completed",
			"status", rw.statusCode,
			"duration", time.Since(start),
		)
	})
}

// CORS allows credentialed cross-origin requests from a single origin.
// Requests from any other origin get no CORS headers.
func CORS(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Origin") == origin {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")

				if r.Method == http.MethodOptions {
					methods := r.Header.Get("Access-Control-Request-Method")
					if methods == "" {
						methods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
					}
					headers := r.Header.Get("Access-Control-Request-Headers")
					if headers == "" {
						headers = "*"
					}
					h.Set("Access-Control-Allow-Methods", methods)
					h.Set("Access-Control-Allow-Headers", headers)
					h.Set("Access-Control-Max-Age", "3600")
				}
			}

			// Handle preflight requests
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimiter admits or rejects a request for a client identity.
type RateLimiter interface {
	Allow(clientID string) bool
	Policy() ratelimit.Policy
}

// RateLimit rejects requests from clients that exceed the limiter's policy
// on route with 429. Each route keeps its own quota per client. It runs
// before the handler, so rejected requests are never validated or processed.
func RateLimit(limiter RateLimiter, metrics *observability.Metrics, route string) func(http.Handler) http.Handler {
	warn := &rate.Sometimes{Interval: time.Minute}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := ClientID(r)
			if limiter.Allow(route + " " + clientID) {
				next.ServeHTTP(w, r)
				return
			}

			metrics.ObserveRateLimited(route)
			limitErr := &ratelimit.RateLimitError{ClientID: clientID, Policy: limiter.Policy()}

			ctx := r.Context()
			warn.Do(func() {
				contextutil.LoggerFromContext(ctx).WarnContext(ctx, "rate limit exceeded",
					"client_id", clientID,
					"route", route,
					"policy", limitErr.Policy.String(),
				)
			})

			handlers.WriteError(w, http.StatusTooManyRequests, limitErr.Error())
		})
	}
}

// ClientID identifies the caller by its remote address without the port.
// middleware.RealIP must run first for proxied deployments.
func ClientID(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
