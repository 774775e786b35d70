package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jub0bs/cors"
	"golang.org/x/time/rate"

	"github.com/siportevent/siports/internal/apperrors"
	"github.com/siportevent/siports/internal/client"
	"github.com/siportevent/siports/internal/logger"
	"github.com/siportevent/siports/internal/response"
)

// CORS returns a CORS middleware using the provided pre-built middleware instance.
func CORS(middleware *cors.Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return middleware.Wrap(next)
	}
}

func SecurityHeaders(environment string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src 'self' https: data:; frame-ancestors 'none';")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			if environment == "prod" || environment == "staging" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestSizeLimit limits the size of request bodies (form posts)
func RequestSizeLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				logger.ContextRequestLogger(r.Context()).Warn("Request size limit exceeded",
					slog.String("component", "RequestSizeLimit"),
					slog.Int64("content_length", r.ContentLength),
					slog.Int64("max_bytes", maxBytes),
				)
				response.RespondWithError(w, r, http.StatusRequestEntityTooLarge,
					apperrors.ErrCodeRequestTooLarge, fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytes))
				return
			}

			// larger bodies without a Content-Length fail when the handler parses the form
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit limits requests per second across all clients (used on the login form to slow down password guessing).
// Rejected requests are passed to onLimit so html forms can answer with a page; a nil onLimit answers with a json error.
func RateLimit(requestsPerSecond int32, burst int32, onLimit http.Handler) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), int(burst))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				logger.ContextRequestLogger(r.Context()).Warn("Rate limit exceeded",
					slog.String("component", "RateLimit"),
					slog.String("path", r.URL.Path),
				)
				w.Header().Set("Retry-After", strconv.Itoa(1))
				if onLimit != nil {
					onLimit.ServeHTTP(w, r)
					return
				}
				response.RespondWithError(w, r, http.StatusTooManyRequests,
					apperrors.ErrCodeRateLimitExceeded, "Too many attempts, please wait a moment and try again")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ForwardRequestID copies the chi request id into the context read by the API client,
// so backend calls made while serving a request carry the same X-Request-ID
func ForwardRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestID := chimiddleware.GetReqID(r.Context()); requestID != "" {
			r = r.WithContext(client.ContextWithRequestID(r.Context(), requestID))
		}
		next.ServeHTTP(w, r)
	})
}
