// Package middleware wraps the router with request logging, panic recovery
// and authentication.
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"yatube/app/auth"
	"yatube/app/logging"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// LoginPath is where RequireLogin sends anonymous clients.
const LoginPath = "/auth/login/"

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// Logger tags each request with an id and logs it once it completes.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)
			ctx := logging.WithRequestID(r.Context(), id)

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(ctx))
			if rec.status == 0 {
				rec.status = http.StatusOK
			}

			logger.InfoContext(ctx, r.Method+" "+r.URL.RequestURI(),
				"status", rec.status,
				"bytes", rec.bytes,
				"took", time.Since(start),
			)
		})
	}
}

// Recoverer turns a panic into a 500 and an error log line.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.ErrorContext(r.Context(), "panic", "path", r.URL.Path, "err", err)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// VaryAccept marks responses as depending on the Accept header, since every
// page is served as HTML or JSON.
func VaryAccept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept")
		next.ServeHTTP(w, r)
	})
}

// Authenticate resolves the requesting author, if any, into the context.
// Wrong credentials leave the request anonymous.
func Authenticate(a auth.Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			author, err := a.Authenticate(r)
			switch {
			case errors.Is(err, auth.ErrInvalidCredentials):
				logger.InfoContext(r.Context(), "rejected credentials", "path", r.URL.Path)
			case err != nil:
				logger.ErrorContext(r.Context(), "authentication failed", "err", err)
			case author != nil:
				r = r.WithContext(auth.WithAuthor(r.Context(), author))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireLogin redirects anonymous requests to the login page, which sends
// them back to the same path and query once they have signed in.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.FromContext(r.Context()) == nil {
			http.Redirect(w, r, LoginURL(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoginURL is the login page address that returns to next.
func LoginURL(next string) string {
	return LoginPath + "?next=" + url.QueryEscape(next)
}
