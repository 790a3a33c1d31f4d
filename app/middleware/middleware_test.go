package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/app/auth"
	"yatube/app/logging"
	"yatube/app/models"
)

func newLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(logging.NewHandler(&buf, slog.LevelDebug)), &buf
}

func TestLogger(t *testing.T) {
	logger, buf := newLogger()

	var seen string
	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("generates request id", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest("GET", "/test?page=2", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		id := w.Header().Get(RequestIDHeader)
		require.NotEmpty(t, id)
		assert.Equal(t, id, seen)
		assert.Contains(t, buf.String(), "GET /test?page=2")
		assert.Contains(t, buf.String(), "status=418")
		assert.Contains(t, buf.String(), id)
	})

	t.Run("keeps incoming request id", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "abc-123", seen)
		assert.Contains(t, buf.String(), "abc-123")
	})
}

func TestLoggerDefaultStatus(t *testing.T) {
	logger, buf := newLogger()
	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	assert.Contains(t, buf.String(), "status=200")
	assert.Contains(t, buf.String(), "bytes=5")
}

func TestRecoverer(t *testing.T) {
	logger, buf := newLogger()
	handler := Recoverer(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal Server Error\n", w.Body.String())
	assert.Contains(t, buf.String(), "test panic")
}

func TestVaryAccept(t *testing.T) {
	handler := VaryAccept(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, "Accept", w.Header().Get("Vary"))
}

type stubAuthenticator struct {
	author *models.Author
	err    error
}

func (s stubAuthenticator) Authenticate(*http.Request) (*models.Author, error) {
	return s.author, s.err
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name string
		auth stubAuthenticator
		want string
	}{
		{name: "anonymous", auth: stubAuthenticator{}, want: ""},
		{name: "valid", auth: stubAuthenticator{author: &models.Author{Username: "leo"}}, want: "leo"},
		{name: "invalid credentials", auth: stubAuthenticator{err: auth.ErrInvalidCredentials}, want: ""},
		{name: "lookup error", auth: stubAuthenticator{err: assert.AnError}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := newLogger()
			var got string
			handler := Authenticate(tt.auth, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = auth.Username(r.Context())
			}))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequireLogin(t *testing.T) {
	handler := RequireLogin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	anonymous := []struct {
		name   string
		target string
		want   string
	}{
		{"path", "/posts/3/edit/", "/auth/login/?next=%2Fposts%2F3%2Fedit%2F"},
		{"query kept", "/follow/?page=3", "/auth/login/?next=%2Ffollow%2F%3Fpage%3D3"},
	}
	for _, tt := range anonymous {
		t.Run("anonymous is redirected/"+tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest("GET", tt.target, nil))

			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, tt.want, w.Header().Get("Location"))
		})
	}

	t.Run("author passes", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/create/", nil)
		req = req.WithContext(auth.WithAuthor(req.Context(), &models.Author{Username: "leo"}))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
