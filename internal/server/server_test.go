package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
)

type mockExchanger struct {
	code string
	err  error
}

func (m *mockExchanger) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	m.code = code
	if m.err != nil {
		return nil, m.err
	}
	return &oauth2.Token{AccessToken: "access-" + code}, nil
}

func TestOAuthHandler(t *testing.T) {
	t.Run("exchanges code", func(t *testing.T) {
		ex := &mockExchanger{}
		h := NewOAuthHandler(ex, "state-1")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=state-1&code=abc", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := <-h.Result()
		if result.Error() != nil || result.Token.AccessToken != "access-abc" {
			t.Errorf("unexpected result %+v", result)
		}
		if _, ok := <-h.Result(); ok {
			t.Error("expected channel closed after one result")
		}
	})

	tests := []struct {
		name   string
		query  string
		err    error
		status int
	}{
		{"invalid state", "/callback?state=other&code=abc", nil, http.StatusBadRequest},
		{"denied", "/callback?state=state-1&error=access_denied", nil, http.StatusBadRequest},
		{"exchange failure", "/callback?state=state-1&code=abc", errors.New("bad code"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewOAuthHandler(&mockExchanger{err: tt.err}, "state-1")

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.query, nil))

			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
			result := <-h.Result()
			if result.Error() == nil || result.Token != nil {
				t.Errorf("expected error result, got %+v", result)
			}
		})
	}

	t.Run("second callback rejected", func(t *testing.T) {
		h := NewOAuthHandler(&mockExchanger{}, "state-1")
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=state-1&code=abc", nil))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=state-1&code=def", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for replay, got %d", rec.Code)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)

	router := NewBasicRouter()
	router.Use(Logging(logger))

	var order []string
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "inner")
			next.ServeHTTP(w, r)
		})
	})

	router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	router.Handler(NewOAuthHandler(&mockExchanger{}, "s"))
	router.Redirect("/{$}", "https://accounts.example.com/authorize?state=s")

	t.Run("method filtering", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("middleware and logging", func(t *testing.T) {
		buf.Reset()
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

		if rec.Code != http.StatusTeapot {
			t.Errorf("expected 418, got %d", rec.Code)
		}
		if len(order) == 0 {
			t.Error("expected middleware to run")
		}
		if !strings.Contains(buf.String(), "/ping") || !strings.Contains(buf.String(), "418") {
			t.Errorf("expected request log, got %q", buf.String())
		}
	})

	t.Run("handler routes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&code=x", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		if strings.Contains(buf.String(), "code=x") {
			t.Error("query string should not be logged")
		}
	})

	t.Run("root redirects to the authorize URL", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "https://accounts.example.com/authorize?state=s" {
			t.Errorf("unexpected Location %q", loc)
		}
	})

	t.Run("unknown path", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/elsewhere", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}
