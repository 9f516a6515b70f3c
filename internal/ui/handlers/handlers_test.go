package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/information-sharing-networks/shortener-ui/internal/logger"
	"github.com/information-sharing-networks/shortener-ui/internal/ui/actions"
	"github.com/information-sharing-networks/shortener-ui/internal/ui/client"
	"github.com/information-sharing-networks/shortener-ui/internal/ui/middleware"
	"github.com/information-sharing-networks/shortener-ui/internal/ui/templates"
)

// newTestRouter wires the handlers to a fake shortener backend
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	backend := chi.NewRouter()
	backend.Post("/shorten", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"url":"https://example.com","shortCode":"abc123"}`)
	})
	backend.Get("/shorten/{key}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "key") != "abc123" {
			http.Error(w, "mongo: no documents in result", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"url":"https://example.com","shortCode":"abc123"}`)
	})
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &HandlerService{
		Actions:     actions.NewService(client.NewClient(srv.URL, "/shorten", 0), discard),
		Environment: "test",
	}

	router := chi.NewRouter()
	router.Use(logger.RequestLogging(discard))
	router.Get("/", h.HandleHome)
	router.Get("/static/app.js", h.HandleScript)
	router.Get("/health/live", h.HandleLiveness)
	router.Post("/ui-api/{action}", h.HandleAction)
	return router
}

func postAction(t *testing.T, router http.Handler, action, input string) *httptest.ResponseRecorder {
	t.Helper()

	form := url.Values{"url": {input}}
	req := httptest.NewRequest(http.MethodPost, "/ui-api/"+action, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func triggers(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	header := rr.Header().Get("HX-Trigger")
	if header == "" {
		return nil
	}
	events := map[string]any{}
	if err := json.Unmarshal([]byte(header), &events); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %q", header)
	}
	return events
}

func TestHandleAction(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name         string
		action       string
		input        string
		wantCode     int
		wantBody     string
		wantTriggers map[string]any
	}{
		{
			name:         "save",
			action:       "save",
			input:        "https://example.com",
			wantCode:     http.StatusOK,
			wantBody:     "Saved as abc123",
			wantTriggers: map[string]any{ClearEvent: true},
		},
		{
			name:         "save with empty input",
			action:       "save",
			input:        "",
			wantCode:     http.StatusNoContent,
			wantTriggers: map[string]any{AlertEvent: "Please enter a valid URL"},
		},
		{
			name:     "save with malformed url",
			action:   "save",
			input:    "not a url",
			wantCode: http.StatusOK,
			wantBody: "invalid URL &#34;not a url&#34;",
		},
		{
			name:     "search",
			action:   "search",
			input:    "abc123",
			wantCode: http.StatusOK,
			wantBody: "https://example.com opened in a new window",
			wantTriggers: map[string]any{
				ClearEvent: true,
				OpenEvent:  "https://example.com",
			},
		},
		{
			name:     "search for unknown key",
			action:   "search",
			input:    "zzz",
			wantCode: http.StatusOK,
			wantBody: "mongo: no documents in result",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postAction(t, router, tt.action, tt.input)

			if rr.Code != tt.wantCode {
				t.Fatalf("got status %d, want %d", rr.Code, tt.wantCode)
			}
			if tt.wantBody != "" && !strings.Contains(rr.Body.String(), tt.wantBody) {
				t.Errorf("body %q does not contain %q", rr.Body.String(), tt.wantBody)
			}
			if tt.wantCode == http.StatusOK && !strings.Contains(rr.Body.String(), `id="responseMsg"`) {
				t.Errorf("body is not the status display: %q", rr.Body.String())
			}

			got := triggers(t, rr)
			if len(got) != len(tt.wantTriggers) {
				t.Fatalf("got triggers %v, want %v", got, tt.wantTriggers)
			}
			for event, want := range tt.wantTriggers {
				if got[event] != want {
					t.Errorf("trigger %s = %v, want %v", event, got[event], want)
				}
			}
		})
	}
}

func TestHandleActionUnknown(t *testing.T) {
	router := newTestRouter(t)

	rr := postAction(t, router, "explode", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestStaticRoutes(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		path            string
		wantContentType string
		wantBody        string
	}{
		{"/", "text/html", `hx-post="/ui-api/save"`},
		{"/static/app.js", "application/javascript", "shortener:open"},
		{"/health/live", "text/plain", "OK"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
			}
			if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, tt.wantContentType) {
				t.Errorf("got content type %q, want %q", ct, tt.wantContentType)
			}
			if !strings.Contains(rr.Body.String(), tt.wantBody) {
				t.Errorf("body does not contain %q", tt.wantBody)
			}
		})
	}
}

// rejected /ui-api requests keep their error status and carry a status fragment, which the page script swaps in
func TestRejectedRequestsRenderStatus(t *testing.T) {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &HandlerService{
		Actions:     actions.NewService(client.NewClient("http://127.0.0.1:1", "/shorten", 0), discard),
		Environment: "test",
	}

	router := chi.NewRouter()
	router.Use(logger.RequestLogging(discard))
	router.Route("/ui-api", func(r chi.Router) {
		r.Use(middleware.RequestSizeLimit(64))
		r.Use(middleware.RateLimit(1, 2))
		r.Post("/{action}", h.HandleAction)
	})

	tests := []struct {
		name          string
		body          string
		contentLength int64
		wantCode      int
		wantMsg       string
	}{
		{
			name:          "oversized body",
			body:          "url=" + strings.Repeat("x", 128),
			contentLength: 132,
			wantCode:      http.StatusRequestEntityTooLarge,
			wantMsg:       "Request body exceeds maximum size of 64 bytes",
		},
		{
			name:          "oversized body without content length",
			body:          "url=" + strings.Repeat("x", 128),
			contentLength: -1,
			wantCode:      http.StatusRequestEntityTooLarge,
			wantMsg:       "Request too large",
		},
		{
			name:          "malformed form",
			body:          "url=%zz",
			contentLength: 7,
			wantCode:      http.StatusBadRequest,
			wantMsg:       "Invalid request",
		},
		{
			name:          "over the rate limit",
			body:          "url=",
			contentLength: 4,
			wantCode:      http.StatusTooManyRequests,
			wantMsg:       "Too many requests. Please try again in a few moments.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/ui-api/save", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			req.Header.Set("HX-Request", "true")
			req.ContentLength = tt.contentLength

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Fatalf("got status %d, want %d", rr.Code, tt.wantCode)
			}

			var want strings.Builder
			if err := templates.Status(tt.wantMsg).Render(req.Context(), &want); err != nil {
				t.Fatalf("render failed: %v", err)
			}
			if rr.Body.String() != want.String() {
				t.Errorf("body = %q, want %q", rr.Body.String(), want.String())
			}
		})
	}
}
