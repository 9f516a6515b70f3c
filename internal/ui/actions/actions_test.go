package actions

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/information-sharing-networks/shortener-ui/internal/ui/client"
)

// testBackend is a fake shortener API that counts the requests it receives
type testBackend struct {
	requests atomic.Int32
	router   chi.Router
}

func newTestBackend(t *testing.T, register func(r chi.Router)) (*Service, *testBackend) {
	t.Helper()

	b := &testBackend{router: chi.NewRouter()}
	b.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b.requests.Add(1)
			next.ServeHTTP(w, r)
		})
	})
	register(b.router)

	srv := httptest.NewServer(b.router)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(client.NewClient(srv.URL, "/shorten", 0), logger), b
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// shortenBackend accepts any url and answers with short code abc123
func shortenBackend(r chi.Router) {
	r.Post("/shorten", func(w http.ResponseWriter, r *http.Request) {
		var req client.ShortenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Error processing request", http.StatusBadRequest)
			return
		}
		body, _ := json.Marshal(client.ShortenRecord{URL: req.URL, ShortCode: "abc123"})
		writeJSON(w, http.StatusCreated, string(body))
	})
}

func TestSave(t *testing.T) {
	tests := []string{
		"https://example.com",
		"http://localhost:8080/some/path?q=1",
		"ftp://files.example.com/a.txt",
	}

	for _, rawURL := range tests {
		t.Run(rawURL, func(t *testing.T) {
			svc, backend := newTestBackend(t, shortenBackend)
			page := NewPage(rawURL)

			svc.Save(context.Background(), page)

			got := page.Snapshot()
			if !strings.Contains(got.Status, "abc123") {
				t.Errorf("status = %q, want it to contain the short code", got.Status)
			}
			if got.Status != "Saved as abc123" {
				t.Errorf("status = %q, want %q", got.Status, "Saved as abc123")
			}
			if !got.Cleared || got.Input != "" {
				t.Errorf("input was not cleared: %+v", got)
			}
			if n := backend.requests.Load(); n != 1 {
				t.Errorf("backend saw %d requests, want 1", n)
			}
		})
	}
}

func TestEmptyInputMakesNoRequest(t *testing.T) {
	svc, backend := newTestBackend(t, shortenBackend)

	tests := []struct {
		name      string
		action    Action
		input     string
		wantAlert string
	}{
		{"save", svc.Save, "", emptyURLAlert},
		{"save whitespace", svc.Save, "   ", emptyURLAlert},
		{"search", svc.Search, "", emptyKeyAlert},
		{"stats", svc.Stats, "", emptyKeyAlert},
		{"delete", svc.Delete, "", emptyKeyAlert},
		{"update", svc.Update, "abc", emptyKeyAndURLAlert},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewPage(tt.input)
			tt.action(context.Background(), page)

			got := page.Snapshot()
			if len(got.Alerts) != 1 || got.Alerts[0] != tt.wantAlert {
				t.Errorf("alerts = %q, want [%q]", got.Alerts, tt.wantAlert)
			}
			if got.StatusSet {
				t.Errorf("status was updated to %q", got.Status)
			}
		})
	}

	if n := backend.requests.Load(); n != 0 {
		t.Errorf("backend saw %d requests, want 0", n)
	}
}

func TestSaveMalformedURL(t *testing.T) {
	svc, backend := newTestBackend(t, shortenBackend)

	inputs := []string{"not a url", "example.com", "://missing-scheme"}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			page := NewPage(input)
			var first string

			// the same invalid input gives the same error every time
			for i := 0; i < 3; i++ {
				svc.Save(context.Background(), page)
				got := page.Snapshot()
				if !strings.HasPrefix(got.Status, "invalid URL") {
					t.Fatalf("status = %q, want a validation error", got.Status)
				}
				if i == 0 {
					first = got.Status
				} else if got.Status != first {
					t.Errorf("attempt %d status = %q, want %q", i+1, got.Status, first)
				}
				if got.Cleared || got.Input != input {
					t.Errorf("input was modified: %+v", got)
				}
			}
		})
	}

	if n := backend.requests.Load(); n != 0 {
		t.Errorf("backend saw %d requests, want 0", n)
	}
}

func TestSaveBackendError(t *testing.T) {
	svc, _ := newTestBackend(t, func(r chi.Router) {
		r.Post("/shorten", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "DB error: connection refused", http.StatusInternalServerError)
		})
	})
	page := NewPage("https://example.com")

	svc.Save(context.Background(), page)

	got := page.Snapshot()
	if got.Status != "DB error: connection refused" {
		t.Errorf("status = %q, want the backend error text", got.Status)
	}
	if got.Cleared || got.Input != "https://example.com" {
		t.Errorf("input was modified: %+v", got)
	}
}

func TestSearch(t *testing.T) {
	svc, backend := newTestBackend(t, func(r chi.Router) {
		r.Get("/shorten/{key}", func(w http.ResponseWriter, r *http.Request) {
			switch chi.URLParam(r, "key") {
			case "abc123":
				writeJSON(w, http.StatusOK, `{"url":"https://example.com","shortCode":"abc123"}`)
			case "nourl":
				writeJSON(w, http.StatusOK, `{"shortCode":"nourl"}`)
			default:
				http.Error(w, "mongo: no documents in result", http.StatusNotFound)
			}
		})
	})

	tests := []struct {
		name        string
		key         string
		wantStatus  string
		wantOpened  []string
		wantCleared bool
	}{
		{
			name:        "key with url",
			key:         "abc123",
			wantStatus:  "https://example.com opened in a new window",
			wantOpened:  []string{"https://example.com"},
			wantCleared: true,
		},
		{
			name:       "response without url",
			key:        "nourl",
			wantStatus: client.InvalidResponseMessage,
		},
		{
			name:       "unknown key",
			key:        "zzz",
			wantStatus: "mongo: no documents in result",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewPage(tt.key)
			svc.Search(context.Background(), page)

			got := page.Snapshot()
			if got.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", got.Status, tt.wantStatus)
			}
			if len(got.Opened) != len(tt.wantOpened) {
				t.Fatalf("opened = %q, want %q", got.Opened, tt.wantOpened)
			}
			for i := range tt.wantOpened {
				if got.Opened[i] != tt.wantOpened[i] {
					t.Errorf("opened[%d] = %q, want %q", i, got.Opened[i], tt.wantOpened[i])
				}
			}
			if got.Cleared != tt.wantCleared {
				t.Errorf("cleared = %v, want %v", got.Cleared, tt.wantCleared)
			}
		})
	}

	if n := backend.requests.Load(); n != int32(len(tests)) {
		t.Errorf("backend saw %d requests, want %d", n, len(tests))
	}
}

// failingOpener is a State whose navigation always fails
type failingOpener struct {
	*Page
}

func (f failingOpener) Open(url string) error {
	return errors.New("no browser available")
}

func TestSearchOpenFailure(t *testing.T) {
	svc, _ := newTestBackend(t, func(r chi.Router) {
		r.Get("/shorten/{key}", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"url":"https://example.com"}`)
		})
	})
	page := NewPage("abc")

	svc.Search(context.Background(), failingOpener{page})

	got := page.Snapshot()
	if got.Cleared {
		t.Error("input cleared although navigation failed")
	}
	if got.Status == "" || strings.Contains(got.Status, "opened") {
		t.Errorf("status = %q, want an error", got.Status)
	}
}

func TestList(t *testing.T) {
	svc, _ := newTestBackend(t, func(r chi.Router) {
		r.Get("/shorten/list", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `[{"shortCode":"abc","url":"http://x"},{"shortCode":"def","url":"http://y"}]`)
		})
	})
	page := NewPage("left alone")

	svc.List(context.Background(), page)

	got := page.Snapshot()
	want := "List:\nabc: http://x\ndef: http://y\n"
	if got.Status != want {
		t.Errorf("status = %q, want %q", got.Status, want)
	}
	if got.Cleared {
		t.Error("list cleared the input")
	}
}

func TestListBackendError(t *testing.T) {
	svc, _ := newTestBackend(t, func(r chi.Router) {
		r.Get("/shorten/list", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "DB error: timeout", http.StatusInternalServerError)
		})
	})
	page := NewPage("")

	svc.List(context.Background(), page)

	if got := page.Snapshot().Status; got != "DB error: timeout" {
		t.Errorf("status = %q, want the backend error text", got)
	}
}

func TestFormatListEmpty(t *testing.T) {
	if got := FormatList(nil); got != "List:\n" {
		t.Errorf("FormatList(nil) = %q", got)
	}
}

func TestStatsUpdateDelete(t *testing.T) {
	svc, _ := newTestBackend(t, func(r chi.Router) {
		r.Get("/shorten/{key}/stats", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"shortCode":"abc","url":"http://x","accessCount":3}`)
		})
		r.Put("/shorten/{key}", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"shortCode":"abc","url":"http://y"}`)
		})
		r.Delete("/shorten/{key}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})

	tests := []struct {
		name        string
		action      Action
		input       string
		wantStatus  string
		wantCleared bool
	}{
		{"stats", svc.Stats, "abc", "abc: http://x (accessed 3 times)", false},
		{"update", svc.Update, "abc http://y", "Updated abc", true},
		{"update with bad url", svc.Update, "abc not-a-url", `invalid URL "not-a-url"`, false},
		{"delete", svc.Delete, "abc", "Deleted abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewPage(tt.input)
			tt.action(context.Background(), page)

			got := page.Snapshot()
			if got.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", got.Status, tt.wantStatus)
			}
			if got.Cleared != tt.wantCleared {
				t.Errorf("cleared = %v, want %v", got.Cleared, tt.wantCleared)
			}
		})
	}
}

func TestGuardRecoversPanic(t *testing.T) {
	page := NewPage("")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	Guard(context.Background(), page, logger, "boom", func(ctx context.Context) error {
		panic("unexpected")
	})

	if got := page.Snapshot().Status; got != "An error occurred. Please try again later." {
		t.Errorf("status = %q", got)
	}
}

func TestGuardPlainError(t *testing.T) {
	page := NewPage("")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	Guard(context.Background(), page, logger, "plain", func(ctx context.Context) error {
		return errors.New("something broke")
	})

	if got := page.Snapshot().Status; got != "something broke" {
		t.Errorf("status = %q", got)
	}
}

func TestClickLastToResolveWins(t *testing.T) {
	release := make(chan struct{})
	svc, _ := newTestBackend(t, func(r chi.Router) {
		r.Get("/shorten/{key}", func(w http.ResponseWriter, r *http.Request) {
			key := chi.URLParam(r, "key")
			if key == "slow" {
				<-release
			}
			writeJSON(w, http.StatusOK, `{"url":"https://`+key+`.example"}`)
		})
	})

	slowPage := NewPage("slow")
	fastPage := NewPage("fast")

	// both clicks write to the same status display
	status := &sharedStatus{}
	slowDone := Click(context.Background(), status.with(slowPage), svc.Search)
	fastDone := Click(context.Background(), status.with(fastPage), svc.Search)

	select {
	case <-fastDone:
	case <-time.After(5 * time.Second):
		t.Fatal("fast click did not finish")
	}
	close(release)
	select {
	case <-slowDone:
	case <-time.After(5 * time.Second):
		t.Fatal("slow click did not finish")
	}

	if got := status.get(); got != "https://slow.example opened in a new window" {
		t.Errorf("status = %q, want the slow response", got)
	}
}

// sharedStatus routes SetStatus of several pages to one display
type sharedStatus struct {
	page Page
}

func (s *sharedStatus) with(p *Page) State {
	return sharedStatusState{Page: p, display: &s.page}
}

func (s *sharedStatus) get() string {
	return s.page.Snapshot().Status
}

type sharedStatusState struct {
	*Page
	display *Page
}

func (s sharedStatusState) SetStatus(msg string) {
	s.display.SetStatus(msg)
}

func TestDeleteWithTextBody(t *testing.T) {
	svc, _ := newTestBackend(t, func(r chi.Router) {
		r.Delete("/shorten/{key}", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = io.WriteString(w, "Deleted abc")
		})
	})
	page := NewPage("abc")

	svc.Delete(context.Background(), page)

	got := page.Snapshot()
	if got.Status != "Deleted abc" {
		t.Errorf("status = %q, want %q", got.Status, "Deleted abc")
	}
	if !got.Cleared {
		t.Error("input was not cleared")
	}
}
