package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/information-sharing-networks/shortener-ui/internal/logger"
	"github.com/information-sharing-networks/shortener-ui/internal/ui/actions"
	"github.com/information-sharing-networks/shortener-ui/internal/ui/templates"
)

// events sent to the page script in the HX-Trigger header
const (
	AlertEvent = "shortener:alert"
	ClearEvent = "shortener:clear"
	OpenEvent  = "shortener:open"
)

type HandlerService struct {
	Actions     *actions.Service
	Environment string
}

// HandleHome renders the shortener page
func (h *HandlerService) HandleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	component := templates.HomePage()
	if err := component.Render(r.Context(), w); err != nil {
		reqLogger := logger.ContextRequestLogger(r.Context())
		reqLogger.Error("Failed to render home page", slog.String("error", err.Error()))
	}
}

// HandleScript serves the script that applies the HX-Trigger events
func (h *HandlerService) HandleScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	if h.Environment == "dev" {
		w.Header().Set("Cache-Control", "no-cache")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=3600")
	}
	_, _ = w.Write([]byte(templates.AppScript))
}

func (h *HandlerService) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// HandleAction runs the action named in the url against the value of the url form field.
//
// The response is the new status display. Alerts, clearing the input and opening a window are sent as HX-Trigger events.
// When the action did not write a status (e.g. it only raised an alert) the response is 204 so the status display is left alone.
func (h *HandlerService) HandleAction(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "action")

	action, ok := h.Actions.ByName(name)
	if !ok {
		http.NotFound(w, r)
		return
	}

	_ = logger.ContextWithLogAttrs(r.Context(), slog.String("action", name))

	if err := r.ParseForm(); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.renderStatus(w, r, http.StatusRequestEntityTooLarge, "Request too large")
			return
		}
		h.renderStatus(w, r, http.StatusBadRequest, "Invalid request")
		return
	}

	page := actions.NewPage(r.PostFormValue("url"))
	action(r.Context(), page)

	result := page.Snapshot()

	if err := setTriggers(w, result); err != nil {
		reqLogger := logger.ContextRequestLogger(r.Context())
		reqLogger.Error("Failed to encode HX-Trigger", slog.String("error", err.Error()))
	}

	if !result.StatusSet {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.renderStatus(w, r, http.StatusOK, result.Status)
}

func (h *HandlerService) renderStatus(w http.ResponseWriter, r *http.Request, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.Status(msg).Render(r.Context(), w); err != nil {
		reqLogger := logger.ContextRequestLogger(r.Context())
		reqLogger.Error("Failed to render status", slog.String("error", err.Error()))
	}
}

// setTriggers adds the HX-Trigger header for the browser side effects recorded on the page
func setTriggers(w http.ResponseWriter, result actions.PageSnapshot) error {
	events := map[string]any{}

	if len(result.Alerts) > 0 {
		events[AlertEvent] = strings.Join(result.Alerts, "\n")
	}
	if result.Cleared {
		events[ClearEvent] = true
	}
	if len(result.Opened) > 0 {
		events[OpenEvent] = result.Opened[len(result.Opened)-1]
	}

	if len(events) == 0 {
		return nil
	}

	data, err := json.Marshal(events)
	if err != nil {
		return err
	}
	w.Header().Set("HX-Trigger", string(data))
	return nil
}
