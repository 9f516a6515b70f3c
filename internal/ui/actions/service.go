// Package actions implements the user actions of the shortener ui.
//
// Each action reads the input from a State, validates it locally where it can, makes one call to the backend and writes the outcome to the status display.
// Failures of any kind go through Guard so they end up in the status display and the log, never with the caller.
package actions

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/information-sharing-networks/shortener-ui/internal/ui/client"
)

const (
	emptyURLAlert       = "Please enter a valid URL"
	emptyKeyAlert       = "Please enter a valid key"
	emptyKeyAndURLAlert = "Please enter a key and a URL"
)

// Shortener is the backend API used by the actions (implemented by client.Client)
type Shortener interface {
	Shorten(ctx context.Context, rawURL string) (*client.ShortenRecord, error)
	Lookup(ctx context.Context, key string) (*client.ShortenRecord, error)
	List(ctx context.Context) ([]client.ShortenRecord, error)
	Stats(ctx context.Context, key string) (*client.ShortenRecord, error)
	Update(ctx context.Context, key, rawURL string) (*client.ShortenRecord, error)
	Delete(ctx context.Context, key string) error
}

// Action is the signature shared by all the actions so the surfaces can treat them alike
type Action func(ctx context.Context, ui State)

type Service struct {
	api      Shortener
	logger   *slog.Logger
	validate *validator.Validate
}

func NewService(api Shortener, logger *slog.Logger) *Service {
	return &Service{
		api:      api,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ByName returns the action registered under name (save, search, list, stats, update, delete)
func (s *Service) ByName(name string) (Action, bool) {
	actions := map[string]Action{
		"save":   s.Save,
		"search": s.Search,
		"list":   s.List,
		"stats":  s.Stats,
		"update": s.Update,
		"delete": s.Delete,
	}
	action, ok := actions[name]
	return action, ok
}

// validateURL rejects anything that is not an absolute url. No request is made for rejected input.
func (s *Service) validateURL(rawURL string) error {
	if err := s.validate.Var(rawURL, "required,url"); err != nil {
		return client.NewClientValidationError(fmt.Sprintf("invalid URL %q", rawURL), err)
	}
	return nil
}

// Click runs action on its own goroutine, the way a button click schedules a handler, and closes the returned channel when it is done.
//
// Overlapping clicks are not cancelled when a newer one starts: each runs to completion and the last to finish wins the status display.
func Click(ctx context.Context, ui State, action Action) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		action(ctx, ui)
	}()
	return done
}
