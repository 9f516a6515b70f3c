package actions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Save registers the url in the input field and reports the short code.
// The input is cleared only when the backend accepted the url.
func (s *Service) Save(ctx context.Context, ui State) {
	rawURL := strings.TrimSpace(ui.Input())
	if rawURL == "" {
		ui.Alert(emptyURLAlert)
		return
	}

	Guard(ctx, ui, s.logger, "save", func(ctx context.Context) error {
		if err := s.validateURL(rawURL); err != nil {
			return err
		}

		record, err := s.api.Shorten(ctx, rawURL)
		if err != nil {
			return err
		}

		s.logger.DebugContext(ctx, "url saved",
			slog.String("short_code", record.ShortCode),
			slog.String("url", record.URL),
		)

		ui.SetStatus(fmt.Sprintf("Saved as %s", record.ShortCode))
		ui.ClearInput()
		return nil
	})
}
