package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/information-sharing-networks/shortener-ui/internal/ui/client"
)

// Search looks up the key in the input field and opens the url it points to in a new window.
// A successful response without a url is treated as an invalid response and nothing is opened.
func (s *Service) Search(ctx context.Context, ui State) {
	key := strings.TrimSpace(ui.Input())
	if key == "" {
		ui.Alert(emptyKeyAlert)
		return
	}

	Guard(ctx, ui, s.logger, "search", func(ctx context.Context) error {
		record, err := s.api.Lookup(ctx, key)
		if err != nil {
			return err
		}

		if record.URL == "" {
			return client.NewClientInvalidResponseError(0, errors.New("lookup response has no url"), fmt.Sprintf("searching for %q", key))
		}

		s.logger.DebugContext(ctx, "url found",
			slog.String("key", key),
			slog.String("url", record.URL),
		)

		if err := ui.Open(record.URL); err != nil {
			return client.NewClientInternalError(err, fmt.Sprintf("opening %s", record.URL))
		}

		ui.SetStatus(fmt.Sprintf("%s opened in a new window", record.URL))
		ui.ClearInput()
		return nil
	})
}
