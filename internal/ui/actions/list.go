package actions

import (
	"context"
	"log/slog"
	"strings"

	"github.com/information-sharing-networks/shortener-ui/internal/ui/client"
)

// List shows every record known to the backend, one "<shortCode>: <url>" line each
func (s *Service) List(ctx context.Context, ui State) {
	Guard(ctx, ui, s.logger, "list", func(ctx context.Context) error {
		records, err := s.api.List(ctx)
		if err != nil {
			return err
		}

		s.logger.DebugContext(ctx, "list received", slog.Int("records", len(records)))

		ui.SetStatus(FormatList(records))
		return nil
	})
}

// FormatList renders records in backend order with a trailing newline after each line
func FormatList(records []client.ShortenRecord) string {
	var b strings.Builder
	b.WriteString("List:\n")
	for _, r := range records {
		b.WriteString(r.ShortCode)
		b.WriteString(": ")
		b.WriteString(r.URL)
		b.WriteString("\n")
	}
	return b.String()
}
