package actions

import (
	"context"
	"fmt"
	"strings"
)

// Stats shows how often the key in the input field has been followed. The input is left as it is.
func (s *Service) Stats(ctx context.Context, ui State) {
	key := strings.TrimSpace(ui.Input())
	if key == "" {
		ui.Alert(emptyKeyAlert)
		return
	}

	Guard(ctx, ui, s.logger, "stats", func(ctx context.Context) error {
		record, err := s.api.Stats(ctx, key)
		if err != nil {
			return err
		}

		count := 0
		if record.AccessCount != nil {
			count = *record.AccessCount
		}

		ui.SetStatus(fmt.Sprintf("%s: %s (accessed %d times)", record.ShortCode, record.URL, count))
		return nil
	})
}

// Update expects "<key> <url>" in the input field and points the key at the new url
func (s *Service) Update(ctx context.Context, ui State) {
	fields := strings.Fields(ui.Input())
	if len(fields) != 2 {
		ui.Alert(emptyKeyAndURLAlert)
		return
	}
	key, rawURL := fields[0], fields[1]

	Guard(ctx, ui, s.logger, "update", func(ctx context.Context) error {
		if err := s.validateURL(rawURL); err != nil {
			return err
		}

		record, err := s.api.Update(ctx, key, rawURL)
		if err != nil {
			return err
		}

		ui.SetStatus(fmt.Sprintf("Updated %s", record.ShortCode))
		ui.ClearInput()
		return nil
	})
}

// Delete removes the key in the input field
func (s *Service) Delete(ctx context.Context, ui State) {
	key := strings.TrimSpace(ui.Input())
	if key == "" {
		ui.Alert(emptyKeyAlert)
		return
	}

	Guard(ctx, ui, s.logger, "delete", func(ctx context.Context) error {
		if err := s.api.Delete(ctx, key); err != nil {
			return err
		}

		ui.SetStatus(fmt.Sprintf("Deleted %s", key))
		ui.ClearInput()
		return nil
	})
}
