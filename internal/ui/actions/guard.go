package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/information-sharing-networks/shortener-ui/internal/ui/client"
)

// Guard runs fn and reports any failure: the error is logged and its user message is written to the status display.
// Guard never returns the error and recovers panics, so one failed action cannot break the ones that follow.
func Guard(ctx context.Context, ui State, logger *slog.Logger, op string, fn func(ctx context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			report(ctx, ui, logger, op, client.NewClientInternalError(fmt.Errorf("panic: %v", r), op))
		}
	}()

	if err := fn(ctx); err != nil {
		report(ctx, ui, logger, op, err)
	}
}

func report(ctx context.Context, ui State, logger *slog.Logger, op string, err error) {
	attrs := []any{
		slog.String("action", op),
		slog.String("error", err.Error()),
	}

	var ce *client.ClientError
	if errors.As(err, &ce) {
		attrs = append(attrs, slog.String("kind", string(ce.Kind)))
		if ce.StatusCode != 0 {
			attrs = append(attrs, slog.Int("status", ce.StatusCode))
		}
	}

	logger.ErrorContext(ctx, fmt.Sprintf("%s failed", op), attrs...)
	ui.SetStatus(client.UserMessage(err))
}
