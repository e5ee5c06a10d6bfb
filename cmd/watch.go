package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/festifind/festifind/internal/events"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Log preference changes published by the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.Events.Enabled() {
				return errors.New("watch needs AMQP_URL or [events] url")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err := events.Consume(ctx, a.cfg.Events.URL, a.cfg.Events.Queue, func(ev events.PreferenceChanged) error {
				a.logger.Info("preference changed",
					zap.String("event_id", ev.ID),
					zap.String("festival_id", ev.FestivalID),
					zap.String("kind", ev.Kind),
					zap.Boolp("favorite", ev.Favorite),
					zap.Stringp("notes", ev.Notes),
					zap.Time("occurred_at", ev.OccurredAt))
				return nil
			}, a.logger)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
