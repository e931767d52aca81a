/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/catalogo-api/apiserver/internal/mq"
	"github.com/catalogo-api/apiserver/types"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// eventsCmd groups the catalog event tooling.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect catalog change events",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Subscribe to the events channel and log every event",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadEnvironment()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		events, err := mq.Open(ctx, cfg)
		if err != nil {
			return err
		}
		if events == nil {
			return errors.New("no mq backend configured, set MQ_BACKEND")
		}
		defer events.Close()

		logger.WithField("channel", events.Channel()).Info("tailing events")
		err = events.Consume(ctx,
			func(_ context.Context, event types.Event) error {
				logger.WithFields(logrus.Fields{
					"entity":      event.Entity,
					"action":      event.Action,
					"id":          event.ID,
					"occurred_at": event.OccurredAt,
				}).Info("event")
				return nil
			},
			func(msg mq.Message, err error) {
				logger.WithError(err).WithField("message_id", msg.ID).Warn("dropping undecodable event")
			},
		)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}
