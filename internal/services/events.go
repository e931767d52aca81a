package services

import (
	"context"
	"time"

	"github.com/catalogo-api/apiserver/types"
	"github.com/sirupsen/logrus"
)

// EventPublisher delivers catalog change events.
type EventPublisher interface {
	Publish(ctx context.Context, event types.Event) error
}

type eventNotifier struct {
	publisher EventPublisher
	logger    logrus.FieldLogger
}

func newEventNotifier(publisher EventPublisher, logger logrus.FieldLogger) eventNotifier {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return eventNotifier{publisher: publisher, logger: logger}
}

// notify publishes after a commit. Failures are only logged.
func (n eventNotifier) notify(ctx context.Context, entity, action string, id int, data any) {
	if n.publisher == nil {
		return
	}
	event := types.Event{
		Entity:     entity,
		Action:     action,
		ID:         id,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
	if err := n.publisher.Publish(ctx, event); err != nil {
		n.logger.WithError(err).WithFields(logrus.Fields{
			"entity": entity,
			"action": action,
			"id":     id,
		}).Warn("failed to publish catalog event")
	}
}
