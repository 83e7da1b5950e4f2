package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/quickdesk/ticket-engine/internal/config"
	"github.com/quickdesk/ticket-engine/internal/events"
)

func TestNotificationStampsEmailWorthyResponses(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	responses := newFakeResponseRepo()
	svc := NewNotificationService(dispatcher, responses, zap.NewNop(), config.NotificationConfig{EmailFrom: "support@example.com"})
	svc.RegisterHandlers()

	ctx := context.Background()
	publish := func(payload events.ResponseAddedPayload) {
		_ = dispatcher.Publish(ctx, events.Event{
			ID:        "evt-1",
			Type:      events.EventResponseAdded,
			TicketID:  "ticket-1",
			Timestamp: time.Now(),
			Payload:   payload,
		})
	}

	publish(events.ResponseAddedPayload{ResponseID: "response-1", NeedsEmail: true})
	if _, ok := responses.notified["response-1"]; !ok {
		t.Error("email-worthy responses must be stamped as notified")
	}

	publish(events.ResponseAddedPayload{ResponseID: "response-2", IsInternal: true, NeedsEmail: false})
	if _, ok := responses.notified["response-2"]; ok {
		t.Error("internal responses must not be stamped")
	}
}
