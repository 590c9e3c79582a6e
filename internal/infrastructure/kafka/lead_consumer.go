package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ctateo21/homelead/internal/domain/event"
	pkgkafka "github.com/ctateo21/homelead/pkg/kafka"
)

// LeadForwarder is satisfied by usecase.ForwardLeadUseCase.
type LeadForwarder interface {
	Execute(ctx context.Context, lead event.SessionCompleted) error
}

// LeadHandler returns a pkg/kafka handler that decodes SessionCompleted
// messages from the leads topic and forwards them. Messages of any other
// type are skipped.
func LeadHandler(forwarder LeadForwarder) pkgkafka.Handler {
	return func(ctx context.Context, msg pkgkafka.Message) error {
		if t, ok := msg.Headers["event_type"]; ok && t != event.TypeSessionCompleted {
			return nil
		}

		var lead event.SessionCompleted
		if err := json.Unmarshal(msg.Value, &lead); err != nil {
			return fmt.Errorf("decode lead %s: %w", msg.Key, err)
		}
		if lead.EventType() != event.TypeSessionCompleted {
			return nil
		}
		return forwarder.Execute(ctx, lead)
	}
}
