package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ctateo21/homelead/internal/domain/event"
	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
	"github.com/ctateo21/homelead/pkg/observability"
)

// SinkKeyMortgage routes every mortgage track to one sink.
const SinkKeyMortgage = "mortgage"

// ForwardLeadUseCase delivers a completed session to the CRM that serves its
// track.
type ForwardLeadUseCase struct {
	sinks    map[string]port.LeadSink
	fallback port.LeadSink
	metrics  *observability.WizardMetrics
	logger   *slog.Logger
}

// NewForwardLeadUseCase wires dependencies. sinks is keyed by service type,
// with SinkKeyMortgage standing for all mortgage tracks; leads for any other
// track go to fallback.
func NewForwardLeadUseCase(
	sinks map[string]port.LeadSink,
	fallback port.LeadSink,
	metrics *observability.WizardMetrics,
	logger *slog.Logger,
) *ForwardLeadUseCase {
	return &ForwardLeadUseCase{sinks: sinks, fallback: fallback, metrics: metrics, logger: logger}
}

// Execute forwards the lead.
func (uc *ForwardLeadUseCase) Execute(ctx context.Context, lead event.SessionCompleted) error {
	sink := uc.sinkFor(lead.ServiceType)

	if err := sink.Forward(ctx, lead); err != nil {
		return fmt.Errorf("forward lead %s to %s: %w", lead.AggregateID(), sink.Name(), err)
	}

	uc.metrics.LeadForwarded(ctx, sink.Name())
	uc.logger.InfoContext(ctx, "lead forwarded",
		"session_id", lead.AggregateID(),
		"service_type", lead.ServiceType,
		"sink", sink.Name(),
	)
	return nil
}

func (uc *ForwardLeadUseCase) sinkFor(serviceType string) port.LeadSink {
	st, err := valueobject.NewServiceType(serviceType)
	if err != nil {
		return uc.fallback
	}
	key := st.String()
	if st.IsMortgage() {
		key = SinkKeyMortgage
	}
	if sink, ok := uc.sinks[key]; ok {
		return sink
	}
	return uc.fallback
}
