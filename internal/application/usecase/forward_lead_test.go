package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctateo21/homelead/internal/application/usecase"
	"github.com/ctateo21/homelead/internal/domain/event"
	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/pkg/observability"
)

func TestForwardLead_Execute(t *testing.T) {
	lead := func(serviceType string) event.SessionCompleted {
		return event.NewSessionCompleted("s-1", serviceType, event.Contact{Email: "ana@example.com"}, nil, nil, time.Now().UTC())
	}
	setup := func() (*usecase.ForwardLeadUseCase, map[string]*mockLeadSink) {
		sinks := map[string]*mockLeadSink{
			"arive":        {name: "arive"},
			"netcalcsheet": {name: "netcalcsheet"},
			"canopy":       {name: "canopy"},
			"log":          {name: "log"},
		}
		uc := usecase.NewForwardLeadUseCase(map[string]port.LeadSink{
			usecase.SinkKeyMortgage: sinks["arive"],
			"real-estate":           sinks["netcalcsheet"],
			"insurance":             sinks["canopy"],
		}, sinks["log"], observability.NopMetrics(), observability.NopLogger())
		return uc, sinks
	}

	tests := []struct {
		serviceType string
		sink        string
	}{
		{"mortgage-purchase", "arive"},
		{"mortgage-refinance", "arive"},
		{"mortgage-cash", "arive"},
		{"real-estate", "netcalcsheet"},
		{"insurance", "canopy"},
		{"construction", "log"},
		{"home-services", "log"},
		{"not-a-track", "log"},
	}
	for _, tt := range tests {
		t.Run(tt.serviceType, func(t *testing.T) {
			uc, sinks := setup()

			require.NoError(t, uc.Execute(context.Background(), lead(tt.serviceType)))

			require.Len(t, sinks[tt.sink].forwarded, 1)
			assert.Equal(t, "s-1", sinks[tt.sink].forwarded[0].AggregateID())
		})
	}

	t.Run("sink failures are returned", func(t *testing.T) {
		uc, sinks := setup()
		sinks["canopy"].forwardFunc = func(_ context.Context, _ event.SessionCompleted) error {
			return errUnavailable("canopy")
		}

		err := uc.Execute(context.Background(), lead("insurance"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "to canopy")
	})
}
