package main

import (
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ctateo21/homelead/internal/application/usecase"
	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
	"github.com/ctateo21/homelead/internal/infrastructure/adapter"
	"github.com/ctateo21/homelead/internal/infrastructure/kafka"
	pkgkafka "github.com/ctateo21/homelead/pkg/kafka"
	"github.com/ctateo21/homelead/pkg/observability"
)

var forwardCmd = &cobra.Command{
	Use:   "forward",
	Short: "Consume completed sessions and forward them to the CRMs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := observability.InitLogger(cfg.Logging())

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		httpClient := &http.Client{Timeout: 15 * time.Second}
		sinks := map[string]port.LeadSink{
			usecase.SinkKeyMortgage:                    adapter.NewAriveSink(cfg.Sinks.AriveURL, httpClient, logger),
			valueobject.ServiceTypeRealEstate.String(): adapter.NewNetCalcSheetSink(cfg.Sinks.NetCalcSheetURL, httpClient, logger),
			valueobject.ServiceTypeInsurance.String():  adapter.NewCanopySink(cfg.Sinks.CanopyURL, httpClient, logger),
		}
		forwarder := usecase.NewForwardLeadUseCase(sinks, adapter.NewLogSink(logger), observability.NopMetrics(), logger)

		consumer := pkgkafka.NewConsumer(cfg.KafkaClient(), cfg.Kafka.LeadsTopic, kafka.LeadHandler(forwarder), logger)
		defer func() {
			if err := consumer.Close(); err != nil {
				logger.Error("kafka consumer close", "error", err)
			}
		}()

		logger.Info("lead forwarder started", "topic", cfg.Kafka.LeadsTopic)
		return consumer.Start(ctx)
	},
}
