package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ctateo21/homelead/internal/application/dto"
	"github.com/ctateo21/homelead/internal/application/usecase"
	"github.com/ctateo21/homelead/internal/domain/service"
	"github.com/ctateo21/homelead/pkg/observability"
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Compute a mortgage profile from a JSON answers file",
	Long: `Reads a JSON object mapping step names to their answers, for example
{"service-selection": {"serviceType": "mortgage"}, "loan-purpose": {"purpose": "purchase"}},
and prints the computed loan profile.`,
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringP("answers", "a", "", "path to the answers JSON file (required)")
	quoteCmd.Flags().Bool("schedule", false, "include the amortization schedule")
	_ = quoteCmd.MarkFlagRequired("answers")
}

func runQuote(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("answers")
	schedule, _ := cmd.Flags().GetBool("schedule")

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read answers: %w", err)
	}
	var answers map[string]json.RawMessage
	if err := json.Unmarshal(raw, &answers); err != nil {
		return fmt.Errorf("parse answers %s: %w", path, err)
	}

	calcCfg := service.DefaultCalculatorConfig()
	if cmd.Flags().Changed("config") {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if calcCfg, err = cfg.CalculatorConfig(); err != nil {
			return err
		}
	}

	uc := usecase.NewComputeProfileUseCase(nil, service.NewCalculator(calcCfg), observability.NopMetrics())
	profile, err := uc.Quote(cmd.Context(), dto.QuoteRequest{Answers: answers, IncludeSchedule: schedule})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(profile)
}
