package adapter

import (
	"context"
	"fmt"

	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/pkg/money"
	"github.com/ctateo21/homelead/pkg/openbanking"
)

// PlaidAdapter implements port.LiabilitiesVerifier on top of an
// openbanking.PlaidClient.
type PlaidAdapter struct {
	client openbanking.PlaidClient
	config openbanking.PlaidConfig
}

// NewPlaidAdapter creates a new Plaid adapter. When client is nil the
// sandbox client is used.
func NewPlaidAdapter(client openbanking.PlaidClient, config openbanking.PlaidConfig) *PlaidAdapter {
	if client == nil {
		client = openbanking.NewSandboxClient(config)
	}
	return &PlaidAdapter{client: client, config: config}
}

// VerifyLiabilitiesAndAssets runs the link flow for the session, then reads
// balances and liabilities for the resulting item.
func (a *PlaidAdapter) VerifyLiabilitiesAndAssets(ctx context.Context, sessionID string) (port.LiabilitiesReport, error) {
	link, err := a.client.CreateLinkToken(ctx, sessionID, a.config.Products)
	if err != nil {
		return port.LiabilitiesReport{}, fmt.Errorf("plaid: create link token: %w", err)
	}
	item, err := a.client.ExchangePublicToken(ctx, "public-"+link.LinkToken)
	if err != nil {
		return port.LiabilitiesReport{}, fmt.Errorf("plaid: exchange public token: %w", err)
	}
	snap, err := openbanking.FetchSnapshot(ctx, a.client, item.AccessToken)
	if err != nil {
		return port.LiabilitiesReport{}, fmt.Errorf("plaid: fetch snapshot: %w", err)
	}
	return toLiabilitiesReport(snap), nil
}

func toLiabilitiesReport(snap openbanking.Snapshot) port.LiabilitiesReport {
	accounts := make([]port.LinkedAccount, 0, len(snap.Accounts))
	for _, acc := range snap.Accounts {
		accounts = append(accounts, port.LinkedAccount{
			Institution: acc.InstitutionName,
			Name:        acc.Name,
			Type:        string(acc.Type),
			Mask:        acc.Mask,
			Balance:     money.Cents(acc.Current),
		})
	}
	return port.LiabilitiesReport{
		TotalMonthlyDebts: money.Cents(snap.TotalMonthlyDebts),
		TotalAssets:       money.Cents(snap.TotalAssets()),
		Liquid:            money.Cents(snap.LiquidAssets),
		Investment:        money.Cents(snap.InvestmentAssets),
		Retirement:        money.Cents(snap.RetirementAssets),
		Accounts:          accounts,
	}
}
