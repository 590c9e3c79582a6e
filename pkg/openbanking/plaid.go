package openbanking

import "context"

// PlaidClient defines the Plaid operations the wizard needs.
// Implementations may be real HTTP clients or the sandbox stub.
type PlaidClient interface {
	// CreateLinkToken generates a link token for initializing the Plaid Link
	// flow for one wizard session.
	CreateLinkToken(ctx context.Context, userID string, products []string) (LinkTokenResponse, error)

	// ExchangePublicToken exchanges a public token (from the link flow) for
	// a persistent access token.
	ExchangePublicToken(ctx context.Context, publicToken string) (ItemAccessResponse, error)

	// GetBalances retrieves current balances for accounts under an access token.
	GetBalances(ctx context.Context, accessToken string) ([]BankAccount, error)

	// GetLiabilities retrieves credit card, student loan and auto loan debts.
	GetLiabilities(ctx context.Context, accessToken string) ([]Liability, error)
}

// PlaidConfig holds configuration for the Plaid client.
type PlaidConfig struct {
	ClientID     string
	Secret       string
	Environment  string
	BaseURL      string
	Products     []string
	CountryCodes []string
}

// DefaultPlaidConfig returns configuration defaults for the Plaid sandbox.
func DefaultPlaidConfig() PlaidConfig {
	return PlaidConfig{
		Environment:  "sandbox",
		BaseURL:      "https://sandbox.plaid.com",
		Products:     []string{"assets", "liabilities"},
		CountryCodes: []string{"US"},
	}
}

// FetchSnapshot links nothing new; it reads balances and liabilities for an
// existing access token and summarizes them.
func FetchSnapshot(ctx context.Context, c PlaidClient, accessToken string) (Snapshot, error) {
	accounts, err := c.GetBalances(ctx, accessToken)
	if err != nil {
		return Snapshot{}, err
	}
	liabilities, err := c.GetLiabilities(ctx, accessToken)
	if err != nil {
		return Snapshot{}, err
	}
	return Summarize(accounts, liabilities), nil
}
