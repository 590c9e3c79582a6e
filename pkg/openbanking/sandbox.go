package openbanking

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SandboxClient is a deterministic in-process PlaidClient. Balances and debts
// are derived from a hash of the access token so repeated calls for the same
// session agree.
type SandboxClient struct {
	config PlaidConfig
	now    func() time.Time
}

// NewSandboxClient returns a sandbox client.
func NewSandboxClient(config PlaidConfig) *SandboxClient {
	return &SandboxClient{config: config, now: time.Now}
}

func (s *SandboxClient) CreateLinkToken(_ context.Context, userID string, _ []string) (LinkTokenResponse, error) {
	if userID == "" {
		return LinkTokenResponse{}, fmt.Errorf("openbanking: user ID is required")
	}
	token := fmt.Sprintf("link-%s-%s", s.config.Environment, hashShort(userID))
	return LinkTokenResponse{
		LinkToken:  token,
		Expiration: s.now().Add(30 * time.Minute),
		RequestID:  "req-" + hashShort(token),
	}, nil
}

func (s *SandboxClient) ExchangePublicToken(_ context.Context, publicToken string) (ItemAccessResponse, error) {
	if publicToken == "" {
		return ItemAccessResponse{}, fmt.Errorf("openbanking: public token is required")
	}
	return ItemAccessResponse{
		AccessToken: "access-" + hashShort(publicToken),
		ItemID:      "item-" + hashShort(publicToken),
	}, nil
}

func (s *SandboxClient) GetBalances(_ context.Context, accessToken string) ([]BankAccount, error) {
	seed := hashSeed(accessToken)
	return []BankAccount{
		{
			AccountID:       "acct-" + hashShort(accessToken) + "-chk",
			InstitutionName: "First Platypus Bank (Sandbox)",
			Name:            "Plaid Checking",
			Type:            AccountTypeChecking,
			Mask:            "0000",
			Current:         decimal.NewFromInt(int64(5_000 + seed%20_000)),
		},
		{
			AccountID:       "acct-" + hashShort(accessToken) + "-sav",
			InstitutionName: "First Platypus Bank (Sandbox)",
			Name:            "Plaid Saving",
			Type:            AccountTypeSavings,
			Mask:            "1111",
			Current:         decimal.NewFromInt(int64(10_000 + (seed>>8)%40_000)),
		},
		{
			AccountID:       "acct-" + hashShort(accessToken) + "-401k",
			InstitutionName: "Platypus Retirement (Sandbox)",
			Name:            "401k",
			Type:            AccountTypeRetirement,
			Mask:            "2222",
			Current:         decimal.NewFromInt(int64(20_000 + (seed>>16)%80_000)),
		},
	}, nil
}

func (s *SandboxClient) GetLiabilities(_ context.Context, accessToken string) ([]Liability, error) {
	seed := hashSeed(accessToken)
	return []Liability{
		{
			AccountID:      "acct-" + hashShort(accessToken) + "-cc",
			Name:           "Plaid Credit Card",
			Type:           AccountTypeCreditCard,
			Balance:        decimal.NewFromInt(int64(500 + seed%4_500)),
			MinimumPayment: decimal.NewFromInt(int64(25 + seed%150)),
		},
		{
			AccountID:      "acct-" + hashShort(accessToken) + "-auto",
			Name:           "Auto Loan",
			Type:           AccountTypeLoan,
			Balance:        decimal.NewFromInt(int64(8_000 + (seed>>8)%20_000)),
			MinimumPayment: decimal.NewFromInt(int64(250 + (seed>>8)%350)),
		},
	}, nil
}

func hashShort(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:4])
}

func hashSeed(s string) uint64 {
	h := sha256.Sum256([]byte(s))
	return binary.BigEndian.Uint64(h[:8])
}
