// Package openbanking provides data types and client interfaces for the Plaid
// account linking used to verify a borrower's debts and assets.
package openbanking

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType represents the type of external account.
type AccountType string

const (
	AccountTypeChecking   AccountType = "CHECKING"
	AccountTypeSavings    AccountType = "SAVINGS"
	AccountTypeCreditCard AccountType = "CREDIT_CARD"
	AccountTypeLoan       AccountType = "LOAN"
	AccountTypeInvestment AccountType = "INVESTMENT"
	AccountTypeRetirement AccountType = "RETIREMENT"
	AccountTypeOther      AccountType = "OTHER"
)

// IsAsset reports whether balances of this type count toward available funds.
func (t AccountType) IsAsset() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeInvestment, AccountTypeRetirement:
		return true
	default:
		return false
	}
}

// BankAccount represents an external account linked via Plaid.
type BankAccount struct {
	AccountID       string
	InstitutionName string
	Name            string
	Type            AccountType
	// Mask is the last 4 digits of the account number.
	Mask    string
	Current decimal.Decimal
}

// Liability is a recurring debt reported on a linked account.
type Liability struct {
	AccountID      string
	Name           string
	Type           AccountType
	Balance        decimal.Decimal
	MinimumPayment decimal.Decimal
}

// LinkTokenResponse is returned when creating a link token for account linking.
type LinkTokenResponse struct {
	LinkToken  string
	Expiration time.Time
	RequestID  string
}

// ItemAccessResponse is returned after completing the link flow.
type ItemAccessResponse struct {
	AccessToken string
	ItemID      string
}

// Snapshot summarizes a linked item for underwriting purposes.
type Snapshot struct {
	TotalMonthlyDebts decimal.Decimal
	LiquidAssets      decimal.Decimal
	InvestmentAssets  decimal.Decimal
	RetirementAssets  decimal.Decimal
	Accounts          []BankAccount
	Liabilities       []Liability
}

// TotalAssets is the unweighted sum of every asset balance.
func (s Snapshot) TotalAssets() decimal.Decimal {
	return s.LiquidAssets.Add(s.InvestmentAssets).Add(s.RetirementAssets)
}

// Summarize folds accounts and liabilities into a Snapshot.
func Summarize(accounts []BankAccount, liabilities []Liability) Snapshot {
	snap := Snapshot{
		TotalMonthlyDebts: decimal.Zero,
		LiquidAssets:      decimal.Zero,
		InvestmentAssets:  decimal.Zero,
		RetirementAssets:  decimal.Zero,
		Accounts:          accounts,
		Liabilities:       liabilities,
	}
	for _, a := range accounts {
		switch a.Type {
		case AccountTypeChecking, AccountTypeSavings:
			snap.LiquidAssets = snap.LiquidAssets.Add(a.Current)
		case AccountTypeInvestment:
			snap.InvestmentAssets = snap.InvestmentAssets.Add(a.Current)
		case AccountTypeRetirement:
			snap.RetirementAssets = snap.RetirementAssets.Add(a.Current)
		}
	}
	for _, l := range liabilities {
		snap.TotalMonthlyDebts = snap.TotalMonthlyDebts.Add(l.MinimumPayment)
	}
	return snap
}
