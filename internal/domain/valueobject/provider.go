package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// Provider – immutable value object
// ---------------------------------------------------------------------------

// Provider names an external verification provider.
type Provider struct {
	value string
}

var (
	ProviderTruv      = Provider{value: "truv"}
	ProviderTaxStatus = Provider{value: "taxstatus"}
	ProviderSSA       = Provider{value: "ssa"}
	ProviderVA        = Provider{value: "va"}
	ProviderPlaid     = Provider{value: "plaid"}
)

var validProviders = map[string]Provider{
	ProviderTruv.value:      ProviderTruv,
	ProviderTaxStatus.value: ProviderTaxStatus,
	ProviderSSA.value:       ProviderSSA,
	ProviderVA.value:        ProviderVA,
	ProviderPlaid.value:     ProviderPlaid,
}

// NewProvider creates a Provider from a raw string.
func NewProvider(s string) (Provider, error) {
	v, ok := validProviders[s]
	if !ok {
		return Provider{}, fmt.Errorf("invalid provider: %q", s)
	}
	return v, nil
}

// String returns the string representation of the provider.
func (p Provider) String() string { return p.value }

// IsIncome reports whether the provider verifies income.
func (p Provider) IsIncome() bool { return p.value != ProviderPlaid.value && p.value != "" }

// Equal returns true when both providers carry the same value.
func (p Provider) Equal(other Provider) bool { return p.value == other.value }
