package valueobject

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// ServiceType – immutable value object
// ---------------------------------------------------------------------------

// ServiceType identifies the wizard track a session is running.
type ServiceType struct {
	value string
}

const (
	serviceTypePending            = "pending"
	serviceTypeMortgagePurchase   = "mortgage-purchase"
	serviceTypeMortgageRefinance  = "mortgage-refinance"
	serviceTypeMortgageCash       = "mortgage-cash"
	serviceTypeRealEstate         = "real-estate"
	serviceTypeInsurance          = "insurance"
	serviceTypeConstruction       = "construction"
	serviceTypePropertyManagement = "property-management"
	serviceTypeHomeServices       = "home-services"
)

var (
	// ServiceTypePending is used until the service-selection (and, for
	// mortgages, mortgage-type) answers resolve the track.
	ServiceTypePending            = ServiceType{value: serviceTypePending}
	ServiceTypeMortgagePurchase   = ServiceType{value: serviceTypeMortgagePurchase}
	ServiceTypeMortgageRefinance  = ServiceType{value: serviceTypeMortgageRefinance}
	ServiceTypeMortgageCash       = ServiceType{value: serviceTypeMortgageCash}
	ServiceTypeRealEstate         = ServiceType{value: serviceTypeRealEstate}
	ServiceTypeInsurance          = ServiceType{value: serviceTypeInsurance}
	ServiceTypeConstruction       = ServiceType{value: serviceTypeConstruction}
	ServiceTypePropertyManagement = ServiceType{value: serviceTypePropertyManagement}
	ServiceTypeHomeServices       = ServiceType{value: serviceTypeHomeServices}
)

var validServiceTypes = map[string]ServiceType{
	serviceTypePending:            ServiceTypePending,
	serviceTypeMortgagePurchase:   ServiceTypeMortgagePurchase,
	serviceTypeMortgageRefinance:  ServiceTypeMortgageRefinance,
	serviceTypeMortgageCash:       ServiceTypeMortgageCash,
	serviceTypeRealEstate:         ServiceTypeRealEstate,
	serviceTypeInsurance:          ServiceTypeInsurance,
	serviceTypeConstruction:       ServiceTypeConstruction,
	serviceTypePropertyManagement: ServiceTypePropertyManagement,
	serviceTypeHomeServices:       ServiceTypeHomeServices,
}

// NewServiceType creates a ServiceType from a raw string.
func NewServiceType(s string) (ServiceType, error) {
	v, ok := validServiceTypes[s]
	if !ok {
		return ServiceType{}, fmt.Errorf("invalid service type: %q", s)
	}
	return v, nil
}

// String returns the string representation of the service type.
func (s ServiceType) String() string { return s.value }

// IsZero returns true if the service type has not been initialised.
func (s ServiceType) IsZero() bool { return s.value == "" }

// Equal returns true when both service types carry the same value.
func (s ServiceType) Equal(other ServiceType) bool { return s.value == other.value }

// IsMortgage reports whether the track is one of the mortgage sub-wizards.
func (s ServiceType) IsMortgage() bool {
	switch s.value {
	case serviceTypeMortgagePurchase, serviceTypeMortgageRefinance, serviceTypeMortgageCash:
		return true
	default:
		return false
	}
}

// IsResolved reports whether the track is known.
func (s ServiceType) IsResolved() bool {
	return !s.IsZero() && s.value != serviceTypePending
}

// ---------------------------------------------------------------------------
// SessionStatus – immutable value object
// ---------------------------------------------------------------------------

// SessionStatus is the lifecycle stage of a wizard session.
type SessionStatus struct {
	value string
}

var (
	SessionStatusActive    = SessionStatus{value: "active"}
	SessionStatusCompleted = SessionStatus{value: "completed"}
)

// String returns the string representation of the status.
func (s SessionStatus) String() string { return s.value }

// Equal returns true when both statuses carry the same value.
func (s SessionStatus) Equal(other SessionStatus) bool { return s.value == other.value }

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	ErrUnknownStep         = errors.New("unknown step")
	ErrStepNotInTrack      = errors.New("step is not part of the session's track")
	ErrStepNotReachable    = errors.New("step has not been reached yet")
	ErrTerminalStep        = errors.New("terminal step cannot be submitted")
	ErrSessionNotFound     = errors.New("session not found")
	ErrServiceTypeMismatch = errors.New("service type does not match session")
	ErrNotMortgageTrack    = errors.New("loan profile is only available on mortgage tracks")
	ErrNoPreviousStep      = errors.New("already on the first step")
)
