package valueobject

// DTIStatus classifies a debt-to-income ratio against the loan type's limit.
type DTIStatus string

const (
	DTIStatusGood       DTIStatus = "good"
	DTIStatusHigh       DTIStatus = "high"
	DTIStatusNoLimit    DTIStatus = "no-limit"
	DTIStatusIncomplete DTIStatus = "incomplete"
)
