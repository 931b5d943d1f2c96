package types

type BlockerType string

const (
	BlockerTypeMissingDocument     BlockerType = "missing_document"
	BlockerTypeFailedVerification  BlockerType = "failed_verification"
	BlockerTypeMissingApproval     BlockerType = "missing_approval"
	BlockerTypeMissingCaseApproval BlockerType = "missing_case_approval"
)

type Blocker struct {
	Type           BlockerType `json:"type"`
	Description    string      `json:"description"`
	RequiredItem   string      `json:"requiredItem"`
	VerificationID string      `json:"verificationId,omitempty"`
	DocTypes       []string    `json:"docTypes,omitempty"`
}

type GuardResult struct {
	Allowed  bool      `json:"allowed"`
	Blockers []Blocker `json:"blockers"`
}

func Allowed() GuardResult {
	return GuardResult{Allowed: true, Blockers: []Blocker{}}
}

func Blocked(blockers ...Blocker) GuardResult {
	if blockers == nil {
		blockers = []Blocker{}
	}
	return GuardResult{Allowed: false, Blockers: blockers}
}
