package types

type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
	DecisionWaiver   Decision = "waiver"
)

func (d Decision) Valid() bool {
	switch d {
	case DecisionApproved, DecisionRejected, DecisionWaiver:
		return true
	}
	return false
}

// Clears reports whether the decision resolves an adverse finding.
func (d Decision) Clears() bool {
	return d == DecisionApproved || d == DecisionWaiver
}

// Approval is a human decision on a verification, or on the whole case when
// VerificationID is nil.
type Approval struct {
	ID             string    `db:"id" json:"id"`
	CaseID         string    `db:"case_id" json:"caseId"`
	VerificationID *string   `db:"verification_id" json:"verificationId"`
	Decision       Decision  `db:"decision" json:"decision"`
	Reviewer       string    `db:"reviewer" json:"reviewer"`
	Notes          string    `db:"notes" json:"notes"`
	CreatedAt      Timestamp `db:"created_at" json:"createdAt"`
}
