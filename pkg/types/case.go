package types

type CaseState string

const (
	CaseStateOfferAccepted          CaseState = "offer_accepted"
	CaseStateDocumentsRequested     CaseState = "documents_requested"
	CaseStateDocumentsCollected     CaseState = "documents_collected"
	CaseStateVerificationInProgress CaseState = "verification_in_progress"
	CaseStateVerificationComplete   CaseState = "verification_complete"
	CaseStatePacketAssembled        CaseState = "packet_assembled"
	CaseStateSubmitted              CaseState = "submitted"
	CaseStateCleared                CaseState = "cleared"
	CaseStateClosed                 CaseState = "closed"
)

// CaseStates lists every state in workflow order.
var CaseStates = []CaseState{
	CaseStateOfferAccepted,
	CaseStateDocumentsRequested,
	CaseStateDocumentsCollected,
	CaseStateVerificationInProgress,
	CaseStateVerificationComplete,
	CaseStatePacketAssembled,
	CaseStateSubmitted,
	CaseStateCleared,
	CaseStateClosed,
}

func (s CaseState) Valid() bool {
	for _, state := range CaseStates {
		if s == state {
			return true
		}
	}
	return false
}

func (s CaseState) Terminal() bool {
	return s == CaseStateCleared || s == CaseStateClosed
}

func (s CaseState) String() string {
	return string(s)
}

// Case is a clinician's progress through credentialing for one facility.
// The required-item snapshots are copied from the facility template at
// creation and never change afterwards.
type Case struct {
	ID                                string     `db:"id" json:"id"`
	ClinicianID                       string     `db:"clinician_id" json:"clinicianId"`
	FacilityID                        string     `db:"facility_id" json:"facilityId"`
	State                             CaseState  `db:"state" json:"state"`
	StartDate                         *string    `db:"start_date" json:"startDate"`
	TemplateVersion                   int        `db:"template_version" json:"templateVersion"`
	RequiredDocTypesSnapshot          StringList `db:"required_doc_types_snapshot" json:"requiredDocTypesSnapshot"`
	RequiredVerificationTypesSnapshot StringList `db:"required_verification_types_snapshot" json:"requiredVerificationTypesSnapshot"`
	CreatedAt                         Timestamp  `db:"created_at" json:"createdAt"`
	UpdatedAt                         Timestamp  `db:"updated_at" json:"updatedAt"`
}

type CaseFilter struct {
	State       *CaseState
	FacilityID  *string
	ClinicianID *string
}

type Clinician struct {
	ID                   string    `db:"id" json:"id"`
	Name                 string    `db:"name" json:"name"`
	Profession           string    `db:"profession" json:"profession"`
	NPI                  string    `db:"npi" json:"npi"`
	PrimaryLicenseState  string    `db:"primary_license_state" json:"primaryLicenseState"`
	PrimaryLicenseNumber string    `db:"primary_license_number" json:"primaryLicenseNumber"`
	Email                string    `db:"email" json:"email"`
	Phone                string    `db:"phone" json:"phone"`
	CreatedAt            Timestamp `db:"created_at" json:"createdAt"`
}
