package types

type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusReceived DocumentStatus = "received"
	DocumentStatusVerified DocumentStatus = "verified"
	DocumentStatusRejected DocumentStatus = "rejected"
)

func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentStatusPending, DocumentStatusReceived, DocumentStatusVerified, DocumentStatusRejected:
		return true
	}
	return false
}

// Collected reports whether the status counts toward the documents_collected gate.
func (s DocumentStatus) Collected() bool {
	return s == DocumentStatusReceived || s == DocumentStatusVerified
}

// Document is one recorded submission attempt for a (case, docType) pair.
type Document struct {
	ID        string         `db:"id" json:"id"`
	CaseID    string         `db:"case_id" json:"caseId"`
	DocType   string         `db:"doc_type" json:"docType"`
	Status    DocumentStatus `db:"status" json:"status"`
	FileRef   *string        `db:"file_ref" json:"fileRef"`
	Metadata  JSONObject     `db:"metadata" json:"metadata"`
	CreatedAt Timestamp      `db:"created_at" json:"createdAt"`
	UpdatedAt Timestamp      `db:"updated_at" json:"updatedAt"`
}
