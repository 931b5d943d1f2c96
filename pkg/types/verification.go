package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Verification is immutable once written.
type Verification struct {
	ID               string    `db:"id" json:"id"`
	CaseID           string    `db:"case_id" json:"caseId"`
	VerificationType string    `db:"verification_type" json:"verificationType"`
	Source           string    `db:"source" json:"source"`
	Pass             bool      `db:"pass" json:"pass"`
	Evidence         Evidence  `db:"evidence" json:"evidence"`
	CreatedAt        Timestamp `db:"created_at" json:"createdAt"`
}

type Evidence struct {
	SourceURL    string     `json:"sourceUrl"`
	Timestamp    string     `json:"timestamp"`
	ResponseData JSONObject `json:"responseData"`
}

// Scan parses the stored envelope. Malformed JSON yields an empty envelope.
func (e *Evidence) Scan(src any) error {
	*e = Evidence{ResponseData: JSONObject{}}

	data, ok := columnBytes(src)
	if !ok {
		return nil
	}

	var out Evidence
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	if out.ResponseData == nil {
		out.ResponseData = JSONObject{}
	}

	*e = out
	return nil
}

func (e Evidence) Value() (driver.Value, error) {
	if e.ResponseData == nil {
		e.ResponseData = JSONObject{}
	}

	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal evidence: %w", err)
	}

	return string(data), nil
}
