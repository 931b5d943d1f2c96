package verification

import (
	"fmt"
	"strings"
	"time"

	"credentialing/pkg/types"

	"github.com/go-playground/validator/v10"
)

// EvidenceError lists every problem found in an adapter's evidence.
type EvidenceError struct {
	Problems []string
}

func (e *EvidenceError) Error() string {
	return fmt.Sprintf("invalid verification evidence: %s", strings.Join(e.Problems, "; "))
}

// ISO-8601 date-times with a T separator, with or without seconds and zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04-0700",
	"2006-01-02T15:04",
}

var evidenceValidator = newEvidenceValidator()

func newEvidenceValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("iso8601", func(fl validator.FieldLevel) bool {
		return isDateTime(fl.Field().String())
	})
	return v
}

// ValidateEvidence requires an absolute URL and an ISO-8601 date-time.
func ValidateEvidence(evidence types.Evidence) error {
	var problems []string

	if evidence.SourceURL == "" {
		problems = append(problems, "sourceUrl is required")
	} else if err := evidenceValidator.Var(evidence.SourceURL, "url"); err != nil {
		problems = append(problems, fmt.Sprintf("sourceUrl %q is not a valid URL", evidence.SourceURL))
	}

	if evidence.Timestamp == "" {
		problems = append(problems, "timestamp is required")
	} else if err := evidenceValidator.Var(evidence.Timestamp, "iso8601"); err != nil {
		problems = append(problems, fmt.Sprintf("timestamp %q is not an ISO-8601 date-time", evidence.Timestamp))
	}

	if len(problems) > 0 {
		return &EvidenceError{Problems: problems}
	}
	return nil
}

func isDateTime(value string) bool {
	if !strings.Contains(value, "T") {
		return false
	}
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}
