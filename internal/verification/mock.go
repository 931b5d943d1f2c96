package verification

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"credentialing/pkg/types"
)

// FailingMockType is the one verification type the mock reports as adverse.
const FailingMockType = "oig_sam"

// MockAdapter passes every verification type except FailingMockType and
// returns a synthetic evidence envelope.
type MockAdapter struct {
	name  string
	clock func() time.Time
}

func NewMockAdapter(name string) *MockAdapter {
	return &MockAdapter{name: name, clock: time.Now}
}

// WithClock returns a copy of the adapter that stamps evidence with clock.
func (m *MockAdapter) WithClock(clock func() time.Time) *MockAdapter {
	return &MockAdapter{name: m.name, clock: clock}
}

func (m *MockAdapter) Name() string {
	return m.name
}

func (m *MockAdapter) Run(_ context.Context, req Request) (Result, error) {
	pass := req.VerificationType != FailingMockType

	return Result{
		Source: "mock:" + m.name,
		Pass:   pass,
		Evidence: types.Evidence{
			SourceURL: fmt.Sprintf("https://mock.verify/%s/%s",
				url.PathEscape(req.VerificationType), url.PathEscape(req.CaseID)),
			Timestamp: m.clock().UTC().Format(time.RFC3339Nano),
			ResponseData: types.JSONObject{
				"adapter":          m.name,
				"verificationType": req.VerificationType,
				"caseId":           req.CaseID,
				"pass":             pass,
			},
		},
	}, nil
}
