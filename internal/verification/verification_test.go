package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"credentialing/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEvidence(t *testing.T) {
	tests := []struct {
		name     string
		evidence types.Evidence
		problems int
	}{
		{
			name:     "valid",
			evidence: types.Evidence{SourceURL: "https://nursys.example/lookup?id=1", Timestamp: "2026-03-01T10:00:00Z"},
		},
		{
			name:     "valid without zone",
			evidence: types.Evidence{SourceURL: "https://a.b/c", Timestamp: "2026-03-01T10:00:00.123"},
		},
		{
			name:     "minutes with utc zone",
			evidence: types.Evidence{SourceURL: "https://a.b/c", Timestamp: "2026-03-01T10:00Z"},
		},
		{
			name:     "minutes with offset",
			evidence: types.Evidence{SourceURL: "https://a.b/c", Timestamp: "2026-03-01T10:00+02:00"},
		},
		{
			name:     "minutes with compact offset",
			evidence: types.Evidence{SourceURL: "https://a.b/c", Timestamp: "2026-03-01T10:00-0500"},
		},
		{
			name:     "seconds with compact offset",
			evidence: types.Evidence{SourceURL: "https://a.b/c", Timestamp: "2026-03-01T10:00:30+0200"},
		},
		{
			name:     "minutes without zone",
			evidence: types.Evidence{SourceURL: "https://a.b/c", Timestamp: "2026-03-01T10:00"},
		},
		{
			name:     "space separator",
			evidence: types.Evidence{SourceURL: "https://a.b/c", Timestamp: "2026-03-01 10:00:00Z"},
			problems: 1,
		},
		{
			name:     "missing both",
			evidence: types.Evidence{},
			problems: 2,
		},
		{
			name:     "relative url",
			evidence: types.Evidence{SourceURL: "/lookup/1", Timestamp: "2026-03-01T10:00:00Z"},
			problems: 1,
		},
		{
			name:     "not a url",
			evidence: types.Evidence{SourceURL: "not a url", Timestamp: "2026-03-01T10:00:00Z"},
			problems: 1,
		},
		{
			name:     "date only",
			evidence: types.Evidence{SourceURL: "https://a.b", Timestamp: "2026-03-01"},
			problems: 1,
		},
		{
			name:     "garbage timestamp",
			evidence: types.Evidence{SourceURL: "https://a.b", Timestamp: "yesterdayTnoon"},
			problems: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEvidence(tt.evidence)
			if tt.problems == 0 {
				assert.NoError(t, err)
				return
			}

			var evidenceErr *EvidenceError
			require.True(t, errors.As(err, &evidenceErr))
			assert.Len(t, evidenceErr.Problems, tt.problems)
			assert.Contains(t, err.Error(), "invalid verification evidence")
		})
	}
}

func TestMockAdapter(t *testing.T) {
	fixed := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	adapter := NewMockAdapter("nursys").WithClock(func() time.Time { return fixed })

	result, err := adapter.Run(context.Background(), Request{CaseID: "case-1", VerificationType: "nursys"})
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.Equal(t, "mock:nursys", result.Source)
	assert.Equal(t, "https://mock.verify/nursys/case-1", result.Evidence.SourceURL)
	assert.Equal(t, "2026-05-06T07:08:09Z", result.Evidence.Timestamp)
	assert.Equal(t, "case-1", result.Evidence.ResponseData["caseId"])
	assert.NoError(t, ValidateEvidence(result.Evidence))

	failing, err := NewMockAdapter("oig_sam").Run(context.Background(), Request{CaseID: "case-1", VerificationType: "oig_sam"})
	require.NoError(t, err)
	assert.False(t, failing.Pass)
	assert.Equal(t, false, failing.Evidence.ResponseData["pass"])
}

type stubAdapter struct{}

func (stubAdapter) Name() string { return "stub" }

func (stubAdapter) Run(context.Context, Request) (Result, error) {
	return Result{Source: "stub", Pass: true}, nil
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	assert.Equal(t, "nursys", registry.Adapter("nursys").Name())
	_, isMock := registry.Adapter("nursys").(*MockAdapter)
	assert.True(t, isMock)

	registry.Set("nursys", stubAdapter{})
	assert.Equal(t, "stub", registry.Adapter("nursys").Name())
	assert.Equal(t, "oig_sam", registry.Adapter("oig_sam").Name())

	registry.Set("nursys", nil)
	assert.Equal(t, "nursys", registry.Adapter("nursys").Name())
}
