package workflow

import (
	"context"
	"fmt"
	"strings"

	"credentialing/pkg/types"
)

// The guard engine only reads. Each reader is satisfied by the matching
// repository in internal/store.

type CaseReader interface {
	CaseByID(ctx context.Context, id string) (*types.Case, error)
}

type DocumentReader interface {
	LatestDocumentByType(ctx context.Context, caseID, docType string) (*types.Document, error)
}

type VerificationReader interface {
	VerificationsByCase(ctx context.Context, caseID string) ([]*types.Verification, error)
	VerificationsByType(ctx context.Context, caseID, verificationType string) ([]*types.Verification, error)
}

type ApprovalReader interface {
	LatestApprovalByVerification(ctx context.Context, verificationID string) (*types.Approval, error)
	LatestCaseApproval(ctx context.Context, caseID string) (*types.Approval, error)
}

type GuardSources struct {
	Cases         CaseReader
	Documents     DocumentReader
	Verifications VerificationReader
	Approvals     ApprovalReader
}

// Guard evaluates the content conditions for entering one state. The error
// return is reserved for storage failures.
type Guard func(ctx context.Context, src GuardSources, caseID string) (types.GuardResult, error)

var guards = map[types.CaseState]Guard{
	types.CaseStateDocumentsCollected:   DocumentsCollected,
	types.CaseStateVerificationComplete: VerificationComplete,
	types.CaseStatePacketAssembled:      PacketAssembled,
	types.CaseStateSubmitted:            Submitted,
}

// CheckGuard dispatches on the target state. States without a content guard
// are always allowed.
func CheckGuard(ctx context.Context, src GuardSources, caseID string, target types.CaseState) (types.GuardResult, error) {
	guard, ok := guards[target]
	if !ok {
		return types.Allowed(), nil
	}
	return guard(ctx, src, caseID)
}

// DocumentsCollected requires the latest document of every required type to
// be received or verified and to carry a file reference.
func DocumentsCollected(ctx context.Context, src GuardSources, caseID string) (types.GuardResult, error) {
	c, err := src.Cases.CaseByID(ctx, caseID)
	if err != nil {
		return types.GuardResult{}, err
	}
	if c == nil {
		return caseMissing(types.BlockerTypeMissingDocument, caseID), nil
	}

	missing := []string{}
	for _, docType := range c.RequiredDocTypesSnapshot {
		latest, err := src.Documents.LatestDocumentByType(ctx, caseID, docType)
		if err != nil {
			return types.GuardResult{}, err
		}
		if latest == nil || !latest.Status.Collected() || latest.FileRef == nil {
			missing = append(missing, docType)
		}
	}

	if len(missing) == 0 {
		return types.Allowed(), nil
	}

	joined := strings.Join(missing, ", ")
	return types.Blocked(types.Blocker{
		Type:         types.BlockerTypeMissingDocument,
		Description:  "Missing required documents: " + joined,
		RequiredItem: joined,
		DocTypes:     missing,
	}), nil
}

// VerificationComplete requires at least one verification run per required
// type. The outcome of the run does not matter here.
func VerificationComplete(ctx context.Context, src GuardSources, caseID string) (types.GuardResult, error) {
	c, err := src.Cases.CaseByID(ctx, caseID)
	if err != nil {
		return types.GuardResult{}, err
	}
	if c == nil {
		return caseMissing(types.BlockerTypeFailedVerification, caseID), nil
	}

	var blockers []types.Blocker
	for _, verificationType := range c.RequiredVerificationTypesSnapshot {
		runs, err := src.Verifications.VerificationsByType(ctx, caseID, verificationType)
		if err != nil {
			return types.GuardResult{}, err
		}
		if len(runs) == 0 {
			blockers = append(blockers, types.Blocker{
				Type:         types.BlockerTypeFailedVerification,
				Description:  "Missing verification record for " + verificationType,
				RequiredItem: verificationType,
			})
		}
	}

	if len(blockers) == 0 {
		return types.Allowed(), nil
	}
	return types.Blocked(blockers...), nil
}

// PacketAssembled requires every failed verification to be cleared by its
// latest approval. A later rejection overrides an earlier waiver.
func PacketAssembled(ctx context.Context, src GuardSources, caseID string) (types.GuardResult, error) {
	verifications, err := src.Verifications.VerificationsByCase(ctx, caseID)
	if err != nil {
		return types.GuardResult{}, err
	}

	var blockers []types.Blocker
	for _, verification := range verifications {
		if verification.Pass {
			continue
		}

		latest, err := src.Approvals.LatestApprovalByVerification(ctx, verification.ID)
		if err != nil {
			return types.GuardResult{}, err
		}
		if latest != nil && latest.Decision.Clears() {
			continue
		}

		blockers = append(blockers, types.Blocker{
			Type:           types.BlockerTypeMissingApproval,
			Description:    "Adverse finding requires approval for " + verification.VerificationType,
			RequiredItem:   verification.VerificationType,
			VerificationID: verification.ID,
		})
	}

	if len(blockers) == 0 {
		return types.Allowed(), nil
	}
	return types.Blocked(blockers...), nil
}

// Submitted requires the latest case-level approval to be approved.
func Submitted(ctx context.Context, src GuardSources, caseID string) (types.GuardResult, error) {
	latest, err := src.Approvals.LatestCaseApproval(ctx, caseID)
	if err != nil {
		return types.GuardResult{}, err
	}

	if latest != nil && latest.Decision == types.DecisionApproved {
		return types.Allowed(), nil
	}

	return types.Blocked(types.Blocker{
		Type:         types.BlockerTypeMissingCaseApproval,
		Description:  "Case-level approval required before submission",
		RequiredItem: "case_approval",
	}), nil
}

func caseMissing(kind types.BlockerType, caseID string) types.GuardResult {
	return types.Blocked(types.Blocker{
		Type:         kind,
		Description:  fmt.Sprintf("Case not found: %s", caseID),
		RequiredItem: caseID,
	})
}
