package tools

import (
	"context"
	"fmt"

	"credentialing/internal/verification"
	"credentialing/pkg/types"
)

type RunVerificationInput struct {
	CaseID           string `json:"caseId" validate:"required"`
	VerificationType string `json:"verificationType" validate:"required"`
}

type RunVerificationResult struct {
	Verification *types.Verification `json:"verification"`
}

// runVerification validates the adapter's evidence before anything is
// written. A bad envelope persists nothing.
func runVerification(ctx context.Context, r *Registry, in *RunVerificationInput, principal *types.Principal) (any, error) {
	if _, err := r.requireCase(ctx, in.CaseID); err != nil {
		return nil, err
	}

	adapter := r.adapters.Adapter(in.VerificationType)

	outcome, err := adapter.Run(ctx, verification.Request{
		CaseID:           in.CaseID,
		VerificationType: in.VerificationType,
	})
	if err != nil {
		return nil, fmt.Errorf("verification adapter %s failed: %w", adapter.Name(), err)
	}

	if err := verification.ValidateEvidence(outcome.Evidence); err != nil {
		return nil, err
	}

	record := &types.Verification{
		CaseID:           in.CaseID,
		VerificationType: in.VerificationType,
		Source:           outcome.Source,
		Pass:             outcome.Pass,
		Evidence:         outcome.Evidence,
	}

	err = r.repos.Transaction(ctx, func(ctx context.Context) error {
		if _, err := r.requireCase(ctx, in.CaseID); err != nil {
			return err
		}
		if err := r.repos.Verifications.CreateVerification(ctx, record); err != nil {
			return err
		}

		return r.repos.Events.AppendEvent(ctx, &types.CaseEvent{
			CaseID:      in.CaseID,
			EventType:   types.EventTypeVerificationCompleted,
			ActorType:   principal.ActorType,
			ActorID:     principal.ActorID,
			EvidenceRef: &record.ID,
			Payload: types.JSONObject{
				"verificationType": record.VerificationType,
				"source":           record.Source,
				"pass":             record.Pass,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	return &RunVerificationResult{Verification: record}, nil
}

type FindingInput struct {
	VerificationID string `json:"verificationId" validate:"required"`
}

type FindingDetail struct {
	Verification   *types.Verification `json:"verification"`
	LatestApproval *types.Approval     `json:"latestApproval"`
}

func getFindingDetail(ctx context.Context, r *Registry, in *FindingInput, _ *types.Principal) (any, error) {
	record, err := r.repos.Verifications.VerificationByID(ctx, in.VerificationID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, types.NewNotFoundError("verification", in.VerificationID)
	}

	latest, err := r.repos.Approvals.LatestApprovalByVerification(ctx, in.VerificationID)
	if err != nil {
		return nil, err
	}

	return &FindingDetail{Verification: record, LatestApproval: latest}, nil
}
