package tools

import (
	"context"

	"credentialing/internal/utils"
	"credentialing/pkg/types"
)

type RecordApprovalInput struct {
	CaseID         string         `json:"caseId" validate:"required"`
	VerificationID *string        `json:"verificationId" nullable:"true"`
	Decision       types.Decision `json:"decision" validate:"required,decision"`
	Notes          string         `json:"notes"`
}

// recordApproval is human-only. The reviewer always comes from the session,
// never from the input.
func recordApproval(ctx context.Context, r *Registry, in *RecordApprovalInput, principal *types.Principal) (any, error) {
	if principal.ActorType != types.ActorTypeHuman {
		return nil, &AuthorizationError{Tool: ToolRecordApproval, Reason: "only human actors can record approvals"}
	}

	approval := &types.Approval{
		CaseID:         in.CaseID,
		VerificationID: utils.NonEmptyStringPtr(utils.PtrString(in.VerificationID)),
		Decision:       in.Decision,
		Reviewer:       principal.Reviewer(),
		Notes:          in.Notes,
	}

	err := r.repos.Transaction(ctx, func(ctx context.Context) error {
		if _, err := r.requireCase(ctx, in.CaseID); err != nil {
			return err
		}
		if err := r.repos.Approvals.CreateApproval(ctx, approval); err != nil {
			return err
		}

		return r.repos.Events.AppendEvent(ctx, &types.CaseEvent{
			CaseID:      in.CaseID,
			EventType:   types.EventTypeApprovalRecorded,
			ActorType:   principal.ActorType,
			ActorID:     principal.ActorID,
			EvidenceRef: &approval.ID,
			Payload: types.JSONObject{
				"verificationId": approval.VerificationID,
				"decision":       string(approval.Decision),
				"reviewer":       approval.Reviewer,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	return approval, nil
}
