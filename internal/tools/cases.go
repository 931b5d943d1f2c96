package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"credentialing/internal/workflow"
	"credentialing/pkg/types"
)

type CreateCaseInput struct {
	ClinicianName        string  `json:"clinicianName" validate:"required"`
	Profession           string  `json:"profession" validate:"required"`
	NPI                  string  `json:"npi" validate:"required"`
	PrimaryLicenseState  string  `json:"primaryLicenseState" validate:"required"`
	PrimaryLicenseNumber string  `json:"primaryLicenseNumber" validate:"required"`
	Email                string  `json:"email" validate:"required,email"`
	Phone                string  `json:"phone"`
	FacilityID           string  `json:"facilityId" validate:"required"`
	StartDate            *string `json:"startDate" nullable:"true"`
}

type CreateCaseResult struct {
	Clinician *types.Clinician `json:"clinician"`
	Case      *types.Case      `json:"case"`
}

func createCase(ctx context.Context, r *Registry, in *CreateCaseInput, principal *types.Principal) (any, error) {
	result := &CreateCaseResult{}

	err := r.repos.Transaction(ctx, func(ctx context.Context) error {
		clinician := &types.Clinician{
			Name:                 in.ClinicianName,
			Profession:           in.Profession,
			NPI:                  in.NPI,
			PrimaryLicenseState:  in.PrimaryLicenseState,
			PrimaryLicenseNumber: in.PrimaryLicenseNumber,
			Email:                in.Email,
			Phone:                in.Phone,
		}
		if err := r.repos.Clinicians.CreateClinician(ctx, clinician); err != nil {
			return err
		}

		c := &types.Case{
			ClinicianID: clinician.ID,
			FacilityID:  in.FacilityID,
			State:       types.CaseStateOfferAccepted,
			StartDate:   in.StartDate,
		}
		if err := r.repos.Cases.CreateCase(ctx, c); err != nil {
			return err
		}

		if err := os.MkdirAll(r.docsDir(c.ID), 0o755); err != nil {
			return fmt.Errorf("failed to create case docs directory: %w", err)
		}

		err := r.repos.Events.AppendEvent(ctx, &types.CaseEvent{
			CaseID:    c.ID,
			EventType: types.EventTypeCaseCreated,
			ActorType: principal.ActorType,
			ActorID:   principal.ActorID,
			Payload: types.JSONObject{
				"clinicianId": clinician.ID,
				"facilityId":  c.FacilityID,
			},
		})
		if err != nil {
			return err
		}

		result.Clinician = clinician
		result.Case = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// docsDir is the canonical per-case document directory.
// requireCase loads caseID, reporting an absent case as not found.
func (r *Registry) requireCase(ctx context.Context, caseID string) (*types.Case, error) {
	c, err := r.repos.Cases.CaseByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, types.NewNotFoundError("case", caseID)
	}
	return c, nil
}

func (r *Registry) docsDir(caseID string) string {
	return filepath.Join(r.workspace, "credentialing", caseID, "docs")
}

type QueryCasesInput struct {
	State       *types.CaseState `json:"state" validate:"omitempty,case_state"`
	FacilityID  *string          `json:"facilityId"`
	ClinicianID *string          `json:"clinicianId"`
}

func queryCases(ctx context.Context, r *Registry, in *QueryCasesInput, _ *types.Principal) (any, error) {
	return r.repos.Cases.QueryCases(ctx, types.CaseFilter{
		State:       in.State,
		FacilityID:  in.FacilityID,
		ClinicianID: in.ClinicianID,
	})
}

type CaseIDInput struct {
	CaseID string `json:"caseId" validate:"required"`
}

type CaseTimeline struct {
	Case          *types.Case           `json:"case"`
	Documents     []*types.Document     `json:"documents"`
	Verifications []*types.Verification `json:"verifications"`
	Approvals     []*types.Approval     `json:"approvals"`
	Events        []*types.CaseEvent    `json:"events"`
}

func getCaseTimeline(ctx context.Context, r *Registry, in *CaseIDInput, _ *types.Principal) (any, error) {
	return r.Timeline(ctx, in.CaseID)
}

// Timeline collects everything recorded against caseID. The case is nil when
// it does not exist.
func (r *Registry) Timeline(ctx context.Context, caseID string) (*CaseTimeline, error) {
	var (
		timeline = &CaseTimeline{}
		err      error
	)

	if timeline.Case, err = r.repos.Cases.CaseByID(ctx, caseID); err != nil {
		return nil, err
	}
	if timeline.Documents, err = r.repos.Documents.DocumentsByCase(ctx, caseID); err != nil {
		return nil, err
	}
	if timeline.Verifications, err = r.repos.Verifications.VerificationsByCase(ctx, caseID); err != nil {
		return nil, err
	}
	if timeline.Approvals, err = r.repos.Approvals.ApprovalsByCase(ctx, caseID); err != nil {
		return nil, err
	}
	if timeline.Events, err = r.repos.Events.Timeline(ctx, caseID); err != nil {
		return nil, err
	}

	return timeline, nil
}

type TargetStateInput struct {
	CaseID      string          `json:"caseId" validate:"required"`
	TargetState types.CaseState `json:"targetState" validate:"required,case_state"`
}

func checkGuards(ctx context.Context, r *Registry, in *TargetStateInput, _ *types.Principal) (any, error) {
	result, err := r.machine.CanTransition(ctx, in.CaseID, in.TargetState)
	if err != nil {
		return nil, err
	}
	r.metrics.observeGuard(in.TargetState, result)
	return result, nil
}

type TransitionResult struct {
	Allowed  bool            `json:"allowed"`
	Blockers []types.Blocker `json:"blockers"`
	Case     *types.Case     `json:"case,omitempty"`
}

// transitionState reports a refused move as a result, not an error, so the
// caller gets the blockers in one round trip.
func transitionState(ctx context.Context, r *Registry, in *TargetStateInput, principal *types.Principal) (any, error) {
	c, err := r.machine.Transition(ctx, in.CaseID, in.TargetState, *principal)
	if err != nil {
		var guardErr *workflow.GuardError
		if errors.As(err, &guardErr) {
			r.metrics.observeGuard(in.TargetState, guardErr.Result)
			return &TransitionResult{Allowed: false, Blockers: guardErr.Result.Blockers}, nil
		}
		return nil, err
	}

	r.metrics.observeGuard(in.TargetState, types.Allowed())
	return &TransitionResult{Allowed: true, Blockers: []types.Blocker{}, Case: c}, nil
}
