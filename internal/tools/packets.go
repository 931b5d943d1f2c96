package tools

import (
	"context"

	"credentialing/internal/storage"
	"credentialing/internal/workflow"
	"credentialing/pkg/types"

	"github.com/sirupsen/logrus"
)

type PacketResult struct {
	CaseID          string                `json:"caseId"`
	ManifestVersion int                   `json:"manifestVersion"`
	Documents       []*types.Document     `json:"documents"`
	Verifications   []*types.Verification `json:"verifications"`
}

var packetGuards = []workflow.Guard{
	workflow.DocumentsCollected,
	workflow.VerificationComplete,
	workflow.PacketAssembled,
}

// assemblePacket requires the documents, verification and approval gates to
// pass. The manifest is written to the packet store, when one is configured,
// inside the same transaction as the audit event and removed again if that
// transaction does not commit.
func assemblePacket(ctx context.Context, r *Registry, in *CaseIDInput, principal *types.Principal) (any, error) {
	result := &PacketResult{CaseID: in.CaseID, ManifestVersion: storage.ManifestVersion}

	var savedKey string
	err := r.repos.Transaction(ctx, func(ctx context.Context) error {
		if _, err := r.requireCase(ctx, in.CaseID); err != nil {
			return err
		}

		var (
			err      error
			blockers []types.Blocker
		)
		for _, guard := range packetGuards {
			verdict, err := guard(ctx, r.machine.Sources(), in.CaseID)
			if err != nil {
				return err
			}
			blockers = append(blockers, verdict.Blockers...)
		}
		if len(blockers) > 0 {
			return &workflow.GuardError{Message: "Packet assembly blocked", Result: types.Blocked(blockers...)}
		}

		if result.Documents, err = r.repos.Documents.DocumentsByCase(ctx, in.CaseID); err != nil {
			return err
		}
		if result.Verifications, err = r.repos.Verifications.VerificationsByCase(ctx, in.CaseID); err != nil {
			return err
		}

		var evidenceRef *string
		if r.packets != nil {
			key, err := r.packets.SavePacket(ctx, &storage.Manifest{
				CaseID:          in.CaseID,
				ManifestVersion: result.ManifestVersion,
				Documents:       result.Documents,
				Verifications:   result.Verifications,
				AssembledAt:     r.repos.DB.Now(),
			})
			if err != nil {
				return err
			}
			savedKey = key
			evidenceRef = &key
		}

		return r.repos.Events.AppendEvent(ctx, &types.CaseEvent{
			CaseID:      in.CaseID,
			EventType:   types.EventTypePacketAssembled,
			ActorType:   principal.ActorType,
			ActorID:     principal.ActorID,
			EvidenceRef: evidenceRef,
			Payload: types.JSONObject{
				"documentCount":     len(result.Documents),
				"verificationCount": len(result.Verifications),
			},
		})
	})
	if err != nil {
		if savedKey != "" {
			r.discardPacket(ctx, in.CaseID, savedKey)
		}
		return nil, err
	}

	return result, nil
}

func (r *Registry) discardPacket(ctx context.Context, caseID, key string) {
	if err := r.packets.DeletePacket(context.WithoutCancel(ctx), key); err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"case_id":    caseID,
			"packet_key": key,
		}).Error("failed to remove packet manifest after rollback")
	}
}
