package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"credentialing/internal/utils"
	"credentialing/pkg/types"
)

type RecordDocumentInput struct {
	CaseID   string           `json:"caseId" validate:"required"`
	DocType  string           `json:"docType" validate:"required"`
	FileRef  *string          `json:"fileRef" nullable:"true"`
	Metadata types.JSONObject `json:"metadata"`
}

func recordDocument(ctx context.Context, r *Registry, in *RecordDocumentInput, principal *types.Principal) (any, error) {
	status := types.DocumentStatusPending
	fileRef := utils.NonEmptyStringPtr(utils.PtrString(in.FileRef))
	if fileRef != nil {
		if err := r.checkFileRef(in.CaseID, *fileRef); err != nil {
			return nil, err
		}
		status = types.DocumentStatusReceived
	}

	document := &types.Document{
		CaseID:   in.CaseID,
		DocType:  in.DocType,
		Status:   status,
		FileRef:  fileRef,
		Metadata: in.Metadata,
	}

	err := r.repos.Transaction(ctx, func(ctx context.Context) error {
		if _, err := r.requireCase(ctx, in.CaseID); err != nil {
			return err
		}
		if err := r.repos.Documents.CreateDocument(ctx, document); err != nil {
			return err
		}

		return r.repos.Events.AppendEvent(ctx, &types.CaseEvent{
			CaseID:      in.CaseID,
			EventType:   types.EventTypeDocumentRecorded,
			ActorType:   principal.ActorType,
			ActorID:     principal.ActorID,
			EvidenceRef: &document.ID,
			Payload: types.JSONObject{
				"docType": document.DocType,
				"status":  string(document.Status),
				"fileRef": document.FileRef,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	return document, nil
}

// checkFileRef accepts the canonical docs directory itself or anything
// beneath it, after both sides are made absolute and cleaned.
func (r *Registry) checkFileRef(caseID, fileRef string) error {
	canonical, err := filepath.Abs(r.docsDir(caseID))
	if err != nil {
		return fmt.Errorf("failed to resolve docs directory: %w", err)
	}
	resolved, err := filepath.Abs(fileRef)
	if err != nil {
		return &PathSafetyError{FileRef: fileRef, Resolved: fileRef}
	}

	if resolved != canonical && !strings.HasPrefix(resolved, canonical+string(filepath.Separator)) {
		return &PathSafetyError{FileRef: fileRef, Resolved: resolved}
	}
	return nil
}

type ClassifyDocumentInput struct {
	CaseID     string `json:"caseId" validate:"required"`
	DocumentID string `json:"documentId" validate:"required"`
}

// ClassifyRequest is what a Classifier sees about a stored document.
type ClassifyRequest struct {
	CaseID     string
	DocumentID string
	DocType    string
	FileRef    *string
	Metadata   types.JSONObject
}

type Classification struct {
	DocType  string           `json:"docType"`
	Metadata types.JSONObject `json:"metadata"`
}

// Classifier suggests a document type. Returning nil, or a classification
// without a DocType, falls back to the stored type.
type Classifier interface {
	Classify(ctx context.Context, req ClassifyRequest) (*Classification, error)
}

func classifyDocument(ctx context.Context, r *Registry, in *ClassifyDocumentInput, _ *types.Principal) (any, error) {
	document, err := r.repos.Documents.DocumentByID(ctx, in.DocumentID)
	if err != nil {
		return nil, err
	}
	if document == nil || document.CaseID != in.CaseID {
		return nil, types.NewNotFoundError("document", in.DocumentID)
	}

	if r.classifier != nil {
		classification, err := r.classifier.Classify(ctx, ClassifyRequest{
			CaseID:     document.CaseID,
			DocumentID: document.ID,
			DocType:    document.DocType,
			FileRef:    document.FileRef,
			Metadata:   document.Metadata,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to classify document: %w", err)
		}
		if classification != nil && classification.DocType != "" {
			if classification.Metadata == nil {
				classification.Metadata = types.JSONObject{}
			}
			return classification, nil
		}
	}

	return &Classification{
		DocType:  document.DocType,
		Metadata: types.JSONObject{"classifier": "mock"},
	}, nil
}
