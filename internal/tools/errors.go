package tools

import (
	"errors"
	"fmt"
	"strings"

	"credentialing/internal/db"
	"credentialing/internal/store"
	"credentialing/internal/verification"
	"credentialing/internal/workflow"
	"credentialing/pkg/types"
)

const (
	KindValidation    = "validation"
	KindAuthorization = "authorization"
	KindGuard         = "guard"
	KindPathSafety    = "path_safety"
	KindEvidence      = "evidence"
	KindRepository    = "repository"
	KindNotFound      = "not_found"
	KindInternal      = "internal"
)

// ValidationError is malformed tool input, rejected before any side effect.
type ValidationError struct {
	Tool     string
	Problems []string
}

func newValidationError(tool string, problems ...string) *ValidationError {
	return &ValidationError{Tool: tool, Problems: problems}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input for %s: %s", e.Tool, strings.Join(e.Problems, "; "))
}

type AuthorizationError struct {
	Tool   string
	Reason string
}

func (e *AuthorizationError) Error() string {
	return e.Reason
}

// PathSafetyError is a fileRef that resolves outside the case's docs directory.
type PathSafetyError struct {
	FileRef  string
	Resolved string
}

func (e *PathSafetyError) Error() string {
	return fmt.Sprintf("fileRef is outside canonical docs directory: %s", e.Resolved)
}

type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown credentialing tool: %s", e.Name)
}

// ErrorKind maps err to a stable kind string for transports and metrics.
func ErrorKind(err error) string {
	var (
		validationErr    *ValidationError
		authorizationErr *AuthorizationError
		pathErr          *PathSafetyError
		evidenceErr      *verification.EvidenceError
		guardErr         *workflow.GuardError
		notFoundErr      *types.NotFoundError
		unknownErr       *UnknownToolError
		repositoryErr    *store.RepositoryError
		databaseErr      *db.DatabaseError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.As(err, &authorizationErr):
		return KindAuthorization
	case errors.As(err, &pathErr):
		return KindPathSafety
	case errors.As(err, &evidenceErr):
		return KindEvidence
	case errors.As(err, &guardErr):
		return KindGuard
	case errors.As(err, &notFoundErr), errors.As(err, &unknownErr):
		return KindNotFound
	case errors.As(err, &repositoryErr), errors.As(err, &databaseErr):
		return KindRepository
	}
	return KindInternal
}

// Blockers returns the guard blockers carried by err, if any.
func Blockers(err error) []types.Blocker {
	var guardErr *workflow.GuardError
	if errors.As(err, &guardErr) {
		return guardErr.Result.Blockers
	}
	return nil
}
