package store

import (
	"context"
	"database/sql"
	"fmt"

	"credentialing/internal/db"

	sq "github.com/Masterminds/squirrel"
)

const (
	clinicianTableName    = "clinicians"
	templateTableName     = "facility_templates"
	caseTableName         = "cases"
	documentTableName     = "documents"
	verificationTableName = "verifications"
	approvalTableName     = "approvals"
	eventTableName        = "case_events"
)

// latestOrder is load-bearing for every guard: newest first, id breaking ties.
var latestOrder = []string{"created_at DESC", "id DESC"}

func qb() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// RepositoryError wraps any storage failure with the repository and operation
// that raised it.
type RepositoryError struct {
	Repository string
	Operation  string
	Message    string
	Err        error
}

func (e *RepositoryError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s.%s: %s", e.Repository, e.Operation, e.Message)
	}
	return fmt.Sprintf("%s.%s: %s: %v", e.Repository, e.Operation, e.Message, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

func repoError(repository, operation, message string, err error) error {
	return &RepositoryError{Repository: repository, Operation: operation, Message: message, Err: err}
}

// Repositories groups every repository over one database.
type Repositories struct {
	DB            *db.DB
	Clinicians    *ClinicianRepository
	Templates     *TemplateRepository
	Cases         *CaseRepository
	Documents     *DocumentRepository
	Verifications *VerificationRepository
	Approvals     *ApprovalRepository
	Events        *EventRepository
}

func New(database *db.DB) *Repositories {
	templates := NewTemplateRepository(database)
	return &Repositories{
		DB:            database,
		Clinicians:    NewClinicianRepository(database),
		Templates:     templates,
		Cases:         NewCaseRepository(database, templates),
		Documents:     NewDocumentRepository(database),
		Verifications: NewVerificationRepository(database),
		Approvals:     NewApprovalRepository(database),
		Events:        NewEventRepository(database),
	}
}

// Transaction runs fn in a transaction, or a savepoint when already inside one.
func (r *Repositories) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.DB.Transaction(ctx, fn)
}

func getOne[T any](ctx context.Context, database *db.DB, builder sq.Sqlizer) (*T, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate query: %w", err)
	}

	out := new(T)
	found, err := database.Prepare(query).Get(ctx, out, args...)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	return out, nil
}

func getAll[T any](ctx context.Context, database *db.DB, builder sq.Sqlizer) ([]*T, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate query: %w", err)
	}

	var out []*T
	if err := database.Prepare(query).All(ctx, &out, args...); err != nil {
		return nil, err
	}
	if out == nil {
		out = []*T{}
	}

	return out, nil
}

func execute(ctx context.Context, database *db.DB, builder sq.Sqlizer) (sql.Result, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate query: %w", err)
	}

	return database.Prepare(query).Run(ctx, args...)
}
