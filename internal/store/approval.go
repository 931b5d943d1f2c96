package store

import (
	"context"

	"credentialing/internal/db"
	"credentialing/internal/utils"
	"credentialing/pkg/types"

	sq "github.com/Masterminds/squirrel"
)

var approvalColumns = utils.StructTagValues(types.Approval{})

type ApprovalRepository struct {
	db *db.DB
}

func NewApprovalRepository(database *db.DB) *ApprovalRepository {
	return &ApprovalRepository{db: database}
}

// CreateApproval inserts a decision. A preset CreatedAt is kept, which lets
// imports and tests place a decision at a known point in time.
func (r *ApprovalRepository) CreateApproval(ctx context.Context, approval *types.Approval) error {
	approval.ID = utils.NanoID()
	if approval.CreatedAt.IsZero() {
		approval.CreatedAt = r.db.Now()
	}

	_, err := execute(ctx, r.db, qb().Insert(approvalTableName).SetMap(utils.StructToMap(approval)))
	if err != nil {
		return repoError("approval", "create", "failed to insert approval", err)
	}

	return nil
}

func (r *ApprovalRepository) ApprovalByID(ctx context.Context, id string) (*types.Approval, error) {
	approval, err := getOne[types.Approval](ctx, r.db, qb().
		Select(approvalColumns...).
		From(approvalTableName).
		Where(sq.Eq{"id": id}).
		Limit(1))
	if err != nil {
		return nil, repoError("approval", "getById", "failed to fetch approval", err)
	}

	return approval, nil
}

func (r *ApprovalRepository) ApprovalsByCase(ctx context.Context, caseID string) ([]*types.Approval, error) {
	approvals, err := getAll[types.Approval](ctx, r.db, qb().
		Select(approvalColumns...).
		From(approvalTableName).
		Where(sq.Eq{"case_id": caseID}).
		OrderBy("created_at ASC", "id ASC"))
	if err != nil {
		return nil, repoError("approval", "getByCaseId", "failed to fetch approvals", err)
	}

	return approvals, nil
}

// LatestApprovalByVerification returns the governing decision for a
// verification.
func (r *ApprovalRepository) LatestApprovalByVerification(ctx context.Context, verificationID string) (*types.Approval, error) {
	approval, err := getOne[types.Approval](ctx, r.db, qb().
		Select(approvalColumns...).
		From(approvalTableName).
		Where(sq.Eq{"verification_id": verificationID}).
		OrderBy(latestOrder...).
		Limit(1))
	if err != nil {
		return nil, repoError("approval", "getLatestByVerificationId", "failed to fetch latest approval", err)
	}

	return approval, nil
}

// LatestCaseApproval returns the governing case-level decision, one with no
// verification attached.
func (r *ApprovalRepository) LatestCaseApproval(ctx context.Context, caseID string) (*types.Approval, error) {
	approval, err := getOne[types.Approval](ctx, r.db, qb().
		Select(approvalColumns...).
		From(approvalTableName).
		Where(sq.Eq{"case_id": caseID, "verification_id": nil}).
		OrderBy(latestOrder...).
		Limit(1))
	if err != nil {
		return nil, repoError("approval", "getLatestCaseApproval", "failed to fetch latest case approval", err)
	}

	return approval, nil
}
