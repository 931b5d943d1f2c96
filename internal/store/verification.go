package store

import (
	"context"

	"credentialing/internal/db"
	"credentialing/internal/utils"
	"credentialing/pkg/types"

	sq "github.com/Masterminds/squirrel"
)

var verificationColumns = utils.StructTagValues(types.Verification{})

type VerificationRepository struct {
	db *db.DB
}

func NewVerificationRepository(database *db.DB) *VerificationRepository {
	return &VerificationRepository{db: database}
}

// CreateVerification inserts a verification run. Rows are never updated.
func (r *VerificationRepository) CreateVerification(ctx context.Context, verification *types.Verification) error {
	verification.ID = utils.NanoID()
	if verification.CreatedAt.IsZero() {
		verification.CreatedAt = r.db.Now()
	}
	if verification.Evidence.ResponseData == nil {
		verification.Evidence.ResponseData = types.JSONObject{}
	}

	_, err := execute(ctx, r.db, qb().Insert(verificationTableName).SetMap(utils.StructToMap(verification)))
	if err != nil {
		return repoError("verification", "create", "failed to insert verification", err)
	}

	return nil
}

func (r *VerificationRepository) VerificationByID(ctx context.Context, id string) (*types.Verification, error) {
	verification, err := getOne[types.Verification](ctx, r.db, qb().
		Select(verificationColumns...).
		From(verificationTableName).
		Where(sq.Eq{"id": id}).
		Limit(1))
	if err != nil {
		return nil, repoError("verification", "getById", "failed to fetch verification", err)
	}

	return verification, nil
}

func (r *VerificationRepository) VerificationsByCase(ctx context.Context, caseID string) ([]*types.Verification, error) {
	verifications, err := getAll[types.Verification](ctx, r.db, qb().
		Select(verificationColumns...).
		From(verificationTableName).
		Where(sq.Eq{"case_id": caseID}).
		OrderBy("created_at ASC", "id ASC"))
	if err != nil {
		return nil, repoError("verification", "getByCaseId", "failed to fetch verifications", err)
	}

	return verifications, nil
}

func (r *VerificationRepository) VerificationsByType(ctx context.Context, caseID, verificationType string) ([]*types.Verification, error) {
	verifications, err := getAll[types.Verification](ctx, r.db, qb().
		Select(verificationColumns...).
		From(verificationTableName).
		Where(sq.Eq{"case_id": caseID, "verification_type": verificationType}).
		OrderBy("created_at ASC", "id ASC"))
	if err != nil {
		return nil, repoError("verification", "getByType", "failed to fetch verifications", err)
	}

	return verifications, nil
}
