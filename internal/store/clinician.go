package store

import (
	"context"

	"credentialing/internal/db"
	"credentialing/internal/utils"
	"credentialing/pkg/types"

	sq "github.com/Masterminds/squirrel"
)

var clinicianColumns = utils.StructTagValues(types.Clinician{})

type ClinicianRepository struct {
	db *db.DB
}

func NewClinicianRepository(database *db.DB) *ClinicianRepository {
	return &ClinicianRepository{db: database}
}

// CreateClinician assigns the id and creation time before inserting.
func (r *ClinicianRepository) CreateClinician(ctx context.Context, clinician *types.Clinician) error {
	clinician.ID = utils.NanoID()
	clinician.CreatedAt = r.db.Now()

	_, err := execute(ctx, r.db, qb().Insert(clinicianTableName).SetMap(utils.StructToMap(clinician)))
	if err != nil {
		return repoError("clinician", "create", "failed to insert clinician", err)
	}

	return nil
}

func (r *ClinicianRepository) ClinicianByID(ctx context.Context, id string) (*types.Clinician, error) {
	clinician, err := getOne[types.Clinician](ctx, r.db, qb().
		Select(clinicianColumns...).
		From(clinicianTableName).
		Where(sq.Eq{"id": id}).
		Limit(1))
	if err != nil {
		return nil, repoError("clinician", "getById", "failed to fetch clinician", err)
	}

	return clinician, nil
}
