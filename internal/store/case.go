package store

import (
	"context"

	"credentialing/internal/db"
	"credentialing/internal/utils"
	"credentialing/pkg/types"

	sq "github.com/Masterminds/squirrel"
)

var caseColumns = utils.StructTagValues(types.Case{})

type CaseRepository struct {
	db        *db.DB
	templates *TemplateRepository
}

func NewCaseRepository(database *db.DB, templates *TemplateRepository) *CaseRepository {
	return &CaseRepository{db: database, templates: templates}
}

// CreateCase snapshots the facility template's version and required items
// onto the case. The snapshot is never refreshed afterwards.
func (r *CaseRepository) CreateCase(ctx context.Context, c *types.Case) error {
	return r.db.Transaction(ctx, func(ctx context.Context) error {
		template, err := r.templates.TemplateByID(ctx, c.FacilityID)
		if err != nil {
			return err
		}
		if template == nil {
			return types.NewNotFoundError("facility template", c.FacilityID)
		}

		c.ID = utils.NanoID()
		if c.State == "" {
			c.State = types.CaseStateOfferAccepted
		}
		c.TemplateVersion = template.Version
		c.RequiredDocTypesSnapshot = append(types.StringList{}, template.RequiredDocTypes...)
		c.RequiredVerificationTypesSnapshot = append(types.StringList{}, template.RequiredVerificationTypes...)
		c.CreatedAt = r.db.Now()
		c.UpdatedAt = c.CreatedAt

		_, err = execute(ctx, r.db, qb().Insert(caseTableName).SetMap(utils.StructToMap(c)))
		if err != nil {
			return repoError("case", "create", "failed to insert case", err)
		}

		return nil
	})
}

func (r *CaseRepository) CaseByID(ctx context.Context, id string) (*types.Case, error) {
	c, err := getOne[types.Case](ctx, r.db, qb().
		Select(caseColumns...).
		From(caseTableName).
		Where(sq.Eq{"id": id}).
		Limit(1))
	if err != nil {
		return nil, repoError("case", "getById", "failed to fetch case", err)
	}

	return c, nil
}

// QueryCases returns cases matching the optional filters, most recently
// updated first.
func (r *CaseRepository) QueryCases(ctx context.Context, filter types.CaseFilter) ([]*types.Case, error) {
	builder := qb().
		Select(caseColumns...).
		From(caseTableName).
		OrderBy("updated_at DESC", "id DESC")

	if filter.State != nil {
		builder = builder.Where(sq.Eq{"state": *filter.State})
	}
	if filter.FacilityID != nil {
		builder = builder.Where(sq.Eq{"facility_id": *filter.FacilityID})
	}
	if filter.ClinicianID != nil {
		builder = builder.Where(sq.Eq{"clinician_id": *filter.ClinicianID})
	}

	cases, err := getAll[types.Case](ctx, r.db, builder)
	if err != nil {
		return nil, repoError("case", "query", "failed to query cases", err)
	}

	return cases, nil
}

// UpdateCaseState moves a case from one state to another. The update only
// applies while the row is still in from; it reports false otherwise.
func (r *CaseRepository) UpdateCaseState(ctx context.Context, id string, from, to types.CaseState) (bool, error) {
	result, err := execute(ctx, r.db, qb().
		Update(caseTableName).
		Set("state", to).
		Set("updated_at", r.db.Now()).
		Where(sq.Eq{"id": id, "state": from}))
	if err != nil {
		return false, repoError("case", "updateState", "failed to update case state", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, repoError("case", "updateState", "failed to read affected rows", err)
	}

	return affected == 1, nil
}
