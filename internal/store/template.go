package store

import (
	"context"

	"credentialing/internal/db"
	"credentialing/internal/utils"
	"credentialing/pkg/types"

	sq "github.com/Masterminds/squirrel"
)

var templateColumns = utils.StructTagValues(types.FacilityTemplate{})

type TemplateRepository struct {
	db *db.DB
}

func NewTemplateRepository(database *db.DB) *TemplateRepository {
	return &TemplateRepository{db: database}
}

// CreateTemplate inserts a template at version 1.
func (r *TemplateRepository) CreateTemplate(ctx context.Context, template *types.FacilityTemplate) error {
	template.ID = utils.NanoID()
	template.Version = 1
	template.CreatedAt = r.db.Now()
	template.UpdatedAt = template.CreatedAt
	if template.RequiredDocTypes == nil {
		template.RequiredDocTypes = types.StringList{}
	}
	if template.RequiredVerificationTypes == nil {
		template.RequiredVerificationTypes = types.StringList{}
	}

	_, err := execute(ctx, r.db, qb().Insert(templateTableName).SetMap(utils.StructToMap(template)))
	if err != nil {
		return repoError("facilityTemplate", "create", "failed to insert facility template", err)
	}

	return nil
}

func (r *TemplateRepository) TemplateByID(ctx context.Context, id string) (*types.FacilityTemplate, error) {
	template, err := getOne[types.FacilityTemplate](ctx, r.db, qb().
		Select(templateColumns...).
		From(templateTableName).
		Where(sq.Eq{"id": id}).
		Limit(1))
	if err != nil {
		return nil, repoError("facilityTemplate", "getById", "failed to fetch facility template", err)
	}

	return template, nil
}

func (r *TemplateRepository) TemplateByName(ctx context.Context, name string) (*types.FacilityTemplate, error) {
	template, err := getOne[types.FacilityTemplate](ctx, r.db, qb().
		Select(templateColumns...).
		From(templateTableName).
		Where(sq.Eq{"name": name}).
		OrderBy(latestOrder...).
		Limit(1))
	if err != nil {
		return nil, repoError("facilityTemplate", "getByName", "failed to fetch facility template", err)
	}

	return template, nil
}

// QueryTemplates filters by exact id and jurisdiction and by name substring,
// most recently updated first.
func (r *TemplateRepository) QueryTemplates(ctx context.Context, filter types.TemplateFilter) ([]*types.FacilityTemplate, error) {
	builder := qb().
		Select(templateColumns...).
		From(templateTableName).
		OrderBy("updated_at DESC", "id DESC")

	if filter.FacilityID != nil {
		builder = builder.Where(sq.Eq{"id": *filter.FacilityID})
	}
	if filter.Jurisdiction != nil {
		builder = builder.Where(sq.Eq{"jurisdiction": *filter.Jurisdiction})
	}
	if filter.Name != nil {
		builder = builder.Where(sq.Like{"name": "%" + *filter.Name + "%"})
	}

	templates, err := getAll[types.FacilityTemplate](ctx, r.db, builder)
	if err != nil {
		return nil, repoError("facilityTemplate", "query", "failed to query facility templates", err)
	}

	return templates, nil
}

// UpdateTemplate applies the non-nil fields and bumps the version. It returns
// nil when the template does not exist.
func (r *TemplateRepository) UpdateTemplate(ctx context.Context, id string, update types.TemplateUpdate) (*types.FacilityTemplate, error) {
	var updated *types.FacilityTemplate
	err := r.db.Transaction(ctx, func(ctx context.Context) error {
		current, err := r.TemplateByID(ctx, id)
		if err != nil || current == nil {
			return err
		}

		if update.Name != nil {
			current.Name = *update.Name
		}
		if update.Jurisdiction != nil {
			current.Jurisdiction = *update.Jurisdiction
		}
		if update.RequiredDocTypes != nil {
			current.RequiredDocTypes = update.RequiredDocTypes
		}
		if update.RequiredVerificationTypes != nil {
			current.RequiredVerificationTypes = update.RequiredVerificationTypes
		}
		current.Version++
		current.UpdatedAt = r.db.Now()

		_, err = execute(ctx, r.db, qb().
			Update(templateTableName).
			SetMap(utils.StructToMap(current, "id", "created_at")).
			Where(sq.Eq{"id": id}))
		if err != nil {
			return repoError("facilityTemplate", "update", "failed to update facility template", err)
		}

		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *TemplateRepository) CountTemplates(ctx context.Context) (int, error) {
	query, args, err := qb().Select("COUNT(*)").From(templateTableName).ToSql()
	if err != nil {
		return 0, repoError("facilityTemplate", "count", "failed to generate count query", err)
	}

	var count int
	if _, err := r.db.Prepare(query).Get(ctx, &count, args...); err != nil {
		return 0, repoError("facilityTemplate", "count", "failed to count facility templates", err)
	}

	return count, nil
}
