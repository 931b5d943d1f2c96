package db

import (
	"context"
	"fmt"

	"credentialing/internal/utils"
	"credentialing/pkg/types"

	sq "github.com/Masterminds/squirrel"
)

// DefaultTemplate is inserted the first time a database is initialized.
func DefaultTemplate() types.FacilityTemplate {
	return types.FacilityTemplate{
		Name:                      "General Hospital TX",
		Jurisdiction:              "TX",
		Version:                   1,
		RequiredDocTypes:          types.StringList{"rn_license", "bls_cert", "tb_test", "physical", "background_check"},
		RequiredVerificationTypes: types.StringList{"nursys", "oig_sam"},
	}
}

func (d *DB) seed(ctx context.Context) error {
	return d.Transaction(ctx, func(ctx context.Context) error {
		var count int
		if _, err := d.Prepare("SELECT COUNT(*) FROM facility_templates").Get(ctx, &count); err != nil {
			return fmt.Errorf("failed to count facility templates: %w", err)
		}

		if count > 0 {
			return nil
		}

		template := DefaultTemplate()
		template.ID = utils.NanoID()
		template.CreatedAt = d.Now()
		template.UpdatedAt = template.CreatedAt

		query, args, err := sq.Insert("facility_templates").SetMap(utils.StructToMap(template)).ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate seed template query: %w", err)
		}

		if _, err := d.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert seed template: %w", err)
		}

		return nil
	})
}
