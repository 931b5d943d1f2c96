package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"credentialing/internal/db"
	"credentialing/internal/store"
	"credentialing/internal/utils"
	"credentialing/pkg/types"

	"github.com/sirupsen/logrus"
)

// DefaultTemplates is the built-in facility checklist catalog. The first
// entry is the template every new database is initialized with.
func DefaultTemplates() []types.FacilityTemplate {
	return []types.FacilityTemplate{
		db.DefaultTemplate(),
		{
			Name:                      "Coastal Medical Center CA",
			Jurisdiction:              "CA",
			RequiredDocTypes:          types.StringList{"rn_license", "bls_cert", "acls_cert", "tb_test", "physical", "background_check", "immunization_record"},
			RequiredVerificationTypes: types.StringList{"nursys", "oig_sam", "ca_brn"},
		},
		{
			Name:                      "Lakeside Clinic NY",
			Jurisdiction:              "NY",
			RequiredDocTypes:          types.StringList{"rn_license", "bls_cert", "physical", "background_check"},
			RequiredVerificationTypes: types.StringList{"nursys", "oig_sam"},
		},
	}
}

// LoadTemplates reads a JSON array of templates from path.
func LoadTemplates(path string) ([]types.FacilityTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates file: %w", err)
	}

	var templates []types.FacilityTemplate
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to decode templates file: %w", err)
	}

	for i, template := range templates {
		if template.Name == "" || template.Jurisdiction == "" {
			return nil, fmt.Errorf("template %d in %s needs a name and a jurisdiction", i, path)
		}
		templates[i].RequiredDocTypes = utils.UniqueStrings(template.RequiredDocTypes)
		templates[i].RequiredVerificationTypes = utils.UniqueStrings(template.RequiredVerificationTypes)
	}

	return templates, nil
}

type SyncReport struct {
	Created   int
	Updated   int
	Unchanged int
}

// SyncTemplates makes the database agree with templates, matching by name:
// - Inserts templates that don't exist
// - Updates changed templates, which bumps their version
//
// Templates missing from the list are left alone. Cases reference templates,
// and their snapshots make deleting one pointless anyway.
func SyncTemplates(ctx context.Context, repo *store.TemplateRepository, templates []types.FacilityTemplate, logger *logrus.Logger) (*SyncReport, error) {
	report := &SyncReport{}

	logger.WithField("count", len(templates)).Info("starting facility template sync")

	for _, template := range templates {
		entry := logger.WithFields(logrus.Fields{"name": template.Name, "jurisdiction": template.Jurisdiction})

		existing, err := repo.TemplateByName(ctx, template.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to look up template %s: %w", template.Name, err)
		}

		if existing == nil {
			if err := repo.CreateTemplate(ctx, &template); err != nil {
				return nil, fmt.Errorf("failed to create template %s: %w", template.Name, err)
			}
			entry.WithField("id", template.ID).Info("created template")
			report.Created++
			continue
		}

		update, changed := templateChanges(existing, &template)
		if !changed {
			report.Unchanged++
			continue
		}

		updated, err := repo.UpdateTemplate(ctx, existing.ID, update)
		if err != nil {
			return nil, fmt.Errorf("failed to update template %s: %w", template.Name, err)
		}
		entry.WithFields(logrus.Fields{"id": updated.ID, "version": updated.Version}).Info("updated template")
		report.Updated++
	}

	logger.WithFields(logrus.Fields{
		"created":   report.Created,
		"updated":   report.Updated,
		"unchanged": report.Unchanged,
	}).Info("facility template sync complete")

	return report, nil
}

func templateChanges(existing, desired *types.FacilityTemplate) (types.TemplateUpdate, bool) {
	var (
		update  types.TemplateUpdate
		changed bool
	)

	if existing.Jurisdiction != desired.Jurisdiction {
		update.Jurisdiction = &desired.Jurisdiction
		changed = true
	}
	if !slices.Equal(existing.RequiredDocTypes, desired.RequiredDocTypes) {
		update.RequiredDocTypes = append([]string{}, desired.RequiredDocTypes...)
		changed = true
	}
	if !slices.Equal(existing.RequiredVerificationTypes, desired.RequiredVerificationTypes) {
		update.RequiredVerificationTypes = append([]string{}, desired.RequiredVerificationTypes...)
		changed = true
	}

	return update, changed
}
