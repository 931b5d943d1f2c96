package tools

import (
	"context"

	"credentialing/internal/utils"
	"credentialing/pkg/types"
)

// Template tools are not case-scoped and never append a case event.

type CreateTemplateInput struct {
	Name                      string   `json:"name" validate:"required"`
	Jurisdiction              string   `json:"jurisdiction" validate:"required"`
	RequiredDocTypes          []string `json:"requiredDocTypes" validate:"required,dive,required"`
	RequiredVerificationTypes []string `json:"requiredVerificationTypes" validate:"required,dive,required"`
}

func createTemplate(ctx context.Context, r *Registry, in *CreateTemplateInput, _ *types.Principal) (any, error) {
	template := &types.FacilityTemplate{
		Name:                      in.Name,
		Jurisdiction:              in.Jurisdiction,
		RequiredDocTypes:          utils.UniqueStrings(in.RequiredDocTypes),
		RequiredVerificationTypes: utils.UniqueStrings(in.RequiredVerificationTypes),
	}
	if err := r.repos.Templates.CreateTemplate(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

type UpdateTemplateInput struct {
	FacilityID                string   `json:"facilityId" validate:"required"`
	Name                      *string  `json:"name"`
	Jurisdiction              *string  `json:"jurisdiction"`
	RequiredDocTypes          []string `json:"requiredDocTypes" validate:"omitempty,dive,required"`
	RequiredVerificationTypes []string `json:"requiredVerificationTypes" validate:"omitempty,dive,required"`
}

func updateTemplate(ctx context.Context, r *Registry, in *UpdateTemplateInput, _ *types.Principal) (any, error) {
	updated, err := r.repos.Templates.UpdateTemplate(ctx, in.FacilityID, types.TemplateUpdate{
		Name:                      in.Name,
		Jurisdiction:              in.Jurisdiction,
		RequiredDocTypes:          uniqueOrNil(in.RequiredDocTypes),
		RequiredVerificationTypes: uniqueOrNil(in.RequiredVerificationTypes),
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, types.NewNotFoundError("facility template", in.FacilityID)
	}
	return updated, nil
}

// uniqueOrNil keeps nil as "leave unchanged".
func uniqueOrNil(in []string) []string {
	if in == nil {
		return nil
	}
	return utils.UniqueStrings(in)
}

type QueryTemplatesInput struct {
	FacilityID   *string `json:"facilityId"`
	Jurisdiction *string `json:"jurisdiction"`
	Name         *string `json:"name"`
}

func queryTemplates(ctx context.Context, r *Registry, in *QueryTemplatesInput, _ *types.Principal) (any, error) {
	return r.repos.Templates.QueryTemplates(ctx, types.TemplateFilter{
		FacilityID:   in.FacilityID,
		Jurisdiction: in.Jurisdiction,
		Name:         in.Name,
	})
}
