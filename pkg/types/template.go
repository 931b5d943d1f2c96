package types

// FacilityTemplate is a jurisdiction scoped checklist. Version is bumped on
// every update.
type FacilityTemplate struct {
	ID                        string     `db:"id" json:"id"`
	Name                      string     `db:"name" json:"name"`
	Jurisdiction              string     `db:"jurisdiction" json:"jurisdiction"`
	Version                   int        `db:"version" json:"version"`
	RequiredDocTypes          StringList `db:"required_doc_types" json:"requiredDocTypes"`
	RequiredVerificationTypes StringList `db:"required_verification_types" json:"requiredVerificationTypes"`
	CreatedAt                 Timestamp  `db:"created_at" json:"createdAt"`
	UpdatedAt                 Timestamp  `db:"updated_at" json:"updatedAt"`
}

type TemplateFilter struct {
	FacilityID   *string
	Jurisdiction *string
	Name         *string
}

// TemplateUpdate carries the fields to change. Nil fields are left alone.
type TemplateUpdate struct {
	Name                      *string
	Jurisdiction              *string
	RequiredDocTypes          []string
	RequiredVerificationTypes []string
}
