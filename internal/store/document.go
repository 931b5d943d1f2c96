package store

import (
	"context"

	"credentialing/internal/db"
	"credentialing/internal/utils"
	"credentialing/pkg/types"

	sq "github.com/Masterminds/squirrel"
)

var documentColumns = utils.StructTagValues(types.Document{})

type DocumentRepository struct {
	db *db.DB
}

func NewDocumentRepository(database *db.DB) *DocumentRepository {
	return &DocumentRepository{db: database}
}

// CreateDocument inserts a new submission attempt. A preset CreatedAt is kept.
func (r *DocumentRepository) CreateDocument(ctx context.Context, document *types.Document) error {
	document.ID = utils.NanoID()
	if document.CreatedAt.IsZero() {
		document.CreatedAt = r.db.Now()
	}
	document.UpdatedAt = document.CreatedAt
	if document.Metadata == nil {
		document.Metadata = types.JSONObject{}
	}

	_, err := execute(ctx, r.db, qb().Insert(documentTableName).SetMap(utils.StructToMap(document)))
	if err != nil {
		return repoError("document", "create", "failed to insert document", err)
	}

	return nil
}

func (r *DocumentRepository) DocumentByID(ctx context.Context, id string) (*types.Document, error) {
	document, err := getOne[types.Document](ctx, r.db, qb().
		Select(documentColumns...).
		From(documentTableName).
		Where(sq.Eq{"id": id}).
		Limit(1))
	if err != nil {
		return nil, repoError("document", "getById", "failed to fetch document", err)
	}

	return document, nil
}

func (r *DocumentRepository) DocumentsByCase(ctx context.Context, caseID string) ([]*types.Document, error) {
	documents, err := getAll[types.Document](ctx, r.db, qb().
		Select(documentColumns...).
		From(documentTableName).
		Where(sq.Eq{"case_id": caseID}).
		OrderBy("created_at ASC", "id ASC"))
	if err != nil {
		return nil, repoError("document", "getByCaseId", "failed to fetch documents", err)
	}

	return documents, nil
}

// LatestDocumentByType returns the newest document of docType for the case.
func (r *DocumentRepository) LatestDocumentByType(ctx context.Context, caseID, docType string) (*types.Document, error) {
	document, err := getOne[types.Document](ctx, r.db, qb().
		Select(documentColumns...).
		From(documentTableName).
		Where(sq.Eq{"case_id": caseID, "doc_type": docType}).
		OrderBy(latestOrder...).
		Limit(1))
	if err != nil {
		return nil, repoError("document", "getLatestByDocType", "failed to fetch latest document", err)
	}

	return document, nil
}
