package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/google/uuid"

	"github.com/turtacn/InsureDoc-Intelligence/internal/domain/document"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

type postgresDocumentRepo struct {
	log      logging.Logger
	executor queryExecutor
}

// NewPostgresDocumentRepo returns a document.Repository backed by PostgreSQL.
func NewPostgresDocumentRepo(conn *postgres.Connection, log logging.Logger) document.Repository {
	return &postgresDocumentRepo{log: log, executor: conn.DB()}
}

const documentColumns = `id, tenant_id, user_id, filename, content_type, size_bytes, object_key, sha256,
	doc_type, confidence, keywords_matched, highlight_phrases, quality_score, page_count,
	text_preview, created_at`

func (r *postgresDocumentRepo) Create(ctx context.Context, d *document.Document) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	query := `
		INSERT INTO documents (
			id, tenant_id, user_id, filename, content_type, size_bytes, object_key, sha256,
			doc_type, confidence, keywords_matched, highlight_phrases, quality_score, page_count, text_preview
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at
	`
	err := r.executor.QueryRowContext(ctx, query,
		d.ID, d.TenantID, d.UserID, d.Filename, d.ContentType, d.Size, d.ObjectKey, d.SHA256,
		d.DocType, d.Confidence, string(marshalStrings(d.KeywordsMatched)), string(marshalStrings(d.HighlightPhrases)),
		d.QualityScore, d.PageCount, d.TextPreview,
	).Scan(&d.CreatedAt)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return errors.Wrap(err, errors.ErrCodeConflict, "document already exists")
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create document")
	}
	return nil
}

func (r *postgresDocumentRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*document.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE tenant_id = $1 AND id = $2`
	d, _, err := scanDocument(r.executor.QueryRowContext(ctx, query, tenantID, id), false)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.New(errors.ErrCodeDocumentNotFound, "document not found")
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load document")
	}
	return d, nil
}

func (r *postgresDocumentRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, filter document.ListFilter) ([]*document.Document, int64, error) {
	filter = filter.Normalize()
	query := `
		SELECT ` + documentColumns + `, COUNT(*) OVER() AS total
		FROM documents
		WHERE tenant_id = $1 AND ($2::text = '' OR doc_type = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.executor.QueryContext(ctx, query, tenantID, filter.DocType, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list documents")
	}
	defer rows.Close()

	docs := []*document.Document{}
	var total int64
	for rows.Next() {
		d, n, err := scanDocument(rows, true)
		if err != nil {
			return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan document")
		}
		docs = append(docs, d)
		total = n
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate documents")
	}
	return docs, total, nil
}

func (r *postgresDocumentRepo) FindSimilar(ctx context.Context, tenantID uuid.UUID, docType string, excludeID uuid.UUID, limit int) ([]document.Similar, error) {
	if limit <= 0 {
		limit = 5
	}
	query := `
		SELECT id, filename, doc_type, confidence
		FROM documents
		WHERE tenant_id = $1 AND doc_type = $2 AND id <> $3
		ORDER BY created_at DESC
		LIMIT $4
	`
	rows, err := r.executor.QueryContext(ctx, query, tenantID, docType, excludeID, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to find similar documents")
	}
	defer rows.Close()

	out := []document.Similar{}
	for rows.Next() {
		var s document.Similar
		if err := rows.Scan(&s.ID, &s.Filename, &s.DocType, &s.Score); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan similar document")
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate similar documents")
	}
	return out, nil
}

func scanDocument(row scanner, withTotal bool) (*document.Document, int64, error) {
	var d document.Document
	var keywords, phrases []byte
	var total int64
	dest := []interface{}{
		&d.ID, &d.TenantID, &d.UserID, &d.Filename, &d.ContentType, &d.Size, &d.ObjectKey, &d.SHA256,
		&d.DocType, &d.Confidence, &keywords, &phrases, &d.QualityScore, &d.PageCount,
		&d.TextPreview, &d.CreatedAt,
	}
	if withTotal {
		dest = append(dest, &total)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, 0, err
	}
	d.KeywordsMatched = unmarshalStrings(keywords)
	d.HighlightPhrases = unmarshalStrings(phrases)
	return &d, total, nil
}
