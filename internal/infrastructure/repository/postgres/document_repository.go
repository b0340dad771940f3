package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/OSH212/phmarcel-rpg/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, intake_id, filename, sha256, mime_type, size_bytes, page_count, storage_path, doc_kind, extracted_data, uploaded_at, updated_at`

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	_, err := connFrom(ctx, r.db).ExecContext(ctx, `
INSERT INTO documents (`+documentColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`,
		doc.ID, doc.IntakeID, doc.Filename, doc.SHA256, doc.MimeType, doc.SizeBytes,
		doc.PageCount, doc.StoragePath, string(doc.Kind), nil, doc.UploadedAt, doc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.WrapError(domain.ErrConflict, "insert document",
				fmt.Errorf("content %s already present in intake %s", doc.SHA256, doc.IntakeID))
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := connFrom(ctx, r.db).QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE id = $1
`, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get document", fmt.Errorf("document %s", id))
		}
		return nil, err
	}
	return doc, nil
}

func (r *DocumentRepository) FindByFingerprint(ctx context.Context, intakeID, sha256 string) (*domain.Document, error) {
	row := connFrom(ctx, r.db).QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE intake_id = $1 AND sha256 = $2
`, intakeID, sha256)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "find document by fingerprint",
				fmt.Errorf("fingerprint %s in intake %s", sha256, intakeID))
		}
		return nil, err
	}
	return doc, nil
}

func (r *DocumentRepository) ListByIntake(ctx context.Context, intakeID string) ([]domain.Document, error) {
	rows, err := connFrom(ctx, r.db).QueryContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE intake_id = $1
ORDER BY uploaded_at
`, intakeID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) UpdateKind(ctx context.Context, id string, kind domain.DocKind) error {
	res, err := connFrom(ctx, r.db).ExecContext(ctx, `
UPDATE documents
SET doc_kind = $2, updated_at = $3
WHERE id = $1
`, id, string(kind), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document kind: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "update document kind", fmt.Errorf("document %s", id))
	}
	return nil
}

func (r *DocumentRepository) SaveExtraction(ctx context.Context, id string, fields domain.FieldMap) error {
	// An empty field map stays SQL NULL; jsonb 'null' is not NULL and
	// would satisfy the CountExtracted predicate.
	var payload any
	if len(fields) > 0 {
		encoded, err := json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("marshal extracted fields: %w", err)
		}
		payload = encoded
	}
	res, err := connFrom(ctx, r.db).ExecContext(ctx, `
UPDATE documents
SET extracted_data = $2, updated_at = $3
WHERE id = $1
`, id, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save extraction: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "save extraction", fmt.Errorf("document %s", id))
	}
	return nil
}

// CountExtracted implements the extraction-gated counting rule: only
// documents with a non-null, non-empty field map count toward a checklist
// recount.
func (r *DocumentRepository) CountExtracted(ctx context.Context, intakeID string, kind domain.DocKind) (int, error) {
	row := connFrom(ctx, r.db).QueryRowContext(ctx, `
SELECT COUNT(*)
FROM documents
WHERE intake_id = $1 AND doc_kind = $2 AND extracted_data IS NOT NULL AND extracted_data <> '{}'::jsonb
`, intakeID, string(kind))

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count extracted documents: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var kind string
	var extracted []byte

	err := row.Scan(
		&doc.ID, &doc.IntakeID, &doc.Filename, &doc.SHA256, &doc.MimeType, &doc.SizeBytes,
		&doc.PageCount, &doc.StoragePath, &kind, &extracted, &doc.UploadedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}

	doc.Kind = domain.DocKind(kind)
	if len(extracted) > 0 {
		if err := json.Unmarshal(extracted, &doc.Extracted); err != nil {
			return nil, fmt.Errorf("unmarshal extracted fields: %w", err)
		}
	}
	return &doc, nil
}
