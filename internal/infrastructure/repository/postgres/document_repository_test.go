package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/OSH212/phmarcel-rpg/internal/core/domain"
)

func newDocRepoWithMock(t *testing.T) (*DocumentRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &DocumentRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestDocumentGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newDocRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, intake_id, filename, sha256").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDocumentCreateMapsUniqueViolationToConflict(t *testing.T) {
	repo, mock, done := newDocRepoWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO documents").
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

	now := time.Now().UTC()
	err := repo.Create(context.Background(), &domain.Document{
		ID:         "doc-1",
		IntakeID:   "intake-1",
		Filename:   "t4.pdf",
		SHA256:     "abc",
		MimeType:   "application/pdf",
		SizeBytes:  42,
		Kind:       domain.KindUnknown,
		UploadedAt: now,
		UpdatedAt:  now,
	})
	if !domain.IsKind(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDocumentSaveExtractionReturnsNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newDocRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE documents").
		WithArgs("missing", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SaveExtraction(context.Background(), "missing", domain.FieldMap{"employer": "Acme"})
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDocumentSaveExtractionEmptyFieldsStoresSQLNull(t *testing.T) {
	for name, fields := range map[string]domain.FieldMap{
		"nil map":   nil,
		"empty map": {},
	} {
		t.Run(name, func(t *testing.T) {
			repo, mock, done := newDocRepoWithMock(t)
			defer done()

			mock.ExpectExec("UPDATE documents").
				WithArgs("doc-1", nil, sqlmock.AnyArg()).
				WillReturnResult(sqlmock.NewResult(0, 1))

			if err := repo.SaveExtraction(context.Background(), "doc-1", fields); err != nil {
				t.Fatalf("SaveExtraction() error = %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("expectations: %v", err)
			}
		})
	}
}

func TestCountExtractedFiltersByIntakeAndKind(t *testing.T) {
	repo, mock, done := newDocRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("intake-1", string(domain.KindReceipt)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountExtracted(context.Background(), "intake-1", domain.KindReceipt)
	if err != nil {
		t.Fatalf("CountExtracted() error = %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListByIntakeDecodesExtractedFields(t *testing.T) {
	repo, mock, done := newDocRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "intake_id", "filename", "sha256", "mime_type", "size_bytes",
		"page_count", "storage_path", "doc_kind", "extracted_data", "uploaded_at", "updated_at",
	}).
		AddRow("doc-1", "intake-1", "t4.pdf", "abc", "application/pdf", int64(42),
			2, "/blobs/intake-1/abc.pdf", "tax_form", []byte(`{"employer":"Acme"}`), now, now).
		AddRow("doc-2", "intake-1", "receipt.png", "def", "image/png", int64(7),
			0, "/blobs/intake-1/def.png", "unknown", nil, now, now)

	mock.ExpectQuery("SELECT id, intake_id, filename, sha256").
		WithArgs("intake-1").
		WillReturnRows(rows)

	docs, err := repo.ListByIntake(context.Background(), "intake-1")
	if err != nil {
		t.Fatalf("ListByIntake() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("len(docs) = %d, want 2", len(docs))
	}
	if docs[0].Extracted["employer"] != "Acme" {
		t.Fatalf("extracted fields not decoded: %v", docs[0].Extracted)
	}
	if docs[1].Extracted != nil {
		t.Fatalf("expected nil field map for unextracted document, got %v", docs[1].Extracted)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
