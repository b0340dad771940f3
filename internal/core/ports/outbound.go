package ports

import (
	"context"
	"io"

	"github.com/OSH212/phmarcel-rpg/internal/core/domain"
)

// ClientRepository persists clients. Create fails with a Conflict kind on a
// duplicate email.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
}

// IntakeRepository persists intakes and their initial checklist. Create
// stores the intake together with its checklist items in one transaction
// and fails with a Conflict kind when (client, fiscal year) already exists.
type IntakeRepository interface {
	Create(ctx context.Context, intake *domain.Intake, items []domain.ChecklistItem) error
	GetByID(ctx context.Context, id string) (*domain.Intake, error)
	UpdateStatus(ctx context.Context, id string, status domain.IntakeStatus) error
}

// DocumentRepository persists and reads document state within intakes.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	FindByFingerprint(ctx context.Context, intakeID, sha256 string) (*domain.Document, error)
	ListByIntake(ctx context.Context, intakeID string) ([]domain.Document, error)
	UpdateKind(ctx context.Context, id string, kind domain.DocKind) error
	SaveExtraction(ctx context.Context, id string, fields domain.FieldMap) error
	// CountExtracted counts documents of the kind in the intake whose
	// extracted field map is non-null and non-empty. Classification alone
	// never counts.
	CountExtracted(ctx context.Context, intakeID string, kind domain.DocKind) (int, error)
}

// ChecklistRepository reads and updates checklist items.
type ChecklistRepository interface {
	// GetForUpdate locks the (intake, kind) item for the duration of the
	// surrounding transaction, serializing concurrent reconciliations.
	GetForUpdate(ctx context.Context, intakeID string, kind domain.DocKind) (*domain.ChecklistItem, error)
	ListByIntake(ctx context.Context, intakeID string) ([]domain.ChecklistItem, error)
	UpdateProgress(ctx context.Context, id string, received int, status domain.ItemStatus) error
}

// TxManager runs fn inside one storage transaction. Repository calls made
// with the ctx passed to fn join that transaction.
type TxManager interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// StoredBlob describes a file persisted in content-addressed storage.
type StoredBlob struct {
	Fingerprint string
	Path        string
	Size        int64
}

// BlobStore stores raw document bytes retrievable by (intake, fingerprint).
// Save computes the cryptographic content fingerprint.
type BlobStore interface {
	Save(ctx context.Context, intakeID, filename string, data io.Reader) (StoredBlob, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes document upload events.
type MessageQueue interface {
	PublishDocumentUploaded(ctx context.Context, documentID string) error
	SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// DocumentAnnotator is the external vision-model capability: classification
// into a document kind and kind-specific field extraction. Extract is
// defined only for non-unknown kinds; callers reject unknown before
// invoking it.
type DocumentAnnotator interface {
	Classify(ctx context.Context, storagePath string) (domain.DocKind, error)
	Extract(ctx context.Context, storagePath string, kind domain.DocKind) (domain.FieldMap, error)
}

// FileInspector validates an upload before anything is persisted and
// reports its mime type and, for PDFs, a page count.
type FileInspector interface {
	Inspect(filename string, data []byte) (mimeType string, pages int, err error)
}
