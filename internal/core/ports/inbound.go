package ports

import (
	"context"
	"io"

	"github.com/OSH212/phmarcel-rpg/internal/core/domain"
)

// ClientDirectory is the inbound contract for client onboarding and lookup.
type ClientDirectory interface {
	Create(ctx context.Context, name, email string, complexity domain.Complexity) (*domain.Client, error)
	GetByID(ctx context.Context, id string) (*domain.Client, error)
}

// IntakeManager is the inbound contract for opening and reading intakes.
// Opening an intake atomically creates its checklist from the requirement
// policy of the owning client's complexity tier.
type IntakeManager interface {
	Open(ctx context.Context, clientID string, fiscalYear int) (*domain.Intake, []domain.ChecklistItem, error)
	GetByID(ctx context.Context, id string) (*domain.Intake, error)
}

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, intakeID, filename string, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor drives classification and extraction, per document and
// per intake. Batch operations skip failing documents and keep going.
type DocumentProcessor interface {
	ClassifyByID(ctx context.Context, documentID string) (*domain.Document, error)
	ExtractByID(ctx context.Context, documentID string) (*domain.Document, error)
	ProcessByID(ctx context.Context, documentID string) error
	ClassifyIntake(ctx context.Context, intakeID string) ([]domain.ClassificationResult, error)
	ExtractIntake(ctx context.Context, intakeID string) ([]domain.ExtractionResult, error)
}

// ChecklistReconciler keeps checklist items consistent with extracted
// documents. Invoked after an extraction stores a usable field map.
type ChecklistReconciler interface {
	DocumentExtracted(ctx context.Context, doc *domain.Document) error
}

// ChecklistReader produces the checklist read view for an intake.
type ChecklistReader interface {
	View(ctx context.Context, intakeID string) (*domain.ChecklistView, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}
