package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/OSH212/phmarcel-rpg/internal/core/domain"
	"github.com/OSH212/phmarcel-rpg/internal/core/ports"
)

type ProcessDocumentUseCase struct {
	intakes    ports.IntakeRepository
	documents  ports.DocumentRepository
	annotator  ports.DocumentAnnotator
	reconciler ports.ChecklistReconciler
}

func NewProcessDocumentUseCase(
	intakes ports.IntakeRepository,
	documents ports.DocumentRepository,
	annotator ports.DocumentAnnotator,
	reconciler ports.ChecklistReconciler,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		intakes:    intakes,
		documents:  documents,
		annotator:  annotator,
		reconciler: reconciler,
	}
}

// ClassifyByID asks the model for the document's kind and records it. On
// model failure the document is left untouched and the error surfaces as
// an external failure.
func (uc *ProcessDocumentUseCase) ClassifyByID(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := uc.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	return uc.classify(ctx, doc)
}

func (uc *ProcessDocumentUseCase) classify(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	kind, err := uc.annotator.Classify(ctx, doc.StoragePath)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExternal, "classify document", err)
	}
	if !kind.Valid() {
		return nil, domain.WrapError(domain.ErrInvalidState, "classify document",
			fmt.Errorf("model returned unrecognized kind %q", kind))
	}

	if err := uc.documents.UpdateKind(ctx, doc.ID, kind); err != nil {
		return nil, fmt.Errorf("save classification: %w", err)
	}
	doc.Kind = kind
	return doc, nil
}

// ExtractByID runs field extraction for an already classified document,
// persists the field map and reconciles the intake's checklist.
func (uc *ProcessDocumentUseCase) ExtractByID(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := uc.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	return uc.extract(ctx, doc)
}

func (uc *ProcessDocumentUseCase) extract(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	if !doc.Classified() {
		return nil, domain.WrapError(domain.ErrInvalidState, "extract document",
			errors.New("document must be classified before extraction"))
	}

	fields, err := uc.annotator.Extract(ctx, doc.StoragePath, doc.Kind)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExternal, "extract document", err)
	}

	if err := uc.documents.SaveExtraction(ctx, doc.ID, fields); err != nil {
		return nil, fmt.Errorf("save extraction: %w", err)
	}
	doc.Extracted = fields

	if err := uc.reconciler.DocumentExtracted(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ProcessByID is the worker pipeline for a freshly uploaded document:
// classify, then extract when classification produced a known kind.
func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	doc, err := uc.documents.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}

	if !doc.Classified() {
		if doc, err = uc.classify(ctx, doc); err != nil {
			return err
		}
	}
	if !doc.Classified() {
		// Model could not place the document; leave it for manual review.
		return nil
	}
	if doc.HasExtraction() {
		return nil
	}

	_, err = uc.extract(ctx, doc)
	return err
}

// ClassifyIntake classifies every still-unknown document in the intake,
// skipping documents the model fails on.
func (uc *ProcessDocumentUseCase) ClassifyIntake(ctx context.Context, intakeID string) ([]domain.ClassificationResult, error) {
	docs, err := uc.pendingDocuments(ctx, intakeID, func(d *domain.Document) bool { return !d.Classified() })
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidState, "classify intake",
			errors.New("no unknown documents to classify"))
	}

	results := make([]domain.ClassificationResult, 0, len(docs))
	for i := range docs {
		doc, err := uc.classify(ctx, &docs[i])
		if err != nil {
			slog.Warn("classification skipped", "document_id", docs[i].ID, "error", err)
			continue
		}
		results = append(results, domain.ClassificationResult{DocumentID: doc.ID, Kind: doc.Kind})
	}
	return results, nil
}

// ExtractIntake extracts every classified document that has no usable
// field map yet, skipping documents the model fails on.
func (uc *ProcessDocumentUseCase) ExtractIntake(ctx context.Context, intakeID string) ([]domain.ExtractionResult, error) {
	docs, err := uc.pendingDocuments(ctx, intakeID, func(d *domain.Document) bool {
		return d.Classified() && !d.HasExtraction()
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidState, "extract intake",
			errors.New("no classified documents awaiting extraction"))
	}

	results := make([]domain.ExtractionResult, 0, len(docs))
	for i := range docs {
		doc, err := uc.extract(ctx, &docs[i])
		if err != nil {
			slog.Warn("extraction skipped", "document_id", docs[i].ID, "error", err)
			continue
		}
		results = append(results, domain.ExtractionResult{
			DocumentID:      doc.ID,
			Kind:            doc.Kind,
			FieldsExtracted: countPopulatedFields(doc.Extracted),
		})
	}
	return results, nil
}

func (uc *ProcessDocumentUseCase) pendingDocuments(
	ctx context.Context,
	intakeID string,
	keep func(*domain.Document) bool,
) ([]domain.Document, error) {
	if _, err := uc.intakes.GetByID(ctx, intakeID); err != nil {
		return nil, fmt.Errorf("fetch intake: %w", err)
	}
	docs, err := uc.documents.ListByIntake(ctx, intakeID)
	if err != nil {
		return nil, fmt.Errorf("list intake documents: %w", err)
	}
	pending := docs[:0]
	for i := range docs {
		if keep(&docs[i]) {
			pending = append(pending, docs[i])
		}
	}
	return pending, nil
}

func countPopulatedFields(fields domain.FieldMap) int {
	n := 0
	for _, v := range fields {
		if v != nil {
			n++
		}
	}
	return n
}

// GetByID exposes the document read model.
func (uc *ProcessDocumentUseCase) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := uc.documents.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	return doc, nil
}
