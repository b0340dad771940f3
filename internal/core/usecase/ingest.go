package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/OSH212/phmarcel-rpg/internal/core/domain"
	"github.com/OSH212/phmarcel-rpg/internal/core/ports"
)

type IngestDocumentUseCase struct {
	intakes   ports.IntakeRepository
	documents ports.DocumentRepository
	inspector ports.FileInspector
	blobs     ports.BlobStore
	queue     ports.MessageQueue
}

func NewIngestDocumentUseCase(
	intakes ports.IntakeRepository,
	documents ports.DocumentRepository,
	inspector ports.FileInspector,
	blobs ports.BlobStore,
	queue ports.MessageQueue,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		intakes:   intakes,
		documents: documents,
		inspector: inspector,
		blobs:     blobs,
		queue:     queue,
	}
}

// Upload validates the file, persists it content-addressed under the intake
// and records the document as unclassified. The same content twice in one
// intake is a conflict; the same content in another intake is independent.
func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	intakeID, filename string,
	body io.Reader,
) (*domain.Document, error) {
	if _, err := uc.intakes.GetByID(ctx, intakeID); err != nil {
		return nil, fmt.Errorf("fetch intake: %w", err)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read upload body: %w", err)
	}

	mimeType, pages, err := uc.inspector.Inspect(filename, data)
	if err != nil {
		return nil, fmt.Errorf("inspect upload: %w", err)
	}

	blob, err := uc.blobs.Save(ctx, intakeID, filename, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("save to blob storage: %w", err)
	}

	if existing, err := uc.documents.FindByFingerprint(ctx, intakeID, blob.Fingerprint); err == nil {
		return nil, domain.WrapError(domain.ErrConflict, "upload document",
			fmt.Errorf("content %s already uploaded as %q", blob.Fingerprint, existing.Filename))
	} else if !domain.IsKind(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check duplicate fingerprint: %w", err)
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:          uuid.NewString(),
		IntakeID:    intakeID,
		Filename:    filename,
		SHA256:      blob.Fingerprint,
		MimeType:    mimeType,
		SizeBytes:   blob.Size,
		PageCount:   pages,
		StoragePath: blob.Path,
		Kind:        domain.KindUnknown,
		UploadedAt:  now,
		UpdatedAt:   now,
	}
	if err := uc.documents.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document metadata: %w", err)
	}

	if err := uc.queue.PublishDocumentUploaded(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("publish upload event: %w", err)
	}
	return doc, nil
}
