package usecase

import (
	"context"
	"fmt"

	"github.com/OSH212/phmarcel-rpg/internal/core/domain"
	"github.com/OSH212/phmarcel-rpg/internal/core/ports"
)

// ReconcileChecklistUseCase keeps checklist items consistent with the
// documents that actually carry extracted data. It recounts instead of
// incrementing: re-extracting the same document is idempotent, and a
// document whose extraction is later cleared falls out on the next recount.
type ReconcileChecklistUseCase struct {
	tx        ports.TxManager
	intakes   ports.IntakeRepository
	documents ports.DocumentRepository
	checklist ports.ChecklistRepository
}

func NewReconcileChecklistUseCase(
	tx ports.TxManager,
	intakes ports.IntakeRepository,
	documents ports.DocumentRepository,
	checklist ports.ChecklistRepository,
) *ReconcileChecklistUseCase {
	return &ReconcileChecklistUseCase{
		tx:        tx,
		intakes:   intakes,
		documents: documents,
		checklist: checklist,
	}
}

// DocumentExtracted reconciles the checklist after doc's field map was
// populated. No-op when the document is unclassified, carries no usable
// extraction, or its kind was never part of the intake's requirement set.
// The recount, item update and intake status cascade commit atomically.
func (uc *ReconcileChecklistUseCase) DocumentExtracted(ctx context.Context, doc *domain.Document) error {
	if !doc.Classified() || !doc.HasExtraction() {
		return nil
	}

	err := uc.tx.InTx(ctx, func(ctx context.Context) error {
		item, err := uc.checklist.GetForUpdate(ctx, doc.IntakeID, doc.Kind)
		if err != nil {
			if domain.IsKind(err, domain.ErrNotFound) {
				// Extra document kinds are tracked but have no checklist entry.
				return nil
			}
			return fmt.Errorf("fetch checklist item: %w", err)
		}

		count, err := uc.documents.CountExtracted(ctx, doc.IntakeID, doc.Kind)
		if err != nil {
			return fmt.Errorf("recount extracted documents: %w", err)
		}

		item.SetReceived(count)
		if err := uc.checklist.UpdateProgress(ctx, item.ID, item.QuantityReceived, item.Status); err != nil {
			return fmt.Errorf("update checklist item: %w", err)
		}

		return uc.cascadeIntakeStatus(ctx, doc.IntakeID)
	})
	if err != nil {
		return fmt.Errorf("reconcile checklist for doc=%s: %w", doc.ID, err)
	}
	return nil
}

func (uc *ReconcileChecklistUseCase) cascadeIntakeStatus(ctx context.Context, intakeID string) error {
	intake, err := uc.intakes.GetByID(ctx, intakeID)
	if err != nil {
		return fmt.Errorf("fetch intake: %w", err)
	}

	items, err := uc.checklist.ListByIntake(ctx, intakeID)
	if err != nil {
		return fmt.Errorf("list checklist items: %w", err)
	}

	status := domain.DeriveIntakeStatus(items)
	if status == intake.Status {
		return nil
	}
	if err := uc.intakes.UpdateStatus(ctx, intakeID, status); err != nil {
		return fmt.Errorf("update intake status: %w", err)
	}
	return nil
}
