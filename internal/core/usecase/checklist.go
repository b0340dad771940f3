package usecase

import (
	"context"
	"fmt"

	"github.com/OSH212/phmarcel-rpg/internal/core/domain"
	"github.com/OSH212/phmarcel-rpg/internal/core/ports"
)

// ChecklistViewUseCase builds the checklist read view. Pure read; all the
// arithmetic lives in domain.BuildChecklistView.
type ChecklistViewUseCase struct {
	intakes   ports.IntakeRepository
	checklist ports.ChecklistRepository
}

func NewChecklistViewUseCase(intakes ports.IntakeRepository, checklist ports.ChecklistRepository) *ChecklistViewUseCase {
	return &ChecklistViewUseCase{intakes: intakes, checklist: checklist}
}

func (uc *ChecklistViewUseCase) View(ctx context.Context, intakeID string) (*domain.ChecklistView, error) {
	intake, err := uc.intakes.GetByID(ctx, intakeID)
	if err != nil {
		return nil, fmt.Errorf("fetch intake: %w", err)
	}
	items, err := uc.checklist.ListByIntake(ctx, intakeID)
	if err != nil {
		return nil, fmt.Errorf("list checklist items: %w", err)
	}
	return domain.BuildChecklistView(intake, items), nil
}
