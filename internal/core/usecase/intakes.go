package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/OSH212/phmarcel-rpg/internal/core/domain"
	"github.com/OSH212/phmarcel-rpg/internal/core/ports"
)

type IntakeManagerUseCase struct {
	clients ports.ClientRepository
	intakes ports.IntakeRepository
}

func NewIntakeManagerUseCase(clients ports.ClientRepository, intakes ports.IntakeRepository) *IntakeManagerUseCase {
	return &IntakeManagerUseCase{clients: clients, intakes: intakes}
}

// Open creates the intake for (client, fiscal year) and seeds its checklist
// from the client's requirement set. Intake and checklist items are stored
// in one transaction; a second intake for the same pair is a conflict.
func (uc *IntakeManagerUseCase) Open(
	ctx context.Context,
	clientID string,
	fiscalYear int,
) (*domain.Intake, []domain.ChecklistItem, error) {
	client, err := uc.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch client: %w", err)
	}

	intake := &domain.Intake{
		ID:         uuid.NewString(),
		ClientID:   client.ID,
		FiscalYear: fiscalYear,
		Status:     domain.IntakeOpen,
		CreatedAt:  time.Now().UTC(),
	}

	requirements := domain.RequirementsFor(client.Complexity)
	items := make([]domain.ChecklistItem, 0, len(requirements))
	for _, req := range requirements {
		items = append(items, domain.ChecklistItem{
			ID:               uuid.NewString(),
			IntakeID:         intake.ID,
			Kind:             req.Kind,
			Status:           domain.ItemMissing,
			QuantityExpected: req.Quantity,
			QuantityReceived: 0,
		})
	}

	if err := uc.intakes.Create(ctx, intake, items); err != nil {
		return nil, nil, fmt.Errorf("create intake: %w", err)
	}
	return intake, items, nil
}

func (uc *IntakeManagerUseCase) GetByID(ctx context.Context, id string) (*domain.Intake, error) {
	intake, err := uc.intakes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch intake by id: %w", err)
	}
	return intake, nil
}
