package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/OSH212/phmarcel-rpg/internal/core/domain"
)

type ChecklistRepository struct {
	db *sql.DB
}

func NewChecklistRepository(db *sql.DB) *ChecklistRepository {
	return &ChecklistRepository{db: db}
}

// GetForUpdate locks the (intake, kind) row until the surrounding
// transaction ends. Concurrent reconciliations of the same kind queue
// behind the lock, so the recount-then-update sequence cannot lose writes.
func (r *ChecklistRepository) GetForUpdate(ctx context.Context, intakeID string, kind domain.DocKind) (*domain.ChecklistItem, error) {
	row := connFrom(ctx, r.db).QueryRowContext(ctx, `
SELECT id, intake_id, doc_kind, status, quantity_expected, quantity_received
FROM checklist_items
WHERE intake_id = $1 AND doc_kind = $2
FOR UPDATE
`, intakeID, string(kind))

	item, err := scanChecklistItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get checklist item",
				fmt.Errorf("no %s item in intake %s", kind, intakeID))
		}
		return nil, err
	}
	return item, nil
}

func (r *ChecklistRepository) ListByIntake(ctx context.Context, intakeID string) ([]domain.ChecklistItem, error) {
	rows, err := connFrom(ctx, r.db).QueryContext(ctx, `
SELECT id, intake_id, doc_kind, status, quantity_expected, quantity_received
FROM checklist_items
WHERE intake_id = $1
ORDER BY doc_kind
`, intakeID)
	if err != nil {
		return nil, fmt.Errorf("list checklist items: %w", err)
	}
	defer rows.Close()

	var items []domain.ChecklistItem
	for rows.Next() {
		item, err := scanChecklistItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checklist items: %w", err)
	}
	return items, nil
}

func (r *ChecklistRepository) UpdateProgress(ctx context.Context, id string, received int, status domain.ItemStatus) error {
	res, err := connFrom(ctx, r.db).ExecContext(ctx, `
UPDATE checklist_items
SET quantity_received = $2, status = $3
WHERE id = $1
`, id, received, string(status))
	if err != nil {
		return fmt.Errorf("update checklist progress: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "update checklist progress", fmt.Errorf("item %s", id))
	}
	return nil
}

func scanChecklistItem(row rowScanner) (*domain.ChecklistItem, error) {
	var item domain.ChecklistItem
	var kind, status string

	err := row.Scan(&item.ID, &item.IntakeID, &kind, &status, &item.QuantityExpected, &item.QuantityReceived)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan checklist item: %w", err)
	}

	item.Kind = domain.DocKind(kind)
	item.Status = domain.ItemStatus(status)
	return &item, nil
}
