package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/OSH212/phmarcel-rpg/internal/core/domain"
)

type IntakeRepository struct {
	db *sql.DB
}

func NewIntakeRepository(db *sql.DB) *IntakeRepository {
	return &IntakeRepository{db: db}
}

// Create stores the intake and its initial checklist in one transaction so
// a half-initialized intake can never be observed.
func (r *IntakeRepository) Create(ctx context.Context, intake *domain.Intake, items []domain.ChecklistItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin intake tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
INSERT INTO intakes (id, client_id, fiscal_year, status, created_at)
VALUES ($1, $2, $3, $4, $5)
`, intake.ID, intake.ClientID, intake.FiscalYear, string(intake.Status), intake.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.WrapError(domain.ErrConflict, "insert intake",
				fmt.Errorf("intake for client %s and fiscal year %d already exists", intake.ClientID, intake.FiscalYear))
		}
		return fmt.Errorf("insert intake: %w", err)
	}

	for _, item := range items {
		_, err = tx.ExecContext(ctx, `
INSERT INTO checklist_items (id, intake_id, doc_kind, status, quantity_expected, quantity_received)
VALUES ($1, $2, $3, $4, $5, $6)
`, item.ID, item.IntakeID, string(item.Kind), string(item.Status), item.QuantityExpected, item.QuantityReceived)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.WrapError(domain.ErrConflict, "insert checklist item",
					fmt.Errorf("duplicate checklist item for kind %s", item.Kind))
			}
			return fmt.Errorf("insert checklist item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit intake tx: %w", err)
	}
	return nil
}

func (r *IntakeRepository) GetByID(ctx context.Context, id string) (*domain.Intake, error) {
	row := connFrom(ctx, r.db).QueryRowContext(ctx, `
SELECT id, client_id, fiscal_year, status, created_at
FROM intakes
WHERE id = $1
`, id)

	var intake domain.Intake
	var status string
	err := row.Scan(&intake.ID, &intake.ClientID, &intake.FiscalYear, &status, &intake.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get intake", fmt.Errorf("intake %s", id))
		}
		return nil, fmt.Errorf("scan intake: %w", err)
	}
	intake.Status = domain.IntakeStatus(status)
	return &intake, nil
}

func (r *IntakeRepository) UpdateStatus(ctx context.Context, id string, status domain.IntakeStatus) error {
	res, err := connFrom(ctx, r.db).ExecContext(ctx, `
UPDATE intakes
SET status = $2
WHERE id = $1
`, id, string(status))
	if err != nil {
		return fmt.Errorf("update intake status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "update intake status", fmt.Errorf("intake %s", id))
	}
	return nil
}
