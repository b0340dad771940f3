package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/OSH212/phmarcel-rpg/internal/core/domain"
)

type ClientRepository struct {
	db *sql.DB
}

func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) error {
	_, err := connFrom(ctx, r.db).ExecContext(ctx, `
INSERT INTO clients (id, name, email, complexity, created_at)
VALUES ($1, $2, $3, $4, $5)
`, client.ID, client.Name, client.Email, string(client.Complexity), client.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.WrapError(domain.ErrConflict, "insert client",
				fmt.Errorf("email %s already registered", client.Email))
		}
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	row := connFrom(ctx, r.db).QueryRowContext(ctx, `
SELECT id, name, email, complexity, created_at
FROM clients
WHERE id = $1
`, id)

	var client domain.Client
	var complexity string
	err := row.Scan(&client.ID, &client.Name, &client.Email, &complexity, &client.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get client", fmt.Errorf("client %s", id))
		}
		return nil, fmt.Errorf("scan client: %w", err)
	}
	client.Complexity = domain.Complexity(complexity)
	return &client, nil
}
