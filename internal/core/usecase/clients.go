package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/OSH212/phmarcel-rpg/internal/core/domain"
	"github.com/OSH212/phmarcel-rpg/internal/core/ports"
)

type ClientDirectoryUseCase struct {
	repo ports.ClientRepository
}

func NewClientDirectoryUseCase(repo ports.ClientRepository) *ClientDirectoryUseCase {
	return &ClientDirectoryUseCase{repo: repo}
}

func (uc *ClientDirectoryUseCase) Create(
	ctx context.Context,
	name, email string,
	complexity domain.Complexity,
) (*domain.Client, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, domain.WrapError(domain.ErrInvalidState, "create client", errors.New("name and email are required"))
	}
	if !complexity.Valid() {
		return nil, domain.WrapError(domain.ErrInvalidState, "create client",
			fmt.Errorf("unrecognized complexity tier: %q", complexity))
	}

	client := &domain.Client{
		ID:         uuid.NewString(),
		Name:       name,
		Email:      email,
		Complexity: complexity,
		CreatedAt:  time.Now().UTC(),
	}
	if err := uc.repo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return client, nil
}

func (uc *ClientDirectoryUseCase) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	client, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch client by id: %w", err)
	}
	return client, nil
}
