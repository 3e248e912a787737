package ports

import (
	"context"

	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/users/domain"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/shared/pagination"
)

// CreateUserInput carries the fields required to register a user.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
}

// UpdateUserInput applies only the non-nil fields.
type UpdateUserInput struct {
	ID       string
	Name     *string
	Email    *string
	Password *string
}

// Service exposes user bounded context use cases to adapters.
type Service interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	ListUsers(ctx context.Context, page pagination.Params) (*pagination.Page[*domain.User], error)
	UpdateUser(ctx context.Context, input UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}
