package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/users/domain"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/users/ports"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/shared/pagination"
)

// Service exposes user bounded context use cases.
type Service struct {
	repo   ports.Repository
	hasher ports.PasswordHasher
}

func NewService(repo ports.Repository, hasher ports.PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

func (s *Service) CreateUser(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	if strings.TrimSpace(input.Password) == "" {
		return nil, mapError(domain.ErrEmptyPassword)
	}
	candidate := &domain.User{}
	if err := candidate.Rename(input.Name); err != nil {
		return nil, mapError(err)
	}
	if err := candidate.ChangeEmail(input.Email); err != nil {
		return nil, mapError(err)
	}
	if err := s.ensureEmailAvailable(ctx, candidate.Email, ""); err != nil {
		return nil, err
	}
	hash, err := s.hasher.HashPassword(ctx, input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user, err := domain.NewUser(candidate.Name, candidate.Email, hash)
	if err != nil {
		return nil, mapError(err)
	}
	return s.repo.Create(ctx, user)
}

func (s *Service) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}

func (s *Service) ListUsers(ctx context.Context, page pagination.Params) (*pagination.Page[*domain.User], error) {
	page = page.Normalize()
	users, total, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, err
	}
	return pagination.New(users, total, page), nil
}

func (s *Service) UpdateUser(ctx context.Context, input ports.UpdateUserInput) (*domain.User, error) {
	existing, err := s.repo.GetByID(ctx, strings.TrimSpace(input.ID))
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		if err := existing.Rename(*input.Name); err != nil {
			return nil, mapError(err)
		}
	}
	if input.Email != nil && domain.NormalizeEmail(*input.Email) != existing.Email {
		if err := existing.ChangeEmail(*input.Email); err != nil {
			return nil, mapError(err)
		}
		if err := s.ensureEmailAvailable(ctx, existing.Email, existing.ID); err != nil {
			return nil, err
		}
	}
	if input.Password != nil {
		if strings.TrimSpace(*input.Password) == "" {
			return nil, mapError(domain.ErrEmptyPassword)
		}
		hash, err := s.hasher.HashPassword(ctx, *input.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		existing.PasswordHash = hash
	}
	if err := existing.Validate(); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Update(ctx, existing)
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, strings.TrimSpace(id))
}

func (s *Service) ensureEmailAvailable(ctx context.Context, email, ownerID string) error {
	found, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ports.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if found.ID != ownerID {
		return ports.ErrEmailTaken
	}
	return nil
}

var _ ports.Service = (*Service)(nil)
