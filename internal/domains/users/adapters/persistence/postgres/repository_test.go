package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/users/domain"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/users/ports"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/platform/sqlitetest"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/shared/pagination"
)

func newUser(t *testing.T, name, email string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(name, email, "$argon2id$stub")
	require.NoError(t, err)
	return user
}

func TestRepository_SQLite(t *testing.T) {
	runRepositorySuite(t, func(t *testing.T) *gorm.DB { return sqlitetest.Open(t) })
}

func runRepositorySuite(t *testing.T, open func(t *testing.T) *gorm.DB) {
	t.Run("create and get", func(t *testing.T) {
		repo := NewRepository(open(t))
		ctx := context.Background()

		saved, err := repo.Create(ctx, newUser(t, "Alice", "Alice@Example.com"))
		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)
		assert.Equal(t, "alice@example.com", saved.Email)
		assert.False(t, saved.CreatedAt.IsZero())

		byID, err := repo.GetByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, saved.Email, byID.Email)

		byEmail, err := repo.GetByEmail(ctx, "ALICE@example.com")
		require.NoError(t, err)
		assert.Equal(t, saved.ID, byEmail.ID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := NewRepository(open(t))
		ctx := context.Background()
		_, err := repo.Create(ctx, newUser(t, "Alice", "alice@example.com"))
		require.NoError(t, err)
		_, err = repo.Create(ctx, newUser(t, "Other", "alice@example.com"))
		assert.ErrorIs(t, err, ports.ErrEmailTaken)
	})

	t.Run("update", func(t *testing.T) {
		repo := NewRepository(open(t))
		ctx := context.Background()
		saved, err := repo.Create(ctx, newUser(t, "Alice", "alice@example.com"))
		require.NoError(t, err)

		require.NoError(t, saved.Rename("Alice Smith"))
		updated, err := repo.Update(ctx, saved)
		require.NoError(t, err)
		assert.Equal(t, "Alice Smith", updated.Name)

		missing := newUser(t, "Ghost", "ghost@example.com")
		missing.ID = "does-not-exist"
		_, err = repo.Update(ctx, missing)
		assert.ErrorIs(t, err, ports.ErrNotFound)
	})

	t.Run("list and delete", func(t *testing.T) {
		repo := NewRepository(open(t))
		ctx := context.Background()
		var ids []string
		for i := 1; i <= 3; i++ {
			saved, err := repo.Create(ctx, newUser(t, fmt.Sprintf("user%d", i), fmt.Sprintf("user%d@example.com", i)))
			require.NoError(t, err)
			ids = append(ids, saved.ID)
		}

		users, total, err := repo.List(ctx, pagination.Params{Page: 1, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, users, 2)

		require.NoError(t, repo.Delete(ctx, ids[1]))
		_, err = repo.GetByID(ctx, ids[1])
		assert.ErrorIs(t, err, ports.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, ids[1]), ports.ErrNotFound)
	})
}
