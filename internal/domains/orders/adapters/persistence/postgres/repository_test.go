package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/domain"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/ports"
	platformpostgres "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/platform/postgres"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/platform/sqlitetest"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/shared/pagination"
)

func newOrder(t *testing.T, userID string) *domain.Order {
	t.Helper()
	a, err := domain.NewLineItem("p1", 2, decimal.RequireFromString("10.00"))
	require.NoError(t, err)
	b, err := domain.NewLineItem("p2", 1, decimal.RequireFromString("20.00"))
	require.NoError(t, err)
	order, err := domain.NewOrder(userID, []domain.LineItem{a, b})
	require.NoError(t, err)
	return order
}

func TestRepository_SQLite(t *testing.T) {
	runRepositorySuite(t, func(t *testing.T) *gorm.DB { return sqlitetest.Open(t) })
}

func runRepositorySuite(t *testing.T, open func(t *testing.T) *gorm.DB) {
	t.Run("create persists header and items", func(t *testing.T) {
		repo := NewRepository(open(t))
		ctx := context.Background()

		saved, err := repo.Create(ctx, newOrder(t, "u1"))
		require.NoError(t, err)
		require.NotEmpty(t, saved.ID)

		header, err := repo.GetByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, header.Status)
		assert.Equal(t, "40.00", header.TotalAmount.StringFixed(2))

		items, err := repo.ListItems(ctx, saved.ID)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "p1", items[0].ProductID)
		assert.Equal(t, "10.00", items[0].UnitPrice.StringFixed(2))
		assert.Equal(t, "20.00", items[0].LineTotal.StringFixed(2))
		assert.Equal(t, "p2", items[1].ProductID)

		_, err = repo.ListItems(ctx, "missing")
		assert.ErrorIs(t, err, ports.ErrNotFound)
	})

	t.Run("create rolls back with the outer transaction", func(t *testing.T) {
		db := open(t)
		repo := NewRepository(db)
		tx := platformpostgres.NewTxManager(db)
		ctx := context.Background()
		boom := errors.New("boom")

		err := tx.RunInTx(ctx, func(ctx context.Context) error {
			_, err := repo.Create(ctx, newOrder(t, "u1"))
			require.NoError(t, err)
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, total, err := repo.List(ctx, ports.ListFilter{})
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("list filters and update status", func(t *testing.T) {
		repo := NewRepository(open(t))
		ctx := context.Background()
		first, err := repo.Create(ctx, newOrder(t, "u1"))
		require.NoError(t, err)
		_, err = repo.Create(ctx, newOrder(t, "u2"))
		require.NoError(t, err)

		orders, total, err := repo.List(ctx, ports.ListFilter{UserID: "u1", Page: pagination.Params{Page: 1, Limit: 10}})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, orders, 1)
		assert.Equal(t, first.ID, orders[0].ID)

		updated, err := repo.UpdateStatus(ctx, first.ID, domain.StatusConfirmed)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusConfirmed, updated.Status)

		_, total, err = repo.List(ctx, ports.ListFilter{Status: domain.StatusConfirmed})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)

		_, err = repo.UpdateStatus(ctx, "missing", domain.StatusShipped)
		assert.ErrorIs(t, err, ports.ErrNotFound)
	})

	t.Run("delete cascades to items", func(t *testing.T) {
		db := open(t)
		repo := NewRepository(db)
		ctx := context.Background()
		saved, err := repo.Create(ctx, newOrder(t, "u1"))
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, saved.ID))
		var remaining int64
		require.NoError(t, db.Model(&orderItemRecord{}).Where("order_id = ?", saved.ID).Count(&remaining).Error)
		assert.Zero(t, remaining)
		assert.ErrorIs(t, repo.Delete(ctx, saved.ID), ports.ErrNotFound)
	})
}
