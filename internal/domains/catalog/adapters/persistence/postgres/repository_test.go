package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/catalog/domain"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/catalog/ports"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/platform/sqlitetest"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/shared/pagination"
)

func newProduct(t *testing.T, name, price string, stock int) *domain.Product {
	t.Helper()
	product, err := domain.NewProduct(name, "", decimal.RequireFromString(price), stock)
	require.NoError(t, err)
	return product
}

func TestRepository_SQLite(t *testing.T) {
	runRepositorySuite(t, func(t *testing.T) *gorm.DB { return sqlitetest.Open(t) })
}

func runRepositorySuite(t *testing.T, open func(t *testing.T) *gorm.DB) {
	t.Run("create and get", func(t *testing.T) {
		repo := NewRepository(open(t))
		ctx := context.Background()

		saved, err := repo.Create(ctx, newProduct(t, "Keyboard", "49.90", 7))
		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)

		got, err := repo.GetByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "Keyboard", got.Name)
		assert.Equal(t, "49.90", got.Price.StringFixed(2))
		assert.Equal(t, 7, got.Stock)

		_, err = repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, ports.ErrNotFound)
	})

	t.Run("list filters by name", func(t *testing.T) {
		repo := NewRepository(open(t))
		ctx := context.Background()
		for i, name := range []string{"Red Mug", "Blue Mug", "Lamp"} {
			_, err := repo.Create(ctx, newProduct(t, name, fmt.Sprintf("%d.00", i+1), 1))
			require.NoError(t, err)
		}

		products, total, err := repo.List(ctx, ports.ListFilter{NameContains: "mug", Page: pagination.Params{Page: 1, Limit: 10}})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, products, 2)

		_, total, err = repo.List(ctx, ports.ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})

	t.Run("update and delete", func(t *testing.T) {
		repo := NewRepository(open(t))
		ctx := context.Background()
		saved, err := repo.Create(ctx, newProduct(t, "Lamp", "10.00", 2))
		require.NoError(t, err)

		price := decimal.RequireFromString("12.345")
		updated, err := repo.Update(ctx, saved.ID, ports.ProductChanges{Price: &price})
		require.NoError(t, err)
		assert.Equal(t, "12.35", updated.Price.StringFixed(2))
		assert.Equal(t, "Lamp", updated.Name)

		_, err = repo.Update(ctx, "missing", ports.ProductChanges{Price: &price})
		assert.ErrorIs(t, err, ports.ErrNotFound)

		require.NoError(t, repo.Delete(ctx, saved.ID))
		assert.ErrorIs(t, repo.Delete(ctx, saved.ID), ports.ErrNotFound)
	})

	t.Run("rename keeps stock reserved since the read", func(t *testing.T) {
		repo := NewRepository(open(t))
		ctx := context.Background()
		saved, err := repo.Create(ctx, newProduct(t, "Mouse", "25.00", 5))
		require.NoError(t, err)

		require.NoError(t, repo.ReserveStock(ctx, []ports.StockReservation{{ProductID: saved.ID, Quantity: 3}}))
		name := "Mouse v2"
		updated, err := repo.Update(ctx, saved.ID, ports.ProductChanges{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Mouse v2", updated.Name)
		assert.Equal(t, 2, updated.Stock)
	})

	t.Run("reserve stock is all or nothing", func(t *testing.T) {
		repo := NewRepository(open(t))
		ctx := context.Background()
		p1, err := repo.Create(ctx, newProduct(t, "P1", "10.00", 5))
		require.NoError(t, err)
		p2, err := repo.Create(ctx, newProduct(t, "P2", "20.00", 1))
		require.NoError(t, err)

		err = repo.ReserveStock(ctx, []ports.StockReservation{
			{ProductID: p1.ID, Quantity: 2},
			{ProductID: p2.ID, Quantity: 2},
		})
		var shortage *ports.StockShortageError
		require.True(t, errors.As(err, &shortage))
		assert.Equal(t, p2.ID, shortage.ProductID)
		assert.Equal(t, 1, shortage.Available)
		assert.Equal(t, 2, shortage.Requested)

		reloaded, err := repo.GetByID(ctx, p1.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, reloaded.Stock)

		require.NoError(t, repo.ReserveStock(ctx, []ports.StockReservation{
			{ProductID: p1.ID, Quantity: 2},
			{ProductID: p1.ID, Quantity: 1},
			{ProductID: p2.ID, Quantity: 1},
		}))
		reloaded, err = repo.GetByID(ctx, p1.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, reloaded.Stock)
		reloaded, err = repo.GetByID(ctx, p2.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, reloaded.Stock)

		err = repo.ReserveStock(ctx, []ports.StockReservation{{ProductID: "ghost", Quantity: 1}})
		assert.ErrorIs(t, err, ports.ErrNotFound)
	})
}
