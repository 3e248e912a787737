package directory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/catalog/domain"
	catalogports "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/catalog/ports"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/ports"
	usermemory "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/users/adapters/memory"
	userdomain "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/users/domain"
)

type failingUsers struct{ err error }

func (f failingUsers) GetByID(context.Context, string) (*userdomain.User, error) {
	return nil, f.err
}

func TestUsers_UserExists(t *testing.T) {
	ctx := context.Background()
	repo := usermemory.NewRepository()
	user, err := userdomain.NewUser("Ana", "ana@example.com", "hash")
	require.NoError(t, err)
	saved, err := repo.Create(ctx, user)
	require.NoError(t, err)

	dir := NewUsers(repo)
	ok, err := dir.UserExists(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = dir.UserExists(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, ok)

	boom := errors.New("connection reset")
	_, err = NewUsers(failingUsers{err: boom}).UserExists(ctx, "x")
	assert.ErrorIs(t, err, boom)
}

func TestProducts_FindAndReserve(t *testing.T) {
	ctx := context.Background()
	repo := catalogmemory.NewRepository()
	product, err := catalogdomain.NewProduct("Mug", "", decimal.RequireFromString("7.50"), 2)
	require.NoError(t, err)
	saved, err := repo.Create(ctx, product)
	require.NoError(t, err)

	dir := NewProducts(repo)
	snap, err := dir.FindProduct(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "Mug", snap.Name)
	assert.Equal(t, "7.50", snap.Price.StringFixed(2))

	snap, err = dir.FindProduct(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, snap)

	err = dir.ReserveStock(ctx, []ports.StockReservation{{ProductID: saved.ID, Quantity: 3}})
	var shortage *ports.StockShortageError
	require.True(t, errors.As(err, &shortage))
	assert.Equal(t, 2, shortage.Available)
	assert.Equal(t, 3, shortage.Requested)

	err = dir.ReserveStock(ctx, []ports.StockReservation{{ProductID: "ghost", Quantity: 4}})
	require.True(t, errors.As(err, &shortage))
	assert.Equal(t, "ghost", shortage.ProductID)
	assert.Zero(t, shortage.Available)
	assert.Equal(t, 4, shortage.Requested)

	require.NoError(t, dir.ReserveStock(ctx, []ports.StockReservation{{ProductID: saved.ID, Quantity: 2}}))
	snap, err = dir.FindProduct(ctx, saved.ID)
	require.NoError(t, err)
	assert.Zero(t, snap.Stock)
}

type countingCatalog struct {
	catalogports.Repository
	reads atomic.Int32
}

func (c *countingCatalog) GetByID(ctx context.Context, id string) (*catalogdomain.Product, error) {
	c.reads.Add(1)
	return c.Repository.GetByID(ctx, id)
}

func TestProducts_FindProductConcurrentCallersGetOwnCopy(t *testing.T) {
	ctx := context.Background()
	repo := &countingCatalog{Repository: catalogmemory.NewRepository()}
	product, err := catalogdomain.NewProduct("Caneca", "", decimal.RequireFromString("10.00"), 5)
	require.NoError(t, err)
	saved, err := repo.Create(ctx, product)
	require.NoError(t, err)

	dir := NewProducts(repo)
	const callers = 16
	snaps := make([]*ports.ProductSnapshot, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := dir.FindProduct(ctx, saved.ID)
			assert.NoError(t, err)
			snaps[i] = snap
		}()
	}
	wg.Wait()

	reads := repo.reads.Load()
	assert.GreaterOrEqual(t, reads, int32(1))
	assert.LessOrEqual(t, reads, int32(callers))
	for _, snap := range snaps {
		require.NotNil(t, snap)
		assert.Equal(t, "10.00", snap.Price.StringFixed(2))
		assert.Equal(t, 5, snap.Stock)
	}

	snaps[0].Stock = 0
	assert.Equal(t, 5, snaps[1].Stock)
}

type contextAwareCatalog struct {
	catalogports.Repository
}

func (c contextAwareCatalog) GetByID(ctx context.Context, id string) (*catalogdomain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.Repository.GetByID(ctx, id)
}

func TestProducts_FindProductSharedReadIgnoresCallerCancellation(t *testing.T) {
	repo := contextAwareCatalog{Repository: catalogmemory.NewRepository()}
	product, err := catalogdomain.NewProduct("Caneca", "", decimal.RequireFromString("10.00"), 5)
	require.NoError(t, err)
	saved, err := repo.Create(context.Background(), product)
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	snap, err := NewProducts(repo).FindProduct(cancelled, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 5, snap.Stock)
}
