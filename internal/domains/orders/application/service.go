package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/domain"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/ports"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/shared/pagination"
)

// DefaultLookupConcurrency bounds parallel product reads per order.
const DefaultLookupConcurrency = 4

// Service builds orders from user and catalog state and exposes order queries.
type Service struct {
	repo         ports.Repository
	users        ports.UserDirectory
	catalog      ports.ProductCatalog
	tx           ports.TxManager
	publisher    ports.EventPublisher
	logger       *slog.Logger
	reserveStock bool
	concurrency  int
}

type Option func(*Service)

// WithStockReservation makes order creation debit stock in the same
// transaction that stores the order.
func WithStockReservation(enabled bool) Option {
	return func(s *Service) {
		s.reserveStock = enabled
	}
}

func WithLookupConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithTxManager(tx ports.TxManager) Option {
	return func(s *Service) {
		if tx != nil {
			s.tx = tx
		}
	}
}

func WithEventPublisher(publisher ports.EventPublisher) Option {
	return func(s *Service) {
		if publisher != nil {
			s.publisher = publisher
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(repo ports.Repository, users ports.UserDirectory, catalog ports.ProductCatalog, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		users:       users,
		catalog:     catalog,
		tx:          passthroughTx{},
		publisher:   ports.NoopPublisher{},
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		concurrency: DefaultLookupConcurrency,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateOrder validates the request against current user and catalog state,
// prices every line at the product's current price and stores the order with
// its items as one unit. Validation runs before any write.
func (s *Service) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, &InvalidRequestError{Reason: "order must contain at least one product", Err: domain.ErrNoItems}
	}
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, &InvalidRequestError{Reason: "user id is required", Err: domain.ErrEmptyUserID}
	}
	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return nil, &PersistenceError{Op: "lookup user", Err: err}
	}
	if !exists {
		return nil, &UserNotFoundError{UserID: userID}
	}

	snapshots, lookupErrs := s.lookupProducts(ctx, input.Items)

	items := make([]domain.LineItem, 0, len(input.Items))
	names := make(map[string]string, len(input.Items))
	for _, line := range input.Items {
		productID := strings.TrimSpace(line.ProductID)
		if productID == "" {
			return nil, &InvalidRequestError{Reason: "product id is required", Err: domain.ErrEmptyProductID}
		}
		if line.Quantity <= 0 {
			return nil, &InvalidRequestError{Reason: "quantity must be greater than zero", ProductID: productID, Err: domain.ErrInvalidQuantity}
		}
		if err := lookupErrs[productID]; err != nil {
			return nil, &PersistenceError{Op: "lookup product", Err: err}
		}
		product := snapshots[productID]
		if product == nil {
			return nil, &ProductNotFoundError{ProductID: productID}
		}
		if product.Stock < line.Quantity {
			return nil, &InsufficientStockError{
				ProductID:   productID,
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   line.Quantity,
			}
		}
		item, err := domain.NewLineItem(productID, line.Quantity, product.Price)
		if err != nil {
			return nil, &InvalidRequestError{Reason: err.Error(), ProductID: productID, Err: err}
		}
		items = append(items, item)
		names[productID] = product.Name
	}

	order, err := domain.NewOrder(userID, items)
	if err != nil {
		return nil, mapError(err)
	}

	var saved *domain.Order
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if s.reserveStock {
			if err := s.catalog.ReserveStock(ctx, reservationsFor(items)); err != nil {
				return err
			}
		}
		created, err := s.repo.Create(ctx, order)
		if err != nil {
			return err
		}
		saved = created
		return nil
	})
	if err != nil {
		return nil, classifyWriteError(err, names)
	}

	if err := s.publisher.PublishOrderCreated(ctx, domain.NewOrderCreated(saved)); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "order.created event not published",
			slog.String("order.id", saved.ID), slog.String("error", err.Error()))
	}
	return saved, nil
}

// lookupProducts reads every distinct, well-formed product id concurrently.
// Results are keyed by id so the caller can evaluate lines in request order.
func (s *Service) lookupProducts(ctx context.Context, lines []ports.OrderLineInput) (map[string]*ports.ProductSnapshot, map[string]error) {
	ids := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		id := strings.TrimSpace(line.ProductID)
		if id == "" || line.Quantity <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	results := make([]*ports.ProductSnapshot, len(ids))
	errs := make([]error, len(ids))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			results[i], errs[i] = s.catalog.FindProduct(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	snapshots := make(map[string]*ports.ProductSnapshot, len(ids))
	lookupErrs := make(map[string]error)
	for i, id := range ids {
		snapshots[id] = results[i]
		if errs[i] != nil {
			lookupErrs[id] = errs[i]
		}
	}
	return snapshots, lookupErrs
}

func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	id = strings.TrimSpace(id)
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, filter ports.ListFilter) (*pagination.Page[*domain.Order], error) {
	filter.UserID = strings.TrimSpace(filter.UserID)
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, mapError(domain.ErrInvalidStatus)
	}
	filter.Page = filter.Page.Normalize()
	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return pagination.New(orders, total, filter.Page), nil
}

func (s *Service) UpdateOrderStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error) {
	if !status.Valid() {
		return nil, mapError(domain.ErrInvalidStatus)
	}
	return s.repo.UpdateStatus(ctx, strings.TrimSpace(id), status)
}

func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, strings.TrimSpace(id))
}

func reservationsFor(items []domain.LineItem) []ports.StockReservation {
	out := make([]ports.StockReservation, 0, len(items))
	for _, item := range items {
		out = append(out, ports.StockReservation{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return out
}

// classifyWriteError turns a lost stock race into InsufficientStock and
// everything else into an opaque persistence failure.
func classifyWriteError(err error, names map[string]string) error {
	var shortage *ports.StockShortageError
	if errors.As(err, &shortage) {
		return &InsufficientStockError{
			ProductID:   shortage.ProductID,
			ProductName: names[shortage.ProductID],
			Available:   shortage.Available,
			Requested:   shortage.Requested,
		}
	}
	return &PersistenceError{Op: "create order", Err: err}
}

// passthroughTx runs fn without a transaction for stores that are atomic per call.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var _ ports.Service = (*Service)(nil)
