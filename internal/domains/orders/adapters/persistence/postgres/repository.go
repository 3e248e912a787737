package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/domain"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/ports"
	platformpostgres "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders and their line items in PostgreSQL using GORM.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle and schema.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// orderRecord maps the order header to a relational table.
type orderRecord struct {
	ID          string          `gorm:"primaryKey;column:id;type:varchar(36)"`
	UserID      string          `gorm:"column:user_id;type:varchar(36)"`
	Status      string          `gorm:"column:status;type:varchar(32)"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:numeric(10,2)"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID         string          `gorm:"primaryKey;column:id;type:varchar(36)"`
	OrderID    string          `gorm:"column:order_id;type:varchar(36)"`
	ProductID  string          `gorm:"column:product_id;type:varchar(36)"`
	Position   int             `gorm:"column:position"`
	Quantity   int             `gorm:"column:quantity"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2)"`
	TotalPrice decimal.Decimal `gorm:"column:total_price;type:numeric(10,2)"`
	CreatedAt  time.Time       `gorm:"column:created_at"`
}

func (orderItemRecord) TableName() string { return "order_products" }

// Create inserts the header and every line item in one transaction.
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := order.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	ts := r.now().UTC()
	clone.ID = uuid.NewString()
	clone.CreatedAt, clone.UpdatedAt = ts, ts
	for i := range clone.Items {
		clone.Items[i].ID = uuid.NewString()
		clone.Items[i].OrderID = clone.ID
		clone.Items[i].CreatedAt = ts
	}

	record := toRecord(clone)
	items := toItemRecords(clone.Items)
	err := platformpostgres.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return nil, err
	}
	return clone, nil
}

// GetByID fetches an order header by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := platformpostgres.Conn(ctx, r.db).First(&record, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// List returns a page of order headers, newest first.
func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Order, int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, 0, err
	}
	page := filter.Page.Normalize()
	query := platformpostgres.Conn(ctx, r.db).Model(&orderRecord{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var records []orderRecord
	if err := query.Order("created_at DESC, id DESC").Limit(page.Limit).Offset(page.Offset()).Find(&records).Error; err != nil {
		return nil, 0, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, total, nil
}

// ListItems returns the line items of an order in insertion order.
func (r *Repository) ListItems(ctx context.Context, orderID string) ([]domain.LineItem, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	orderID = strings.TrimSpace(orderID)
	db := platformpostgres.Conn(ctx, r.db)
	var count int64
	if err := db.Model(&orderRecord{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ports.ErrNotFound
	}
	var records []orderItemRecord
	if err := db.Where("order_id = ?", orderID).Order("position ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	items := make([]domain.LineItem, 0, len(records))
	for i := range records {
		items = append(items, records[i].toDomain())
	}
	return items, nil
}

// UpdateStatus changes the order status and returns the refreshed header.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	id = strings.TrimSpace(id)
	result := platformpostgres.Conn(ctx, r.db).
		Model(&orderRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": string(status), "updated_at": r.now().UTC()})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes the order and its line items.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	return platformpostgres.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&orderItemRecord{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&orderRecord{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ports.ErrNotFound
		}
		return nil
	})
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	return orderRecord{
		ID:          order.ID,
		UserID:      order.UserID,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}

func toItemRecords(items []domain.LineItem) []orderItemRecord {
	out := make([]orderItemRecord, 0, len(items))
	for i, item := range items {
		out = append(out, orderItemRecord{
			ID:         item.ID,
			OrderID:    item.OrderID,
			ProductID:  item.ProductID,
			Position:   i,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.LineTotal,
			CreatedAt:  item.CreatedAt,
		})
	}
	return out
}

func (r orderRecord) toDomain() *domain.Order {
	return &domain.Order{
		ID:          r.ID,
		UserID:      r.UserID,
		Status:      domain.Status(r.Status),
		TotalAmount: r.TotalAmount.Round(2),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (r orderItemRecord) toDomain() domain.LineItem {
	return domain.LineItem{
		ID:        r.ID,
		OrderID:   r.OrderID,
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
		UnitPrice: r.UnitPrice.Round(2),
		LineTotal: r.TotalPrice.Round(2),
		CreatedAt: r.CreatedAt,
	}
}
