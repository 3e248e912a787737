package postgres

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/catalog/domain"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/catalog/ports"
	platformpostgres "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists products in PostgreSQL using GORM.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle and schema.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

type productRecord struct {
	ID          string          `gorm:"primaryKey;column:id;type:varchar(36)"`
	Name        string          `gorm:"column:name"`
	Description string          `gorm:"column:description"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2)"`
	Stock       int             `gorm:"column:stock"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

// Create inserts a new product.
func (r *Repository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.New("product is nil")
	}
	clone := *product
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(&clone)
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	ts := r.now().UTC()
	record.CreatedAt, record.UpdatedAt = ts, ts
	if err := platformpostgres.Conn(ctx, r.db).Create(&record).Error; err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

// GetByID fetches a product by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record productRecord
	if err := platformpostgres.Conn(ctx, r.db).First(&record, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// List returns a page of products, optionally filtered by a case-insensitive name fragment.
func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Product, int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, 0, err
	}
	page := filter.Page.Normalize()
	query := platformpostgres.Conn(ctx, r.db).Model(&productRecord{})
	if needle := strings.TrimSpace(filter.NameContains); needle != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(needle)+"%")
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var records []productRecord
	if err := query.Order("created_at ASC, id ASC").Limit(page.Limit).Offset(page.Offset()).Find(&records).Error; err != nil {
		return nil, 0, err
	}
	products := make([]*domain.Product, 0, len(records))
	for i := range records {
		products = append(products, records[i].toDomain())
	}
	return products, total, nil
}

// Update writes only the columns named in changes.
func (r *Repository) Update(ctx context.Context, id string, changes ports.ProductChanges) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	staged := domain.Product{Name: "-"}
	changes.Apply(&staged)
	if err := staged.Validate(); err != nil {
		return nil, err
	}
	columns := map[string]any{"updated_at": r.now().UTC()}
	if changes.Name != nil {
		columns["name"] = staged.Name
	}
	if changes.Description != nil {
		columns["description"] = staged.Description
	}
	if changes.Price != nil {
		columns["price"] = staged.Price
	}
	if changes.Stock != nil {
		columns["stock"] = staged.Stock
	}
	result := platformpostgres.Conn(ctx, r.db).
		Model(&productRecord{}).
		Where("id = ?", id).
		Updates(columns)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a product by identifier.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := platformpostgres.Conn(ctx, r.db).Where("id = ?", strings.TrimSpace(id)).Delete(&productRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// ReserveStock applies conditional decrements in product id order so
// concurrent reservations lock rows consistently. Any shortage rolls back
// the whole batch.
func (r *Repository) ReserveStock(ctx context.Context, reservations []ports.StockReservation) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	demand := aggregate(reservations)
	ts := r.now().UTC()
	return platformpostgres.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		for _, res := range demand {
			result := tx.Model(&productRecord{}).
				Where("id = ? AND stock >= ?", res.ProductID, res.Quantity).
				Updates(map[string]any{
					"stock":      gorm.Expr("stock - ?", res.Quantity),
					"updated_at": ts,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 1 {
				continue
			}
			var current productRecord
			if err := tx.Select("id", "stock").First(&current, "id = ?", res.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &ports.MissingProductError{ProductID: res.ProductID}
				}
				return err
			}
			return &ports.StockShortageError{ProductID: res.ProductID, Available: current.Stock, Requested: res.Quantity}
		}
		return nil
	})
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres product repository not configured")
	}
	return nil
}

func aggregate(reservations []ports.StockReservation) []ports.StockReservation {
	totals := map[string]int{}
	for _, res := range reservations {
		totals[res.ProductID] += res.Quantity
	}
	out := make([]ports.StockReservation, 0, len(totals))
	for id, qty := range totals {
		out = append(out, ports.StockReservation{ProductID: id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

func toRecord(product *domain.Product) productRecord {
	return productRecord{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

func (r productRecord) toDomain() *domain.Product {
	return &domain.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price.Round(2),
		Stock:       r.Stock,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
