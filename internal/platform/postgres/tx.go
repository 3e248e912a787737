package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"
)

type txKey struct{}

// TxManager runs units of work inside a single database transaction. The
// transaction travels in the context so repositories join it through Conn.
type TxManager struct {
	db   *gorm.DB
	opts *sql.TxOptions
}

// TxOption customizes the transaction manager.
type TxOption func(*TxManager)

// WithIsolation sets the isolation level used for new transactions.
func WithIsolation(level sql.IsolationLevel) TxOption {
	return func(m *TxManager) {
		m.opts = &sql.TxOptions{Isolation: level}
	}
}

func NewTxManager(db *gorm.DB, opts ...TxOption) *TxManager {
	m := &TxManager{db: db}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Isolation reports the level new transactions start with.
func (m *TxManager) Isolation() sql.IsolationLevel {
	if m == nil || m.opts == nil {
		return sql.LevelDefault
	}
	return m.opts.Isolation
}

// RunInTx commits when fn returns nil and rolls back otherwise, including on panic.
// Nested calls reuse the outer transaction.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m == nil || m.db == nil {
		return errors.New("postgres transaction manager not configured")
	}
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}
	var opts []*sql.TxOptions
	if m.opts != nil {
		opts = append(opts, m.opts)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	}, opts...)
}

// Conn returns the transaction bound to ctx, or db when none is active.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := txFromContext(ctx); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

func txFromContext(ctx context.Context) (*gorm.DB, bool) {
	if ctx == nil {
		return nil, false
	}
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}
