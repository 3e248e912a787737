package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/platform/sqlitetest"
)

func TestNormalizeDSN(t *testing.T) {
	kv, err := NormalizeDSN("postgres://app:secret@db:5432/shop?sslmode=disable")
	require.NoError(t, err)
	require.Contains(t, kv, "host=db")
	require.Contains(t, kv, "dbname=shop")
	require.Contains(t, kv, "sslmode=disable")

	plain := "host=localhost user=app dbname=shop"
	kv, err = NormalizeDSN("  " + plain + " ")
	require.NoError(t, err)
	require.Equal(t, plain, kv)

	_, err = NormalizeDSN("   ")
	require.Error(t, err)
}

func TestIsUniqueViolation(t *testing.T) {
	require.False(t, IsUniqueViolation(nil))
	require.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	require.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	require.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	require.False(t, IsUniqueViolation(errors.New("boom")))
}

type widget struct {
	ID   int `gorm:"primaryKey"`
	Name string
}

func TestTxManager_CommitsAndRollsBack(t *testing.T) {
	db := sqlitetest.Open(t)
	require.NoError(t, db.AutoMigrate(&widget{}))
	tm := NewTxManager(db)
	ctx := context.Background()

	err := tm.RunInTx(ctx, func(ctx context.Context) error {
		return Conn(ctx, db).Create(&widget{ID: 1, Name: "kept"}).Error
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = tm.RunInTx(ctx, func(ctx context.Context) error {
		if err := Conn(ctx, db).Create(&widget{ID: 2, Name: "discarded"}).Error; err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&widget{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestTxManager_NestedCallsJoinOuterTransaction(t *testing.T) {
	db := sqlitetest.Open(t)
	require.NoError(t, db.AutoMigrate(&widget{}))
	tm := NewTxManager(db)

	boom := errors.New("outer failure")
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		inner := tm.RunInTx(ctx, func(ctx context.Context) error {
			return Conn(ctx, db).Create(&widget{ID: 7, Name: "inner"}).Error
		})
		require.NoError(t, inner)
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&widget{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestTxManager_NotConfigured(t *testing.T) {
	var tm *TxManager
	err := tm.RunInTx(context.Background(), func(context.Context) error { return nil })
	require.Error(t, err)
}

func TestTxManager_Isolation(t *testing.T) {
	db := sqlitetest.Open(t)
	require.Equal(t, sql.LevelDefault, NewTxManager(db).Isolation())
	require.Equal(t, sql.LevelReadCommitted, NewTxManager(db, WithIsolation(sql.LevelReadCommitted)).Isolation())
	require.Equal(t, sql.LevelSerializable, NewTxManager(db, nil, WithIsolation(sql.LevelSerializable)).Isolation())
}
