//go:build integration

package postgres

import (
	"testing"

	"gorm.io/gorm"

	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/platform/pgcontainer"
)

func TestRepository_Postgres(t *testing.T) {
	runRepositorySuite(t, func(t *testing.T) *gorm.DB { return pgcontainer.Start(t) })
}
