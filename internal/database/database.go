package database

import (
	"context"
	"errors"

	"github.com/Ajaysirivaram/flatmate-find-smart/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from DSN (Supabase/Postgres pooler URL).
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") when using connection poolers (e.g. PgBouncer, Supabase, Render).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// AutoMigrate runs migrations for all core models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Profile{},
		&models.Listing{},
		&models.Boost{},
		&models.Subscription{},
		&models.Chat{},
		&models.Message{},
		&models.Report{},
		&models.Payment{},
	)
}

// Gateway errors surfaced to callers instead of raw storage errors. Neither
// is retried here; the caller decides.
var (
	ErrGatewayTimeout     = errors.New("Storage request timed out")
	ErrGatewayUnavailable = errors.New("Storage is unavailable")
)

// Classify maps a storage error to a gateway error. Record-not-found is left
// alone so services can translate it to their own sentinel.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrGatewayTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ErrGatewayTimeout
	}
	return ErrGatewayUnavailable
}
