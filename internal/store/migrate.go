package store

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate brings the schema up to date. Postgres runs the versioned goose
// migrations; other dialects (sqlite in dev and tests) use AutoMigrate.
func (s *Store) Migrate(ctx context.Context) error {
	if s.DB.Dialector.Name() != "postgres" {
		return s.DB.WithContext(ctx).AutoMigrate(Models()...)
	}

	sqlDB, err := s.DB.DB()
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
