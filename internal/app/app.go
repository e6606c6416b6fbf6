// Package app wires configuration, storage and services into the object graph
// shared by the HTTP server and the operator CLI.
package app

import (
	"context"
	"fmt"

	"voting/internal/config"
	"voting/internal/jwtsigner"
	"voting/internal/service/impl"
	"voting/internal/store"
	"voting/pkg/db"
)

type App struct {
	Store  *store.Store
	Auth   *impl.AuthServiceImpl
	Tokens *impl.TokenServiceImpl
	Topics *impl.TopicRegistryImpl
	Votes  *impl.VoteLedgerImpl
}

func New(cfg config.Config) (*App, error) {
	gdb, err := db.OpenGorm(db.Config{
		Driver: cfg.DBDriver,
		DSN:    cfg.DatabaseURL,
		LogSQL: cfg.LogSQL,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	st := store.New(gdb)

	signer, err := jwtsigner.New(cfg.SigningAlg, cfg.SigningKey, cfg.SigningKeyID, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("token signer: %w", err)
	}

	tokens := impl.NewTokenService(impl.TokenConfig{
		Audience:   cfg.Audience,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	}, signer, st)
	topics := impl.NewTopicRegistry(st, impl.TopicRegistryConfig{
		RestrictSessionStartToOwner: cfg.RestrictSessionStartToOwner,
	})

	return &App{
		Store:  st,
		Auth:   impl.NewAuthServiceImpl(st, impl.NewPasswordServiceArgon2id(), tokens),
		Tokens: tokens,
		Topics: topics,
		Votes:  impl.NewVoteLedger(st, topics, nil),
	}, nil
}

func (a *App) Migrate(ctx context.Context) error { return a.Store.Migrate(ctx) }

func (a *App) Close() error {
	sqlDB, err := a.Store.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
