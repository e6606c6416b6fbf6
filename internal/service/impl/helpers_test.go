package impl

import (
	"context"
	"sync"
	"testing"
	"time"

	"voting/internal/domain"
	"voting/internal/store"
	"voting/pkg/db"

	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	gdb, err := db.OpenGorm(db.Config{
		Driver:       db.DriverSQLite,
		DSN:          "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on",
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	st := store.New(gdb)
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return st
}

func seedUser(t *testing.T, st *store.Store, cpf string) *domain.User {
	t.Helper()
	now := time.Now().UTC()
	u := &domain.User{Name: "User " + cpf, CPF: cpf, IsActive: true, DateJoined: now, UpdatedAt: now}
	if err := st.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
