package service

import (
	"context"
	"database/sql"

	id "lodgeguard/pkg/domain"
	"lodgeguard/pkg/platform/keylock"
	"lodgeguard/pkg/platform/tx"
)

// UnitTx runs fn while holding the exclusive lock of one unit.
type UnitTx interface {
	RunInTx(ctx context.Context, unitID id.UnitID, fn func(ctx context.Context, store Store) error) error
}

// MemoryTx must share its locker with the governance memory transaction so
// allocation and punishment of one unit serialize.
type MemoryTx struct {
	locker *keylock.Locker
	store  Store
}

func NewMemoryTx(store Store, locker *keylock.Locker) *MemoryTx {
	return &MemoryTx{locker: locker, store: store}
}

func (t *MemoryTx) RunInTx(ctx context.Context, unitID id.UnitID, fn func(ctx context.Context, store Store) error) error {
	return t.locker.Do(ctx, unitID.LockKey(), func(ctx context.Context) error {
		return fn(ctx, t.store)
	})
}

// PostgresTx opens a transaction per call; LockPlacement takes the row lock.
type PostgresTx struct {
	db    *sql.DB
	store Store
}

func NewPostgresTx(db *sql.DB, store Store) *PostgresTx {
	return &PostgresTx{db: db, store: store}
}

func (t *PostgresTx) RunInTx(ctx context.Context, _ id.UnitID, fn func(ctx context.Context, store Store) error) error {
	return tx.Run(ctx, t.db, func(ctx context.Context) error {
		return fn(ctx, t.store)
	})
}
