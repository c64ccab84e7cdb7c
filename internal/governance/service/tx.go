package service

import (
	"context"
	"database/sql"

	id "lodgeguard/pkg/domain"
	"lodgeguard/pkg/platform/keylock"
	"lodgeguard/pkg/platform/tx"
)

// UnitTx runs fn while holding the exclusive lock of one unit. Every write
// to a unit goes through it.
type UnitTx interface {
	RunInTx(ctx context.Context, unitID id.UnitID, fn func(ctx context.Context, store Store) error) error
}

// MemoryTx serializes per unit with a keyed shard mutex. The locker must be
// the one the occupancy memory transaction uses, and sections must never
// nest: the shards are not reentrant.
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

// PostgresTx opens a database transaction. The row lock is taken by the
// first Store.LockUnit call inside fn.
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
