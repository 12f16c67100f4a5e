package postgresql

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/obratech/workforce-backend-go/internal/domain/dayrecord"
	"github.com/obratech/workforce-backend-go/internal/pkg/database"
)

// lockNamespace keeps recompute locks from colliding with other advisory
// lock users of the same database.
const lockNamespace = int32(0x7ae)

type passLock struct {
	db *database.DB

	mu    sync.Mutex
	conns map[string]*pgxpool.Conn
}

// NewPassLock returns the per-tenant recompute pass lock, backed by
// PostgreSQL session advisory locks. A session lock lives on one
// connection, so the connection is pinned for the duration of the pass.
// Passes for disjoint tenants do not contend.
func NewPassLock(db *database.DB) dayrecord.PassLock {
	return &passLock{db: db, conns: make(map[string]*pgxpool.Conn)}
}

// TryAcquire implements dayrecord.PassLock.
func (l *passLock) TryAcquire(ctx context.Context, tenantID string) (bool, error) {
	conn, err := l.db.Pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to acquire connection for advisory lock: %w", err)
	}

	var acquired bool
	err = conn.QueryRow(ctx,
		`SELECT pg_try_advisory_lock($1, $2)`,
		lockNamespace, tenantKey(tenantID),
	).Scan(&acquired)
	if err != nil {
		conn.Release()
		return false, fmt.Errorf("failed to acquire advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return false, nil
	}

	l.mu.Lock()
	l.conns[tenantID] = conn
	l.mu.Unlock()
	return true, nil
}

// Release implements dayrecord.PassLock.
func (l *passLock) Release(ctx context.Context, tenantID string) error {
	l.mu.Lock()
	conn, ok := l.conns[tenantID]
	delete(l.conns, tenantID)
	l.mu.Unlock()

	if !ok {
		return fmt.Errorf("advisory lock for tenant was not held")
	}
	defer conn.Release()

	var released bool
	err := conn.QueryRow(ctx,
		`SELECT pg_advisory_unlock($1, $2)`,
		lockNamespace, tenantKey(tenantID),
	).Scan(&released)
	if err != nil {
		return fmt.Errorf("failed to release advisory lock: %w", err)
	}
	if !released {
		return fmt.Errorf("advisory lock for tenant was not held")
	}
	return nil
}

func tenantKey(tenantID string) int32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(tenantID))
	return int32(h.Sum32())
}
