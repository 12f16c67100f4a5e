package ledger

import "context"

// LedgerRepository is the append-only store for correction ledger entries.
// There is no update and no delete.
type LedgerRepository interface {
	// Append writes a new entry. Entry IDs are ULIDs, so the tail is
	// naturally ordered and contended only at its end.
	Append(ctx context.Context, entry Entry) error

	// GetByID retrieves an entry with tenant isolation.
	GetByID(ctx context.Context, id string, tenantID string) (Entry, error)

	// List returns the tenant's most recent entries, newest first.
	List(ctx context.Context, tenantID string, limit int) ([]Entry, error)
}
