package dayrecord

import "context"

// RecomputeService drives idempotent bulk recomputation of derived fields.
// The caller's tenant scope is resolved from the request context and checked
// against scope.TenantID before any write.
type RecomputeService interface {
	// Recompute re-runs classification and arithmetic for every day record
	// in scope, persists changed derived fields, and appends exactly one
	// correction ledger entry. Failed records keep their previous derived
	// values and are marked; the pass continues.
	Recompute(ctx context.Context, scope RecomputeScope, reason string) (PassSummary, error)

	// RevertEntry re-applies the before-state recorded in a historical
	// ledger entry's diff, for targeted rollback of a misconfigured rule
	// change. Produces a new ledger entry; the old one is never modified.
	RevertEntry(ctx context.Context, tenantID string, entryID string, reason string) (PassSummary, error)
}
