package dayrecord

import (
	"fmt"
	"time"
)

// RecomputeScope selects the day records a pass rewrites.
type RecomputeScope struct {
	TenantID   string
	From       time.Time
	To         time.Time
	EmployeeID *string
}

func (s RecomputeScope) Validate() error {
	if s.TenantID == "" {
		return fmt.Errorf("tenant id is required")
	}
	if s.From.IsZero() || s.To.IsZero() {
		return fmt.Errorf("date range is required")
	}
	if s.To.Before(s.From) {
		return fmt.Errorf("date range end %s precedes start %s",
			s.To.Format("2006-01-02"), s.From.Format("2006-01-02"))
	}
	return nil
}

// PassSummary is the observable outcome of one recompute pass.
type PassSummary struct {
	LedgerEntryID string `json:"ledger_entry_id"`
	Examined      int    `json:"examined"`
	Changed       int    `json:"changed"`
	Failed        int    `json:"failed"`
	Partial       bool   `json:"partial"`
}
