package ledger

import "time"

// FieldDiff is one before/after cell of the compressed diff kept with a
// ledger entry. Only the top changed records of a pass are captured in full;
// the counts cover everything.
type FieldDiff struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Field      string `json:"field"`
	Before     string `json:"before"`
	After      string `json:"after"`
}

// Entry records one recompute pass: what was overwritten, by whom, and why.
// Append-only; corrections to a bad pass are made by a new reverting pass,
// never by editing history.
type Entry struct {
	ID             string
	TenantID       string
	Actor          string
	DateFrom       time.Time
	DateTo         time.Time
	EmployeeFilter *string
	RuleVersion    int
	Reason         string
	Examined       int
	Changed        int
	Failed         int
	Partial        bool
	Diffs          []FieldDiff
	CreatedAt      time.Time
}
