package dayrecord

import "errors"

var (
	ErrDayRecordNotFound = errors.New("day record not found")

	// ErrClassificationAmbiguous is returned when a user override
	// contradicts a hard constraint, e.g. punches recorded but the kind set
	// to an absence. User-correctable; the record is left untouched and
	// flagged.
	ErrClassificationAmbiguous = errors.New("day kind override contradicts the recorded punches")

	// ErrConcurrentRecompute is returned when another pass already holds the
	// tenant's advisory lock. The caller should retry later.
	ErrConcurrentRecompute = errors.New("a recompute pass is already running for this tenant")

	// ErrRuleVersionDowngrade is returned when a pass would write derived
	// fields with an older rule-engine version than the record carries.
	ErrRuleVersionDowngrade = errors.New("refusing to downgrade rule engine version")
)
