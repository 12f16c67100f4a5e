package ledger

import "errors"

var ErrEntryNotFound = errors.New("correction ledger entry not found")
