package roster

import "errors"

// Error kinds surfaced by session operations. Callers branch with
// errors.Is; the wrapped message carries the detail.
var (
	ErrValidation = errors.New("invalid input")
	ErrDuplicate  = errors.New("duplicate entry")
	ErrNotFound   = errors.New("not found")
)
