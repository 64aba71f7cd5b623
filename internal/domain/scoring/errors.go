package scoring

import "errors"

// ErrInternal marks an unexpected failure while scoring a list. No partial
// result accompanies it.
var ErrInternal = errors.New("scoring: internal failure")
