package reembed

import "errors"

// ErrInvalidMaxAttempts reports a retry budget of zero or less.
var ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
