package recognizer

import "errors"

// ErrUnavailable is returned while the circuit breaker refuses calls.
var ErrUnavailable = errors.New("recognizer unavailable")
