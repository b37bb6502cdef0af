package gate

import "errors"

// Reasons a submission is refused. A refused submission never changes state.
var (
	ErrClosed           = errors.New("already submitted for this period")
	ErrIncomplete       = errors.New("squad is not complete")
	ErrCaptainNotPicked = errors.New("captain is not in the squad")
	ErrViceNotPicked    = errors.New("vice-captain is not in the squad")
	ErrSameCaptain      = errors.New("captain and vice-captain must differ")
	ErrFlagStore        = errors.New("submission flag store failed")
	ErrSink             = errors.New("submission could not be stored")
)
