package core

import "errors"

// Configuration errors. Callers classify them with errors.Is; the engine
// never recovers from them silently.
var (
	ErrInvalidHorizon      = errors.New("invalid horizon")
	ErrUnsupportedGrouping = errors.New("unsupported grouping mode")
	ErrInvalidMonthRange   = errors.New("invalid month range")
	ErrInvalidStaffMode    = errors.New("invalid preferred staff filter mode")
	ErrUnsupportedFormat   = errors.New("unsupported export format")
	ErrRevenueNotApplied   = errors.New("revenue annotation not applied")
	ErrNilMatrix           = errors.New("matrix is nil")
)
