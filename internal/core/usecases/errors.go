package usecases

import (
	"errors"
	"fmt"
)

// ErrInsufficientPoints is returned when a boundary has fewer than three
// points and therefore no defined area.
var ErrInsufficientPoints = errors.New("field boundary needs at least 3 points")

// ErrInvalidCoordinate is returned when a boundary point falls outside
// valid latitude/longitude ranges.
var ErrInvalidCoordinate = errors.New("coordinate out of range")

// AreaOutOfRangeError reports a boundary whose advisory area falls outside
// the configured policy window. The boundary itself is untouched so the
// caller can keep editing and resubmit.
type AreaOutOfRangeError struct {
	Acres    float64
	MinAcres float64
	MaxAcres float64
}

func (e *AreaOutOfRangeError) Error() string {
	return fmt.Sprintf("field area %.2f acres outside allowed range %.2f-%.2f acres",
		e.Acres, e.MinAcres, e.MaxAcres)
}

// IsAreaOutOfRange reports whether err is an AreaOutOfRangeError and
// returns it for inspection.
func IsAreaOutOfRange(err error) (*AreaOutOfRangeError, bool) {
	var e *AreaOutOfRangeError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
