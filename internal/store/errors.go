package store

import "errors"

// ErrNotFound means no flow with the requested id (or no retained body).
var ErrNotFound = errors.New("not found")

// InvalidFilterError carries the human-readable reason an operator's WHERE
// text was rejected or failed to parse. It is a 4xx, never fatal.
type InvalidFilterError struct {
	Detail string
}

func (e *InvalidFilterError) Error() string {
	return "invalid filter: " + e.Detail
}

// IsInvalidFilter reports whether err is an InvalidFilterError.
func IsInvalidFilter(err error) bool {
	var ife *InvalidFilterError
	return errors.As(err, &ife)
}
