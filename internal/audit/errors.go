package audit

import "errors"

// ErrRecordNotFound is returned when a status update targets a key that was never written
var ErrRecordNotFound = errors.New("audit record not found")
