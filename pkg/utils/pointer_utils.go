package utils

import "time"

// CopyTime returns a pointer to a copy of t, or nil
func CopyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
