//go:build !linux && !darwin
// +build !linux,!darwin

package probe

import (
	"errors"
	"time"
)

var errNoBirthTime = errors.New("birth time not available on this platform")

func birthTime(string) (time.Time, error) {
	return time.Time{}, errNoBirthTime
}
