package service

import "time"

// Clock abstracts time so tests can control the timing model
// deterministically. The engine never trusts client-supplied elapsed time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func NewSystemClock() Clock { return systemClock{} }
