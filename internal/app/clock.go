package app

import (
	"math/rand"
	"time"

	"github.com/iyannm/word-fuse/internal/domain"
)

// Clock abstracts wall-clock access so timer-expiry and rate-limit logic
// are testable without real delays.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock returns a Clock backed by time.Now
func SystemClock() Clock {
	return systemClock{}
}

type systemRand struct{}

func (systemRand) Intn(n int) int {
	return rand.Intn(n)
}

// SystemRand returns a random source backed by math/rand's global generator
func SystemRand() domain.Rand {
	return systemRand{}
}
