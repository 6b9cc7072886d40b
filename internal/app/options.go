package app

import (
	"time"

	"github.com/iyannm/word-fuse/internal/domain"
)

// Options are the orchestration knobs for a Hub
type Options struct {
	MaxPlayers        int
	MinPlayersToStart int

	DefaultSettings domain.Settings
	SettingsBounds  domain.SettingsBounds

	// Minimum spacing between word submissions per connection
	SubmitInterval time.Duration

	// Expiry tick and eviction sweep cadence
	TickInterval  time.Duration
	SweepInterval time.Duration

	// How long a room may sit with zero connected players before eviction
	EmptyRoomRetention time.Duration
}

// DefaultOptions returns production defaults
func DefaultOptions() Options {
	return Options{
		MaxPlayers:         8,
		MinPlayersToStart:  2,
		DefaultSettings:    domain.DefaultSettings(),
		SettingsBounds:     domain.DefaultSettingsBounds(),
		SubmitInterval:     300 * time.Millisecond,
		TickInterval:       250 * time.Millisecond,
		SweepInterval:      30 * time.Second,
		EmptyRoomRetention: 5 * time.Minute,
	}
}
