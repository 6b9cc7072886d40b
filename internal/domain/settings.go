package domain

import "time"

// Settings holds the per-room configurable game parameters
type Settings struct {
	TurnSeconds       int  `json:"turnSeconds"`
	StartingLives     int  `json:"startingLives"`
	DictionaryEnabled bool `json:"dictionaryEnabled"`
}

// SettingsBounds are the clamping bounds applied to every settings change
type SettingsBounds struct {
	MinTurnSeconds int
	MaxTurnSeconds int
	MinLives       int
	MaxLives       int
}

// SettingsPatch is a partial settings update. Nil fields are left untouched;
// set fields are clamped to bounds in a single apply step.
type SettingsPatch struct {
	TurnSeconds       *int
	StartingLives     *int
	DictionaryEnabled *bool
}

// DefaultSettings returns the default room settings
func DefaultSettings() Settings {
	return Settings{
		TurnSeconds:       15,
		StartingLives:     3,
		DictionaryEnabled: true,
	}
}

// DefaultSettingsBounds returns the default clamping bounds
func DefaultSettingsBounds() SettingsBounds {
	return SettingsBounds{
		MinTurnSeconds: 5,
		MaxTurnSeconds: 60,
		MinLives:       1,
		MaxLives:       5,
	}
}

// Apply merges a patch into the settings, clamping each field to bounds
func (s Settings) Apply(patch SettingsPatch, bounds SettingsBounds) Settings {
	if patch.TurnSeconds != nil {
		s.TurnSeconds = clamp(*patch.TurnSeconds, bounds.MinTurnSeconds, bounds.MaxTurnSeconds)
	}
	if patch.StartingLives != nil {
		s.StartingLives = clamp(*patch.StartingLives, bounds.MinLives, bounds.MaxLives)
	}
	if patch.DictionaryEnabled != nil {
		s.DictionaryEnabled = *patch.DictionaryEnabled
	}
	return s
}

// TurnDuration returns the configured turn length as a duration
func (s Settings) TurnDuration() time.Duration {
	return time.Duration(s.TurnSeconds) * time.Second
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
