package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	Game   GameConfig
	Log    LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host string
	Port int
}

// GameConfig holds game-related configuration
type GameConfig struct {
	MaxPlayers        int
	MinPlayersToStart int

	DefaultTurnSeconds int
	MinTurnSeconds     int
	MaxTurnSeconds     int

	DefaultLives int
	MinLives     int
	MaxLives     int

	DictionaryPath    string
	DictionaryEnabled bool

	SubmitInterval     time.Duration
	TickInterval       time.Duration
	SweepInterval      time.Duration
	EmptyRoomRetention time.Duration
}

// LogConfig holds logging-related configuration
type LogConfig struct {
	Level  string
	Pretty bool
	Debug  bool
}

// New sets defaults on the given viper instance and reads the resulting
// configuration. Flags and WORDFUSE_* environment variables bound to the
// instance by the caller take precedence over defaults.
func New(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("WORDFUSE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)

	v.SetDefault("max-players", 8)
	v.SetDefault("min-players", 2)
	v.SetDefault("turn-seconds", 15)
	v.SetDefault("min-turn-seconds", 5)
	v.SetDefault("max-turn-seconds", 60)
	v.SetDefault("lives", 3)
	v.SetDefault("min-lives", 1)
	v.SetDefault("max-lives", 5)
	v.SetDefault("dictionary", "")
	v.SetDefault("dictionary-enabled", true)
	v.SetDefault("submit-interval", 300*time.Millisecond)
	v.SetDefault("tick-interval", 250*time.Millisecond)
	v.SetDefault("sweep-interval", 30*time.Second)
	v.SetDefault("empty-room-retention", 5*time.Minute)

	v.SetDefault("log-level", "info")
	v.SetDefault("log-pretty", false)
	v.SetDefault("debug", false)

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("host"),
			Port: v.GetInt("port"),
		},
		Game: GameConfig{
			MaxPlayers:         v.GetInt("max-players"),
			MinPlayersToStart:  v.GetInt("min-players"),
			DefaultTurnSeconds: v.GetInt("turn-seconds"),
			MinTurnSeconds:     v.GetInt("min-turn-seconds"),
			MaxTurnSeconds:     v.GetInt("max-turn-seconds"),
			DefaultLives:       v.GetInt("lives"),
			MinLives:           v.GetInt("min-lives"),
			MaxLives:           v.GetInt("max-lives"),
			DictionaryPath:     v.GetString("dictionary"),
			DictionaryEnabled:  v.GetBool("dictionary-enabled"),
			SubmitInterval:     v.GetDuration("submit-interval"),
			TickInterval:       v.GetDuration("tick-interval"),
			SweepInterval:      v.GetDuration("sweep-interval"),
			EmptyRoomRetention: v.GetDuration("empty-room-retention"),
		},
		Log: LogConfig{
			Level:  v.GetString("log-level"),
			Pretty: v.GetBool("log-pretty"),
			Debug:  v.GetBool("debug"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr returns the server address in host:port format
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Server.Port)
	}
	if c.Game.MinPlayersToStart < 2 {
		return fmt.Errorf("min-players must be at least 2, got %d", c.Game.MinPlayersToStart)
	}
	if c.Game.MaxPlayers < c.Game.MinPlayersToStart {
		return fmt.Errorf("max-players (%d) must be >= min-players (%d)", c.Game.MaxPlayers, c.Game.MinPlayersToStart)
	}
	if c.Game.MinTurnSeconds > c.Game.MaxTurnSeconds {
		return fmt.Errorf("min-turn-seconds (%d) must be <= max-turn-seconds (%d)", c.Game.MinTurnSeconds, c.Game.MaxTurnSeconds)
	}
	if c.Game.MinLives > c.Game.MaxLives {
		return fmt.Errorf("min-lives (%d) must be <= max-lives (%d)", c.Game.MinLives, c.Game.MaxLives)
	}
	return nil
}
