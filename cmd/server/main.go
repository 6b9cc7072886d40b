package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/iyannm/word-fuse/internal/app"
	"github.com/iyannm/word-fuse/internal/config"
	httpTransport "github.com/iyannm/word-fuse/internal/transport/http"
)

const releaseVersion = "0.2.0"

func main() {
	cobra.CheckErr(newCmd().Execute())
}

func newCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "word-fuse",
		Short:         "Server-authoritative engine for a pass-the-bomb word game.",
		Args:          cobra.ExactArgs(0),
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New(v)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	fs := cmd.Flags()
	fs.StringP("host", "H", "0.0.0.0", "address to bind to (env: WORDFUSE_HOST)")
	fs.IntP("port", "p", 8080, "port to listen on (env: WORDFUSE_PORT)")
	fs.String("dictionary", "", "path to a newline-delimited word list (env: WORDFUSE_DICTIONARY)")
	fs.String("log-level", "info", "log level: debug, info, warn, error (env: WORDFUSE_LOG_LEVEL)")
	fs.Bool("log-pretty", false, "human-readable console log output (env: WORDFUSE_LOG_PRETTY)")
	fs.Bool("debug", false, "enable debug mode (env: WORDFUSE_DEBUG)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
	})

	cmd.SetVersionTemplate("word-fuse v{{.Version}}\n")

	return cmd
}

func run(cfg *config.Config) error {
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	logger.Info().
		Str("version", releaseVersion).
		Str("addr", cfg.Addr()).
		Msg("starting word-fuse server")

	dict := app.LoadDictionary(cfg.Game.DictionaryPath, logger)

	opts := app.DefaultOptions()
	opts.MaxPlayers = cfg.Game.MaxPlayers
	opts.MinPlayersToStart = cfg.Game.MinPlayersToStart
	opts.DefaultSettings.TurnSeconds = cfg.Game.DefaultTurnSeconds
	opts.DefaultSettings.StartingLives = cfg.Game.DefaultLives
	opts.DefaultSettings.DictionaryEnabled = cfg.Game.DictionaryEnabled && dict.Enabled()
	opts.SettingsBounds.MinTurnSeconds = cfg.Game.MinTurnSeconds
	opts.SettingsBounds.MaxTurnSeconds = cfg.Game.MaxTurnSeconds
	opts.SettingsBounds.MinLives = cfg.Game.MinLives
	opts.SettingsBounds.MaxLives = cfg.Game.MaxLives
	opts.SubmitInterval = cfg.Game.SubmitInterval
	opts.TickInterval = cfg.Game.TickInterval
	opts.SweepInterval = cfg.Game.SweepInterval
	opts.EmptyRoomRetention = cfg.Game.EmptyRoomRetention

	hub := app.NewHub(opts, dict, app.SystemClock(), app.SystemRand(), logger)
	hub.Start()
	defer hub.Close()

	server := httpTransport.NewServer(cfg, hub, logger)

	errs := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errs:
		return err
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}

func newLogger(cfg config.LogConfig) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var logger zerolog.Logger
	if cfg.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}

	return logger.Level(level).With().Timestamp().Logger(), nil
}
