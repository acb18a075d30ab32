// Package bootstrap holds the wiring shared by the login, post and story
// runners: common flags, config and logger setup, client construction and
// the single-line JSON output.
package bootstrap

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/config"
	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/logger"
	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/platform/instagram"
	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/result"
	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/video"
)

// Flags returns the flags every runner accepts.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a YAML config file",
			Sources: cli.EnvVars("IGPUB_CONFIG"),
		},
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"d"},
			Usage:   "Enable debug logging on stderr",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (trace, debug, info, warn, error)",
		},
	}
}

// Env is the per-invocation runtime of a runner.
type Env struct {
	Config *config.Config
	Log    zerolog.Logger

	closer io.Closer
}

// Setup loads configuration and builds the stderr logger for cmd.
// A bad configuration is a validation error.
func Setup(cmd *cli.Command) (*Env, error) {
	cfg, err := config.Load(cmd.String("config"), config.Overrides{
		Debug:    cmd.Bool("debug"),
		LogLevel: cmd.String("log-level"),
	})
	if err != nil {
		return nil, result.InvalidWrap(err, "invalid configuration")
	}

	log, closer, err := logger.New(cfg.Logging, ErrWriter(cmd))
	if err != nil {
		return nil, result.InvalidWrap(err, "invalid logging configuration")
	}

	return &Env{
		Config: cfg,
		Log:    log.With().Str("command", cmd.Name).Logger(),
		closer: closer,
	}, nil
}

func (e *Env) Close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}

// NewClient builds an Instagram client from the loaded configuration.
func (e *Env) NewClient() *instagram.Client {
	c := e.Config.Client
	u := e.Config.Upload

	return instagram.NewClient(
		instagram.WithTimeout(c.Timeout),
		instagram.WithLocale(c.Locale, c.Country, c.CountryCode, c.TimezoneOffset),
		instagram.WithPollInterval(u.ConfigurePollInterval),
		instagram.WithProber(video.Tools{FFmpeg: u.FFmpegPath, FFprobe: u.FFprobePath}),
		instagram.WithLogger(e.Log.With().Str("component", "instagram").Logger()),
	)
}

// Writer is where the JSON result line goes.
func Writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// ErrWriter is where logs and progress go.
func ErrWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

// Emit writes v as the command's single JSON result line.
func Emit(cmd *cli.Command, v any) error {
	return result.Write(Writer(cmd), v)
}

// Fail writes the failure envelope for err. It never returns err itself so
// the process still exits 0.
func Fail(cmd *cli.Command, err error) error {
	return Emit(cmd, result.Fail(err))
}

// OnUsageError reports flag parsing problems as a validation failure.
func OnUsageError(_ context.Context, cmd *cli.Command, err error, _ bool) error {
	return Fail(cmd, result.InvalidWrap(err, "invalid usage"))
}
