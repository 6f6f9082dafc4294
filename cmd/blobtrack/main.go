// Package main is the blob tracking command line tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/LdDl/blobtrack/config"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const (
	flagConfig    = "config"
	flagDebug     = "debug"
	flagCamera    = "camera"
	flagDistance  = "max-distance"
	flagHistory   = "max-history"
	flagTrackLen  = "max-track-len"
	flagMatcher   = "matcher"
	flagNoDisplay = "no-display"
	flagVideoOut  = "video-out"
	flagCSV       = "csv"
	flagPlot      = "plot"
	flagSQLite    = "sqlite"
	flagHTTP      = "http"
	flagRun       = "run"
)

func main() {
	var logger *zap.SugaredLogger

	app := &cli.App{
		Name:      "blobtrack",
		Usage:     "detect blobs on video and track their identities across frames",
		ArgsUsage: "[video path]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
			&cli.IntFlag{
				Name:  flagCamera,
				Value: -1,
				Usage: "read frames from camera `INDEX` instead of a file",
			},
			&cli.Float64Flag{
				Name:  flagDistance,
				Usage: "maximum distance in pixels between detection and track to match them",
			},
			&cli.IntFlag{
				Name:  flagHistory,
				Usage: "number of frames a track survives without matches",
			},
			&cli.IntFlag{
				Name:  flagTrackLen,
				Usage: "number of trajectory points kept per track, 0 keeps all",
			},
			&cli.StringFlag{
				Name:  flagMatcher,
				Usage: "matching algorithm: greedy, nearest-first or hungarian",
			},
			&cli.BoolFlag{
				Name:  flagNoDisplay,
				Usage: "do not show frames on screen",
			},
			&cli.StringFlag{
				Name:  flagVideoOut,
				Usage: "write annotated video to `FILE`",
			},
			&cli.StringFlag{
				Name:  flagCSV,
				Usage: "export trajectories to `FILE` when done",
			},
			&cli.StringFlag{
				Name:  flagPlot,
				Usage: "plot trajectories to PNG `FILE` when done",
			},
			&cli.StringFlag{
				Name:  flagSQLite,
				Usage: "record trajectories into SQLite database `FILE`",
			},
			&cli.StringFlag{
				Name:  flagHTTP,
				Usage: "serve live tracks over HTTP on `ADDR`",
			},
		},
		Before: func(c *cli.Context) error {
			var zl *zap.Logger
			var err error
			if c.Bool(flagDebug) {
				zl, err = zap.NewDevelopment()
			} else {
				zl, err = zap.NewProduction()
			}
			if err != nil {
				return errors.Wrap(err, "can't create logger")
			}
			logger = zl.Sugar()
			return nil
		},
		After: func(c *cli.Context) error {
			if logger != nil {
				logger.Sync()
			}
			return nil
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			err = track(ctx, cfg, logger)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
		Commands: []*cli.Command{
			{
				Name:  "export",
				Usage: "export trajectories of a recorded run from SQLite database to CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagSQLite,
						Required: true,
						Usage:    "SQLite database `FILE`",
					},
					&cli.StringFlag{
						Name:  flagRun,
						Usage: "run `ID`, the latest run when omitted",
					},
					&cli.StringFlag{
						Name:     flagCSV,
						Required: true,
						Usage:    "output `FILE`",
					},
				},
				Action: func(c *cli.Context) error {
					return export(c.String(flagSQLite), c.String(flagRun), c.String(flagCSV), logger)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		if logger != nil {
			logger.Errorw("failed", "error", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// loadConfig reads configuration and applies command line overrides
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String(flagConfig))
	if err != nil {
		return nil, errors.Wrap(err, "can't load configuration")
	}
	if c.Args().Present() {
		cfg.Video.Path = c.Args().First()
	}
	if c.IsSet(flagCamera) {
		cfg.Video.Camera = c.Int(flagCamera)
	}
	if c.IsSet(flagDistance) {
		cfg.Tracker.MaxDistance = c.Float64(flagDistance)
	}
	if c.IsSet(flagHistory) {
		cfg.Tracker.MaxHistoryLength = c.Int(flagHistory)
	}
	if c.IsSet(flagTrackLen) {
		cfg.Tracker.MaxTrackLen = c.Int(flagTrackLen)
	}
	if c.IsSet(flagMatcher) {
		cfg.Tracker.Matcher = c.String(flagMatcher)
	}
	if c.Bool(flagNoDisplay) {
		cfg.Display.Enabled = false
	}
	if c.IsSet(flagVideoOut) {
		cfg.Output.Video = c.String(flagVideoOut)
	}
	if c.IsSet(flagCSV) {
		cfg.Output.CSV = c.String(flagCSV)
	}
	if c.IsSet(flagPlot) {
		cfg.Output.Plot = c.String(flagPlot)
	}
	if c.IsSet(flagSQLite) {
		cfg.Output.SQLite = c.String(flagSQLite)
	}
	if c.IsSet(flagHTTP) {
		cfg.HTTP.Addr = c.String(flagHTTP)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
