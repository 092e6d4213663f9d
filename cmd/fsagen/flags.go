package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/seqforge/fsagen/internal/chemistry"
	"github.com/seqforge/fsagen/internal/logger"
)

var (
	presetName  string
	presetFile  string
	sampleCount int64
	lane        int64
	seed        uint64
	logLevel    string
	logFormat   string
)

func commonPresetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "preset",
			Aliases:     []string{"p"},
			Usage:       "built-in chemistry preset name",
			Value:       "identifiler-plus",
			Destination: &presetName,
		},
		&cli.StringFlag{
			Name:        "preset-file",
			Usage:       "YAML chemistry preset file (overrides --preset)",
			Destination: &presetFile,
		},
		&cli.Int64Flag{
			Name:        "samples",
			Aliases:     []string{"n"},
			Usage:       "samples per channel",
			Value:       8000,
			Destination: &sampleCount,
		},
		&cli.Int64Flag{
			Name:        "lane",
			Usage:       "capillary lane number",
			Value:       1,
			Destination: &lane,
		},
		&cli.Uint64Flag{
			Name:        "seed",
			Usage:       "random seed for reproducible traces (0 = random)",
			Destination: &seed,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
	}
}

func buildLogger() logger.Logger {
	level := logger.ParseLevel(logLevel)
	switch logFormat {
	case "json":
		return logger.JSON(os.Stderr, level)
	case "text":
		return logger.Text(os.Stderr, level)
	default:
		return logger.Pretty(os.Stderr, level)
	}
}

// loggingContext stores the flag-configured logger in the context so it
// travels with everything the action starts.
func loggingContext(ctx context.Context) context.Context {
	return logger.WithContext(ctx, buildLogger())
}

// resolvePreset picks the chemistry preset for a command invocation:
// an explicit YAML file wins over the built-in preset name.
func resolvePreset() (chemistry.Preset, error) {
	if presetFile != "" {
		return chemistry.Load(presetFile)
	}
	return chemistry.Builtin(presetName)
}
