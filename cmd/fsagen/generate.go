package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/seqforge/fsagen/internal/fsa"
	"github.com/seqforge/fsagen/internal/logger"
)

func generateCmd() *cli.Command {
	var (
		outPath    string
		sampleName string
	)

	flags := append(commonPresetFlags(), loggingFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "out",
			Aliases:     []string{"o"},
			Usage:       "output .fsa path",
			Required:    true,
			Destination: &outPath,
		},
		&cli.StringFlag{
			Name:        "sample",
			Aliases:     []string{"s"},
			Usage:       "sample identifier written into the container",
			Required:    true,
			Destination: &sampleName,
		},
	)

	return &cli.Command{
		Name:  "generate",
		Usage: "Generate a single synthetic .fsa container",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyConfig(cmd, LoadConfig(), nil)
			ctx = loggingContext(ctx)
			log := logger.FromContext(ctx)

			preset, err := resolvePreset()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: preset: %v", err), 1)
			}

			builder, err := fsa.New(fsa.Options{
				Preset:      preset,
				SampleCount: int(sampleCount),
				Lane:        uint16(lane),
				Seed:        seed,
			})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			res, err := builder.Build(outPath, sampleName)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: build: %v", err), 1)
			}
			if err := fsa.Verify(res.Path); err != nil {
				return cli.Exit(fmt.Sprintf("error: verify: %v", err), 1)
			}

			log.Info("wrote container",
				"path", res.Path,
				"sample", res.SampleName,
				"tags", res.TagCount,
				"bytes", res.FileSize,
				"run_id", res.RunID,
			)
			return nil
		},
	}
}
