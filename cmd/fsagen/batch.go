package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/seqforge/fsagen/internal/fsa"
	"github.com/seqforge/fsagen/internal/logger"
)

func batchCmd() *cli.Command {
	var (
		outDir     string
		noManifest bool
	)

	flags := append(commonPresetFlags(), loggingFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "out-dir",
			Aliases:     []string{"d"},
			Usage:       "output directory for the generated .fsa files",
			Value:       "fsa-samples",
			Destination: &outDir,
		},
		&cli.BoolFlag{
			Name:        "no-manifest",
			Usage:       "do not write manifest.json next to the outputs",
			Destination: &noManifest,
		},
	)

	return &cli.Command{
		Name:      "batch",
		Usage:     "Generate a batch of synthetic .fsa containers",
		ArgsUsage: "[sample names...]",
		Flags:     flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyConfig(cmd, LoadConfig(), &outDir)
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

			outcomes, manifest, batchErr := builder.BuildBatch(outDir, cmd.Args().Slice())
			for _, o := range outcomes {
				if o.Err != nil {
					log.Error("sample failed", "sample", o.SampleName, "err", o.Err)
					continue
				}
				log.Info("wrote container",
					"sample", o.SampleName,
					"path", o.Result.Path,
					"bytes", o.Result.FileSize,
				)
			}

			if !noManifest && len(manifest.Files) > 0 {
				path, err := fsa.WriteManifest(outDir, manifest)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				log.Info("wrote manifest", "path", path)
			}

			if batchErr != nil {
				return cli.Exit(fmt.Sprintf("error: batch incomplete: %v", batchErr), 1)
			}
			return nil
		},
	}
}
