package main

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/seqforge/fsagen/pkg/abif"
)

type inspectHeader struct {
	Version   string `json:"version"`
	DirOffset uint32 `json:"dir_offset"`
	DirCount  uint32 `json:"dir_count"`
	FileSize  int64  `json:"file_size"`
}

type inspectEntry struct {
	Name       string `json:"name"`
	Occurrence int    `json:"occurrence"`
	Type       string `json:"type"`
	ElemWidth  uint32 `json:"elem_width"`
	ElemCount  uint32 `json:"elem_count"`
	Size       uint32 `json:"size"`
	Offset     uint32 `json:"offset"`
	Preview    string `json:"preview,omitempty"`
}

type inspectOutput struct {
	Header  inspectHeader  `json:"header"`
	Entries []inspectEntry `json:"entries"`
}

func inspectCmd() *cli.Command {
	var (
		filePath string
		asJSON   bool
	)

	return &cli.Command{
		Name:  "inspect",
		Usage: "Dump the header and directory of an .fsa container",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "path to .fsa file",
				Required:    true,
				Destination: &filePath,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "emit machine-readable JSON",
				Destination: &asJSON,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			stat, err := os.Stat(filePath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			af, err := abif.Open(filePath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open %s: %v", filePath, err), 1)
			}
			defer func() { _ = af.Close() }()

			out := inspectOutput{
				Header: inspectHeader{
					Version:   fmt.Sprintf("%d.%d", af.Header.Version>>8, af.Header.Version&0xff),
					DirOffset: af.Header.DirOffset,
					DirCount:  af.Header.DirCount,
					FileSize:  stat.Size(),
				},
			}
			for _, e := range af.Entries {
				out.Entries = append(out.Entries, inspectEntry{
					Name:       e.Name,
					Occurrence: e.Occurrence,
					Type:       e.Type.String(),
					ElemWidth:  e.ElemWidth,
					ElemCount:  e.ElemCount,
					Size:       e.Size,
					Offset:     e.Offset,
					Preview:    preview(af, e),
				})
			}

			if asJSON {
				data, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: encode: %v", err), 1)
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Printf("%s: ABIF %s, %d tags, directory at %d, %d bytes\n",
				filePath, out.Header.Version, out.Header.DirCount, out.Header.DirOffset, out.Header.FileSize)
			for _, e := range out.Entries {
				fmt.Printf("  %-4s #%d  %-5s %5d x %d byte(s)  @%-8d %s\n",
					e.Name, e.Occurrence, e.Type, e.ElemCount, e.ElemWidth, e.Offset, e.Preview)
			}
			return nil
		},
	}
}

// preview renders a short human-readable payload summary per tag kind.
func preview(af *abif.File, e abif.Entry) string {
	switch {
	case e.Type == abif.ElemChar:
		s, err := af.TagString(e)
		if err != nil {
			return ""
		}
		return fmt.Sprintf("%q", s)
	case e.Type == abif.ElemDate:
		year, month, day, err := af.TagDate(e)
		if err != nil {
			return ""
		}
		return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	case e.Type == abif.ElemTime:
		hour, minute, second, err := af.TagTime(e)
		if err != nil {
			return ""
		}
		return fmt.Sprintf("%02d:%02d:%02d", hour, minute, second)
	case e.Type == abif.ElemShort && e.ElemCount == 1:
		v, err := af.TagShort(e)
		if err != nil {
			return ""
		}
		return fmt.Sprintf("%d", v)
	case e.ElemWidth == 4 && e.ElemCount == 1:
		v, err := af.TagLong(e)
		if err != nil {
			return ""
		}
		return fmt.Sprintf("%d", v)
	case e.ElemWidth == 2 && e.ElemCount > 1:
		data, err := af.TagShortArray(e)
		if err != nil {
			return ""
		}
		var max int16
		for _, v := range data {
			if v > max {
				max = v
			}
		}
		return fmt.Sprintf("%d samples, max %d", len(data), max)
	default:
		return ""
	}
}
