// Package api serves synthetic trace generation over HTTP, so test
// harnesses can request .fsa fixtures without shelling out to the CLI.
package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v5"

	"github.com/seqforge/fsagen/internal/chemistry"
	"github.com/seqforge/fsagen/internal/fsa"
	"github.com/seqforge/fsagen/pkg/abif"
)

// Server exposes trace generation and inspection endpoints. Built
// containers land in OutDir and are tracked in the store by run ID.
type Server struct {
	outDir string
	store  *BuildStore
}

func NewServer(outDir string, store *BuildStore) *Server {
	if store == nil {
		store = NewBuildStore()
	}
	return &Server{outDir: outDir, store: store}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/traces", s.handleGenerate)
	e.GET("/v1/traces", s.handleList)
	e.GET("/v1/traces/:id", s.handleGet)
	e.GET("/v1/traces/:id/directory", s.handleDirectory)
}

func (s *Server) handleGenerate(c *echo.Context) error {
	req, err := decodeJSON[GenerateRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if !sampleNameOK(req.SampleName) {
		return writeBadRequest(c, "sample_name must be non-empty and filename-safe")
	}

	presetName := req.Preset
	if presetName == "" {
		presetName = "identifiler-plus"
	}
	preset, err := chemistry.Builtin(presetName)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	builder, err := fsa.New(fsa.Options{
		Preset:      preset,
		SampleCount: req.Samples,
		Lane:        req.Lane,
		Seed:        req.Seed,
	})
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	if err := os.MkdirAll(s.outDir, 0o755); err != nil {
		return writeServerError(c, fmt.Sprintf("output dir: %v", err))
	}
	path := filepath.Join(s.outDir, req.SampleName+".fsa")
	res, err := builder.Build(path, req.SampleName)
	if err != nil {
		return writeServerError(c, fmt.Sprintf("build failed: %v", err))
	}
	s.store.Add(res)
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleList(c *echo.Context) error {
	return c.JSON(http.StatusOK, TraceListResponse{Traces: s.store.List()})
}

func (s *Server) handleGet(c *echo.Context) error {
	res, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "unknown run id")
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleDirectory(c *echo.Context) error {
	res, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "unknown run id")
	}

	af, err := abif.Open(res.Path)
	if err != nil {
		return writeServerError(c, fmt.Sprintf("open container: %v", err))
	}
	defer func() { _ = af.Close() }()

	out := DirectoryResponse{
		RunID:    res.RunID,
		Path:     res.Path,
		FileSize: res.FileSize,
		Version:  af.Header.Version,
		Entries:  make([]DirectoryEntry, 0, len(af.Entries)),
	}
	for _, e := range af.Entries {
		out.Entries = append(out.Entries, DirectoryEntry{
			Name:       e.Name,
			Occurrence: e.Occurrence,
			Type:       uint32(e.Type),
			ElemWidth:  e.ElemWidth,
			ElemCount:  e.ElemCount,
			Size:       e.Size,
			Offset:     e.Offset,
		})
	}
	return c.JSON(http.StatusOK, out)
}
