package api

import "github.com/seqforge/fsagen/internal/fsa"

// GenerateRequest is the body of POST /v1/traces.
type GenerateRequest struct {
	SampleName string `json:"sample_name"`
	Preset     string `json:"preset"`
	Samples    int    `json:"samples"`
	Lane       uint16 `json:"lane"`
	Seed       uint64 `json:"seed"`
}

// TraceListResponse is the body of GET /v1/traces.
type TraceListResponse struct {
	Traces []fsa.Result `json:"traces"`
}

// DirectoryEntry is one directory record of a built container.
type DirectoryEntry struct {
	Name       string `json:"name"`
	Occurrence int    `json:"occurrence"`
	Type       uint32 `json:"type"`
	ElemWidth  uint32 `json:"elem_width"`
	ElemCount  uint32 `json:"elem_count"`
	Size       uint32 `json:"size"`
	Offset     uint32 `json:"offset"`
}

// DirectoryResponse is the body of GET /v1/traces/:id/directory.
type DirectoryResponse struct {
	RunID    string           `json:"run_id"`
	Path     string           `json:"path"`
	FileSize int64            `json:"file_size"`
	Version  uint16           `json:"version"`
	Entries  []DirectoryEntry `json:"entries"`
}

// ResponseError is the error envelope for all API failures.
type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
