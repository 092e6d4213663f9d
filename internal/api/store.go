package api

import (
	"sync"

	"github.com/seqforge/fsagen/internal/fsa"
)

// BuildStore remembers the containers a server instance has built,
// keyed by run ID and ordered by creation.
type BuildStore struct {
	mu    sync.RWMutex
	byID  map[string]fsa.Result
	order []string
}

func NewBuildStore() *BuildStore {
	return &BuildStore{byID: make(map[string]fsa.Result)}
}

func (s *BuildStore) Add(res fsa.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[res.RunID]; !ok {
		s.order = append(s.order, res.RunID)
	}
	s.byID[res.RunID] = res
}

func (s *BuildStore) Get(runID string) (fsa.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.byID[runID]
	return res, ok
}

func (s *BuildStore) List() []fsa.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]fsa.Result, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}
