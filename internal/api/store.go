package api

import (
	"sync"

	"geostats/internal/ingestion"
)

// Store holds the latest finished batch. Results are replaced whole and
// never modified after Set.
type Store struct {
	mu      sync.RWMutex
	results *ingestion.Results
}

func NewStore() *Store {
	return &Store{}
}

// Set publishes a finished batch
func (s *Store) Set(results *ingestion.Results) {
	s.mu.Lock()
	s.results = results
	s.mu.Unlock()
}

// Latest returns the last published batch, nil before the first one
func (s *Store) Latest() *ingestion.Results {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results
}
