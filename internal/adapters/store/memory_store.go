package store

import (
	"context"
	"sync"
	"time"

	"github.com/mikey/spam-doctor/internal/core"
	"github.com/mikey/spam-doctor/internal/lexicon"
	"go.uber.org/zap"
)

// MemoryStore is an in-memory lexicon, corpus and spam log. Nothing survives
// the process; it backs tests and throwaway runs.
type MemoryStore struct {
	mu      sync.RWMutex
	terms   []string
	index   map[string]struct{}
	samples []core.TrainingSample
	log     []string
	logger  *zap.Logger
	now     func() time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		index:  make(map[string]struct{}),
		logger: logger,
		now:    time.Now,
	}
}

// Terms returns the stored terms in insertion order
func (s *MemoryStore) Terms(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.terms...), nil
}

// Add inserts term if it is new
func (s *MemoryStore) Add(ctx context.Context, term string) (bool, error) {
	term, ok := lexicon.NormalizeTerm(term)
	if !ok {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[term]; ok {
		return false, nil
	}
	s.index[term] = struct{}{}
	s.terms = append(s.terms, term)
	return true, nil
}

// Append stores a training sample
func (s *MemoryStore) Append(ctx context.Context, sample core.TrainingSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, sample)
	return nil
}

// All returns a copy of the training corpus
func (s *MemoryStore) All(ctx context.Context) (*core.TrainingCorpus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	corpus := &core.TrainingCorpus{
		Samples: make([]string, 0, len(s.samples)),
		Labels:  make([]core.Label, 0, len(s.samples)),
	}
	for _, sample := range s.samples {
		corpus.Samples = append(corpus.Samples, sample.Text)
		corpus.Labels = append(corpus.Labels, sample.Label)
	}
	return corpus, nil
}

// Record appends a spam log entry
func (s *MemoryStore) Record(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, formatLogEntry(s.now(), text))
	return nil
}

// Entries returns the spam log lines recorded so far
func (s *MemoryStore) Entries() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.log...)
}
