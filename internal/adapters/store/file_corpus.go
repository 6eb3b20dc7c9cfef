package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mikey/spam-doctor/internal/core"
)

// FileCorpus keeps the training corpus as a JSON document with two parallel
// arrays, samples and labels
type FileCorpus struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewFileCorpus creates a corpus backed by the JSON file at path
func NewFileCorpus(path string, logger *zap.Logger) (*FileCorpus, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	return &FileCorpus{path: path, logger: logger}, nil
}

// All returns the full corpus
func (c *FileCorpus) All(ctx context.Context) (*core.TrainingCorpus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.read()
}

// Append adds a sample and rewrites the whole file
func (c *FileCorpus) Append(ctx context.Context, sample core.TrainingSample) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return withFileLock(c.path, func() error {
		corpus, err := c.read()
		if err != nil {
			return err
		}

		corpus.Samples = append(corpus.Samples, sample.Text)
		corpus.Labels = append(corpus.Labels, sample.Label)

		data, err := json.MarshalIndent(corpus, "", "    ")
		if err != nil {
			return fmt.Errorf("failed to encode training corpus: %w", err)
		}
		return writeFileAtomic(c.path, data)
	})
}

func (c *FileCorpus) read() (*core.TrainingCorpus, error) {
	corpus := &core.TrainingCorpus{Samples: []string{}, Labels: []core.Label{}}

	data, err := readFileIfExists(c.path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return corpus, nil
	}

	if err := json.Unmarshal(data, corpus); err != nil {
		return nil, fmt.Errorf("failed to decode training corpus %s: %w", c.path, err)
	}
	if corpus.Samples == nil {
		corpus.Samples = []string{}
	}
	if corpus.Labels == nil {
		corpus.Labels = []core.Label{}
	}
	if len(corpus.Samples) != len(corpus.Labels) {
		return nil, fmt.Errorf("training corpus %s is corrupt: %d samples but %d labels",
			c.path, len(corpus.Samples), len(corpus.Labels))
	}
	return corpus, nil
}
