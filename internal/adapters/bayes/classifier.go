// Package bayes is a multinomial naive Bayes text classifier that persists
// its model as a JSON file.
package bayes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mikey/spam-doctor/internal/core"
)

// ErrNotTrained is returned by predictions made before any training
var ErrNotTrained = errors.New("naive bayes model is not trained")

var tokenRe = regexp.MustCompile(`[\p{L}\p{N}]+`)

// model is the persisted state of the classifier
type model struct {
	Tokens         map[string]map[core.Label]int `json:"tokens"`
	DocsByLabel    map[core.Label]int            `json:"docs_by_label"`
	TokensByLabel  map[core.Label]int            `json:"tokens_by_label"`
	TotalDocuments int                           `json:"total_documents"`
}

func newModel() *model {
	return &model{
		Tokens:        make(map[string]map[core.Label]int),
		DocsByLabel:   make(map[core.Label]int),
		TokensByLabel: make(map[core.Label]int),
	}
}

// Classifier implements core.Classifier and core.ProbabilityEstimator
type Classifier struct {
	path   string
	logger *zap.Logger

	mu    sync.RWMutex
	model *model
}

// NewClassifier creates a classifier that saves its model to path and
// restores it from there when a model file already exists. An unreadable
// model is discarded; the classifier then reports itself untrained.
func NewClassifier(path string, logger *zap.Logger) *Classifier {
	c := &Classifier{path: path, logger: logger}
	if path == "" {
		return c
	}

	m, err := loadModel(path)
	switch {
	case err == nil:
		c.model = m
		logger.Info("Restored naive bayes model", zap.String("path", path), zap.Int("documents", m.TotalDocuments))
	case errors.Is(err, os.ErrNotExist):
		logger.Debug("No naive bayes model found", zap.String("path", path))
	default:
		logger.Warn("Discarding unreadable naive bayes model", zap.String("path", path), zap.Error(err))
	}
	return c
}

// Trained reports whether a model is available
func (c *Classifier) Trained() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model != nil && c.model.TotalDocuments > 0
}

// Train replaces the model with one learned from samples and saves it
func (c *Classifier) Train(ctx context.Context, samples []string, labels []core.Label) error {
	if len(samples) != len(labels) {
		return fmt.Errorf("got %d samples but %d labels", len(samples), len(labels))
	}
	if len(samples) == 0 {
		return errors.New("no training samples")
	}

	m := newModel()
	lower := cases.Lower(language.Und)
	for i, text := range samples {
		label := labels[i]
		m.TotalDocuments++
		m.DocsByLabel[label]++
		for _, token := range tokenize(lower, text) {
			m.TokensByLabel[label]++
			if m.Tokens[token] == nil {
				m.Tokens[token] = make(map[core.Label]int)
			}
			m.Tokens[token][label]++
		}
	}

	if c.path != "" {
		if err := saveModel(c.path, m); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.model = m
	c.mu.Unlock()
	return nil
}

// Predict returns the most probable label; ties go to ham
func (c *Classifier) Predict(ctx context.Context, text string) (core.Label, error) {
	probs, err := c.posteriors(text)
	if err != nil {
		return "", err
	}
	if probs[core.LabelSpam] > probs[core.LabelHam] {
		return core.LabelSpam, nil
	}
	return core.LabelHam, nil
}

// PredictProbability returns the normalized spam posterior
func (c *Classifier) PredictProbability(ctx context.Context, text string) (float64, error) {
	probs, err := c.posteriors(text)
	if err != nil {
		return 0, err
	}
	return probs[core.LabelSpam], nil
}

// posteriors computes softmax-normalized class probabilities with Laplace smoothing
func (c *Classifier) posteriors(text string) (map[core.Label]float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m := c.model
	if m == nil || m.TotalDocuments == 0 {
		return nil, ErrNotTrained
	}

	tokens := tokenize(cases.Lower(language.Und), text)
	vocabulary := float64(len(m.Tokens))

	logProbs := make(map[core.Label]float64, len(m.DocsByLabel))
	for label, docs := range m.DocsByLabel {
		lp := math.Log(float64(docs) / float64(m.TotalDocuments))
		denominator := float64(m.TokensByLabel[label]) + vocabulary
		for _, token := range tokens {
			lp += math.Log(float64(m.Tokens[token][label]+1) / denominator)
		}
		logProbs[label] = lp
	}
	return softmax(logProbs), nil
}

func tokenize(lower cases.Caser, text string) []string {
	return tokenRe.FindAllString(lower.String(text), -1)
}

// softmax converts log probabilities to normalized probabilities
func softmax(logProbs map[core.Label]float64) map[core.Label]float64 {
	maxLog := math.Inf(-1)
	for _, lp := range logProbs {
		maxLog = math.Max(maxLog, lp)
	}

	sum := 0.0
	probs := make(map[core.Label]float64, len(logProbs))
	for label, lp := range logProbs {
		probs[label] = math.Exp(lp - maxLog)
		sum += probs[label]
	}
	for label := range probs {
		probs[label] /= sum
	}
	return probs
}

func loadModel(path string) (*model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := newModel()
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	if m.TotalDocuments == 0 {
		return nil, errors.New("model holds no documents")
	}
	return m, nil
}

func saveModel(path string, m *model) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace model: %w", err)
	}
	return nil
}
