package core

import (
	"context"
)

// Classifier is the probabilistic text classifier consumed by the detector.
// Model persistence is entirely the implementation's concern.
type Classifier interface {
	// Train rebuilds the model from scratch using the given samples
	Train(ctx context.Context, samples []string, labels []Label) error

	// Predict returns the label for a text
	Predict(ctx context.Context, text string) (Label, error)
}

// ProbabilityEstimator is implemented by classifiers that can score a text
type ProbabilityEstimator interface {
	// PredictProbability returns the spam probability in [0, 1]
	PredictProbability(ctx context.Context, text string) (float64, error)
}

// TrainedReporter is implemented by classifiers that know whether they hold a usable model
type TrainedReporter interface {
	Trained() bool
}

// LexiconStore persists the deduplicated set of spam terms
type LexiconStore interface {
	// Terms returns all stored terms in insertion order
	Terms(ctx context.Context) ([]string, error)

	// Add inserts a term and reports whether it was new
	Add(ctx context.Context, term string) (bool, error)
}

// CorpusStore persists the ordered list of training samples
type CorpusStore interface {
	// Append stores a sample, duplicates included
	Append(ctx context.Context, sample TrainingSample) error

	// All returns the full corpus
	All(ctx context.Context) (*TrainingCorpus, error)
}

// SpamLog is the append-only record of confirmed spam
type SpamLog interface {
	// Record appends a timestamped entry for text
	Record(ctx context.Context, text string) error
}
