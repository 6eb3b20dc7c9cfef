package core

import (
	"time"
)

// Label is the class assigned to a message
type Label string

const (
	LabelSpam Label = "spam"
	LabelHam  Label = "ham"
)

// LabelFor maps a spam flag to its label
func LabelFor(isSpam bool) Label {
	if isSpam {
		return LabelSpam
	}
	return LabelHam
}

// TrainingSample is a single labeled message used to train the classifier
type TrainingSample struct {
	Text  string
	Label Label
}

// TrainingCorpus holds the training samples as two parallel sequences
type TrainingCorpus struct {
	Samples []string `json:"samples"`
	Labels  []Label  `json:"labels"`
}

// Len returns the number of samples in the corpus
func (c *TrainingCorpus) Len() int {
	return len(c.Samples)
}

// Contains reports whether text is already stored as a sample
func (c *TrainingCorpus) Contains(text string) bool {
	for _, sample := range c.Samples {
		if sample == text {
			return true
		}
	}
	return false
}

// Count returns the number of samples carrying the given label
func (c *TrainingCorpus) Count(label Label) int {
	n := 0
	for _, l := range c.Labels {
		if l == label {
			n++
		}
	}
	return n
}

// MatchRecord aggregates every occurrence of one lexicon term in a text
type MatchRecord struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Span is a half-open byte range [Start, End) of highlighted text
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// DetectionResult represents the outcome of a single check
type DetectionResult struct {
	ID                 string        `json:"id"`
	SanitizedText      string        `json:"sanitized_text"`
	MLProbability      float64       `json:"ml_probability"`
	IsSpamByClassifier bool          `json:"is_spam"`
	Matches            []MatchRecord `json:"matches"`
	Positions          []int         `json:"positions"`
	Spans              []Span        `json:"spans"`
	HighlightedPlain   string        `json:"highlighted_plain"`
	HighlightedHTML    string        `json:"highlighted_html"`
	CombinedScore      float64       `json:"combined_score"`
	CheckedAt          time.Time     `json:"checked_at"`
}

// ModelStats summarizes the training corpus and the model configuration
type ModelStats struct {
	TotalSamples        int     `json:"total_samples"`
	SpamSamples         int     `json:"spam_samples"`
	HamSamples          int     `json:"ham_samples"`
	ModelType           string  `json:"model_type"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
}

// Settings carries the tunables of the detection service
type Settings struct {
	ModelType           string
	ConfidenceThreshold float64
	SeedDefaultCorpus   bool
	FilterItems         []string
}
