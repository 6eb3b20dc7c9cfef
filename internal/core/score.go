package core

import (
	"math"
)

const (
	classifierWeight = 0.7
	lexiconWeight    = 0.3
	perMatchScore    = 0.1

	// fallback probabilities for classifiers that only produce a label
	fallbackSpamProbability = 0.8
	fallbackHamProbability  = 0.2
)

// CombineScore blends the classifier probability with the lexicon hit density.
// matchCount is the number of distinct matched terms, not occurrences.
func CombineScore(mlProbability float64, matchCount int) float64 {
	p := clamp(mlProbability)
	lexiconScore := math.Min(float64(max(matchCount, 0))*perMatchScore, 1.0)
	return classifierWeight*p + lexiconWeight*lexiconScore
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
