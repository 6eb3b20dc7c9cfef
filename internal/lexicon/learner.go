// Package lexicon grows the spam lexicon: it mines confirmed spam for new
// terms and flattens structured term data supplied by operators.
package lexicon

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// MinTermLength is the byte length a mined token must exceed
	MinTermLength = 4
	// MaxTermLength is the longest term, in bytes, the lexicon accepts
	MaxTermLength = 64
)

var nonWordRe = regexp.MustCompile(`\W+`)

// Learner extracts candidate terms from confirmed spam
type Learner struct {
	lower cases.Caser
}

// NewLearner creates a new Learner
func NewLearner() *Learner {
	return &Learner{lower: cases.Lower(language.Und)}
}

// Candidates returns the lowercase tokens of text longer than MinTermLength
// and at most MaxTermLength that are not in existing, unique and in
// first-seen order
func (l *Learner) Candidates(text string, existing []string) []string {
	known := make(map[string]struct{}, len(existing))
	for _, term := range existing {
		known[term] = struct{}{}
	}

	var out []string
	for _, token := range nonWordRe.Split(l.lower.String(text), -1) {
		token = strings.TrimSpace(token)
		if len(token) <= MinTermLength || len(token) > MaxTermLength {
			continue
		}
		if _, ok := known[token]; ok {
			continue
		}
		known[token] = struct{}{}
		out = append(out, token)
	}
	return out
}

// NormalizeTerm trims a term and reports whether it is usable: not empty and
// no longer than MaxTermLength
func NormalizeTerm(term string) (string, bool) {
	term = strings.TrimSpace(term)
	return term, term != "" && len(term) <= MaxTermLength
}
