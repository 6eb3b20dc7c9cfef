// Package matcher scans sanitized text for lexicon terms and renders the
// highlighted copies of it.
package matcher

import (
	"html"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cloudflare/ahocorasick"
)

const (
	// MarkerOpen and MarkerClose wrap every highlighted word
	MarkerOpen  = `<span style="color:red;">`
	MarkerClose = `</span>`
)

// Record counts the occurrences of one term
type Record struct {
	Term  string
	Count int
}

// Span is a half-open byte range of the scanned text
type Span struct {
	Start int
	End   int
}

// Result is the outcome of matching one text against a lexicon snapshot
type Result struct {
	Records          []Record
	Positions        []int
	Spans            []Span
	HighlightedPlain string
	HighlightedHTML  string
}

// Dictionary is a lexicon snapshot compiled into an Aho-Corasick automaton.
// A Dictionary is not safe for concurrent use.
type Dictionary struct {
	terms   []string
	folded  []string
	matcher *ahocorasick.Matcher
}

// NewDictionary compiles the distinct non-empty terms, keeping their order
func NewDictionary(terms []string) *Dictionary {
	d := &Dictionary{}
	seen := make(map[string]struct{}, len(terms))
	patterns := make([][]byte, 0, len(terms))

	for _, term := range terms {
		if term == "" {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}

		folded, _ := fold(term)
		d.terms = append(d.terms, term)
		d.folded = append(d.folded, folded)
		patterns = append(patterns, []byte(folded))
	}

	d.matcher = ahocorasick.NewMatcher(patterns)
	return d
}

// Terms returns the terms the dictionary was compiled from
func (d *Dictionary) Terms() []string {
	return d.terms
}

// Match scans text for every term, case-insensitively. Every non-overlapping
// occurrence of a term contributes its byte offset to Positions; occurrences
// of different terms may overlap. Each occurrence is widened to the run of
// letters around it for highlighting, and all widened spans are merged before
// rendering so markers are never matched again.
func (d *Dictionary) Match(text string) Result {
	var res Result
	var spans []Span

	folded, offsets := fold(text)

	// the automaton reports which terms occur; only those are located
	hits := d.matcher.Match([]byte(folded))
	sort.Ints(hits)

	for _, i := range hits {
		needle := d.folded[i]
		count := 0
		for from := 0; ; {
			at := strings.Index(folded[from:], needle)
			if at < 0 {
				break
			}
			start := from + at
			from = start + len(needle)

			s := Span{Start: offsets[start], End: offsets[from]}
			res.Positions = append(res.Positions, s.Start)
			spans = append(spans, widen(text, s))
			count++
		}
		if count > 0 {
			res.Records = append(res.Records, Record{Term: d.terms[i], Count: count})
		}
	}

	sort.Ints(res.Positions)
	res.Spans = mergeSpans(spans)
	res.HighlightedPlain = render(text, res.Spans, identity)
	res.HighlightedHTML = render(text, res.Spans, html.EscapeString)

	return res
}

// Match compiles terms and scans text once
func Match(text string, terms []string) Result {
	return NewDictionary(terms).Match(text)
}

// fold lowercases s rune by rune. offsets maps every byte of the folded
// string, plus its end, back to the start of the rune it came from in s.
func fold(s string) (string, []int) {
	var b strings.Builder
	b.Grow(len(s))
	offsets := make([]int, 0, len(s)+1)

	for i, r := range s {
		n := b.Len()
		b.WriteRune(unicode.ToLower(r))
		for j := n; j < b.Len(); j++ {
			offsets = append(offsets, i)
		}
	}
	offsets = append(offsets, len(s))

	return b.String(), offsets
}

// widen extends s over the letters directly before and after it
func widen(text string, s Span) Span {
	for s.Start > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:s.Start])
		if !unicode.IsLetter(r) {
			break
		}
		s.Start -= size
	}
	for s.End < len(text) {
		r, size := utf8.DecodeRuneInString(text[s.End:])
		if !unicode.IsLetter(r) {
			break
		}
		s.End += size
	}
	return s
}

// mergeSpans sorts spans and joins the ones that overlap or touch
func mergeSpans(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Start == spans[j].Start {
			return spans[i].End > spans[j].End
		}
		return spans[i].Start < spans[j].Start
	})

	merged := []Span{spans[0]}
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.Start <= last.End {
			if s.End > last.End {
				last.End = s.End
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

func render(text string, spans []Span, escape func(string) string) string {
	if len(spans) == 0 {
		return escape(text)
	}

	var b strings.Builder
	b.Grow(len(text) + len(spans)*(len(MarkerOpen)+len(MarkerClose)))

	prev := 0
	for _, s := range spans {
		b.WriteString(escape(text[prev:s.Start]))
		b.WriteString(MarkerOpen)
		b.WriteString(escape(text[s.Start:s.End]))
		b.WriteString(MarkerClose)
		prev = s.End
	}
	b.WriteString(escape(text[prev:]))

	return b.String()
}

func identity(s string) string { return s }
