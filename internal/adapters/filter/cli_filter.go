package filter

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mikey/spam-doctor/internal/core"
	"go.uber.org/zap"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	spamStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	hamStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	termStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Underline(true)
)

// CliFilter checks text from the command line and prints a report
type CliFilter struct {
	checker Checker
	out     io.Writer
	color   bool
	logger  *zap.Logger
}

// NewCliFilter creates a new CLI filter. With color set, matched terms are
// highlighted with terminal styles instead of HTML markers.
func NewCliFilter(checker Checker, out io.Writer, color bool, logger *zap.Logger) *CliFilter {
	return &CliFilter{
		checker: checker,
		out:     out,
		color:   color,
		logger:  logger,
	}
}

// Check runs one check and writes the report
func (f *CliFilter) Check(ctx context.Context, text string, isHTML bool) (*core.DetectionResult, error) {
	f.logger.Debug("Checking text", zap.Int("length", len(text)), zap.Bool("html", isHTML))

	start := time.Now()
	result, err := f.checker.Check(ctx, text, isHTML)
	if err != nil {
		return nil, err
	}

	f.Report(result, time.Since(start))
	return result, nil
}

// Report writes a human readable summary of result
func (f *CliFilter) Report(result *core.DetectionResult, duration time.Duration) {
	verdict := hamStyle.Render("no")
	if result.IsSpamByClassifier {
		verdict = spamStyle.Render("yes")
	}

	fmt.Fprintf(f.out, "\n%s\n", titleStyle.Render("=== Results ==="))
	fmt.Fprintf(f.out, "Check ID: %s\n", result.ID)
	fmt.Fprintf(f.out, "Is spam: %s\n", verdict)
	fmt.Fprintf(f.out, "ML probability: %.4f\n", result.MLProbability)
	fmt.Fprintf(f.out, "Spam score: %.4f\n", result.CombinedScore)
	fmt.Fprintf(f.out, "Matched terms: %s\n", formatMatches(result.Matches))
	fmt.Fprintf(f.out, "Positions: %v\n", result.Positions)
	fmt.Fprintf(f.out, "Processing time: %v\n", duration)

	fmt.Fprintf(f.out, "\n%s\n", titleStyle.Render("=== Highlighted ==="))
	if f.color {
		fmt.Fprintln(f.out, highlightSpans(result.SanitizedText, result.Spans, termStyle.Render))
	} else {
		fmt.Fprintln(f.out, result.HighlightedPlain)
	}
}

func formatMatches(matches []core.MatchRecord) string {
	if len(matches) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, fmt.Sprintf("%s (%d)", m.Term, m.Count))
	}
	return strings.Join(parts, ", ")
}

// highlightSpans applies mark to every span of text. Spans must be sorted
// and disjoint, as the matcher produces them.
func highlightSpans(text string, spans []core.Span, mark func(...string) string) string {
	var b strings.Builder
	prev := 0
	for _, s := range spans {
		if s.Start < prev || s.End > len(text) || s.Start >= s.End {
			continue
		}
		b.WriteString(text[prev:s.Start])
		b.WriteString(mark(text[s.Start:s.End]))
		prev = s.End
	}
	b.WriteString(text[prev:])
	return b.String()
}
