package filter

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/mikey/spam-doctor/internal/core"
)

func TestCliFilterReport(t *testing.T) {
	result := &core.DetectionResult{
		ID:                 "check-7",
		SanitizedText:      "You have won",
		IsSpamByClassifier: true,
		MLProbability:      0.8,
		CombinedScore:      0.59,
		Matches:            []core.MatchRecord{{Term: "won", Count: 1}},
		Positions:          []int{9},
		Spans:              []core.Span{{Start: 9, End: 12}},
		HighlightedPlain:   `You have <span style="color:red;">won</span>`,
	}

	var out bytes.Buffer
	cli := NewCliFilter(&fakeChecker{result: result}, &out, false, zaptest.NewLogger(t))
	got, err := cli.Check(context.Background(), "You have won", false)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if got != result {
		t.Error("expected the checker result to be returned")
	}

	report := out.String()
	for _, want := range []string{
		"Check ID: check-7",
		"ML probability: 0.8000",
		"Spam score: 0.5900",
		"Matched terms: won (1)",
		"Positions: [9]",
		result.HighlightedPlain,
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report is missing %q:\n%s", want, report)
		}
	}
}

func TestCliFilterCheckError(t *testing.T) {
	var out bytes.Buffer
	cli := NewCliFilter(&fakeChecker{err: errors.New("boom")}, &out, false, zaptest.NewLogger(t))
	if _, err := cli.Check(context.Background(), "text", false); err == nil {
		t.Error("expected the check error")
	}
	if out.Len() != 0 {
		t.Errorf("nothing should be printed on error, got %q", out.String())
	}
}

func TestCliFilterColorUsesSpans(t *testing.T) {
	result := &core.DetectionResult{
		SanitizedText:    "free money",
		Spans:            []core.Span{{Start: 0, End: 4}},
		HighlightedPlain: "<marker>",
	}

	var out bytes.Buffer
	cli := NewCliFilter(nil, &out, true, zaptest.NewLogger(t))
	cli.Report(result, time.Millisecond)

	if strings.Contains(out.String(), "<marker>") {
		t.Error("color output should be rendered from the spans")
	}
	if !strings.Contains(out.String(), "money") {
		t.Errorf("expected the text in the output, got %q", out.String())
	}
}

func TestFormatMatches(t *testing.T) {
	if got := formatMatches(nil); got != "none" {
		t.Errorf("expected none, got %q", got)
	}
	got := formatMatches([]core.MatchRecord{{Term: "free", Count: 2}, {Term: "win", Count: 1}})
	if got != "free (2), win (1)" {
		t.Errorf("unexpected %q", got)
	}
}

func TestHighlightSpans(t *testing.T) {
	mark := func(s ...string) string { return "[" + strings.Join(s, "") + "]" }

	tests := []struct {
		text  string
		spans []core.Span
		want  string
	}{
		{"free money now", []core.Span{{Start: 0, End: 4}, {Start: 5, End: 10}}, "[free] [money] now"},
		{"free money", nil, "free money"},
		{"free money", []core.Span{{Start: 0, End: 4}, {Start: 2, End: 6}, {Start: 5, End: 99}, {Start: 7, End: 7}}, "[free] money"},
	}

	for _, tt := range tests {
		if got := highlightSpans(tt.text, tt.spans, mark); got != tt.want {
			t.Errorf("highlightSpans(%q, %v) = %q, want %q", tt.text, tt.spans, got, tt.want)
		}
	}
}
