package lexicon

import (
	"reflect"
	"strings"
	"testing"
)

func TestCandidates(t *testing.T) {
	l := NewLearner()

	tests := []struct {
		name     string
		text     string
		existing []string
		want     []string
	}{
		{
			name: "short tokens skipped",
			text: "URGENT! You have won $1000000! Click here now!",
			want: []string{"urgent", "1000000", "click"},
		},
		{
			name:     "known terms skipped",
			text:     "URGENT! You have won $1000000! Click here now!",
			existing: []string{"urgent", "click"},
			want:     []string{"1000000"},
		},
		{
			name: "repeated tokens once",
			text: "Prize prize PRIZE winner",
			want: []string{"prize", "winner"},
		},
		{
			name: "exactly four bytes is too short",
			text: "free cash offer",
			want: []string{"offer"},
		},
		{
			name: "underscores are word characters",
			text: "claim_now, act-fast",
			want: []string{"claim_now"},
		},
		{
			name: "tokens over the length cap skipped",
			text: "jackpot " + strings.Repeat("x", MaxTermLength+1) + " " + strings.Repeat("y", MaxTermLength),
			want: []string{"jackpot", strings.Repeat("y", MaxTermLength)},
		},
		{
			name: "nothing long enough",
			text: "a b c",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := l.Candidates(tt.text, tt.existing)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Candidates(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestNormalizeTerm(t *testing.T) {
	if term, ok := NormalizeTerm("  jackpot \n"); !ok || term != "jackpot" {
		t.Errorf("expected trimmed term, got %q %v", term, ok)
	}
	if _, ok := NormalizeTerm(" \t "); ok {
		t.Error("expected whitespace-only term to be rejected")
	}
	if _, ok := NormalizeTerm(strings.Repeat("a", MaxTermLength+1)); ok {
		t.Error("expected term over MaxTermLength to be rejected")
	}
	if _, ok := NormalizeTerm(" " + strings.Repeat("a", MaxTermLength) + " "); !ok {
		t.Error("expected term of exactly MaxTermLength to be accepted")
	}
}
