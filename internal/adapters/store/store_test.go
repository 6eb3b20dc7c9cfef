package store

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/mikey/spam-doctor/internal/core"
	"github.com/mikey/spam-doctor/internal/lexicon"
)

// testLexiconStore checks the behaviour every lexicon backend shares
func testLexiconStore(t *testing.T, lex core.LexiconStore) {
	t.Helper()
	ctx := context.Background()

	terms, err := lex.Terms(ctx)
	if err != nil {
		t.Fatalf("Terms failed: %v", err)
	}
	if len(terms) != 0 {
		t.Fatalf("expected an empty lexicon, got %v", terms)
	}

	adds := []struct {
		term string
		want bool
	}{
		{"urgent", true},
		{"  won ", true},
		{"urgent", false},
		{"won", false},
		{"Urgent", true},
		{"", false},
		{" \t", false},
		{"free money", true},
		{strings.Repeat("x", lexicon.MaxTermLength+1), false},
	}
	for _, a := range adds {
		added, err := lex.Add(ctx, a.term)
		if err != nil {
			t.Fatalf("Add(%q) failed: %v", a.term, err)
		}
		if added != a.want {
			t.Errorf("Add(%q) = %v, want %v", a.term, added, a.want)
		}
	}

	terms, err = lex.Terms(ctx)
	if err != nil {
		t.Fatalf("Terms failed: %v", err)
	}
	want := []string{"urgent", "won", "Urgent", "free money"}
	if !reflect.DeepEqual(terms, want) {
		t.Errorf("expected terms %v, got %v", want, terms)
	}
}

// testCorpusStore checks the behaviour every corpus backend shares
func testCorpusStore(t *testing.T, corpus core.CorpusStore) {
	t.Helper()
	ctx := context.Background()

	all, err := corpus.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if all.Len() != 0 {
		t.Fatalf("expected an empty corpus, got %d samples", all.Len())
	}

	samples := []core.TrainingSample{
		{Text: "Free money! Act now!", Label: core.LabelSpam},
		{Text: "See you at lunch", Label: core.LabelHam},
		{Text: "Free money! Act now!", Label: core.LabelSpam},
	}
	for _, s := range samples {
		if err := corpus.Append(ctx, s); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	all, err = corpus.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	wantSamples := []string{"Free money! Act now!", "See you at lunch", "Free money! Act now!"}
	wantLabels := []core.Label{core.LabelSpam, core.LabelHam, core.LabelSpam}
	if !reflect.DeepEqual(all.Samples, wantSamples) {
		t.Errorf("expected samples %v, got %v", wantSamples, all.Samples)
	}
	if !reflect.DeepEqual(all.Labels, wantLabels) {
		t.Errorf("expected labels %v, got %v", wantLabels, all.Labels)
	}
}
