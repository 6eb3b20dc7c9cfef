package matcher

import (
	"reflect"
	"strings"
	"testing"
)

func TestMatch(t *testing.T) {
	text := "URGENT! You have won $1000000! Click here now!"
	res := Match(text, []string{"urgent", "won"})

	wantRecords := []Record{{Term: "urgent", Count: 1}, {Term: "won", Count: 1}}
	if !reflect.DeepEqual(res.Records, wantRecords) {
		t.Errorf("expected records %v, got %v", wantRecords, res.Records)
	}
	if !reflect.DeepEqual(res.Positions, []int{0, 17}) {
		t.Errorf("expected positions [0 17], got %v", res.Positions)
	}

	want := MarkerOpen + "URGENT" + MarkerClose + "! You have " + MarkerOpen + "won" + MarkerClose + " $1000000! Click here now!"
	if res.HighlightedPlain != want {
		t.Errorf("unexpected plain highlight:\n got %q\nwant %q", res.HighlightedPlain, want)
	}
}

func TestMatchNoHits(t *testing.T) {
	text := "Meeting scheduled for tomorrow at 2 PM"
	res := Match(text, []string{"urgent", "won"})

	if len(res.Records) != 0 || len(res.Positions) != 0 || len(res.Spans) != 0 {
		t.Errorf("expected no matches, got %+v", res)
	}
	if res.HighlightedPlain != text {
		t.Errorf("expected plain highlight to equal the text, got %q", res.HighlightedPlain)
	}
}

func TestMatchExtendsToWord(t *testing.T) {
	res := Match("Winners win big", []string{"win"})

	if len(res.Records) != 1 || res.Records[0].Count != 2 {
		t.Fatalf("expected 2 occurrences, got %v", res.Records)
	}
	want := MarkerOpen + "Winners" + MarkerClose + " " + MarkerOpen + "win" + MarkerClose + " big"
	if res.HighlightedPlain != want {
		t.Errorf("expected whole words marked:\n got %q\nwant %q", res.HighlightedPlain, want)
	}
}

func TestMatchUnicodeWords(t *testing.T) {
	res := Match("Gewinnspiel über alles", []string{"winn"})
	want := []Span{{Start: 0, End: len("Gewinnspiel")}}
	if !reflect.DeepEqual(res.Spans, want) {
		t.Errorf("expected span %v, got %v", want, res.Spans)
	}

	res = Match("très gratuité", []string{"gratuit"})
	if !strings.Contains(res.HighlightedPlain, MarkerOpen+"gratuité"+MarkerClose) {
		t.Errorf("expected accented word marked whole, got %q", res.HighlightedPlain)
	}
}

func TestMatchOverlappingTerms(t *testing.T) {
	res := Match("freemoney", []string{"free", "freemoney", "money"})

	if !reflect.DeepEqual(res.Positions, []int{0, 0, 4}) {
		t.Errorf("expected positions [0 0 4], got %v", res.Positions)
	}
	if len(res.Spans) != 1 {
		t.Fatalf("expected overlapping spans merged, got %v", res.Spans)
	}
	if strings.Count(res.HighlightedPlain, MarkerOpen) != 1 {
		t.Errorf("expected a single marker, got %q", res.HighlightedPlain)
	}
}

func TestMatchDoesNotRematchMarkers(t *testing.T) {
	res := Match("span of red color", []string{"span", "red", "color", "style"})
	if got := strings.Count(res.HighlightedPlain, MarkerOpen); got != 3 {
		t.Errorf("expected 3 markers, got %d in %q", got, res.HighlightedPlain)
	}
	for _, r := range res.Records {
		if r.Term == "style" {
			t.Error("style should not match text inside markers")
		}
	}
}

func TestMatchHTMLEscapes(t *testing.T) {
	res := Match("<b>free</b> & more", []string{"free"})

	want := "&lt;b&gt;" + MarkerOpen + "free" + MarkerClose + "&lt;/b&gt; &amp; more"
	if res.HighlightedHTML != want {
		t.Errorf("unexpected html highlight:\n got %q\nwant %q", res.HighlightedHTML, want)
	}
}

func TestMatchLiteralTerms(t *testing.T) {
	res := Match("Pay $100 now (limited)", []string{"$100", "(limited)", "a.b"})

	if len(res.Records) != 2 {
		t.Errorf("expected regex metacharacters treated literally, got %v", res.Records)
	}
}

func TestMatchSkipsDuplicatesAndEmpty(t *testing.T) {
	res := Match("click click", []string{"click", "", "click"})
	if len(res.Records) != 1 || res.Records[0].Count != 2 {
		t.Errorf("expected one record with two hits, got %v", res.Records)
	}
	if len(res.Positions) != 2 {
		t.Errorf("expected two positions, got %v", res.Positions)
	}
}

func TestMergeSpans(t *testing.T) {
	got := mergeSpans([]Span{{8, 10}, {0, 3}, {2, 5}, {5, 6}, {12, 14}})
	want := []Span{{0, 6}, {8, 10}, {12, 14}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if mergeSpans(nil) != nil {
		t.Error("expected nil for no spans")
	}
}

func TestDictionaryReuse(t *testing.T) {
	d := NewDictionary([]string{"urgent", "", "won", "urgent"})
	if !reflect.DeepEqual(d.Terms(), []string{"urgent", "won"}) {
		t.Fatalf("expected distinct terms, got %v", d.Terms())
	}

	first := d.Match("URGENT! You have won")
	second := d.Match("URGENT! You have won")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected the same result on every scan:\n%+v\n%+v", first, second)
	}
	if len(first.Records) != 2 {
		t.Errorf("expected both terms, got %v", first.Records)
	}

	if res := d.Match("nothing here"); len(res.Records) != 0 {
		t.Errorf("expected no records, got %v", res.Records)
	}
}

func TestMatchMapsFoldedOffsets(t *testing.T) {
	// the Kelvin sign lowercases to a one byte k
	text := "Please KEEP this"
	res := Match(text, []string{"keep"})

	if !reflect.DeepEqual(res.Positions, []int{7}) {
		t.Errorf("expected positions [7], got %v", res.Positions)
	}
	want := []Span{{Start: 7, End: 7 + len("KEEP")}}
	if !reflect.DeepEqual(res.Spans, want) {
		t.Errorf("expected spans %v, got %v", want, res.Spans)
	}
}

func TestMatchLongTerm(t *testing.T) {
	term := strings.Repeat("a", 2000) + "b"
	text := strings.Repeat("a", 200000) + term

	res := Match(text, []string{term})
	if len(res.Records) != 1 || res.Records[0].Count != 1 {
		t.Fatalf("expected one occurrence, got %v", res.Records)
	}
	if !reflect.DeepEqual(res.Positions, []int{200000}) {
		t.Errorf("expected position 200000, got %v", res.Positions)
	}
}
