package topics

import (
	"strings"
	"testing"

	"github.com/pdiddy/standards-engine/internal/pages"
)

const sampleDoc = "Page 5: Topic: Structure and Properties of Matter\n" +
	"MS-PS1-1 Develop models to describe atomic composition.\n" +
	"Page 6: Topic: Structure and Properties of Matter\n" +
	"MS-PS1-2 Analyze and interpret data on properties.\n" +
	"Page 9: Topic: Interdependent Relationships in Ecosystems\n" +
	"MS-LS2-1 Analyze data about resource availability.\n"

func TestFindTopicRange(t *testing.T) {
	pp := pages.Segment(sampleDoc)

	tests := []struct {
		name      string
		pattern   string
		wantFound bool
		wantFirst int
		wantLast  int
	}{
		{"literal match", "Structure and Properties of Matter", true, 5, 6},
		{"case-insensitive literal", "structure and properties of matter", true, 5, 6},
		{"second topic", "Interdependent Relationships in Ecosystems", true, 9, 9},
		{"fuzzy match with most words present", "Structure Properties Matter", true, 5, 6},
		{"no match", "Waves and Electromagnetic Radiation", false, 0, 0},
		{"empty pattern", "", false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, found := FindTopicRange(pp, tt.pattern)
			if found != tt.wantFound {
				t.Fatalf("found = %v, want %v", found, tt.wantFound)
			}
			if !found {
				return
			}
			if tr.StartPage != tt.wantFirst || tr.EndPage != tt.wantLast {
				t.Errorf("range = %d-%d, want %d-%d", tr.StartPage, tr.EndPage, tt.wantFirst, tt.wantLast)
			}
		})
	}
}

func TestFindTopicRangeOnPageZero(t *testing.T) {
	// A document whose numbering starts at zero must still report a match
	// on its first page.
	pp := []pages.Page{
		{Number: 0, Text: "Topic: Energy\nMS-PS3-1 Construct and interpret graphs."},
		{Number: 1, Text: "Topic: Energy\nMS-PS3-2 Develop a model of potential energy."},
	}

	tr, found := FindTopicRange(pp, "Energy")
	if !found {
		t.Fatal("topic not found")
	}
	if tr.StartPage != 0 || tr.EndPage != 1 {
		t.Errorf("range = %d-%d, want 0-1", tr.StartPage, tr.EndPage)
	}
}

func TestFindTopicRangeResolvesCodes(t *testing.T) {
	pp := pages.Segment(sampleDoc)

	tr, found := FindTopicRange(pp, "Structure and Properties of Matter")
	if !found {
		t.Fatal("topic not found")
	}
	if len(tr.Codes) != 2 {
		t.Fatalf("got %d codes %v, want 2", len(tr.Codes), tr.Codes)
	}
	if tr.Codes[0] != "MS-PS1-1" || tr.Codes[1] != "MS-PS1-2" {
		t.Errorf("codes = %v, want [MS-PS1-1 MS-PS1-2]", tr.Codes)
	}
}

func TestListAllTopics(t *testing.T) {
	pp := pages.Segment(sampleDoc)

	got := ListAllTopics(pp)
	if len(got) != 2 {
		t.Fatalf("got %d topics, want 2", len(got))
	}
	if got[0].Name != "Structure and Properties of Matter" {
		t.Errorf("topic[0] = %q", got[0].Name)
	}
	if got[0].StartPage != 5 || got[0].EndPage != 6 {
		t.Errorf("topic[0] range = %d-%d, want 5-6", got[0].StartPage, got[0].EndPage)
	}
	if got[1].Name != "Interdependent Relationships in Ecosystems" {
		t.Errorf("topic[1] = %q", got[1].Name)
	}
	if got[1].StartPage != 9 || got[1].EndPage != 9 {
		t.Errorf("topic[1] range = %d-%d, want 9-9", got[1].StartPage, got[1].EndPage)
	}
}

func TestListAllTopicsSortedByStartPage(t *testing.T) {
	// Markers out of order in the raw text; segmentation sorts pages first.
	doc := "Page 9: Topic: Later Topic\nPage 2: Topic: Earlier Topic\n"
	pp := pages.Segment(doc)

	got := ListAllTopics(pp)
	if len(got) != 2 {
		t.Fatalf("got %d topics, want 2", len(got))
	}
	if got[0].Name != "Earlier Topic" || got[1].Name != "Later Topic" {
		t.Errorf("topics out of order: %q, %q", got[0].Name, got[1].Name)
	}
}

func TestListAllTopicsGroupsOCRVariants(t *testing.T) {
	// The same heading with a letter-splitting artifact on one page must
	// not produce two ranges.
	doc := "Page 3: Topic: Energy\nPage 4: Topic: E nergy\n"
	pp := pages.Segment(doc)

	got := ListAllTopics(pp)
	if len(got) != 1 {
		t.Fatalf("got %d topics %v, want 1", len(got), got)
	}
	if got[0].Name != "Energy" {
		t.Errorf("name = %q, want Energy", got[0].Name)
	}
	if got[0].StartPage != 3 || got[0].EndPage != 4 {
		t.Errorf("range = %d-%d, want 3-4", got[0].StartPage, got[0].EndPage)
	}
}

func TestTopicOf(t *testing.T) {
	pp := pages.Segment("Page 1: Topic: Chemical Reactions\nbody text\nPage 2: no marker here")

	if got := TopicOf(pp[0]); got != "Chemical Reactions" {
		t.Errorf("TopicOf(page 1) = %q, want %q", got, "Chemical Reactions")
	}
	if got := TopicOf(pp[1]); got != "" {
		t.Errorf("TopicOf(page 2) = %q, want empty", got)
	}
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Chemical Reactions", "Chemical Reactions"},
		{"collapse whitespace", "  Chemical   Reactions ", "Chemical Reactions"},
		{"letter split rejoined", "E nergy", "Energy"},
		{"split mid-phrase", "Chemical R eactions", "Chemical Reactions"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Canonicalize(tt.input); got != tt.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	inputs := []string{"E nergy", "Chemical   Reactions", "Plain Topic"}
	for _, in := range inputs {
		once := Canonicalize(in)
		twice := Canonicalize(once)
		if once != twice {
			t.Errorf("Canonicalize not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}

func TestPageMatchesFuzzyThreshold(t *testing.T) {
	// 2 of 3 pattern words present: 66% < 70% threshold.
	pp := pages.Segment("Page 1: structure properties discussed here")
	if _, found := FindTopicRange(pp, "structure properties matter"); found {
		t.Error("66% word overlap should not match")
	}

	// 3 of 4 words present: 75% >= 70%.
	pp = pages.Segment("Page 1: structure and properties discussed here")
	if _, found := FindTopicRange(pp, "structure and properties matter"); !found {
		t.Error("75% word overlap should match")
	}
}

func TestFindTopicRangeMatchesAfterMarker(t *testing.T) {
	pp := pages.Segment("Page 7: Topic: Waves and Their Applications\nbody")

	tr, found := FindTopicRange(pp, "Waves and Their Applications")
	if !found {
		t.Fatal("topic not found")
	}
	if tr.StartPage != 7 {
		t.Errorf("start page = %d, want 7", tr.StartPage)
	}
	if !strings.HasPrefix(tr.Name, "Waves") {
		t.Errorf("name = %q", tr.Name)
	}
}
