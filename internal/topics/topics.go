// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package topics groups pages into named topic ranges and resolves which
// standard codes fall inside each range.
// Implements: prd002-scanning (R3, R4);
//
//	docs/ARCHITECTURE § Scanning.
package topics

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/standards-engine/internal/pages"
	"github.com/pdiddy/standards-engine/internal/scan"
)

// Marker is the fixed topic-header token. Topic names appear immediately
// after it in page headers (R3.2).
const Marker = "Topic:"

// fuzzyThreshold is the fraction of pattern words that must individually
// appear in a page's text for a fuzzy match (R3.3).
const fuzzyThreshold = 0.7

// topicHeaderRe captures the capitalized phrase following the topic marker.
var topicHeaderRe = regexp.MustCompile(`Topic:\s*([A-Z][^\n.]*)`)

// TopicRange is a named grouping of pages sharing a subject heading, with
// the codes discovered inside the page span.
type TopicRange struct {
	Name      string
	StartPage int
	EndPage   int
	Codes     []string
}

// FindTopicRange locates the page span matching a topic pattern. A page
// matches on any of: case-insensitive literal substring, the pattern
// immediately after the topic marker, or fuzzy word overlap where at least
// 70% of the pattern's words individually appear in the page text (R3.1).
// The second return value is false when no page matches.
func FindTopicRange(pp []pages.Page, pattern string) (TopicRange, bool) {
	first, last := 0, 0
	found := false
	for _, p := range pp {
		if !pageMatches(p.Text, pattern) {
			continue
		}
		if !found || p.Number < first {
			first = p.Number
		}
		if !found || p.Number > last {
			last = p.Number
		}
		found = true
	}
	if !found {
		return TopicRange{}, false
	}

	rng := pages.Range{First: first, Last: last}
	return TopicRange{
		Name:      strings.TrimSpace(pattern),
		StartPage: first,
		EndPage:   last,
		Codes:     codesIn(pp, rng),
	}, true
}

// ListAllTopics scans all pages for the topic marker followed by a
// capitalized phrase, groups pages by the canonicalized phrase, and returns
// ranges sorted by ascending start page (R4.1-R4.3).
func ListAllTopics(pp []pages.Page) []TopicRange {
	spans := make(map[string]*TopicRange)
	var order []string

	for _, p := range pp {
		for _, m := range topicHeaderRe.FindAllStringSubmatch(p.Text, -1) {
			name := Canonicalize(m[1])
			if name == "" {
				continue
			}

			tr, ok := spans[name]
			if !ok {
				tr = &TopicRange{Name: name, StartPage: p.Number, EndPage: p.Number}
				spans[name] = tr
				order = append(order, name)
				continue
			}
			if p.Number < tr.StartPage {
				tr.StartPage = p.Number
			}
			if p.Number > tr.EndPage {
				tr.EndPage = p.Number
			}
		}
	}

	result := make([]TopicRange, 0, len(order))
	for _, name := range order {
		tr := spans[name]
		tr.Codes = codesIn(pp, pages.Range{First: tr.StartPage, Last: tr.EndPage})
		result = append(result, *tr)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].StartPage < result[j].StartPage
	})
	return result
}

// TopicOf returns the canonicalized topic heading of a single page, or ""
// when the page carries no topic marker (R3.2).
func TopicOf(p pages.Page) string {
	m := topicHeaderRe.FindStringSubmatch(p.Text)
	if m == nil {
		return ""
	}
	return Canonicalize(m[1])
}

// letterSplitRe matches an OCR letter-splitting artifact: a single capital
// letter severed from the rest of its word ("E nergy", "M atter").
var letterSplitRe = regexp.MustCompile(`\b([A-Z])\s+([a-z]{2,})`)

// Canonicalize normalizes a topic key before grouping: trim, collapse
// internal whitespace, and rejoin letter-splitting artifacts. Without this,
// two OCR variants of one heading would produce two distinct ranges (R4.2).
func Canonicalize(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	return letterSplitRe.ReplaceAllString(name, "$1$2")
}

// pageMatches applies the three-tier match: literal, header, fuzzy.
func pageMatches(text, pattern string) bool {
	lowerText := strings.ToLower(text)
	lowerPattern := strings.ToLower(strings.TrimSpace(pattern))
	if lowerPattern == "" {
		return false
	}

	// (a) literal substring, case-insensitive.
	if strings.Contains(lowerText, lowerPattern) {
		return true
	}

	// (b) pattern immediately after the topic marker.
	rest := text
	for {
		idx := strings.Index(rest, Marker)
		if idx < 0 {
			break
		}
		after := strings.TrimLeft(rest[idx+len(Marker):], " \t")
		if strings.HasPrefix(strings.ToLower(after), lowerPattern) {
			return true
		}
		rest = rest[idx+len(Marker):]
	}

	// (c) fuzzy word overlap.
	words := strings.Fields(lowerPattern)
	if len(words) == 0 {
		return false
	}
	hits := 0
	for _, w := range words {
		if strings.Contains(lowerText, w) {
			hits++
		}
	}
	return float64(hits)/float64(len(words)) >= fuzzyThreshold
}

// codesIn resolves the codes inside a page span via the scanner.
func codesIn(pp []pages.Page, rng pages.Range) []string {
	matches := scan.DiscoverCodes(pp, rng)
	codes := make([]string, 0, len(matches))
	for _, m := range matches {
		codes = append(codes, m.Code)
	}
	return codes
}
