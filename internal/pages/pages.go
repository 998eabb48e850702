// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pages segments page-marker-delimited text into an immutable
// ordered sequence of (page number, text) pairs. Every scanning stage
// operates on this sequence instead of on the raw blob, so no matcher
// state can leak between calls.
// Implements: prd001-ingestion (R3);
//
//	docs/ARCHITECTURE § Ingestion.
package pages

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Page is one page of extracted text. Pages are values; callers never
// mutate them after segmentation.
type Page struct {
	// Number is the page number declared by the page marker.
	Number int

	// Text is the page content, running from just after the marker to the
	// next marker or end of input.
	Text string
}

// markerRe matches the literal page marker "Page <n>:". A fresh scan of the
// input happens on every Segment call; the compiled pattern itself holds no
// match state.
var markerRe = regexp.MustCompile(`Page\s+(\d+):`)

// Segment splits marker-delimited text into pages. Input without any marker
// yields zero pages. Markers are not assumed to be sorted; the result is
// stably sorted by ascending page number, so duplicate page numbers keep
// their encounter order (R3.2, R3.3).
func Segment(text string) []Page {
	locs := markerRe.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	result := make([]Page, 0, len(locs))
	for i, loc := range locs {
		num, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil {
			continue
		}

		start := loc[1]
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}

		result = append(result, Page{
			Number: num,
			Text:   strings.TrimSpace(text[start:end]),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Number < result[j].Number
	})
	return result
}

// Range restricts an operation to an inclusive page span. The zero value
// means "all pages".
type Range struct {
	First int
	Last  int
}

// All reports whether the range places no restriction on pages.
func (r Range) All() bool {
	return r.First == 0 && r.Last == 0
}

// Contains reports whether page n falls inside the range.
func (r Range) Contains(n int) bool {
	if r.All() {
		return true
	}
	return n >= r.First && n <= r.Last
}

// ParseRange parses a page spec like "5" or "5-12" into a Range (R3.4).
func ParseRange(spec string) (Range, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Range{}, nil
	}

	if first, last, found := strings.Cut(spec, "-"); found {
		f, errF := strconv.Atoi(strings.TrimSpace(first))
		l, errL := strconv.Atoi(strings.TrimSpace(last))
		if errF != nil || errL != nil {
			return Range{}, fmt.Errorf("invalid page spec %q: expected N or N-M", spec)
		}
		if f > l {
			return Range{}, fmt.Errorf("invalid page spec %q: first page after last", spec)
		}
		return Range{First: f, Last: l}, nil
	}

	n, err := strconv.Atoi(spec)
	if err != nil {
		return Range{}, fmt.Errorf("invalid page spec %q: expected N or N-M", spec)
	}
	return Range{First: n, Last: n}, nil
}

// Filter returns the pages inside rng, preserving order.
func Filter(all []Page, rng Range) []Page {
	if rng.All() {
		return all
	}
	var result []Page
	for _, p := range all {
		if rng.Contains(p.Number) {
			result = append(result, p)
		}
	}
	return result
}
