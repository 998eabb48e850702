// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scan discovers standard-code tokens and framework section text
// within segmented page text.
// Implements: prd002-scanning (R1, R2);
//
//	docs/ARCHITECTURE § Scanning.
package scan

import (
	"strings"

	"github.com/pdiddy/standards-engine/internal/pages"
	"github.com/pdiddy/standards-engine/pkg/types"
)

// DefaultContextWindow is the number of characters captured on each side of
// a discovered code token (R1.3).
const DefaultContextWindow = 50

// DuplicatePolicy names how repeated occurrences of the same code are
// resolved during discovery (R1.4). A code legitimately appearing on more
// than one page is treated as a cross-reference, not a data error; the
// policy decides which occurrence survives.
type DuplicatePolicy string

const (
	// KeepFirst keeps the first occurrence of each code. Default.
	KeepFirst DuplicatePolicy = "keep-first"

	// KeepLast keeps the last occurrence of each code.
	KeepLast DuplicatePolicy = "keep-last"

	// KeepAll keeps every occurrence.
	KeepAll DuplicatePolicy = "keep-all"
)

// CodeMatch is one discovered standard-code token with its location and a
// symmetric context window clamped to page bounds.
type CodeMatch struct {
	Code    string
	Page    int
	Context string
}

// SectionMatch is one framework section located on a page. Content never
// includes a reserved header phrase: extraction stops at the next reserved
// header or end of page (R2.2, R2.3).
type SectionMatch struct {
	Type    types.SectionType
	Page    int
	Content string
}

// DiscoverCodes scans each page for code tokens with the default context
// window and keep-first duplicate policy. Absence of codes yields an empty
// list, never an error (R1.1, R1.2).
func DiscoverCodes(pp []pages.Page, rng pages.Range) []CodeMatch {
	return DiscoverCodesWith(pp, rng, KeepFirst, DefaultContextWindow)
}

// DiscoverCodesWith scans with an explicit duplicate policy and context
// window size.
func DiscoverCodesWith(pp []pages.Page, rng pages.Range, policy DuplicatePolicy, window int) []CodeMatch {
	if window <= 0 {
		window = DefaultContextWindow
	}

	seen := make(map[string]int) // code → index into matches
	var matches []CodeMatch

	for _, p := range pages.Filter(pp, rng) {
		for _, loc := range codeRe.FindAllStringIndex(p.Text, -1) {
			m := CodeMatch{
				Code:    p.Text[loc[0]:loc[1]],
				Page:    p.Number,
				Context: contextWindow(p.Text, loc[0], loc[1], window),
			}

			idx, dup := seen[m.Code]
			switch {
			case !dup:
				seen[m.Code] = len(matches)
				matches = append(matches, m)
			case policy == KeepLast:
				matches[idx] = m
			case policy == KeepAll:
				matches = append(matches, m)
			}
			// KeepFirst: later occurrences are dropped.
		}
	}
	return matches
}

// FindSections locates the section's header phrase on each page and captures
// text from just after the header to the earliest of the next reserved
// header or end of page. A page without the header contributes no match;
// this is not an error (R2.1-R2.4).
func FindSections(pp []pages.Page, section types.SectionType, rng pages.Range) []SectionMatch {
	header, ok := sectionHeaders[section]
	if !ok {
		return nil
	}

	var matches []SectionMatch
	for _, p := range pages.Filter(pp, rng) {
		idx := strings.Index(p.Text, header)
		if idx < 0 {
			continue
		}

		start := idx + len(header)
		content := p.Text[start:]
		if stop := nextReservedHeader(content); stop >= 0 {
			content = content[:stop]
		}

		matches = append(matches, SectionMatch{
			Type:    section,
			Page:    p.Number,
			Content: strings.TrimSpace(content),
		})
	}
	return matches
}

// contextWindow returns text around [start,end) extended by window
// characters on each side, clamped to the page bounds (R1.3).
func contextWindow(text string, start, end, window int) string {
	ctxStart := start - window
	if ctxStart < 0 {
		ctxStart = 0
	}
	ctxEnd := end + window
	if ctxEnd > len(text) {
		ctxEnd = len(text)
	}
	return text[ctxStart:ctxEnd]
}

// CutAtReservedHeader truncates text at the earliest reserved header
// phrase. Text without any reserved header is returned unchanged.
func CutAtReservedHeader(text string) string {
	if stop := nextReservedHeader(text); stop >= 0 {
		return text[:stop]
	}
	return text
}

// nextReservedHeader returns the index of the earliest reserved header
// phrase in text, or -1 when none occurs.
func nextReservedHeader(text string) int {
	stop := -1
	for _, h := range reservedHeaders {
		if i := strings.Index(text, h); i >= 0 && (stop < 0 || i < stop) {
			stop = i
		}
	}
	return stop
}
