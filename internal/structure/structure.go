// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package structure turns one discovered standard code into a complete
// StandardRecord, applying field-specific fallbacks when sub-sections are
// absent. Structure is a pure function of its inputs: identical page text
// and code always yield a field-identical record.
// Implements: prd003-structuring (R1-R6);
//
//	docs/ARCHITECTURE § Structuring.
package structure

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/standards-engine/internal/pages"
	"github.com/pdiddy/standards-engine/internal/scan"
	"github.com/pdiddy/standards-engine/internal/topics"
	"github.com/pdiddy/standards-engine/pkg/types"
)

// ErrCodeNotFound reports that the requested code appears on no page.
// Codes are expected to sometimes be unresolvable; callers treat this as
// a skip, not a failure (R1.2).
var ErrCodeNotFound = errors.New("code not found on any page")

// domainNames is the fixed three-entry lookup from domain prefix (trailing
// digits stripped) to domain family (R2.2). Unrecognized prefixes map to
// DomainUnknown; prefix mapping never fails.
var domainNames = map[string]string{
	"PS":  "Physical Science",
	"LS":  "Life Science",
	"ESS": "Earth and Space Science",
}

// DomainUnknown is the explicit domain for unrecognized prefixes.
const DomainUnknown = "Unknown"

// Structure locates the page containing code and parses it into a complete
// StandardRecord. It returns ErrCodeNotFound when the code is on no page.
// A missing or malformed dimension never fails the call; the documented
// default sub-record is substituted instead (R1.1, R3.4, R4.4).
func Structure(pp []pages.Page, code string) (*types.StandardRecord, error) {
	page, ok := locatePage(pp, code)
	if !ok {
		return nil, fmt.Errorf("structuring %s: %w", code, ErrCodeNotFound)
	}

	grade, domain := splitCode(code)
	topic := topics.TopicOf(page)
	statement := performanceStatement(page.Text, code)

	rec := &types.StandardRecord{
		Code:                 code,
		GradeLevel:           grade,
		Domain:               domain,
		Topic:                topic,
		PerformanceStatement: statement,
		Practice:             extractPractice(pp, page.Number),
		Idea:                 extractIdea(pp, page.Number),
		Concept:              extractConcept(pp, page.Number),
		SynthesizedQuestions: synthesizeQuestions(statement, topic),
		Keywords:             extractKeywords(statement, topic),
		LessonScopeHints:     lessonScopeHints(grade, domain, topic),
	}
	return rec, nil
}

// locatePage returns the first page whose text contains the code token,
// consistent with the scanner's keep-first discovery policy (R1.2).
func locatePage(pp []pages.Page, code string) (pages.Page, bool) {
	for _, m := range scan.DiscoverCodes(pp, pages.Range{}) {
		if m.Code != code {
			continue
		}
		for _, p := range pp {
			if p.Number == m.Page {
				return p, true
			}
		}
	}
	return pages.Page{}, false
}

// splitCode derives the grade level and domain family from a code by
// splitting on the first separator; the domain prefix has its trailing
// digits stripped before the lookup (R2.1, R2.2).
func splitCode(code string) (grade, domain string) {
	grade, rest, found := strings.Cut(code, "-")
	if !found {
		return code, DomainUnknown
	}

	prefix, _, _ := strings.Cut(rest, "-")
	prefix = strings.TrimRight(prefix, "0123456789")

	name, ok := domainNames[prefix]
	if !ok {
		return grade, DomainUnknown
	}
	return grade, name
}

// performanceStatement captures the text immediately following the code
// token, up to the next bracketed annotation or reserved section header,
// with internal whitespace collapsed to single spaces (R2.3).
func performanceStatement(text, code string) string {
	idx := strings.Index(text, code)
	if idx < 0 {
		return ""
	}

	rest := text[idx+len(code):]
	if i := strings.IndexByte(rest, '['); i >= 0 {
		rest = rest[:i]
	}
	rest = scan.CutAtReservedHeader(rest)

	rest = strings.TrimLeft(rest, ".: \t\n")
	return strings.Join(strings.Fields(rest), " ")
}
