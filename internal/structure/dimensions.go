// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// dimensions.go parses the three framework dimensions from a standard's
// page, mapping extracted names onto the canonical enumerated vocabularies.
// Implements: prd003-structuring (R4).

package structure

import (
	"regexp"
	"strings"

	"github.com/pdiddy/standards-engine/internal/pages"
	"github.com/pdiddy/standards-engine/internal/scan"
	"github.com/pdiddy/standards-engine/pkg/types"
)

// bulletRe captures the first bulleted detail line inside a practice or
// concept section.
var bulletRe = regexp.MustCompile(`▪\s*([^▪]+)`)

// ideaRe captures a core-idea detail like "PS1.A: Structure and Properties
// of Matter". The name stops at the next sentence or bullet boundary.
var ideaRe = regexp.MustCompile(`([A-Z]{2,4}\d{1,2}\.[A-Z])\s*:\s*([^.▪]+)`)

// vocabEntry maps a lowercase keyword stem to a canonical dimension code
// and title. Entries are matched in order; the first stem found as a
// substring of the extracted name wins.
type vocabEntry struct {
	stems []string
	code  string
	title string
}

// practiceVocab enumerates the eight science and engineering practices.
var practiceVocab = []vocabEntry{
	{[]string{"asking questions", "defining problems"}, "SEP1", "Asking Questions and Defining Problems"},
	{[]string{"model"}, "SEP2", "Developing and Using Models"},
	{[]string{"investigation"}, "SEP3", "Planning and Carrying Out Investigations"},
	{[]string{"analyz", "interpret"}, "SEP4", "Analyzing and Interpreting Data"},
	{[]string{"mathematic", "computational"}, "SEP5", "Using Mathematics and Computational Thinking"},
	{[]string{"explanation", "design"}, "SEP6", "Constructing Explanations and Designing Solutions"},
	{[]string{"argument"}, "SEP7", "Engaging in Argument from Evidence"},
	{[]string{"obtain", "communicat"}, "SEP8", "Obtaining, Evaluating, and Communicating Information"},
}

// conceptVocab enumerates the seven crosscutting concepts. "pattern" is
// first on purpose: concept sentences routinely mention cause and effect
// while belonging to Patterns.
var conceptVocab = []vocabEntry{
	{[]string{"pattern"}, "CCC1", "Patterns"},
	{[]string{"cause"}, "CCC2", "Cause and Effect"},
	{[]string{"scale", "proportion", "quantity"}, "CCC3", "Scale, Proportion, and Quantity"},
	{[]string{"system"}, "CCC4", "Systems and System Models"},
	{[]string{"energy", "matter"}, "CCC5", "Energy and Matter"},
	{[]string{"structure and function"}, "CCC6", "Structure and Function"},
	{[]string{"stability", "change"}, "CCC7", "Stability and Change"},
}

// extractPractice parses the science and engineering practice dimension
// from the code's page (R4.1).
func extractPractice(pp []pages.Page, pageNum int) types.Dimension {
	return extractBulleted(pp, types.SectionPractice, pageNum, practiceVocab)
}

// extractConcept parses the crosscutting concept dimension (R4.3).
func extractConcept(pp []pages.Page, pageNum int) types.Dimension {
	return extractBulleted(pp, types.SectionConcept, pageNum, conceptVocab)
}

// extractBulleted handles the two bullet-styled sections. An absent
// section, or a found section whose bullet pattern fails, degrades to the
// documented default sub-record; it never errors (R4.4).
func extractBulleted(pp []pages.Page, section types.SectionType, pageNum int, vocab []vocabEntry) types.Dimension {
	content, found := sectionOn(pp, section, pageNum)
	if !found {
		return defaultDimension("")
	}

	m := bulletRe.FindStringSubmatch(content)
	if m == nil {
		return defaultDimension(content)
	}

	name := strings.TrimSpace(m[1])
	code, title := lookupVocab(vocab, name)
	return types.Dimension{
		Code:        code,
		Name:        name,
		Description: title,
		Source:      types.SourceExtracted,
	}
}

// extractIdea parses the disciplinary core idea dimension. The idea code
// and name come directly from the detail pattern rather than a vocabulary
// (R4.2).
func extractIdea(pp []pages.Page, pageNum int) types.Dimension {
	content, found := sectionOn(pp, types.SectionIdea, pageNum)
	if !found {
		return defaultDimension("")
	}

	m := ideaRe.FindStringSubmatchIndex(content)
	if m == nil {
		return defaultDimension(content)
	}

	code := content[m[2]:m[3]]
	name := strings.TrimSpace(content[m[4]:m[5]])
	desc := strings.TrimSpace(strings.Trim(content[m[1]:], ". "))
	return types.Dimension{
		Code:        code,
		Name:        name,
		Description: desc,
		Source:      types.SourceExtracted,
	}
}

// sectionOn returns the section content on a single page, when present.
func sectionOn(pp []pages.Page, section types.SectionType, pageNum int) (string, bool) {
	rng := pages.Range{First: pageNum, Last: pageNum}
	matches := scan.FindSections(pp, section, rng)
	if len(matches) == 0 {
		return "", false
	}
	return matches[0].Content, true
}

// defaultDimension is the documented default sub-record: empty code,
// "Unknown" name, and a section-text-derived description when a section
// was found but its detail pattern failed (R4.4). The empty code keeps
// defaulted dimensions out of the three-dimensionally-complete set.
func defaultDimension(sectionText string) types.Dimension {
	return types.Dimension{
		Code:        "",
		Name:        "Unknown",
		Description: strings.TrimSpace(sectionText),
		Source:      types.SourceDefaulted,
	}
}

// lookupVocab returns the canonical code and title for an extracted name,
// or empty strings when no stem matches. An unmapped name keeps its
// extracted provenance but leaves the record incomplete, which is the
// signal that the vocabulary needs the new phrasing.
func lookupVocab(vocab []vocabEntry, name string) (code, title string) {
	lower := strings.ToLower(name)
	for _, entry := range vocab {
		for _, stem := range entry.stems {
			if strings.Contains(lower, stem) {
				return entry.code, entry.title
			}
		}
	}
	return "", ""
}
