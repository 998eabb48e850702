// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DimensionSource tags where a dimension sub-record came from.
// Per prd003-structuring R4.5: consumers must be able to tell
// source-derived data apart from substituted defaults.
type DimensionSource string

const (
	// SourceExtracted means the dimension was parsed from the document text.
	SourceExtracted DimensionSource = "extracted"

	// SourceDefaulted means the dimension's section or detail pattern was
	// missing and the documented default sub-record was substituted.
	SourceDefaulted DimensionSource = "defaulted"
)

// SectionType identifies one of the three framework sections scanned for
// on a standard's page. Per prd002-scanning R2.1.
type SectionType string

const (
	SectionPractice SectionType = "practice"
	SectionIdea     SectionType = "idea"
	SectionConcept  SectionType = "concept"
)

// Dimension is one leg of a standard's three-part framework: a science and
// engineering practice, a disciplinary core idea, or a crosscutting concept.
// Per prd003-structuring R4.1-R4.5.
type Dimension struct {
	// Code is the canonical identifier (e.g. "SEP2", "PS1.A", "CCC1").
	// Empty when the dimension was defaulted or the extracted name matched
	// no vocabulary entry.
	Code string `json:"code" yaml:"code"`

	// Name is the dimension's display name. "Unknown" for defaults.
	Name string `json:"name" yaml:"name"`

	// Description carries the dimension's supporting text. For defaults it
	// holds the raw section text when a section was found, else empty.
	Description string `json:"description" yaml:"description"`

	// Source records whether the dimension was extracted or defaulted.
	Source DimensionSource `json:"source,omitempty" yaml:"source,omitempty"`
}

// StandardRecord is one performance expectation with its full structured
// metadata and three-part framework. Records are built once, validated once,
// and never mutated in place. Per prd003-structuring R1-R6.
type StandardRecord struct {
	// Code is the standard's unique identifier (e.g. "MS-PS1-1").
	Code string `json:"code" yaml:"code"`

	// GradeLevel is the grade band prefix of the code ("K", "3", "MS", "HS").
	GradeLevel string `json:"grade_level" yaml:"grade_level"`

	// Domain is the science domain family ("Physical Science", "Life
	// Science", "Earth and Space Science", or "Unknown").
	Domain string `json:"domain" yaml:"domain"`

	// Topic is the subject heading read from the page's topic marker.
	// Empty when the page carries no marker.
	Topic string `json:"topic" yaml:"topic"`

	// PerformanceStatement is the expectation text following the code token,
	// up to the first bracketed annotation, whitespace collapsed.
	PerformanceStatement string `json:"performance_statement" yaml:"performance_statement"`

	// Practice is the science and engineering practice dimension.
	Practice Dimension `json:"practice" yaml:"practice"`

	// Idea is the disciplinary core idea dimension.
	Idea Dimension `json:"idea" yaml:"idea"`

	// Concept is the crosscutting concept dimension.
	Concept Dimension `json:"concept" yaml:"concept"`

	// SynthesizedQuestions holds up to two guiding questions derived from
	// the statement and topic. Per prd003-structuring R5.1-R5.4.
	SynthesizedQuestions []string `json:"synthesized_questions" yaml:"synthesized_questions"`

	// Keywords holds up to eight deduplicated, lowercased content words
	// drawn from the statement and topic. Per prd003-structuring R5.5.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// LessonScopeHints are deterministic scoping hints (grade band, domain,
	// topic) for lesson planning.
	LessonScopeHints []string `json:"lesson_scope_hints" yaml:"lesson_scope_hints"`
}

// ExtractionResult holds the batch output for a single source document,
// written to <doc>-records.yaml. Per prd005-orchestration R3.4.
type ExtractionResult struct {
	// DocumentID identifies the source document.
	DocumentID string `json:"document_id" yaml:"document_id"`

	// Records contains the three-dimensionally complete records.
	Records []StandardRecord `json:"records" yaml:"records"`

	// Incomplete contains structured records that failed the completeness
	// gate. Kept separate so callers can inspect degradation.
	Incomplete []StandardRecord `json:"incomplete,omitempty" yaml:"incomplete,omitempty"`

	// Errors records per-code extraction failures. Empty on a clean run.
	Errors []ExtractionError `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// ExtractionError is a per-code failure captured during a batch run.
// Per prd005-orchestration R2.3: both batch paths report item failures
// instead of aborting.
type ExtractionError struct {
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}
