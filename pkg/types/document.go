// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ExtractionStatus indicates how far a scanned document has moved through
// the pipeline. Per prd001-ingestion R4.2.
type ExtractionStatus string

const (
	ExtractionNone    ExtractionStatus = "none"
	ExtractionDone    ExtractionStatus = "extracted"
	ExtractionPartial ExtractionStatus = "partial"
	ExtractionFailed  ExtractionStatus = "failed"
)

// Document holds metadata and file paths for a scanned standards document.
// Per prd001-ingestion R4.1: source path, title, page count, and status.
type Document struct {
	// ID is a slug derived from the source filename (e.g. "ngss-ms-2013").
	ID string `json:"id" yaml:"id"`

	// SourcePath is the local filesystem path to the scanned PDF.
	SourcePath string `json:"source_path" yaml:"source_path"`

	// Title is the document title, when known.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Pages is the page count reported by the extraction collaborator,
	// zero when unknown.
	Pages int `json:"pages,omitempty" yaml:"pages,omitempty"`

	// ExtractionStatus tracks whether records have been extracted.
	ExtractionStatus ExtractionStatus `json:"extraction_status" yaml:"extraction_status"`
}
