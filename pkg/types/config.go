package types

// ReaderConfig holds settings for the text-extraction collaborator.
// Per prd001-ingestion R1.2, R2.1-R2.3.
type ReaderConfig struct {
	// Image is the container image used to extract page text
	// (default "pdftotext:latest").
	Image string `json:"image" yaml:"image"`
}

// ScanConfig holds settings for code and section scanning.
// Per prd002-scanning R1.3.
type ScanConfig struct {
	// ContextWindow is the number of characters captured on each side of a
	// discovered code token, clamped to page bounds (default 50).
	ContextWindow int `json:"context_window" yaml:"context_window"`
}

// ExtractionConfig holds settings for the batch extraction stage.
// Per prd005-orchestration R1.1-R1.4.
type ExtractionConfig struct {
	// DocumentsDir is the base directory for source documents
	// (contains raw/, metadata/).
	DocumentsDir string `json:"documents_dir" yaml:"documents_dir"`

	// RecordsDir is the base directory for extraction output
	// (contains records/, index/).
	RecordsDir string `json:"records_dir" yaml:"records_dir"`

	// DomainFilter keeps only codes whose prefix matches (e.g. "MS-LS").
	// Empty keeps all codes.
	DomainFilter string `json:"domain_filter,omitempty" yaml:"domain_filter,omitempty"`

	// Concurrency bounds in-flight extractions in concurrent mode
	// (default 5).
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// StoreConfig holds settings for the standards store.
// Per prd006-store R1.2, R2.3.
type StoreConfig struct {
	// RecordsDir is the base directory for records (contains records/, index/).
	RecordsDir string `json:"records_dir" yaml:"records_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Reader     ReaderConfig     `json:"reader" yaml:"reader"`
	Scan       ScanConfig       `json:"scan" yaml:"scan"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Store      StoreConfig      `json:"store" yaml:"store"`
}
