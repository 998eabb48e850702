package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/standards-engine/pkg/types"
)

// --- test helpers ---

func testSetup(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()

	base := filepath.Join(tmpDir, "standards")
	if err := os.MkdirAll(filepath.Join(base, recordsDir), 0o755); err != nil {
		t.Fatal(err)
	}

	cfg := types.StoreConfig{
		RecordsDir: base,
		MaxResults: 20,
	}
	s, err := NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	return s, base
}

func writeRecordFile(t *testing.T, base, docID string, result types.ExtractionResult) {
	t.Helper()
	result.DocumentID = docID
	data, err := yaml.Marshal(&result)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(base, recordsDir, docID+"-records.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func sampleRecord(code string) types.StandardRecord {
	return types.StandardRecord{
		Code:                 code,
		GradeLevel:           "MS",
		Domain:               "Physical Science",
		Topic:                "Structure and Properties of Matter",
		PerformanceStatement: "Develop models to describe the atomic composition of simple molecules",
		Practice: types.Dimension{
			Code: "SEP2", Name: "Developing and Using Models.",
			Description: "Develop a model to predict and/or describe phenomena.",
			Source:      types.SourceExtracted,
		},
		Idea: types.Dimension{
			Code: "PS1.A", Name: "Structure and Properties of Matter",
			Description: "Substances are made from different types of atoms",
			Source:      types.SourceExtracted,
		},
		Concept: types.Dimension{
			Code: "CCC1", Name: "Patterns",
			Description: "Macroscopic patterns are related to the nature of structure",
			Source:      types.SourceExtracted,
		},
		SynthesizedQuestions: []string{"How would you develop models?"},
		Keywords:             []string{"models", "atomic", "molecules"},
		LessonScopeHints:     []string{"Grade band: middle school (6-8)"},
	}
}

func sampleResult(codes ...string) types.ExtractionResult {
	var result types.ExtractionResult
	for _, code := range codes {
		result.Records = append(result.Records, sampleRecord(code))
	}
	return result
}

// ingestHelper writes one record file and ingests it.
func ingestHelper(t *testing.T, s *Store, base, docID string) {
	t.Helper()
	writeRecordFile(t, base, docID, sampleResult("MS-PS1-1", "MS-PS1-2"))
	var buf strings.Builder
	if _, err := s.Ingest(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
}

// --- schema tests ---

func TestNewStoreCreatesSchema(t *testing.T) {
	s, _ := testSetup(t)

	tables := []string{"documents", "standards", "ingest_status"}
	if s.fts {
		tables = append(tables, "standards_fts")
	}
	for _, table := range tables {
		var count int
		err := s.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type IN ('table','view') AND name = ?`, table,
		).Scan(&count)
		if err != nil {
			t.Fatalf("checking table %s: %v", table, err)
		}
		if count == 0 {
			t.Errorf("table %s does not exist", table)
		}
	}
}

func TestNewStoreCreatesDBFile(t *testing.T) {
	tmpDir := t.TempDir()
	base := filepath.Join(tmpDir, "standards")

	s, err := NewStore(types.StoreConfig{RecordsDir: base})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	dbPath := filepath.Join(base, indexDir, dbFile)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file not created at %s", dbPath)
	}
}

// --- ingest tests ---

func TestIngest(t *testing.T) {
	tests := []struct {
		name        string
		documents   int
		wantIndexed int
	}{
		{"single document", 1, 1},
		{"multiple documents", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, base := testSetup(t)

			for i := 0; i < tt.documents; i++ {
				docID := fmt.Sprintf("doc-%d", i)
				code := fmt.Sprintf("MS-PS1-%d", i+1)
				writeRecordFile(t, base, docID, sampleResult(code))
			}

			var buf strings.Builder
			summary, err := s.Ingest(context.Background(), &buf)
			if err != nil {
				t.Fatalf("Ingest: %v", err)
			}
			if summary.Indexed != tt.wantIndexed {
				t.Errorf("Indexed = %d, want %d", summary.Indexed, tt.wantIndexed)
			}
			if summary.Failed != 0 {
				t.Errorf("Failed = %d, want 0; output: %s", summary.Failed, buf.String())
			}
		})
	}
}

func TestIngestStoresAllFields(t *testing.T) {
	s, base := testSetup(t)
	ingestHelper(t, s, base, "ngss-2013")

	results, err := s.Retrieve(context.Background(), QueryOptions{GradeLevel: "MS"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	r := results[0]
	if r.Code != "MS-PS1-1" {
		t.Errorf("Code = %q, want %q", r.Code, "MS-PS1-1")
	}
	if r.Domain != "Physical Science" {
		t.Errorf("Domain = %q", r.Domain)
	}
	if r.Practice.Code != "SEP2" {
		t.Errorf("Practice.Code = %q, want SEP2", r.Practice.Code)
	}
	if r.Idea.Code != "PS1.A" {
		t.Errorf("Idea.Code = %q, want PS1.A", r.Idea.Code)
	}
	if r.Concept.Code != "CCC1" {
		t.Errorf("Concept.Code = %q, want CCC1", r.Concept.Code)
	}
	if len(r.Keywords) != 3 || r.Keywords[0] != "models" {
		t.Errorf("Keywords = %v", r.Keywords)
	}
	if r.DocumentID != "ngss-2013" {
		t.Errorf("DocumentID = %q, want ngss-2013", r.DocumentID)
	}
	if !r.Complete {
		t.Error("record should be stored as complete")
	}
}

func TestIngestStoresIncompleteRecords(t *testing.T) {
	s, base := testSetup(t)

	result := sampleResult("MS-PS1-1")
	partial := sampleRecord("MS-PS1-5")
	partial.Practice = types.Dimension{Name: "Unknown", Source: types.SourceDefaulted}
	result.Incomplete = append(result.Incomplete, partial)
	writeRecordFile(t, base, "mixed-doc", result)

	var buf strings.Builder
	if _, err := s.Ingest(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}

	all, err := s.Retrieve(context.Background(), QueryOptions{GradeLevel: "MS"})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d results, want 2", len(all))
	}

	complete, err := s.Retrieve(context.Background(), QueryOptions{GradeLevel: "MS", CompleteOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(complete) != 1 {
		t.Fatalf("got %d complete results, want 1", len(complete))
	}
	if complete[0].Code != "MS-PS1-1" {
		t.Errorf("complete record = %q, want MS-PS1-1", complete[0].Code)
	}
}

// --- incremental update tests ---

func TestIngestSkipsUnchanged(t *testing.T) {
	s, base := testSetup(t)
	ingestHelper(t, s, base, "doc-skip")

	// Second ingestion without modifying the file.
	var buf strings.Builder
	summary, err := s.Ingest(context.Background(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", summary.Skipped)
	}
	if summary.Indexed != 0 {
		t.Errorf("Indexed = %d, want 0", summary.Indexed)
	}
	if !strings.Contains(buf.String(), "skipped") {
		t.Errorf("output should contain 'skipped': %s", buf.String())
	}
}

func TestIngestUpdatesChanged(t *testing.T) {
	s, base := testSetup(t)
	ingestHelper(t, s, base, "doc-update")

	// Rewrite the record file with one new record and a newer mod time.
	updated := sampleRecord("MS-LS2-1")
	updated.Domain = "Life Science"
	updated.PerformanceStatement = "Analyze data on resource availability in ecosystems"
	writeRecordFile(t, base, "doc-update", types.ExtractionResult{
		Records: []types.StandardRecord{updated},
	})

	path := filepath.Join(base, recordsDir, "doc-update-records.yaml")
	future := time.Now().Add(time.Second)
	os.Chtimes(path, future, future)

	var buf strings.Builder
	summary, err := s.Ingest(context.Background(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Updated != 1 {
		t.Errorf("Updated = %d, want 1", summary.Updated)
	}

	// Old records removed, only the new one remains.
	results, err := s.Retrieve(context.Background(), QueryOptions{GradeLevel: "MS"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1 (old records should be removed)", len(results))
	}
	if results[0].Code != "MS-LS2-1" {
		t.Errorf("code = %q, want MS-LS2-1", results[0].Code)
	}
}

func TestIngestSummaryOutput(t *testing.T) {
	s, base := testSetup(t)
	writeRecordFile(t, base, "doc1", sampleResult("MS-PS1-1"))

	var buf strings.Builder
	if _, err := s.Ingest(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	output := buf.String()

	if !strings.Contains(output, "indexed: 1") {
		t.Errorf("output should contain 'indexed: 1': %s", output)
	}
	if !strings.Contains(output, "skipped: 0") {
		t.Errorf("output should contain 'skipped: 0': %s", output)
	}
}

func TestIngestBadYAMLCountsAsFailed(t *testing.T) {
	s, base := testSetup(t)

	path := filepath.Join(base, recordsDir, "broken-records.yaml")
	if err := os.WriteFile(path, []byte(":\n  - not yaml {{"), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf strings.Builder
	summary, err := s.Ingest(context.Background(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Failed != 1 {
		t.Errorf("Failed = %d, want 1", summary.Failed)
	}
}

// --- full-text search tests ---

func TestRetrieveFullTextSearch(t *testing.T) {
	s, base := testSetup(t)
	ingestHelper(t, s, base, "fts-doc")

	tests := []struct {
		name    string
		query   string
		wantMin int
	}{
		{"matching term", "atomic", 1},
		{"keyword match", "molecules", 1},
		{"topic match", "matter", 1},
		{"no match", "photosynthesis xyzzy", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := s.Retrieve(context.Background(), QueryOptions{Query: tt.query})
			if err != nil {
				t.Fatal(err)
			}
			if len(results) < tt.wantMin {
				t.Errorf("got %d results, want >= %d", len(results), tt.wantMin)
			}
		})
	}
}

func TestRetrieveQueryWithoutFTS(t *testing.T) {
	s, base := testSetup(t)
	ingestHelper(t, s, base, "fallback-doc")

	// Substring fallback serves query search when the driver was built
	// without FTS5.
	s.fts = false

	results, err := s.Retrieve(context.Background(), QueryOptions{Query: "atomic"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Error("substring fallback returned no results for matching term")
	}

	results, err = s.Retrieve(context.Background(), QueryOptions{Query: "photosynthesis"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results for non-matching term, want 0", len(results))
	}
}

func TestIngestSameCodeFromSecondDocument(t *testing.T) {
	s, base := testSetup(t)

	writeRecordFile(t, base, "doc-a", sampleResult("MS-PS1-1"))
	var buf strings.Builder
	if _, err := s.Ingest(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}

	// The same code arrives again from another document with new text;
	// the later ingest supersedes the earlier row and the search index
	// must not keep serving the old text.
	rec := sampleRecord("MS-PS1-1")
	rec.PerformanceStatement = "Analyze thermal energy transfer between components"
	rec.Keywords = []string{"thermal", "energy"}
	writeRecordFile(t, base, "doc-b", types.ExtractionResult{Records: []types.StandardRecord{rec}})
	if _, err := s.Ingest(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}

	all, err := s.Retrieve(context.Background(), QueryOptions{GradeLevel: "MS"})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("got %d rows for the code, want 1", len(all))
	}
	if all[0].DocumentID != "doc-b" {
		t.Errorf("DocumentID = %q, want doc-b", all[0].DocumentID)
	}

	stale, err := s.Retrieve(context.Background(), QueryOptions{Query: "atomic"})
	if err != nil {
		t.Fatal(err)
	}
	if len(stale) != 0 {
		t.Errorf("superseded text still searchable: got %d results, want 0", len(stale))
	}

	current, err := s.Retrieve(context.Background(), QueryOptions{Query: "thermal"})
	if err != nil {
		t.Fatal(err)
	}
	if len(current) != 1 {
		t.Errorf("got %d results for superseding text, want 1", len(current))
	}
}

func TestRetrieveRespectsMaxResults(t *testing.T) {
	s, base := testSetup(t)
	ingestHelper(t, s, base, "limit-doc")

	results, err := s.Retrieve(context.Background(), QueryOptions{
		Query:      "atomic",
		MaxResults: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) > 1 {
		t.Errorf("got %d results, want <= 1", len(results))
	}
}

// --- structured query tests ---

func TestRetrieveByFilters(t *testing.T) {
	s, base := testSetup(t)

	ms := sampleRecord("MS-PS1-1")
	hs := sampleRecord("HS-LS2-4")
	hs.GradeLevel = "HS"
	hs.Domain = "Life Science"
	hs.Topic = "Matter and Energy in Ecosystems"
	writeRecordFile(t, base, "filters-doc", types.ExtractionResult{
		Records: []types.StandardRecord{ms, hs},
	})
	var buf strings.Builder
	if _, err := s.Ingest(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		opts     QueryOptions
		wantCode string
	}{
		{"by grade", QueryOptions{GradeLevel: "HS"}, "HS-LS2-4"},
		{"by domain", QueryOptions{Domain: "Physical Science"}, "MS-PS1-1"},
		{"by topic substring", QueryOptions{Topic: "ecosystems"}, "HS-LS2-4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := s.Retrieve(context.Background(), tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if len(results) != 1 {
				t.Fatalf("got %d results, want 1", len(results))
			}
			if results[0].Code != tt.wantCode {
				t.Errorf("code = %q, want %q", results[0].Code, tt.wantCode)
			}
		})
	}
}

func TestRetrieveStructuredQuerySortOrder(t *testing.T) {
	s, base := testSetup(t)

	recs := []types.StandardRecord{
		sampleRecord("MS-PS1-3"),
		sampleRecord("MS-PS1-1"),
		sampleRecord("MS-PS1-2"),
	}
	writeRecordFile(t, base, "sort-doc", types.ExtractionResult{Records: recs})
	var buf strings.Builder
	if _, err := s.Ingest(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}

	results, err := s.Retrieve(context.Background(), QueryOptions{GradeLevel: "MS"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].Code > results[i].Code {
			t.Errorf("results not sorted by code: %q before %q", results[i-1].Code, results[i].Code)
		}
	}
}

func TestRetrieveEmptyQueryOptions(t *testing.T) {
	opts := QueryOptions{}
	if !opts.IsEmpty() {
		t.Error("empty QueryOptions should report IsEmpty() = true")
	}
	if (QueryOptions{CompleteOnly: true}).IsEmpty() {
		t.Error("CompleteOnly alone should not be empty")
	}
}

// --- export tests ---

func TestExportYAML(t *testing.T) {
	s, base := testSetup(t)
	ingestHelper(t, s, base, "export-yaml-doc")

	if err := s.ExportYAML(context.Background(), QueryOptions{}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(base, indexDir, "export.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var entries []QueryResult
	if err := yaml.Unmarshal(data, &entries); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if e.DocumentID != "export-yaml-doc" {
			t.Errorf("entry %s missing document id", e.Code)
		}
	}
}

func TestExportJSON(t *testing.T) {
	s, base := testSetup(t)
	ingestHelper(t, s, base, "export-json-doc")

	if err := s.ExportJSON(context.Background(), QueryOptions{}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(base, indexDir, "export.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var entries []QueryResult
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2", len(entries))
	}
}

func TestExportFilteredByDomain(t *testing.T) {
	s, base := testSetup(t)

	ms := sampleRecord("MS-PS1-1")
	ls := sampleRecord("MS-LS1-1")
	ls.Domain = "Life Science"
	writeRecordFile(t, base, "filtered-export", types.ExtractionResult{
		Records: []types.StandardRecord{ms, ls},
	})
	var buf strings.Builder
	if _, err := s.Ingest(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}

	if err := s.ExportYAML(context.Background(), QueryOptions{Domain: "Life Science"}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(base, indexDir, "export.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	var entries []QueryResult
	yaml.Unmarshal(data, &entries)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Code != "MS-LS1-1" {
		t.Errorf("entry = %q, want MS-LS1-1", entries[0].Code)
	}
}

// --- IngestSummary ---

func TestIngestSummaryTotal(t *testing.T) {
	s := IngestSummary{Indexed: 2, Updated: 1, Skipped: 3, Failed: 1}
	if s.Total() != 7 {
		t.Errorf("Total() = %d, want 7", s.Total())
	}
}
