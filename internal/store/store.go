// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists StandardRecords and builds a retrieval index.
// It is the persistence collaborator behind the pipeline's output
// boundary; the extraction core hands it finished records and never
// depends on it.
// Implements: prd006-store (R1-R5);
//
//	docs/ARCHITECTURE § Store.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/standards-engine/pkg/types"
)

const (
	recordsDir = "records"
	indexDir   = "index"
	dbFile     = "standards.db"
)

// Store manages the standards SQLite database.
type Store struct {
	db         *sql.DB
	baseDir    string
	maxResults int

	// fts reports whether the FTS5 index is available. The sqlite3
	// driver compiles FTS5 in only under the sqlite_fts5 build tag;
	// without it, full-text queries fall back to substring matching.
	fts bool
}

// NewStore opens or creates the standards database at
// <records_dir>/index/standards.db, creating the schema if it does not
// exist (R1.1, R1.2).
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.RecordsDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		baseDir:    cfg.RecordsDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			source_path TEXT,
			title TEXT,
			pages INTEGER,
			extraction_status TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS standards (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			code TEXT NOT NULL UNIQUE,
			grade_level TEXT NOT NULL,
			domain TEXT NOT NULL,
			topic TEXT,
			performance_statement TEXT NOT NULL,
			practice TEXT NOT NULL,
			idea TEXT NOT NULL,
			concept TEXT NOT NULL,
			questions TEXT,
			keywords TEXT,
			hints TEXT,
			document_id TEXT REFERENCES documents(id),
			complete INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_standards_domain ON standards(domain)`,
		`CREATE INDEX IF NOT EXISTS idx_standards_grade ON standards(grade_level)`,
		`CREATE INDEX IF NOT EXISTS idx_standards_complete ON standards(complete)`,
		`CREATE TABLE IF NOT EXISTS ingest_status (
			document_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='standards_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists > 0 {
		s.fts = true
		return nil
	}

	if _, err := s.db.Exec(
		`CREATE VIRTUAL TABLE standards_fts USING fts5(
			performance_statement, topic, keywords,
			content=standards, content_rowid=rowid)`,
	); err != nil {
		// FTS5 is absent unless the driver was built with the
		// sqlite_fts5 tag; run without the index in that case.
		if strings.Contains(err.Error(), "fts5") {
			return nil
		}
		return fmt.Errorf("creating FTS table: %w", err)
	}

	ftsTriggers := []string{
		`CREATE TRIGGER standards_ai AFTER INSERT ON standards BEGIN
				INSERT INTO standards_fts(rowid, performance_statement, topic, keywords)
				VALUES (new.rowid, new.performance_statement, new.topic, new.keywords);
		END`,
		`CREATE TRIGGER standards_ad AFTER DELETE ON standards BEGIN
				INSERT INTO standards_fts(standards_fts, rowid, performance_statement, topic, keywords)
				VALUES('delete', old.rowid, old.performance_statement, old.topic, old.keywords);
		END`,
		`CREATE TRIGGER standards_au AFTER UPDATE ON standards BEGIN
				INSERT INTO standards_fts(standards_fts, rowid, performance_statement, topic, keywords)
				VALUES('delete', old.rowid, old.performance_statement, old.topic, old.keywords);
				INSERT INTO standards_fts(rowid, performance_statement, topic, keywords)
				VALUES (new.rowid, new.performance_statement, new.topic, new.keywords);
		END`,
	}
	for _, stmt := range ftsTriggers {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}

	s.fts = true
	return nil
}

// IngestSummary holds counts from a store indexing run (R3.4).
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of record files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads extraction YAML files from <records_dir>/records/ and
// populates the database, detecting new, changed, and unchanged files for
// incremental updates (R3.1-R3.3).
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	recDir := filepath.Join(s.baseDir, recordsDir)

	entries, err := os.ReadDir(recDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading records directory %s: %w", recDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "-records.yaml") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		docID := strings.TrimSuffix(entry.Name(), "-records.yaml")
		filePath := filepath.Join(recDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		// Skip unchanged files (R3.2).
		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM ingest_status WHERE document_id = ?`, docID,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", docID)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		data, err := os.ReadFile(filePath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}

		var result types.ExtractionResult
		if err := yaml.Unmarshal(data, &result); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", docID, err)
			summary.Failed++
			continue
		}

		if err := s.ingestDocument(ctx, docID, &result, modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}

		total := len(result.Records) + len(result.Incomplete)
		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d standards)\n", docID, total)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexed %s (%d standards)\n", docID, total)
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	return summary, nil
}

// ingestDocument writes one document's records in a single transaction.
// Complete and incomplete records are both stored; the completeness flag
// keeps them distinguishable (R2.2).
func (s *Store) ingestDocument(ctx context.Context, docID string, result *types.ExtractionResult, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM standards WHERE document_id = ?`, docID); err != nil {
			return fmt.Errorf("deleting old standards: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO documents (id) VALUES (?)`, docID,
	); err != nil {
		return fmt.Errorf("inserting document stub: %w", err)
	}

	// Dedupe by explicit delete rather than INSERT OR REPLACE: REPLACE's
	// implicit delete does not fire the FTS delete trigger, which would
	// leave a stale FTS row when the same code arrives from another
	// document.
	del, err := tx.PrepareContext(ctx, `DELETE FROM standards WHERE code = ?`)
	if err != nil {
		return fmt.Errorf("preparing dedupe delete: %w", err)
	}
	defer del.Close()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO standards
			(code, grade_level, domain, topic, performance_statement,
			 practice, idea, concept, questions, keywords, hints,
			 document_id, complete)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	insert := func(rec types.StandardRecord, complete bool) error {
		if _, err := del.ExecContext(ctx, rec.Code); err != nil {
			return fmt.Errorf("deleting superseded standard %s: %w", rec.Code, err)
		}
		practiceJSON, _ := json.Marshal(rec.Practice)
		ideaJSON, _ := json.Marshal(rec.Idea)
		conceptJSON, _ := json.Marshal(rec.Concept)
		questionsJSON, _ := json.Marshal(rec.SynthesizedQuestions)
		keywordsJSON, _ := json.Marshal(rec.Keywords)
		hintsJSON, _ := json.Marshal(rec.LessonScopeHints)

		_, err := stmt.ExecContext(ctx,
			rec.Code, rec.GradeLevel, rec.Domain, rec.Topic, rec.PerformanceStatement,
			string(practiceJSON), string(ideaJSON), string(conceptJSON),
			string(questionsJSON), string(keywordsJSON), string(hintsJSON),
			docID, complete,
		)
		if err != nil {
			return fmt.Errorf("inserting standard %s: %w", rec.Code, err)
		}
		return nil
	}

	for _, rec := range result.Records {
		if err := insert(rec, true); err != nil {
			return err
		}
	}
	for _, rec := range result.Incomplete {
		if err := insert(rec, false); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ingest_status (document_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(document_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		docID, modTime,
	); err != nil {
		return fmt.Errorf("updating ingest status: %w", err)
	}

	return tx.Commit()
}
