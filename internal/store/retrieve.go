// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/standards-engine/pkg/types"
)

// QueryOptions holds parameters for standards queries (R4).
type QueryOptions struct {
	// Query is the full-text search string over performance statements,
	// topics, and keywords (R4.1). Served by the FTS5 index when the
	// driver carries it, by substring matching otherwise.
	Query string

	// GradeLevel filters by grade band such as "MS" or "HS" (R4.2).
	GradeLevel string

	// Domain filters by full domain name, e.g. "Physical Science" (R4.3).
	Domain string

	// Topic filters by topic substring, case-insensitive (R4.4).
	Topic string

	// CompleteOnly keeps only records that passed the completeness
	// gate at extraction time (R4.5).
	CompleteOnly bool

	// MaxResults limits result count. Zero uses store default (R4.6).
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.GradeLevel == "" && q.Domain == "" &&
		q.Topic == "" && !q.CompleteOnly
}

// QueryResult is a StandardRecord with its originating document and
// completeness flag (R4.7).
type QueryResult struct {
	types.StandardRecord `yaml:",inline"`
	DocumentID           string `json:"document_id" yaml:"document_id"`
	Complete             bool   `json:"complete" yaml:"complete"`
}

// Retrieve queries the standards index with optional full-text search and
// structured filters (R4). Results are ranked by relevance for full-text
// queries or sorted by code for structured-only queries (R4.8).
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != "" && s.fts
	)

	switch {
	case useFTS:
		qb.WriteString(
			`SELECT st.code, st.grade_level, st.domain, st.topic,
				st.performance_statement, st.practice, st.idea, st.concept,
				st.questions, st.keywords, st.hints,
				st.document_id, st.complete, standards_fts.rank
			FROM standards_fts
			JOIN standards st ON st.rowid = standards_fts.rowid
			WHERE standards_fts MATCH ?`)
		args = append(args, opts.Query)
	case opts.Query != "":
		// FTS5 unavailable in this build: substring match over the
		// same columns the FTS index covers.
		qb.WriteString(
			`SELECT st.code, st.grade_level, st.domain, st.topic,
				st.performance_statement, st.practice, st.idea, st.concept,
				st.questions, st.keywords, st.hints,
				st.document_id, st.complete, 0 AS rank
			FROM standards st
			WHERE (st.performance_statement LIKE ? COLLATE NOCASE
				OR st.topic LIKE ? COLLATE NOCASE
				OR st.keywords LIKE ? COLLATE NOCASE)`)
		like := "%" + opts.Query + "%"
		args = append(args, like, like, like)
	default:
		qb.WriteString(
			`SELECT st.code, st.grade_level, st.domain, st.topic,
				st.performance_statement, st.practice, st.idea, st.concept,
				st.questions, st.keywords, st.hints,
				st.document_id, st.complete, 0 AS rank
			FROM standards st
			WHERE 1=1`)
	}

	if opts.GradeLevel != "" {
		qb.WriteString(` AND st.grade_level = ?`)
		args = append(args, opts.GradeLevel)
	}

	if opts.Domain != "" {
		qb.WriteString(` AND st.domain = ?`)
		args = append(args, opts.Domain)
	}

	if opts.Topic != "" {
		qb.WriteString(` AND st.topic LIKE ? COLLATE NOCASE`)
		args = append(args, "%"+opts.Topic+"%")
	}

	if opts.CompleteOnly {
		qb.WriteString(` AND st.complete = 1`)
	}

	if useFTS {
		qb.WriteString(` ORDER BY standards_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY st.code`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying standards index: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr            QueryResult
			practiceJSON  string
			ideaJSON      string
			conceptJSON   string
			questionsJSON sql.NullString
			keywordsJSON  sql.NullString
			hintsJSON     sql.NullString
			docID         sql.NullString
			rank          float64
		)

		if err := rows.Scan(
			&qr.Code, &qr.GradeLevel, &qr.Domain, &qr.Topic,
			&qr.PerformanceStatement, &practiceJSON, &ideaJSON, &conceptJSON,
			&questionsJSON, &keywordsJSON, &hintsJSON,
			&docID, &qr.Complete, &rank,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		json.Unmarshal([]byte(practiceJSON), &qr.Practice)
		json.Unmarshal([]byte(ideaJSON), &qr.Idea)
		json.Unmarshal([]byte(conceptJSON), &qr.Concept)

		if questionsJSON.Valid {
			json.Unmarshal([]byte(questionsJSON.String), &qr.SynthesizedQuestions)
		}
		if keywordsJSON.Valid {
			json.Unmarshal([]byte(keywordsJSON.String), &qr.Keywords)
		}
		if hintsJSON.Valid {
			json.Unmarshal([]byte(hintsJSON.String), &qr.LessonScopeHints)
		}
		if docID.Valid {
			qr.DocumentID = docID.String
		}

		results = append(results, qr)
	}

	return results, rows.Err()
}
