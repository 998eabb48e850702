// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch drives extraction across many codes: a sequential mode
// filtered by domain and a bounded-concurrency mode. Both modes share one
// failure policy: partial results are collected and per-code failures are
// reported, never aborting the run.
// Implements: prd005-orchestration (R1-R4);
//
//	docs/ARCHITECTURE § Orchestration.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pdiddy/standards-engine/internal/pages"
	"github.com/pdiddy/standards-engine/internal/scan"
	"github.com/pdiddy/standards-engine/internal/structure"
	"github.com/pdiddy/standards-engine/internal/validate"
	"github.com/pdiddy/standards-engine/pkg/types"
)

// DefaultConcurrency bounds in-flight extractions when the caller does not
// choose a limit (R4.1).
const DefaultConcurrency = 5

// Summary holds counts from a batch extraction run (R3.3).
type Summary struct {
	Extracted  int // records structured successfully
	Complete   int // passed the three-dimensional completeness gate
	Incomplete int // structured but incomplete
	Skipped    int // codes resolving to no page
	Failed     int // per-code extraction failures
}

// Total returns the number of codes processed.
func (s Summary) Total() int {
	return s.Extracted + s.Skipped + s.Failed
}

// HasFailures reports whether any code failed extraction.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Result is the outcome of a batch run. Complete holds the records passing
// the completeness gate; Incomplete is kept for inspection; Errors lists
// per-code failures (R2.3).
type Result struct {
	Complete   []types.StandardRecord
	Incomplete []types.StandardRecord
	Errors     []types.ExtractionError
	Summary    Summary
}

// ExtractAll discovers every code in the page text, optionally keeps only
// codes whose prefix matches domainFilter, structures each one, and
// partitions the results by completeness. Per-code failures are logged to w
// and the run continues (R1.1-R1.4, R2.1).
func ExtractAll(pp []pages.Page, domainFilter string, w io.Writer) Result {
	var codes []string
	for _, m := range scan.DiscoverCodes(pp, pages.Range{}) {
		if domainFilter != "" && !strings.HasPrefix(m.Code, domainFilter) {
			continue
		}
		codes = append(codes, m.Code)
	}

	var result Result
	var records []types.StandardRecord
	for _, code := range codes {
		rec, err := structure.Structure(pp, code)
		collectOne(&result, &records, code, rec, err, w)
	}

	finish(&result, records, w)
	return result
}

// ExtractConcurrent structures the given codes under a semaphore-bounded
// worker pool: at most concurrency extractions are in flight, and a slow
// code never stalls unrelated ones (R4.1, R4.2). Results preserve input
// order; codes resolving to no page are filtered out; per-code failures are
// reported without aborting the call (R4.3, R2.2).
func ExtractConcurrent(ctx context.Context, pp []pages.Page, codes []string, concurrency int, w io.Writer) Result {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	recs := make([]*types.StandardRecord, len(codes))
	errs := make([]error, len(codes))

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, code := range codes {
		wg.Add(1)
		go func(i int, code string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return
			}
			defer func() { <-sem }()

			recs[i], errs[i] = structure.Structure(pp, code)
		}(i, code)
	}
	wg.Wait()

	// Collect in input order so output is deterministic regardless of
	// scheduling.
	var result Result
	var records []types.StandardRecord
	for i, code := range codes {
		collectOne(&result, &records, code, recs[i], errs[i], w)
	}

	finish(&result, records, w)
	return result
}

// collectOne folds a single extraction outcome into the result under the
// shared failure policy.
func collectOne(result *Result, records *[]types.StandardRecord, code string, rec *types.StandardRecord, err error, w io.Writer) {
	switch {
	case errors.Is(err, structure.ErrCodeNotFound):
		fmt.Fprintf(w, "skipped %s (not found)\n", code)
		result.Summary.Skipped++
	case err != nil:
		fmt.Fprintf(w, "failed  %s: %v\n", code, err)
		result.Summary.Failed++
		result.Errors = append(result.Errors, types.ExtractionError{
			Code:    code,
			Message: err.Error(),
		})
	default:
		result.Summary.Extracted++
		*records = append(*records, *rec)
	}
}

// finish partitions the structured records by completeness and writes the
// summary line (R3.1, R3.3).
func finish(result *Result, records []types.StandardRecord, w io.Writer) {
	result.Complete, result.Incomplete = validate.PartitionByCompleteness(records)
	result.Summary.Complete = len(result.Complete)
	result.Summary.Incomplete = len(result.Incomplete)
	fmt.Fprintf(w, "\nextracted: %d, complete: %d, incomplete: %d, skipped: %d, failed: %d\n",
		result.Summary.Extracted, result.Summary.Complete, result.Summary.Incomplete,
		result.Summary.Skipped, result.Summary.Failed)
}
