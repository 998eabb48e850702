// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/standards-engine/internal/batch"
	"github.com/pdiddy/standards-engine/internal/pages"
	"github.com/pdiddy/standards-engine/internal/reader"
	"github.com/pdiddy/standards-engine/internal/scan"
	"github.com/pdiddy/standards-engine/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract <document>",
	Short: "Extract structured standard records from a scanned document",
	Long: `Extract pipes a scanned document through the text-extraction container,
discovers every performance expectation code in the page text, and
structures each code into a full record with its three pedagogical
dimensions. Records are partitioned by completeness and written to
<records-dir>/records/<document>-records.yaml.

Per-code failures are reported and the run continues; the command exits
non-zero only when at least one code failed.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	docPath := args[0]
	pageSpec, _ := cmd.Flags().GetString("pages")
	domain, _ := cmd.Flags().GetString("domain")
	image, _ := cmd.Flags().GetString("image")
	recordsDir, _ := cmd.Flags().GetString("records-dir")
	concurrent, _ := cmd.Flags().GetBool("concurrent")
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	cfg := types.PipelineConfig{
		Reader: types.ReaderConfig{Image: image},
		Extraction: types.ExtractionConfig{
			RecordsDir:   recordsDir,
			DomainFilter: domain,
			Concurrency:  concurrency,
		},
	}

	ctx := context.Background()

	r := reader.NewContainerReader(cfg.Reader)
	defer r.Close()

	var (
		text string
		err  error
	)
	if pageSpec != "" {
		text, err = r.ExtractPages(ctx, docPath, pageSpec)
	} else {
		text, err = r.ExtractAll(ctx, docPath)
	}
	if err != nil {
		return err
	}

	pp := pages.Segment(text)
	if len(pp) == 0 {
		return fmt.Errorf("no page markers found in %s", docPath)
	}

	var result batch.Result
	if concurrent {
		var codes []string
		for _, m := range scan.DiscoverCodes(pp, pages.Range{}) {
			if cfg.Extraction.DomainFilter != "" && !strings.HasPrefix(m.Code, cfg.Extraction.DomainFilter) {
				continue
			}
			codes = append(codes, m.Code)
		}
		result = batch.ExtractConcurrent(ctx, pp, codes, cfg.Extraction.Concurrency, os.Stdout)
	} else {
		result = batch.ExtractAll(pp, cfg.Extraction.DomainFilter, os.Stdout)
	}

	docID := strings.TrimSuffix(filepath.Base(docPath), filepath.Ext(docPath))
	if err := writeRecords(cfg.Extraction.RecordsDir, docID, result); err != nil {
		return err
	}
	if err := writeDocumentMeta(cfg.Extraction.RecordsDir, docID, docPath, len(pp), result.Summary); err != nil {
		return err
	}

	if result.Summary.HasFailures() {
		return fmt.Errorf("%d code(s) failed extraction", result.Summary.Failed)
	}
	return nil
}

// writeDocumentMeta records the source document's metadata and extraction
// status next to its records.
func writeDocumentMeta(recordsDir, docID, docPath string, pageCount int, summary batch.Summary) error {
	status := types.ExtractionDone
	switch {
	case summary.Extracted == 0 && summary.Failed > 0:
		status = types.ExtractionFailed
	case summary.Failed > 0 || summary.Incomplete > 0:
		status = types.ExtractionPartial
	}

	doc := types.Document{
		ID:               docID,
		SourcePath:       docPath,
		Pages:            pageCount,
		ExtractionStatus: status,
	}

	dir := filepath.Join(recordsDir, "metadata")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating metadata directory: %w", err)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling document metadata: %w", err)
	}
	path := filepath.Join(dir, docID+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// writeRecords serializes a batch result to the document's records file.
func writeRecords(recordsDir, docID string, result batch.Result) error {
	out := types.ExtractionResult{
		DocumentID: docID,
		Records:    result.Complete,
		Incomplete: result.Incomplete,
		Errors:     result.Errors,
	}

	dir := filepath.Join(recordsDir, "records")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating records directory: %w", err)
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshaling records: %w", err)
	}

	path := filepath.Join(dir, docID+"-records.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}

func init() {
	extractCmd.Flags().String("pages", "", "page range to extract, e.g. \"5\" or \"5-12\" (default: all pages)")
	extractCmd.Flags().String("domain", "", "keep only codes with this prefix, e.g. \"MS-PS\"")
	extractCmd.Flags().String("image", reader.DefaultImage, "text-extraction container image")
	extractCmd.Flags().String("records-dir", "standards", "base directory for record output (contains records/)")
	extractCmd.Flags().Bool("concurrent", false, "structure codes under a bounded worker pool")
	extractCmd.Flags().Int("concurrency", batch.DefaultConcurrency, "maximum in-flight extractions in concurrent mode")

	rootCmd.AddCommand(extractCmd)
}
