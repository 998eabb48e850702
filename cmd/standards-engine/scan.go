// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/standards-engine/internal/pages"
	"github.com/pdiddy/standards-engine/internal/reader"
	"github.com/pdiddy/standards-engine/internal/scan"
	"github.com/pdiddy/standards-engine/pkg/types"
)

var scanCmd = &cobra.Command{
	Use:   "scan <document>",
	Short: "Discover performance expectation codes in a scanned document",
	Long: `Scan extracts the document's page text and lists every performance
expectation code found, with the page it appears on and a snippet of
surrounding context. Codes repeated on later pages are cross-references;
the --duplicates flag controls which occurrence wins.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	docPath := args[0]
	pageSpec, _ := cmd.Flags().GetString("pages")
	image, _ := cmd.Flags().GetString("image")
	policyName, _ := cmd.Flags().GetString("duplicates")
	window, _ := cmd.Flags().GetInt("context")

	policy, err := duplicatePolicy(policyName)
	if err != nil {
		return err
	}

	scanCfg := types.ScanConfig{ContextWindow: window}

	ctx := context.Background()

	r := reader.NewContainerReader(types.ReaderConfig{Image: image})
	defer r.Close()

	var text string
	if pageSpec != "" {
		text, err = r.ExtractPages(ctx, docPath, pageSpec)
	} else {
		text, err = r.ExtractAll(ctx, docPath)
	}
	if err != nil {
		return err
	}

	pp := pages.Segment(text)
	matches := scan.DiscoverCodesWith(pp, pages.Range{}, policy, scanCfg.ContextWindow)

	if len(matches) == 0 {
		fmt.Println("No codes found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-14s  %-5s  %s\n", "Code", "Page", "Context")
	for _, m := range matches {
		fmt.Fprintf(os.Stdout, "%-14s  %-5d  %s\n", m.Code, m.Page, m.Context)
	}
	fmt.Fprintf(os.Stdout, "\n%d codes\n", len(matches))
	return nil
}

func duplicatePolicy(name string) (scan.DuplicatePolicy, error) {
	switch name {
	case "keep-first", "":
		return scan.KeepFirst, nil
	case "keep-last":
		return scan.KeepLast, nil
	case "keep-all":
		return scan.KeepAll, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q: use keep-first, keep-last, or keep-all", name)
	}
}

func init() {
	scanCmd.Flags().String("pages", "", "page range to scan, e.g. \"5\" or \"5-12\" (default: all pages)")
	scanCmd.Flags().String("image", reader.DefaultImage, "text-extraction container image")
	scanCmd.Flags().String("duplicates", "keep-first", "duplicate code policy: keep-first, keep-last, or keep-all")
	scanCmd.Flags().Int("context", scan.DefaultContextWindow, "characters of context around each code")

	rootCmd.AddCommand(scanCmd)
}
