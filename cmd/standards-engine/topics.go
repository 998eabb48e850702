// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/standards-engine/internal/pages"
	"github.com/pdiddy/standards-engine/internal/reader"
	"github.com/pdiddy/standards-engine/internal/topics"
	"github.com/pdiddy/standards-engine/pkg/types"
)

var topicsCmd = &cobra.Command{
	Use:   "topics <document>",
	Short: "List topic ranges and the codes inside each",
	Long: `Topics scans the document's page headers for topic markers, groups
pages into named topic ranges, and lists the performance expectation
codes falling inside each range. Use --find to locate the page span of
one topic by name, including fuzzy matches against OCR-degraded text.`,
	Args: cobra.ExactArgs(1),
	RunE: runTopics,
}

func runTopics(cmd *cobra.Command, args []string) error {
	docPath := args[0]
	pageSpec, _ := cmd.Flags().GetString("pages")
	image, _ := cmd.Flags().GetString("image")
	find, _ := cmd.Flags().GetString("find")

	ctx := context.Background()

	r := reader.NewContainerReader(types.ReaderConfig{Image: image})
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

	if find != "" {
		tr, ok := topics.FindTopicRange(pp, find)
		if !ok {
			return fmt.Errorf("topic %q not found", find)
		}
		printTopic(tr)
		return nil
	}

	all := topics.ListAllTopics(pp)
	if len(all) == 0 {
		fmt.Println("No topics found.")
		return nil
	}
	for _, tr := range all {
		printTopic(tr)
	}
	fmt.Fprintf(os.Stdout, "\n%d topics\n", len(all))
	return nil
}

func printTopic(tr topics.TopicRange) {
	span := fmt.Sprintf("%d-%d", tr.StartPage, tr.EndPage)
	if tr.StartPage == tr.EndPage {
		span = fmt.Sprintf("%d", tr.StartPage)
	}
	fmt.Fprintf(os.Stdout, "%-40s  pages %-8s  %s\n",
		tr.Name, span, strings.Join(tr.Codes, ", "))
}

func init() {
	topicsCmd.Flags().String("pages", "", "page range to scan, e.g. \"5\" or \"5-12\" (default: all pages)")
	topicsCmd.Flags().String("image", reader.DefaultImage, "text-extraction container image")
	topicsCmd.Flags().String("find", "", "locate the page span of one topic by name")

	rootCmd.AddCommand(topicsCmd)
}
