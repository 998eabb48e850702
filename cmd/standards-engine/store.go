// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/standards-engine/internal/store"
	"github.com/pdiddy/standards-engine/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the standards index (index, retrieve, export)",
	Long: `Store manages a local SQLite index built from extracted record files.
Use subcommands to index records, query them, or export the index.`,
}

// --- index subcommand ---

var storeIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Ingest extracted record files into the standards index",
	Long: `Index reads record YAML files from <records-dir>/records/, ingests them
into a SQLite database with FTS5 indexing over performance statements,
topics, and keywords. Unchanged files are skipped on subsequent runs.`,
	RunE: runStoreIndex,
}

func runStoreIndex(cmd *cobra.Command, args []string) error {
	s, err := store.NewStore(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := s.Ingest(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d record file(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- retrieve subcommand ---

var storeRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Query the standards index with full-text search and filters",
	Long: `Retrieve searches the standards index using FTS5 full-text search over
performance statements, topics, and keywords, structured filters
(grade band, domain, topic), or a combination of both.`,
	RunE: runStoreRetrieve,
}

func runStoreRetrieve(cmd *cobra.Command, args []string) error {
	s, err := store.NewStore(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --grade, --domain, or --topic")
	}

	results, err := s.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRetrieveOutput(results, jsonOutput)
}

func formatRetrieveOutput(results []store.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-12s  %-6s  %-22s  %-25s  %s\n",
		"Rank", "Code", "Grade", "Domain", "Topic", "Statement")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 120))

	for i, r := range results {
		statement := r.PerformanceStatement
		if len(statement) > 45 {
			statement = statement[:42] + "..."
		}
		topic := r.Topic
		if len(topic) > 25 {
			topic = topic[:22] + "..."
		}
		domain := r.Domain
		if len(domain) > 22 {
			domain = domain[:19] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-12s  %-6s  %-22s  %-25s  %s\n",
			i+1, r.Code, r.GradeLevel, domain, topic, statement)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the standards index to YAML or JSON",
	Long: `Export writes the full standards index (or a filtered subset) to
<records-dir>/index/export.yaml or export.json. Supports the same
filter flags as retrieve for partial exports.`,
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	s, err := store.NewStore(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	opts := queryOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := s.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to index/export.yaml")
	case "json":
		if err := s.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to index/export.json")
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func storeConfig(cmd *cobra.Command) types.StoreConfig {
	recordsDir, _ := cmd.Flags().GetString("records-dir")
	if recordsDir == "" {
		recordsDir = "standards"
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return types.StoreConfig{
		RecordsDir: recordsDir,
		MaxResults: maxResults,
	}
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) store.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	grade, _ := cmd.Flags().GetString("grade")
	domain, _ := cmd.Flags().GetString("domain")
	topic, _ := cmd.Flags().GetString("topic")
	completeOnly, _ := cmd.Flags().GetBool("complete-only")
	limit, _ := cmd.Flags().GetInt("limit")

	return store.QueryOptions{
		Query:        queryText,
		GradeLevel:   grade,
		Domain:       domain,
		Topic:        topic,
		CompleteOnly: completeOnly,
		MaxResults:   limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	storeCmd.PersistentFlags().String("records-dir", "standards", "base directory for records (contains records/, index/)")
	storeCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Retrieve flags.
	storeRetrieveCmd.Flags().String("query", "", "full-text search query")
	storeRetrieveCmd.Flags().String("grade", "", "filter by grade band: K, MS, or HS")
	storeRetrieveCmd.Flags().String("domain", "", "filter by domain name, e.g. \"Physical Science\"")
	storeRetrieveCmd.Flags().String("topic", "", "filter by topic substring")
	storeRetrieveCmd.Flags().Bool("complete-only", false, "keep only three-dimensionally complete records")
	storeRetrieveCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	storeRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	storeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	storeExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	storeExportCmd.Flags().String("grade", "", "filter by grade band for partial export")
	storeExportCmd.Flags().String("domain", "", "filter by domain name for partial export")
	storeExportCmd.Flags().String("topic", "", "filter by topic substring for partial export")
	storeExportCmd.Flags().Bool("complete-only", false, "export only complete records")
	storeExportCmd.Flags().Int("limit", 0, "maximum records to export (0 = all)")

	// Wire subcommands.
	storeCmd.AddCommand(storeIndexCmd)
	storeCmd.AddCommand(storeRetrieveCmd)
	storeCmd.AddCommand(storeExportCmd)

	rootCmd.AddCommand(storeCmd)
}
