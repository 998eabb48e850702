// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/standards-engine/internal/validate"
	"github.com/pdiddy/standards-engine/pkg/types"
)

var validateCmd = &cobra.Command{
	Use:   "validate <records.yaml>",
	Short: "Check a records file against the canonical record shape",
	Long: `Validate reads a records YAML file and checks every record against the
canonical field shape, reporting path-qualified errors per record. It
also reports the three-dimensional completeness partition: a record is
complete only when all three of its pedagogical dimensions carry a
non-empty code.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	var result types.ExtractionResult
	if err := yaml.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	records := append([]types.StandardRecord{}, result.Records...)
	records = append(records, result.Incomplete...)
	if len(records) == 0 {
		fmt.Println("No records to validate.")
		return nil
	}

	outcome := validate.ValidateShapeBatch(records)

	if len(outcome.Errors) > 0 {
		codes := make([]string, 0, len(outcome.Errors))
		for code := range outcome.Errors {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			for _, msg := range outcome.Errors[code] {
				fmt.Fprintf(os.Stdout, "%s: %s\n", code, msg)
			}
		}
	}

	complete, incomplete := validate.PartitionByCompleteness(outcome.Validated)
	fmt.Fprintf(os.Stdout, "\nvalid: %d, invalid: %d, complete: %d, incomplete: %d\n",
		len(outcome.Validated), len(outcome.Errors), len(complete), len(incomplete))

	if len(outcome.Errors) > 0 {
		return fmt.Errorf("%d record(s) failed shape validation", len(outcome.Errors))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
