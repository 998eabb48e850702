// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate checks structured records against the canonical shape
// and the stricter three-dimensional completeness predicate.
// Implements: prd004-validation (R1-R4);
//
//	docs/ARCHITECTURE § Validation.
package validate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pdiddy/standards-engine/pkg/types"
)

// recordSchema is the canonical StandardRecord shape (R1.1). Array fields
// admit null because an empty Go slice marshals to JSON null.
const recordSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": [
		"code", "grade_level", "domain", "topic", "performance_statement",
		"practice", "idea", "concept",
		"synthesized_questions", "keywords", "lesson_scope_hints"
	],
	"properties": {
		"code": {"type": "string", "minLength": 1},
		"grade_level": {"type": "string"},
		"domain": {"type": "string", "minLength": 1},
		"topic": {"type": "string"},
		"performance_statement": {"type": "string"},
		"practice": {"$ref": "#/definitions/dimension"},
		"idea": {"$ref": "#/definitions/dimension"},
		"concept": {"$ref": "#/definitions/dimension"},
		"synthesized_questions": {
			"type": ["array", "null"],
			"items": {"type": "string"},
			"maxItems": 2
		},
		"keywords": {
			"type": ["array", "null"],
			"items": {"type": "string"},
			"maxItems": 8
		},
		"lesson_scope_hints": {
			"type": ["array", "null"],
			"items": {"type": "string"}
		}
	},
	"definitions": {
		"dimension": {
			"type": "object",
			"required": ["code", "name", "description"],
			"properties": {
				"code": {"type": "string"},
				"name": {"type": "string"},
				"description": {"type": "string"},
				"source": {"type": "string", "enum": ["extracted", "defaulted"]}
			}
		}
	}
}`

// compiledSchema is compiled once at package load; schema validation itself
// is stateless and safe for concurrent use.
var compiledSchema = jsonschema.MustCompileString("standard-record.json", recordSchema)

// ValidateShape checks a record against the canonical field shape. It
// returns nil for a valid record, or path-qualified error strings such as
// "practice.name: required" (R1.2, R1.3).
func ValidateShape(rec types.StandardRecord) []string {
	data, err := json.Marshal(rec)
	if err != nil {
		return []string{fmt.Sprintf("record %s: not serializable: %v", rec.Code, err)}
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return []string{fmt.Sprintf("record %s: not serializable: %v", rec.Code, err)}
	}

	err = compiledSchema.Validate(doc)
	if err == nil {
		return nil
	}

	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{err.Error()}
	}

	msgs := renderErrors(ve)
	sort.Strings(msgs)
	return msgs
}

// BatchOutcome partitions a batch by shape validity (R2).
type BatchOutcome struct {
	// Validated holds the records that passed shape validation.
	Validated []types.StandardRecord

	// Errors maps a failing record's code to its path-qualified errors.
	Errors map[string][]string
}

// ValidateShapeBatch applies ValidateShape per record; any record failing
// is reported by code and excluded from the validated set (R2.1, R2.2).
func ValidateShapeBatch(records []types.StandardRecord) BatchOutcome {
	out := BatchOutcome{Errors: make(map[string][]string)}
	for _, rec := range records {
		if errs := ValidateShape(rec); len(errs) > 0 {
			out.Errors[rec.Code] = errs
			continue
		}
		out.Validated = append(out.Validated, rec)
	}
	return out
}

// IsThreeDimensionallyComplete reports whether all three dimension codes
// are non-empty. This gate is independent of shape validity (R3.1).
func IsThreeDimensionallyComplete(rec types.StandardRecord) bool {
	return rec.Practice.Code != "" && rec.Idea.Code != "" && rec.Concept.Code != ""
}

// PartitionByCompleteness splits records into complete and incomplete
// subsets. The partition is exhaustive and disjoint: the two sizes always
// sum to the input size (R4.1).
func PartitionByCompleteness(records []types.StandardRecord) (complete, incomplete []types.StandardRecord) {
	for _, rec := range records {
		if IsThreeDimensionallyComplete(rec) {
			complete = append(complete, rec)
		} else {
			incomplete = append(incomplete, rec)
		}
	}
	return complete, incomplete
}

// missingRe matches the validator's missing-property message so required
// fields can be reported at their own path.
var missingRe = regexp.MustCompile(`missing propert(?:y|ies):?\s*(.+)`)

// quotedRe captures the quoted property names in a missing-property message.
var quotedRe = regexp.MustCompile(`'([^']+)'`)

// renderErrors flattens a ValidationError tree into path-qualified strings.
// Instance locations become dotted paths; missing-property causes are
// rewritten as "<path>.<field>: required".
func renderErrors(ve *jsonschema.ValidationError) []string {
	var msgs []string
	for _, leaf := range leafCauses(ve) {
		path := dotPath(leaf.InstanceLocation)

		if m := missingRe.FindStringSubmatch(leaf.Message); m != nil {
			for _, q := range quotedRe.FindAllStringSubmatch(m[1], -1) {
				field := q[1]
				if path == "" {
					msgs = append(msgs, field+": required")
				} else {
					msgs = append(msgs, path+"."+field+": required")
				}
			}
			continue
		}

		if path == "" {
			path = "(root)"
		}
		msgs = append(msgs, path+": "+leaf.Message)
	}
	return msgs
}

// leafCauses walks the error tree and returns the causes with no children.
func leafCauses(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var leaves []*jsonschema.ValidationError
	for _, c := range ve.Causes {
		leaves = append(leaves, leafCauses(c)...)
	}
	return leaves
}

// dotPath converts a JSON pointer like "/practice/name" to "practice.name".
func dotPath(pointer string) string {
	trimmed := strings.TrimPrefix(pointer, "/")
	if trimmed == "" {
		return ""
	}
	return strings.ReplaceAll(trimmed, "/", ".")
}
