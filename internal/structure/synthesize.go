// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// synthesize.go derives the non-extracted record fields: guiding questions,
// keywords, and lesson scope hints. All derivations are deterministic.
// Implements: prd003-structuring (R5).

package structure

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	maxQuestions = 2
	maxKeywords  = 8
	minTokenLen  = 4
)

// danglingWords are conjunctions and prepositions a topic heading must not
// end with for the direct question template to read naturally (R5.2).
var danglingWords = map[string]bool{
	"and": true, "or": true, "of": true, "the": true, "to": true,
	"in": true, "for": true, "with": true, "on": true, "at": true,
	"by": true, "from": true,
}

// questionVerbs is the closed verb vocabulary for verb/object synthesis,
// keyed to one of two phrasing templates (R5.3).
var questionVerbs = map[string]string{
	"develop":     "How would you %s %s?",
	"construct":   "How would you %s %s?",
	"design":      "How would you %s %s?",
	"plan":        "How would you %s %s?",
	"create":      "How would you %s %s?",
	"build":       "How would you %s %s?",
	"analyze":     "What happens when we %s %s?",
	"use":         "What happens when we %s %s?",
	"apply":       "What happens when we %s %s?",
	"ask":         "What happens when we %s %s?",
	"define":      "What happens when we %s %s?",
	"investigate": "What happens when we %s %s?",
	"gather":      "What happens when we %s %s?",
	"evaluate":    "What happens when we %s %s?",
	"compare":     "What happens when we %s %s?",
}

// stopWords are dropped from keyword extraction (R5.5).
var stopWords = map[string]bool{
	"about": true, "after": true, "also": true, "among": true,
	"been": true, "before": true, "being": true, "between": true,
	"both": true, "could": true, "does": true, "each": true,
	"from": true, "have": true, "into": true, "more": true,
	"most": true, "other": true, "over": true, "should": true,
	"some": true, "such": true, "than": true, "that": true,
	"their": true, "them": true, "then": true, "there": true,
	"these": true, "they": true, "this": true, "those": true,
	"through": true, "under": true, "upon": true, "used": true,
	"using": true, "were": true, "what": true, "when": true,
	"which": true, "while": true, "will": true, "with": true,
	"would": true,
}

// tokenRe splits text into alphabetic tokens for keyword extraction.
var tokenRe = regexp.MustCompile(`[A-Za-z]+`)

// synthesizeQuestions builds up to two guiding questions. Layered rules:
// reuse the statement's own lead question clause; otherwise template on the
// topic, guarding against dangling conjunctions; as a last resort extract a
// leading verb and object from the statement (R5.1-R5.4).
func synthesizeQuestions(statement, topic string) []string {
	var qs []string

	if i := strings.IndexByte(statement, '?'); i >= 0 {
		lead := strings.TrimSpace(statement[:i+1])
		if lead != "" {
			qs = append(qs, lead)
		}
	}

	if topic != "" {
		if endsWithDangling(topic) {
			qs = append(qs, "What are the key ideas in this topic?")
		} else {
			qs = append(qs, fmt.Sprintf("What do we know about %s?", topic))
		}
	}

	if len(qs) == 0 {
		if q := verbObjectQuestion(statement); q != "" {
			qs = append(qs, q)
		}
	}

	if len(qs) > maxQuestions {
		qs = qs[:maxQuestions]
	}
	return qs
}

// endsWithDangling reports whether the topic's final word is a conjunction
// or preposition.
func endsWithDangling(topic string) bool {
	fields := strings.Fields(topic)
	if len(fields) == 0 {
		return false
	}
	last := strings.ToLower(strings.Trim(fields[len(fields)-1], ".,;:"))
	return danglingWords[last]
}

// verbObjectQuestion extracts a leading verb and its object from the
// statement and applies the template keyed to the verb. Verbs outside the
// closed vocabulary yield no question.
func verbObjectQuestion(statement string) string {
	fields := strings.Fields(statement)
	if len(fields) < 2 {
		return ""
	}

	verb := strings.ToLower(strings.Trim(fields[0], ".,;:"))
	tmpl, ok := questionVerbs[verb]
	if !ok {
		return ""
	}

	// Object: up to six words following the verb, trailing punctuation
	// stripped.
	end := len(fields)
	if end > 7 {
		end = 7
	}
	object := strings.Join(fields[1:end], " ")
	object = strings.TrimRight(object, ".,;:")
	if object == "" {
		return ""
	}

	return fmt.Sprintf(tmpl, verb, object)
}

// extractKeywords tokenizes the statement and topic, lowercases, drops
// stop-words and short tokens, deduplicates preserving first-occurrence
// order, and caps the result at eight entries (R5.5).
func extractKeywords(statement, topic string) []string {
	seen := make(map[string]bool)
	var keywords []string

	for _, token := range tokenRe.FindAllString(statement+" "+topic, -1) {
		word := strings.ToLower(token)
		if len(word) < minTokenLen || stopWords[word] || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

// gradeBands maps grade prefixes to lesson-planning phrases.
var gradeBands = map[string]string{
	"K":  "elementary school (kindergarten)",
	"MS": "middle school (grades 6-8)",
	"HS": "high school (grades 9-12)",
}

// lessonScopeHints derives deterministic scoping hints from the grade band,
// domain, and topic.
func lessonScopeHints(grade, domain, topic string) []string {
	var hints []string

	if band, ok := gradeBands[grade]; ok {
		hints = append(hints, "Grade band: "+band)
	} else if grade != "" && grade[0] >= '1' && grade[0] <= '9' {
		hints = append(hints, "Grade band: elementary school (grade "+grade+")")
	}

	if domain != "" && domain != DomainUnknown {
		hints = append(hints, "Domain: "+domain)
	}
	if topic != "" {
		hints = append(hints, "Topic: "+topic)
	}
	return hints
}
