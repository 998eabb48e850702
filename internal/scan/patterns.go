// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scan

import (
	"regexp"

	"github.com/pdiddy/standards-engine/pkg/types"
)

// codeRe matches standard codes of the shape
// <grade>-<domain><topic#>-<standard#>, e.g. "MS-PS1-1", "HS-LS2-3",
// "K-ESS3-1", "4-PS4-2" (R1.1). The grade prefix is a band ("MS", "HS"),
// "K", or a single grade digit; the domain prefix is the science domain
// letters with an optional topic digit.
var codeRe = regexp.MustCompile(`\b(?:K|\d{1,2}|MS|HS)-[A-Z]{2,4}\d{0,2}-\d{1,2}\b`)

// The four reserved section-header phrases. Section content always stops
// at the next reserved header, so no SectionMatch ever contains one (R2.3).
const (
	practiceHeader    = "Science and Engineering Practices"
	ideaHeader        = "Disciplinary Core Ideas"
	conceptHeader     = "Crosscutting Concepts"
	connectionsHeader = "Connections to"
)

// sectionHeaders maps a section type to the header phrase that opens it.
var sectionHeaders = map[types.SectionType]string{
	types.SectionPractice: practiceHeader,
	types.SectionIdea:     ideaHeader,
	types.SectionConcept:  conceptHeader,
}

// reservedHeaders lists every phrase extraction must stop at, in no
// particular order.
var reservedHeaders = []string{
	practiceHeader,
	ideaHeader,
	conceptHeader,
	connectionsHeader,
}
