// Package triple parses the flat subject--predicate-->object text format
// produced by upstream process extractors.
//
// Each input line either matches the shape
//
//	<subject> -- <predicate> --> <object>
//
// or is ignored. Subject and predicate are whitespace-free tokens; the
// object is the trimmed remainder of the line and may contain spaces.
// Parsing is best-effort by design: malformed lines are skipped silently
// so that noisy extractor output still yields a usable diagram.
package triple

import (
	"regexp"
	"strings"
)

// Predicate vocabulary understood by the process graph builder.
// Predicates are matched case-insensitively; use NormalizePredicate
// before comparing.
const (
	PredType          = "type"
	PredSequencedItem = "hassequenceditem"
	PredStakeholder   = "hasstakeholder"
	PredNext          = "hasnext"
	PredSourceText    = "sourcetext"
)

// ObjectProcedure is the type object that declares a procedure.
// Unlike predicates, this comparison is case-sensitive.
const ObjectProcedure = "Procedure"

// Triple is one subject-predicate-object statement.
type Triple struct {
	Subject   string
	Predicate string
	Object    string
}

var lineRe = regexp.MustCompile(`(\S+) -- (\S+) --> (.*)`)

// Parse extracts all well-formed triples from raw text.
// Lines that do not match the triple shape are dropped without error.
func Parse(raw string) []Triple {
	matches := lineRe.FindAllStringSubmatch(raw, -1)
	triples := make([]Triple, 0, len(matches))
	for _, m := range matches {
		triples = append(triples, Triple{
			Subject:   strings.TrimSpace(m[1]),
			Predicate: strings.TrimSpace(m[2]),
			Object:    strings.TrimSpace(m[3]),
		})
	}
	return triples
}

// NormalizePredicate lowercases a predicate for vocabulary dispatch.
func NormalizePredicate(pred string) string {
	return strings.ToLower(pred)
}
