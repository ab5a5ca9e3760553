// Package workflow contains the pure business logic for workflow orchestration.
// This is part of the Functional Core - no I/O, only pure functions.
package workflow

import (
	"fmt"
	"strings"
	"unicode"
)

// FallbackSlug is used when a task description contains no significant words.
const FallbackSlug = "task"

// slugTokenLimit caps how many significant tokens end up in the slug.
const slugTokenLimit = 3

// stopWords are filler words stripped from task descriptions before slugging.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true,
	"and": true, "or": true, "but": true,
	"to": true, "of": true, "in": true, "on": true, "at": true,
	"for": true, "with": true, "from": true, "into": true, "by": true,
	"is": true, "are": true, "was": true, "were": true, "be": true,
	"this": true, "that": true, "these": true, "those": true,
	"it": true, "its": true, "as": true, "so": true,
	"please": true, "should": true, "would": true, "could": true,
}

// Slug derives a short branch slug from a task description: lower-cased,
// non-alphanumeric runs collapsed, stop-words removed, first three
// significant tokens joined by hyphens. Deterministic for the same input.
func Slug(description string) string {
	fields := strings.FieldsFunc(strings.ToLower(description), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var tokens []string
	for _, f := range fields {
		if stopWords[f] {
			continue
		}
		tokens = append(tokens, f)
		if len(tokens) == slugTokenLimit {
			break
		}
	}

	if len(tokens) == 0 {
		return FallbackSlug
	}
	return strings.Join(tokens, "-")
}

// BranchName derives the deterministic branch name for a workflow from its
// id, type, and task description. Once assigned to a workflow the branch
// name never changes.
func BranchName(workflowID int64, workflowType Type, description string) string {
	return fmt.Sprintf("%s/%d-%s", workflowType, workflowID, Slug(description))
}
