package pipeline

import (
	"fmt"
	"strings"
)

// ArtifactPaths holds the deterministic .dev-team/ locations for one
// product's pipeline artifacts inside the target repository.
type ArtifactPaths struct {
	Code           string
	CodeReview     string
	SecurityReview string
	PRD            string
	Architecture   string
}

// PathsFor derives stable artifact locators from the product name so that
// revision iterations overwrite the same files rather than accumulating
// versioned copies. The read-after-revise protocol between producer and
// reviewers depends on this.
func PathsFor(productName string) ArtifactPaths {
	safe := SafeName(productName)
	return ArtifactPaths{
		Code:           fmt.Sprintf(".dev-team/implementations/software_engineer_%s.py", safe),
		CodeReview:     fmt.Sprintf(".dev-team/code_reviews/lead_engineer_review_%s.md", safe),
		SecurityReview: fmt.Sprintf(".dev-team/security_reviews/security_engineer_review_%s.md", safe),
		PRD:            fmt.Sprintf(".dev-team/docs/prd_%s.md", safe),
		Architecture:   fmt.Sprintf(".dev-team/docs/architecture_%s.md", safe),
	}
}

// SafeName lower-cases the product name, replaces spaces and slashes with
// underscores, and truncates to 30 characters. Truncation counts runes so
// multi-byte names never end in a broken sequence.
func SafeName(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "/", "_")
	if runes := []rune(s); len(runes) > 30 {
		s = string(runes[:30])
	}
	return s
}
