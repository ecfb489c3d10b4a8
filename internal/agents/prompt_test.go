package agents

import (
	"strings"
	"testing"

	"github.com/joescharf/devteam/internal/models"
)

func TestBuildDevelopmentPrompt_FirstIteration(t *testing.T) {
	prompt := BuildDevelopmentPrompt(DevelopmentPromptInput{
		ProductName:       "CSV Export",
		TaskDescription:   "Implement export endpoint",
		TechnicalDocument: "# Architecture\nUse streaming writes.",
		RepoOwner:         "acme",
		RepoName:          "demo",
		CodePath:          ".dev-team/implementations/software_engineer_csv_export.py",
		Iteration:         1,
	})

	checks := []string{
		"CSV Export",
		"Implement export endpoint",
		"acme/demo",
		"Use streaming writes.",
		"create_or_update_file",
		".dev-team/implementations/software_engineer_csv_export.py",
		"feat: implement CSV Export",
	}
	for _, check := range checks {
		if !strings.Contains(prompt, check) {
			t.Errorf("first-iteration prompt missing %q", check)
		}
	}
	if strings.Contains(prompt, "Revise") {
		t.Error("first-iteration prompt must not be a revision prompt")
	}
}

func TestBuildDevelopmentPrompt_Revision(t *testing.T) {
	prompt := BuildDevelopmentPrompt(DevelopmentPromptInput{
		ProductName:        "CSV Export",
		TaskDescription:    "Implement export endpoint",
		RepoOwner:          "acme",
		RepoName:           "demo",
		CodePath:           "impl/code.py",
		CodeReviewPath:     "reviews/code.md",
		SecurityReviewPath: "reviews/security.md",
		Iteration:          2,
	})

	checks := []string{
		"Revise",
		"get_file_contents",
		"impl/code.py",
		"reviews/code.md",
		"reviews/security.md",
		"fix: address review feedback for CSV Export",
	}
	for _, check := range checks {
		if !strings.Contains(prompt, check) {
			t.Errorf("revision prompt missing %q", check)
		}
	}
}

func TestBuildCodeReviewPrompt(t *testing.T) {
	prompt := BuildCodeReviewPrompt(ReviewPromptInput{
		RepoOwner:  "acme",
		RepoName:   "demo",
		CodePath:   "impl/code.py",
		ReportPath: "reviews/code.md",
		Iteration:  2,
	})

	checks := []string{
		"impl/code.py",
		"reviews/code.md",
		"APPROVED or CHANGES_REQUESTED",
		"docs: add code review for iteration 2",
	}
	for _, check := range checks {
		if !strings.Contains(prompt, check) {
			t.Errorf("code review prompt missing %q", check)
		}
	}
}

func TestBuildSecurityReviewPrompt_IncludesPriorReview(t *testing.T) {
	prompt := BuildSecurityReviewPrompt(ReviewPromptInput{
		RepoOwner:      "acme",
		RepoName:       "demo",
		CodePath:       "impl/code.py",
		ReportPath:     "reviews/security.md",
		Iteration:      1,
		PriorReviewRef: "reviews/code.md",
	})

	if !strings.Contains(prompt, "reviews/code.md") {
		t.Error("security prompt should reference the code reviewer's report")
	}
	if !strings.Contains(prompt, "OWASP") {
		t.Error("security prompt missing vulnerability checklist")
	}
}

func TestBuildPRDPrompt_ScopeSelectsFormat(t *testing.T) {
	product := BuildPRDPrompt("X", "ctx", "", models.ScopeProduct)
	if !strings.Contains(product, "Target Users & Personas") {
		t.Error("product scope should use the full PRD format")
	}

	feature := BuildPRDPrompt("X", "ctx", "", models.ScopeFeature)
	if !strings.Contains(feature, "Acceptance Criteria") {
		t.Error("feature scope should use the short format")
	}
	if strings.Contains(feature, "Target Users & Personas") {
		t.Error("feature scope must not use the full PRD format")
	}
}

func TestBuildDecisionPrompt_JSONContract(t *testing.T) {
	prompt := BuildDecisionPrompt("- Critical: SQL injection in login")
	for _, check := range []string{"review_status", "needs_architecture_update", "action_items", "SQL injection"} {
		if !strings.Contains(prompt, check) {
			t.Errorf("decision prompt missing %q", check)
		}
	}
}
