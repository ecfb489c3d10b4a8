package agents

import (
	"fmt"
	"strings"

	"github.com/joescharf/devteam/internal/models"
)

// BuildAnalysisPrompt generates the requirements-analysis prompt for the
// discovery stage.
func BuildAnalysisPrompt(productName, productContext, targetAudience string, scope models.Scope) string {
	var b strings.Builder

	b.WriteString("Analyze this product/feature request:\n\n")
	fmt.Fprintf(&b, "**Name:** %s\n", productName)
	fmt.Fprintf(&b, "**Context:** %s\n", productContext)
	if targetAudience != "" {
		fmt.Fprintf(&b, "**Target Audience:** %s\n", targetAudience)
	}
	fmt.Fprintf(&b, "**Declared Scope:** %s\n", scope)

	return b.String()
}

// BuildResearchPrompt generates the market/competitor research prompt.
func BuildResearchPrompt(productName, productContext string, competitorAnalysis bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Research the problem space for: %s\n\n", productName)
	fmt.Fprintf(&b, "**Context:** %s\n\n", productContext)
	b.WriteString("Cover: the problem being solved, who has it, and existing approaches.\n")
	if competitorAnalysis {
		b.WriteString("Also provide a competitor analysis: concrete alternatives, their strengths and weaknesses, and where this product could differentiate.\n")
	}

	return b.String()
}

// BuildSynthesisPrompt combines analysis and research ahead of PRD writing.
func BuildSynthesisPrompt(analysis, research string) string {
	var b strings.Builder

	b.WriteString("Synthesize the findings below into requirements input for a PRD. Resolve contradictions, drop speculation, and keep only what is supported by the material.\n\n")
	b.WriteString("## Requirements Analysis\n")
	b.WriteString(analysis)
	b.WriteString("\n")
	if research != "" {
		b.WriteString("\n## Research Findings\n")
		b.WriteString(research)
		b.WriteString("\n")
	}

	return b.String()
}

// BuildPRDPrompt generates the PRD-creation prompt. A product scope asks
// for the full structured document; a feature scope for the short form.
func BuildPRDPrompt(productName, productContext, synthesis string, scope models.Scope) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create a PRD for: %s\n\n", productName)
	fmt.Fprintf(&b, "**Context:** %s\n\n", productContext)
	if synthesis != "" {
		b.WriteString("**Synthesized Requirements:**\n")
		b.WriteString(synthesis)
		b.WriteString("\n\n")
	}

	if scope == models.ScopeProduct {
		b.WriteString("Use the full product PRD format:\n")
		b.WriteString("1. Overview & Goals\n")
		b.WriteString("2. Target Users & Personas\n")
		b.WriteString("3. User Stories\n")
		b.WriteString("4. Functional Requirements\n")
		b.WriteString("5. Non-Functional Requirements\n")
		b.WriteString("6. Success Metrics\n")
		b.WriteString("7. Out of Scope\n")
	} else {
		b.WriteString("Use the short feature format:\n")
		b.WriteString("1. What & Why (2-3 sentences)\n")
		b.WriteString("2. Requirements (bullet list, each testable)\n")
		b.WriteString("3. Acceptance Criteria\n")
		b.WriteString("4. Out of Scope\n")
	}
	b.WriteString("\nFormat as a clear markdown document. Only use the information provided above.\n")

	return b.String()
}

// BuildArchitecturePrompt generates the architecture-design prompt from a
// PRD.
func BuildArchitecturePrompt(productName, prdContent string) string {
	var b strings.Builder

	b.WriteString("Based on the following PRD, create a technical architecture design:\n\n")
	fmt.Fprintf(&b, "**Product/Feature:** %s\n\n", productName)
	b.WriteString("**PRD:**\n")
	b.WriteString(prdContent)
	b.WriteString("\n\n")
	b.WriteString("**Create a technical architecture document with:**\n")
	b.WriteString("1. System Overview (2-3 sentences)\n")
	b.WriteString("2. Components & Responsibilities (3-5 components, one sentence each)\n")
	b.WriteString("3. Data Flow\n")
	b.WriteString("4. Technology Stack\n")
	b.WriteString("5. API Design (if applicable)\n")
	b.WriteString("6. Implementation Tasks (5-8 specific, actionable tickets)\n\n")
	b.WriteString("Format as a clear, structured markdown document.\n")

	return b.String()
}

// DevelopmentPromptInput carries everything the software engineer's step
// prompt needs.
type DevelopmentPromptInput struct {
	ProductName        string
	TaskDescription    string
	TechnicalDocument  string
	RepoOwner          string
	RepoName           string
	CodePath           string
	CodeReviewPath     string
	SecurityReviewPath string
	Iteration          int
}

// BuildDevelopmentPrompt generates the software engineer's task prompt. On
// iteration 1 it implements from the architecture; on later iterations it
// reads the prior code and both review reports, then revises.
func BuildDevelopmentPrompt(in DevelopmentPromptInput) string {
	var b strings.Builder

	if in.Iteration == 1 {
		b.WriteString("Implement the following based on the technical architecture.\n\n")
		fmt.Fprintf(&b, "**Product/Feature:** %s\n", in.ProductName)
		fmt.Fprintf(&b, "**Task:** %s\n", in.TaskDescription)
		fmt.Fprintf(&b, "**Repository:** %s/%s\n\n", in.RepoOwner, in.RepoName)
		b.WriteString("**Technical Architecture:**\n")
		b.WriteString(in.TechnicalDocument)
		b.WriteString("\n\n")
		b.WriteString("Write clean, production-ready code with proper error handling and input validation.\n\n")
		b.WriteString("Save your code (call `create_or_update_file` ONCE):\n")
		fmt.Fprintf(&b, "- owner: %q\n- repo: %q\n- path: %q\n", in.RepoOwner, in.RepoName, in.CodePath)
		fmt.Fprintf(&b, "- message: %q\n- branch: \"main\"\n\n", "feat: implement "+in.ProductName)
		b.WriteString("After the file is saved, reply with a brief summary of what you implemented.\n")
		return b.String()
	}

	b.WriteString("Revise your implementation based on review feedback.\n\n")
	fmt.Fprintf(&b, "**Product/Feature:** %s\n", in.ProductName)
	fmt.Fprintf(&b, "**Task:** %s\n", in.TaskDescription)
	fmt.Fprintf(&b, "**Repository:** %s/%s\n\n", in.RepoOwner, in.RepoName)
	b.WriteString("Call each tool EXACTLY ONCE, in this order:\n\n")
	fmt.Fprintf(&b, "1. Read your current code: `get_file_contents` with path %q\n", in.CodePath)
	fmt.Fprintf(&b, "2. Read the code review: `get_file_contents` with path %q\n", in.CodeReviewPath)
	fmt.Fprintf(&b, "3. Read the security review: `get_file_contents` with path %q\n", in.SecurityReviewPath)
	b.WriteString("4. Revise your code to address all required changes from both reviews\n")
	fmt.Fprintf(&b, "5. Save the revised code: `create_or_update_file` with path %q, message %q, branch \"main\"\n\n",
		in.CodePath, "fix: address review feedback for "+in.ProductName)
	b.WriteString("After saving, reply with a summary of the changes made.\n")

	return b.String()
}

// ReviewPromptInput carries what a reviewer's step prompt needs.
type ReviewPromptInput struct {
	RepoOwner      string
	RepoName       string
	CodePath       string
	ReportPath     string
	Iteration      int
	PriorReviewRef string
}

// BuildCodeReviewPrompt generates the lead engineer's review prompt.
func BuildCodeReviewPrompt(in ReviewPromptInput) string {
	var b strings.Builder

	b.WriteString("Review the code implementation for quality and architecture alignment.\n\n")
	b.WriteString("Call each tool EXACTLY ONCE:\n\n")
	fmt.Fprintf(&b, "1. Read the code: `get_file_contents` with owner %q, repo %q, path %q\n\n",
		in.RepoOwner, in.RepoName, in.CodePath)
	b.WriteString("2. Review against: code quality, architecture alignment, best practices, error handling, maintainability.\n\n")
	b.WriteString("3. Write your review in this format:\n")
	b.WriteString("- **Review Status**: APPROVED or CHANGES_REQUESTED\n")
	b.WriteString("- **Quality Score**: 1-10\n")
	b.WriteString("- **Strengths**\n")
	b.WriteString("- **Issues Found**\n")
	b.WriteString("- **Required Changes** (if CHANGES_REQUESTED)\n\n")
	fmt.Fprintf(&b, "4. Save your review: `create_or_update_file` with path %q, message %q, branch \"main\"\n\n",
		in.ReportPath, fmt.Sprintf("docs: add code review for iteration %d", in.Iteration))
	b.WriteString("After saving, end your reply with the line: Review Status: APPROVED or Review Status: CHANGES_REQUESTED\n")

	return b.String()
}

// BuildSecurityReviewPrompt generates the security engineer's review
// prompt. The prior code review location is included so the security
// reviewer can take the quality reviewer's notes into account.
func BuildSecurityReviewPrompt(in ReviewPromptInput) string {
	var b strings.Builder

	b.WriteString("Review the code for security vulnerabilities.\n\n")
	b.WriteString("Call each tool EXACTLY ONCE:\n\n")
	fmt.Fprintf(&b, "1. Read the code: `get_file_contents` with owner %q, repo %q, path %q\n",
		in.RepoOwner, in.RepoName, in.CodePath)
	if in.PriorReviewRef != "" {
		fmt.Fprintf(&b, "2. Read the code review notes: `get_file_contents` with path %q\n", in.PriorReviewRef)
	}
	b.WriteString("\nCheck for: injection (SQL, XSS, command), auth flaws, sensitive data exposure, input validation issues, insecure error handling, OWASP Top 10.\n\n")
	b.WriteString("Write your review in this format:\n")
	b.WriteString("- **Security Status**: APPROVED or CHANGES_REQUIRED\n")
	b.WriteString("- **Vulnerabilities Found**: list with severity (Critical/High/Medium/Low)\n")
	b.WriteString("- **Required Fixes**\n")
	b.WriteString("- **Recommendations**\n\n")
	fmt.Fprintf(&b, "Save your review: `create_or_update_file` with path %q, message %q, branch \"main\"\n\n",
		in.ReportPath, fmt.Sprintf("docs: add security review for iteration %d", in.Iteration))
	b.WriteString("After saving, end your reply with the line: Security Status: APPROVED or Security Status: CHANGES_REQUIRED\n")

	return b.String()
}

// BuildDecisionPrompt generates the review decision prompt. The decision
// comes back as structured JSON so downstream control flow never has to
// scan prose for status keywords.
func BuildDecisionPrompt(identifiedChanges string) string {
	var b strings.Builder

	b.WriteString("You are the final decision maker for this code review. Based on the identified changes below, decide the outcome.\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Critical or High severity necessary changes -> changes_requested\n")
	b.WriteString("- Only minor Medium severity changes -> approved with notes\n")
	b.WriteString("- No necessary changes -> approved\n")
	b.WriteString("- Set needs_architecture_update to true ONLY when the implementation intentionally and correctly diverged from the documented architecture.\n\n")
	b.WriteString("Return ONLY a JSON object with these fields:\n")
	b.WriteString(`{"review_status": "approved" | "changes_requested", "needs_architecture_update": true | false, "notes": "...", "action_items": ["..."]}`)
	b.WriteString("\n\n## Identified Changes\n")
	b.WriteString(identifiedChanges)

	return b.String()
}
