package pipeline

import (
	"strings"

	"github.com/joescharf/devteam/internal/models"
)

// Marker sets used to classify reviewer reports. Matching is
// case-insensitive substring search.
var (
	// ApprovalMarkers indicate an approving report.
	ApprovalMarkers = []string{"approved"}

	// CodeReviewNegativeMarkers indicate the lead engineer requested changes.
	CodeReviewNegativeMarkers = []string{"changes_requested", "changes requested"}

	// SecurityNegativeMarkers indicate the security engineer requires fixes.
	// Any critical finding rejects the report regardless of other markers.
	SecurityNegativeMarkers = []string{"changes_required", "changes required", "critical"}
)

// Classify maps a reviewer's free-text report to a verdict.
//
// Negative markers take precedence over positive ones: a report that opens
// with praise and an "approved" but ends with "CHANGES_REQUESTED for the
// auth module" is a rejection. A report containing no recognizable marker
// is also a rejection: an approval gate fails closed on ambiguous input
// rather than silently passing it.
func Classify(report string, negative, positive []string) models.Verdict {
	lower := strings.ToLower(report)

	for _, m := range negative {
		if strings.Contains(lower, strings.ToLower(m)) {
			return models.VerdictChangesRequested
		}
	}
	for _, m := range positive {
		if strings.Contains(lower, strings.ToLower(m)) {
			return models.VerdictApproved
		}
	}
	return models.VerdictChangesRequested
}

// ClassifyCodeReview classifies a lead engineer review report.
func ClassifyCodeReview(report string) models.Verdict {
	return Classify(report, CodeReviewNegativeMarkers, ApprovalMarkers)
}

// ClassifySecurityReview classifies a security review report. On top of the
// standard marker sets it rejects any report that mentions a high-severity
// vulnerability, even when an APPROVED marker appears elsewhere in the text.
func ClassifySecurityReview(report string) models.Verdict {
	lower := strings.ToLower(report)
	if strings.Contains(lower, "high") && strings.Contains(lower, "vulnerabilit") {
		return models.VerdictChangesRequested
	}
	return Classify(report, SecurityNegativeMarkers, ApprovalMarkers)
}
