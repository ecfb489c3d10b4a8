package pipeline

import "github.com/joescharf/devteam/internal/models"

// CycleState tracks iteration count, the artifact under review, and
// per-reviewer verdicts across one implementation cycle.
//
// A CycleState is owned by exactly one ApprovalLoop run. It is not safe for
// concurrent use; callers running multiple cycles at once must give each
// its own instance.
type CycleState struct {
	Iteration       int
	ArtifactLocator string
	ReviewLocators  map[string]string
	Verdicts        map[string]models.Verdict
	FinalApproved   bool
}

// NewCycleState returns a fresh state at iteration zero.
func NewCycleState() *CycleState {
	return &CycleState{
		ReviewLocators: make(map[string]string),
		Verdicts:       make(map[string]models.Verdict),
	}
}

// StartIteration advances the iteration counter and drops all review
// bookkeeping from the previous pass, so a stale verdict can never be read
// as current.
func (s *CycleState) StartIteration() {
	s.Iteration++
	s.ReviewLocators = make(map[string]string)
	s.Verdicts = make(map[string]models.Verdict)
}

// RecordArtifact stores where the producer wrote the work product.
func (s *CycleState) RecordArtifact(locator string) {
	s.ArtifactLocator = locator
}

// RecordReview stores a reviewer's report location and verdict for the
// current iteration.
func (s *CycleState) RecordReview(reviewer, locator string, verdict models.Verdict) {
	s.ReviewLocators[reviewer] = locator
	s.Verdicts[reviewer] = verdict
}

// AllApproved reports whether every required reviewer approved in the
// current iteration. A reviewer that has not run yet counts as not
// approved.
func (s *CycleState) AllApproved(required []string) bool {
	for _, name := range required {
		if s.Verdicts[name] != models.VerdictApproved {
			return false
		}
	}
	return true
}

// Reset returns the state to iteration zero with all maps empty. Call it
// before reusing the same instance for an unrelated run.
func (s *CycleState) Reset() {
	s.Iteration = 0
	s.ArtifactLocator = ""
	s.FinalApproved = false
	s.ReviewLocators = make(map[string]string)
	s.Verdicts = make(map[string]models.Verdict)
}
