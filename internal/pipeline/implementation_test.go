package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/devteam/internal/agents"
	"github.com/joescharf/devteam/internal/llm"
	"github.com/joescharf/devteam/internal/models"
)

// fakeRunner scripts RunWithTools responses keyed by the system
// instructions, so each role gets its own canned output.
type fakeRunner struct {
	developReplies  []string
	codeReviews     []string
	securityReviews []string

	developCalls  int
	codeCalls     int
	securityCalls int
}

func (f *fakeRunner) Complete(ctx context.Context, system, user string) (string, error) {
	return "", nil
}

func (f *fakeRunner) CompleteJSON(ctx context.Context, system, user string, out any) error {
	return nil
}

func (f *fakeRunner) RunWithTools(ctx context.Context, system, user string, toolset llm.Toolset) (string, error) {
	pick := func(replies []string, call int) string {
		if call < len(replies) {
			return replies[call]
		}
		return replies[len(replies)-1]
	}
	switch system {
	case agents.SoftwareEngineerInstructions:
		f.developCalls++
		return pick(f.developReplies, f.developCalls-1), nil
	case agents.LeadEngineerInstructions:
		f.codeCalls++
		return pick(f.codeReviews, f.codeCalls-1), nil
	case agents.SecurityEngineerInstructions:
		f.securityCalls++
		return pick(f.securityReviews, f.securityCalls-1), nil
	}
	return "", nil
}

type fakeWorkspace struct {
	ensureCalls int
	puts        map[string]string
}

func (f *fakeWorkspace) EnsureRepo(ctx context.Context, description string) error {
	f.ensureCalls++
	return nil
}

func (f *fakeWorkspace) PutFile(ctx context.Context, path, content, message string) (string, error) {
	if f.puts == nil {
		f.puts = map[string]string{}
	}
	f.puts[path] = content
	return path, nil
}

func (f *fakeWorkspace) GetFile(ctx context.Context, path string) (string, error) {
	return f.puts[path], nil
}

func (f *fakeWorkspace) Owner() string { return "acme" }
func (f *fakeWorkspace) Repo() string  { return "widget" }
func (f *fakeWorkspace) Slug() string  { return "acme/widget" }

func TestImplementationApprovedFirstIteration(t *testing.T) {
	runner := &fakeRunner{
		developReplies:  []string{"implemented the widget"},
		codeReviews:     []string{"Review Status: APPROVED"},
		securityReviews: []string{"Security Status: APPROVED"},
	}
	ws := &fakeWorkspace{}
	impl := NewImplementation(runner, nil, ws, Config{MaxIterations: 3, ErrorPolicy: ErrorPolicyAbort})

	out, err := impl.Run(context.Background(), ImplementationInput{
		ProductName:       "Widget",
		TaskDescription:   "build the widget",
		TechnicalDocument: "arch doc",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusApproved, out.Status)
	assert.Equal(t, 1, out.Iterations)
	assert.Equal(t, 1, ws.ensureCalls)
	assert.Equal(t, 1, runner.developCalls)
	assert.Equal(t, ".dev-team/implementations/software_engineer_widget.py", out.Paths.Code)
}

func TestImplementationRevisesUntilApproved(t *testing.T) {
	runner := &fakeRunner{
		developReplies: []string{"first attempt", "revised"},
		codeReviews: []string{
			"Issues found. Review Status: CHANGES_REQUESTED",
			"Review Status: APPROVED",
		},
		securityReviews: []string{
			"Security Status: APPROVED",
			"Security Status: APPROVED",
		},
	}
	ws := &fakeWorkspace{}
	impl := NewImplementation(runner, nil, ws, Config{MaxIterations: 3, ErrorPolicy: ErrorPolicyAbort})

	out, err := impl.Run(context.Background(), ImplementationInput{ProductName: "Widget"})
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusApproved, out.Status)
	assert.Equal(t, 2, out.Iterations)
	assert.Equal(t, 2, runner.developCalls)
	// Repo setup only happens on the first iteration.
	assert.Equal(t, 1, ws.ensureCalls)
}

func TestImplementationCapReachedCompletesWithNotes(t *testing.T) {
	runner := &fakeRunner{
		developReplies:  []string{"attempt"},
		codeReviews:     []string{"Review Status: CHANGES_REQUESTED"},
		securityReviews: []string{"Security Status: APPROVED"},
	}
	ws := &fakeWorkspace{}
	impl := NewImplementation(runner, nil, ws, Config{MaxIterations: 3, ErrorPolicy: ErrorPolicyAbort})

	out, err := impl.Run(context.Background(), ImplementationInput{ProductName: "Widget"})
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompletedWithNotes, out.Status)
	assert.Equal(t, 3, out.Iterations)
	assert.Equal(t, models.VerdictChangesRequested, out.Verdicts[agents.RoleLeadEngineer])
	assert.Equal(t, models.VerdictApproved, out.Verdicts[agents.RoleSecurityEngineer])
	assert.NotEmpty(t, out.ReviewLocators[agents.RoleLeadEngineer])
}

func TestImplementationSecurityBlocksDespiteApproval(t *testing.T) {
	runner := &fakeRunner{
		developReplies: []string{"attempt"},
		codeReviews:    []string{"Review Status: APPROVED"},
		securityReviews: []string{
			"APPROVED overall, but one High severity SQL injection vulnerability remains",
		},
	}
	ws := &fakeWorkspace{}
	impl := NewImplementation(runner, nil, ws, Config{MaxIterations: 2, ErrorPolicy: ErrorPolicyAbort})

	out, err := impl.Run(context.Background(), ImplementationInput{ProductName: "Widget"})
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompletedWithNotes, out.Status)
	assert.Equal(t, models.VerdictChangesRequested, out.Verdicts[agents.RoleSecurityEngineer])
}

func TestImplementationReviewHookSeesEveryVerdict(t *testing.T) {
	runner := &fakeRunner{
		developReplies: []string{"attempt", "revised"},
		codeReviews: []string{
			"Review Status: CHANGES_REQUESTED",
			"Review Status: APPROVED",
		},
		securityReviews: []string{
			"Security Status: APPROVED",
			"Security Status: APPROVED",
		},
	}
	ws := &fakeWorkspace{}
	impl := NewImplementation(runner, nil, ws, Config{MaxIterations: 3, ErrorPolicy: ErrorPolicyAbort})

	type seen struct {
		iteration int
		reviewer  string
		verdict   models.Verdict
	}
	var hooks []seen
	impl.OnReview = func(iteration int, reviewer string, verdict models.Verdict, locator, summary string) {
		hooks = append(hooks, seen{iteration, reviewer, verdict})
		assert.NotEmpty(t, locator)
	}

	_, err := impl.Run(context.Background(), ImplementationInput{ProductName: "Widget"})
	require.NoError(t, err)

	require.Len(t, hooks, 4)
	assert.Equal(t, seen{1, agents.RoleLeadEngineer, models.VerdictChangesRequested}, hooks[0])
	assert.Equal(t, seen{1, agents.RoleSecurityEngineer, models.VerdictApproved}, hooks[1])
	assert.Equal(t, seen{2, agents.RoleLeadEngineer, models.VerdictApproved}, hooks[2])
	assert.Equal(t, seen{2, agents.RoleSecurityEngineer, models.VerdictApproved}, hooks[3])
}

// fakeCompleter scripts Complete responses in call order and returns a
// fixed decision from CompleteJSON.
type fakeCompleter struct {
	replies  []string
	calls    int
	decision ReviewDecision
	prompts  []string
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	f.prompts = append(f.prompts, user)
	reply := f.replies[f.calls%len(f.replies)]
	f.calls++
	return reply, nil
}

func (f *fakeCompleter) CompleteJSON(ctx context.Context, system, user string, out any) error {
	*(out.(*ReviewDecision)) = f.decision
	return nil
}

func TestCodeReviewApprovedSkipsArchitectureUpdate(t *testing.T) {
	c := &fakeCompleter{
		replies:  []string{"looks solid", "no necessary changes"},
		decision: ReviewDecision{ReviewStatus: "approved", Notes: "ship it"},
	}
	cr := NewCodeReview(c)

	res, err := cr.Run(context.Background(), "package main", "arch doc")
	require.NoError(t, err)
	assert.Equal(t, models.VerdictApproved, res.Decision.Verdict())
	assert.Empty(t, res.ArchitectureUpdates)
	assert.Equal(t, 2, c.calls)
}

func TestCodeReviewDivergenceTriggersArchitectureUpdate(t *testing.T) {
	c := &fakeCompleter{
		replies: []string{"diverged from doc", "changes identified", "update section 3"},
		decision: ReviewDecision{
			ReviewStatus:            "approved",
			NeedsArchitectureUpdate: true,
		},
	}
	cr := NewCodeReview(c)

	res, err := cr.Run(context.Background(), "package main", "arch doc")
	require.NoError(t, err)
	assert.Equal(t, "update section 3", res.ArchitectureUpdates)
	assert.Equal(t, 3, c.calls)

	found := false
	for _, p := range c.prompts {
		if strings.Contains(p, "arch doc") && strings.Contains(p, "diverged from doc") {
			found = true
		}
	}
	assert.True(t, found, "architecture update prompt should include doc and findings")
}

func TestReviewDecisionVerdictFailsClosed(t *testing.T) {
	tests := []struct {
		status string
		want   models.Verdict
	}{
		{"approved", models.VerdictApproved},
		{"Approved", models.VerdictApproved},
		{" APPROVED ", models.VerdictApproved},
		{"changes_requested", models.VerdictChangesRequested},
		{"", models.VerdictChangesRequested},
		{"maybe", models.VerdictChangesRequested},
	}
	for _, tt := range tests {
		d := &ReviewDecision{ReviewStatus: tt.status}
		assert.Equal(t, tt.want, d.Verdict(), "status %q", tt.status)
	}
}
