package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/joescharf/devteam/internal/models"
)

// ErrorPolicy decides what a step error means to the loop.
type ErrorPolicy string

const (
	// ErrorPolicyAbort stops the run and propagates the step error.
	ErrorPolicyAbort ErrorPolicy = "abort"

	// ErrorPolicyReject records a failed reviewer as changes_requested and
	// continues the cycle. Producer errors still abort, since there is
	// nothing to review. A step error is never treated as approval.
	ErrorPolicyReject ErrorPolicy = "reject"
)

// Config holds approval loop configuration.
type Config struct {
	MaxIterations int
	ErrorPolicy   ErrorPolicy
}

// DefaultConfig returns the default loop config, reading from viper when
// available.
func DefaultConfig() Config {
	maxIterations := viper.GetInt("pipeline.max_iterations")
	if maxIterations <= 0 {
		maxIterations = 3
	}

	policy := ErrorPolicy(viper.GetString("pipeline.error_policy"))
	if policy != ErrorPolicyReject {
		policy = ErrorPolicyAbort
	}

	return Config{
		MaxIterations: maxIterations,
		ErrorPolicy:   policy,
	}
}

// Producer creates or revises the artifact under review and returns its
// locator. On iteration 1 it builds from the original task; on later
// iterations it revises using the previous iteration's review locators.
type Producer interface {
	Name() string
	Produce(ctx context.Context, state *CycleState) (locator string, err error)
}

// Reviewer inspects the current artifact, writes a report, and returns the
// report's locator plus its classified verdict.
type Reviewer interface {
	Name() string
	Review(ctx context.Context, state *CycleState) (locator string, verdict models.Verdict, err error)
}

type producerFunc struct {
	name string
	fn   func(context.Context, *CycleState) (string, error)
}

func (p producerFunc) Name() string { return p.name }
func (p producerFunc) Produce(ctx context.Context, state *CycleState) (string, error) {
	return p.fn(ctx, state)
}

// ProducerFunc adapts a named function to the Producer interface.
func ProducerFunc(name string, fn func(context.Context, *CycleState) (string, error)) Producer {
	return producerFunc{name: name, fn: fn}
}

type reviewerFunc struct {
	name string
	fn   func(context.Context, *CycleState) (string, models.Verdict, error)
}

func (r reviewerFunc) Name() string { return r.name }
func (r reviewerFunc) Review(ctx context.Context, state *CycleState) (string, models.Verdict, error) {
	return r.fn(ctx, state)
}

// ReviewerFunc adapts a named function to the Reviewer interface.
func ReviewerFunc(name string, fn func(context.Context, *CycleState) (string, models.Verdict, error)) Reviewer {
	return reviewerFunc{name: name, fn: fn}
}

// Result is the terminal outcome of an approval loop run.
type Result struct {
	Approved   bool
	Iterations int
	State      *CycleState
}

// ApprovalLoop drives {produce → review × N} rounds until every reviewer
// approves in the same iteration or the iteration cap is reached.
//
// Reviewers run sequentially in the order given: later reviewers may read
// earlier reviewers' reports from the state.
type ApprovalLoop struct {
	producer  Producer
	reviewers []Reviewer
	cfg       Config
}

// NewApprovalLoop creates a loop over the given producer and ordered
// reviewers.
func NewApprovalLoop(producer Producer, reviewers []Reviewer, cfg Config) *ApprovalLoop {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 3
	}
	if cfg.ErrorPolicy == "" {
		cfg.ErrorPolicy = ErrorPolicyAbort
	}
	return &ApprovalLoop{producer: producer, reviewers: reviewers, cfg: cfg}
}

// Run executes the loop. A fresh CycleState is constructed per call, so
// concurrent runs never observe each other's iteration, artifact, or
// verdicts. The context is checked between steps; cancelling it abandons
// the run without waiting for the iteration cap.
//
// Reaching the cap without unanimous approval is not an error: the Result
// reports Approved=false with the last-known locators intact.
func (l *ApprovalLoop) Run(ctx context.Context) (*Result, error) {
	// Without reviewers the unanimity check would pass vacuously and
	// approve whatever the producer wrote unseen.
	if len(l.reviewers) == 0 {
		return nil, errors.New("approval loop requires at least one reviewer")
	}

	state := NewCycleState()

	required := make([]string, len(l.reviewers))
	for i, r := range l.reviewers {
		required[i] = r.Name()
	}

	for state.Iteration < l.cfg.MaxIterations {
		if err := ctx.Err(); err != nil {
			return &Result{Iterations: state.Iteration, State: state}, err
		}

		state.StartIteration()

		locator, err := l.producer.Produce(ctx, state)
		if err != nil {
			return &Result{Iterations: state.Iteration, State: state},
				fmt.Errorf("producer %s: %w", l.producer.Name(), err)
		}
		state.RecordArtifact(locator)

		for _, r := range l.reviewers {
			if err := ctx.Err(); err != nil {
				return &Result{Iterations: state.Iteration, State: state}, err
			}

			reportLocator, verdict, err := r.Review(ctx, state)
			if err != nil {
				if l.cfg.ErrorPolicy == ErrorPolicyReject {
					state.RecordReview(r.Name(), reportLocator, models.VerdictChangesRequested)
					continue
				}
				return &Result{Iterations: state.Iteration, State: state},
					fmt.Errorf("reviewer %s: %w", r.Name(), err)
			}
			state.RecordReview(r.Name(), reportLocator, verdict)
		}

		if state.AllApproved(required) {
			state.FinalApproved = true
			break
		}
	}

	return &Result{
		Approved:   state.FinalApproved,
		Iterations: state.Iteration,
		State:      state,
	}, nil
}
