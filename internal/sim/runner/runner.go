// Package runner executes block-stacking plans against a scene and evaluates
// the goal condition of the run. It is strictly sequential: one mutable scene
// per run, abort on the first violated precondition, goal check afterwards in
// every case.
package runner

import (
	"fmt"

	"blockstack.ai/internal/protocol"
	"blockstack.ai/internal/sim/plan"
	"blockstack.ai/internal/sim/scene"
	"blockstack.ai/internal/sim/spatial"
)

// Result is the outcome of one plan execution. Steps counts instructions
// processed before any abort, so a completed plan reports one step per line;
// Skipped counts the subset that matched no instruction grammar and therefore
// caused no state change.
type Result struct {
	Errors  []string `json:"errors"`
	Steps   int      `json:"steps"`
	Skipped int      `json:"skipped,omitempty"`
}

func (r Result) OK() bool { return len(r.Errors) == 0 }

// StepOutcome reports what one instruction did, for run logs.
type StepOutcome struct {
	Index       int
	Instruction string
	Skipped     bool
	Code        string
	Err         string
}

// Runner drives plan execution. The zero tolerance selects the default
// stacking contact tolerance.
type Runner struct {
	exec     *Executor
	observer Observer

	tolerance float64

	// StepDone, when set, is invoked after every processed instruction,
	// including skipped and failing ones.
	StepDone func(StepOutcome)
}

func New(tolerance float64, observer Observer) *Runner {
	if tolerance <= 0 {
		tolerance = spatial.DefaultAboveTolerance
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &Runner{
		exec:      NewExecutor(tolerance, observer),
		observer:  observer,
		tolerance: tolerance,
	}
}

// Run executes the instructions in order against sc, aborting on the first
// error, then evaluates the goal against whatever state the scene reached.
// original carries per-step explanatory text for observers only; it may be
// shorter than the plan. The scene is mutated in place: callers hand in a
// clone when they need the initial configuration again.
func (r *Runner) Run(sc *scene.Scene, steps []string, original [][]string, goal string) Result {
	r.observer.SceneLoaded(sc)
	res := Result{Errors: []string{}}

	for i, step := range steps {
		var orig []string
		if i < len(original) {
			orig = original[i]
		}
		r.observer.StepStarted(i, step, orig)

		mv, ok := plan.ParseMove(step)
		if !ok {
			// Unrecognized instructions are deliberately lenient: no error,
			// no state change. They still count as processed steps, and the
			// skip tally keeps malformed plans from reading as clean no-ops.
			res.Steps++
			res.Skipped++
			r.stepDone(StepOutcome{Index: i, Instruction: step, Skipped: true})
			continue
		}
		if err := r.executeMove(sc, mv); err != nil {
			res.Errors = append(res.Errors, err.Message)
			r.stepDone(StepOutcome{Index: i, Instruction: step, Code: err.Code, Err: err.Message})
			break
		}
		res.Steps++
		r.stepDone(StepOutcome{Index: i, Instruction: step})
	}

	res.Errors = append(res.Errors, r.checkGoal(sc, goal)...)
	return res
}

// executeMove dispatches one recognized instruction. Clearing a non-clear
// source to its own table via the bare alias carries the whole stack along;
// every other destination requires a clear source and aborts otherwise.
func (r *Runner) executeMove(sc *scene.Scene, mv plan.Move) *RunError {
	src, err := sc.Get(mv.Source)
	if err != nil {
		return newError(protocol.ErrUnknownBox, fmt.Sprintf("Evaluator: unknown box '%s'", mv.Source))
	}
	if mv.TableAlias && len(spatial.Above(src, sc, r.tolerance)) > 0 {
		return r.exec.MoveStack(sc, mv.Source, mv.Destination)
	}
	return r.exec.MoveOnto(sc, mv.Source, mv.Destination)
}

// checkGoal verifies every recognized goal clause against the final scene.
// A clause whose lower box is missing from the scene is unmet by definition.
func (r *Runner) checkGoal(sc *scene.Scene, goal string) []string {
	var errs []string
	for _, cl := range plan.ParseGoal(goal) {
		below, err := sc.Get(cl.Below)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Evaluator: %s is not on top of %s", cl.Top, cl.Below))
			continue
		}
		found := false
		for _, ent := range spatial.Above(below, sc, r.tolerance) {
			if ent.Label == cl.Top {
				found = true
				break
			}
		}
		if !found {
			errs = append(errs, fmt.Sprintf("Evaluator: %s is not on top of %s", cl.Top, cl.Below))
		}
	}
	return errs
}

func (r *Runner) stepDone(o StepOutcome) {
	if r.StepDone != nil {
		r.StepDone(o)
	}
}
