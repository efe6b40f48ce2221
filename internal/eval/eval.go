// Package eval orchestrates plan executions across methods, runs and domains
// and aggregates the outcomes into success rates.
package eval

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"blockstack.ai/internal/protocol"
	"blockstack.ai/internal/sim/runner"
)

// Observer extends the runner's notification hook with run lifecycle events.
type Observer interface {
	runner.Observer
	RunStarted(method, run, domain, goal string)
	RunFinished(res protocol.ResultMsg)
}

// Sink receives durable copies of result records. Sinks must not influence
// results; their errors surface but do not stop the evaluation.
type Sink interface {
	WriteResult(protocol.ResultMsg) error
}

// StepSink is implemented by sinks that also record per-step history.
type StepSink interface {
	WriteStep(protocol.StepMsg) error
}

// Results indexes execution results by method, run and domain.
type Results map[string]map[string]map[string]runner.Result

// Evaluation runs every selected plan against a clone of its domain's
// pristine scene. Runs are isolated and sequential; pacing only delays
// observer output and never changes a result.
type Evaluation struct {
	Data      Dataset
	Tolerance float64
	Observer  Observer
	Sinks     []Sink
	StepSleep time.Duration

	// BreakAt stops each run's domain sweep when this domain comes up, the
	// same short-circuit the experiment harness uses for quick passes.
	BreakAt string

	Warnf func(format string, args ...any)
}

// Evaluate executes all plans for the given methods and runs and returns the
// per-plan results keyed method/run/domain.
func (e *Evaluation) Evaluate(methods, runs []string) (Results, error) {
	results := make(Results)
	for _, method := range methods {
		methodRuns, ok := e.Data.Plans[method]
		if !ok {
			continue
		}
		results[method] = make(map[string]map[string]runner.Result)
		for _, run := range runs {
			set, ok := methodRuns[run]
			if !ok {
				continue
			}
			results[method][run] = make(map[string]runner.Result)
			// Domains sweep in the plans file's own order, so the break
			// cut-off lands at the same plan on every pass.
			for _, domainName := range set.Order {
				if e.BreakAt != "" && domainName == e.BreakAt {
					break
				}
				res, err := e.evaluateOne(method, run, domainName, set.Entries[domainName])
				if err != nil {
					return results, err
				}
				results[method][run][domainName] = res
			}
		}
	}
	return results, nil
}

func (e *Evaluation) evaluateOne(method, run, domainName string, pe protocol.PlanEntry) (runner.Result, error) {
	dom, ok := e.Data.Domains[domainName]
	if !ok {
		return runner.Result{}, fmt.Errorf("no ground truth for domain %q", domainName)
	}

	if e.Observer != nil {
		e.Observer.RunStarted(method, run, domainName, dom.Goal)
	}

	r := runner.New(e.Tolerance, e.Observer)
	r.StepDone = func(o runner.StepOutcome) {
		e.writeStep(protocol.StepMsg{
			Method:      method,
			Run:         run,
			Domain:      domainName,
			Index:       o.Index,
			Instruction: o.Instruction,
			Original:    originalFor(pe, o.Index),
			Skipped:     o.Skipped,
			Code:        o.Code,
			Error:       o.Err,
		})
		if e.StepSleep > 0 {
			time.Sleep(e.StepSleep)
		}
	}

	// Each execution gets its own deep copy of the initial configuration.
	res := r.Run(dom.Scene.Clone(), pe.Revised, pe.Original, dom.Goal)

	msg := protocol.ResultMsg{
		Method:  method,
		Run:     run,
		Domain:  domainName,
		Steps:   res.Steps,
		Skipped: res.Skipped,
		Errors:  res.Errors,
	}
	if e.Observer != nil {
		e.Observer.RunFinished(msg)
	}
	for _, s := range e.Sinks {
		if err := s.WriteResult(msg); err != nil {
			e.warnf("sink: result %s/%s/%s: %v", method, run, domainName, err)
		}
	}
	return res, nil
}

func (e *Evaluation) writeStep(s protocol.StepMsg) {
	for _, sink := range e.Sinks {
		ss, ok := sink.(StepSink)
		if !ok {
			continue
		}
		if err := ss.WriteStep(s); err != nil {
			e.warnf("sink: step %s/%s/%s #%d: %v", s.Method, s.Run, s.Domain, s.Index, err)
		}
	}
}

func (e *Evaluation) warnf(format string, args ...any) {
	if e.Warnf != nil {
		e.Warnf(format, args...)
	}
}

func originalFor(pe protocol.PlanEntry, index int) []string {
	if index < len(pe.Original) {
		return pe.Original[index]
	}
	return nil
}

// SuccessRates computes, per method, the fraction of plans that reached their
// goal with zero errors across all runs and domains.
func SuccessRates(results Results) map[string]float64 {
	rates := make(map[string]float64, len(results))
	for method, runs := range results {
		succeeded, total := 0, 0
		for _, domains := range runs {
			for _, res := range domains {
				total++
				if res.OK() {
					succeeded++
				}
			}
		}
		if total > 0 {
			rates[method] = float64(succeeded) / float64(total)
		} else {
			rates[method] = 0
		}
	}
	return rates
}

// methodLabels are the display names used in the printed report.
var methodLabels = map[string]string{
	"llm":         "LLM-As-P",
	"llm_ic":      "LLM-IC",
	"llm_ic_pddl": "LLM+P",
	"llm_step":    "LLM-Step",
	"ChunksGPT4":  "Ours",
}

// PrintReport writes the formatted success-rate summary.
func PrintReport(w io.Writer, rates map[string]float64) {
	fmt.Fprintf(w, "%s  RESULTS  %s\n", strings.Repeat("=", 30), strings.Repeat("=", 30))
	for _, method := range sortedKeys(rates) {
		label, ok := methodLabels[method]
		if !ok {
			label = method
		}
		fmt.Fprintf(w, "%s (%s):\t%.3f\n", label, method, rates[method])
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
