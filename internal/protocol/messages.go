package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// GroundTruthEntry is one experiment domain from the ground-truth file:
// the domain description, the goal text and the initial 3D scene. The scene
// stays raw here because its key order is meaningful and is decoded by the
// scene package.
type GroundTruthEntry struct {
	Domain  string          `json:"domain"`
	Goal    string          `json:"goal"`
	Scene3D json.RawMessage `json:"scene3D"`
}

// PlanEntry is one generated plan for a domain: the revised instruction list
// the runner executes, and the original explanatory lines per step
// (presentation only, never consulted for semantics).
type PlanEntry struct {
	Revised  []string   `json:"revised"`
	Original [][]string `json:"original"`
}

// PlanSet holds one run's plans keyed by domain. Order records the domain
// keys as they appear in the file; evaluation sweeps them in that order, so
// cut-offs land at the same point regardless of how domains are named.
type PlanSet struct {
	Entries map[string]PlanEntry
	Order   []string
}

func (p *PlanSet) UnmarshalJSON(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("plans: expected domain object, got %v", tok)
	}
	p.Entries = make(map[string]PlanEntry)
	p.Order = nil
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("plans: expected domain name, got %v", tok)
		}
		var e PlanEntry
		if err := dec.Decode(&e); err != nil {
			return fmt.Errorf("plans: domain %q: %w", name, err)
		}
		if _, dup := p.Entries[name]; !dup {
			p.Order = append(p.Order, name)
		}
		p.Entries[name] = e
	}
	_, err = dec.Token()
	return err
}

// PlansFile is the planning-results file layout: method -> run -> domain.
type PlansFile map[string]map[string]PlanSet

// StepMsg is one executed (or attempted) instruction in the run log.
type StepMsg struct {
	Method      string   `json:"method"`
	Run         string   `json:"run"`
	Domain      string   `json:"domain"`
	Index       int      `json:"index"`
	Instruction string   `json:"instruction"`
	Original    []string `json:"original,omitempty"`
	Skipped     bool     `json:"skipped,omitempty"`
	Code        string   `json:"code,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// ResultMsg is the execution result record for one plan.
type ResultMsg struct {
	Method  string   `json:"method"`
	Run     string   `json:"run"`
	Domain  string   `json:"domain"`
	Steps   int      `json:"steps"`
	Skipped int      `json:"skipped,omitempty"`
	Errors  []string `json:"errors"`
}

// OK reports whether the plan reached its goal without any error.
func (r ResultMsg) OK() bool { return len(r.Errors) == 0 }
