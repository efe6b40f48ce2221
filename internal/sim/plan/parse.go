// Package plan turns the textual move and goal grammars into typed values so
// the runner never touches raw strings.
package plan

import (
	"regexp"
	"strings"
)

var (
	moveRe   = regexp.MustCompile(`^move (b\d+) on (b\d+|table)`)
	goalRe   = regexp.MustCompile(`^(b\d+) should be on top of (b\d+)`)
	numberRe = regexp.MustCompile(`\d+`)
)

// Move is a single recognized instruction. Destination is always a concrete
// label: the bare "table" alias is resolved to the table sharing the source
// box's numeric suffix before the runner sees it. TableAlias records that the
// instruction used the alias; the runner permits whole-stack relocation only
// for those moves.
type Move struct {
	Source      string
	Destination string
	TableAlias  bool
}

// ParseMove parses one instruction line. ok is false for anything that does
// not match "move bN on (bM|table)"; such lines carry no state change.
func ParseMove(step string) (Move, bool) {
	m := moveRe.FindStringSubmatch(step)
	if m == nil {
		return Move{}, false
	}
	source, destination := m[1], m[2]
	alias := destination == "table"
	if alias {
		destination = "table" + numberRe.FindString(source)
	}
	return Move{Source: source, Destination: destination, TableAlias: alias}, true
}

// BlockNumber extracts the numeric suffix of a box label ("b12" -> "12").
func BlockNumber(label string) (string, bool) {
	n := numberRe.FindString(label)
	return n, n != ""
}

// Clause is one required "on top of" relation from a goal.
type Clause struct {
	Top   string
	Below string
}

// ParseGoal splits a newline-delimited goal into its recognized clauses.
// Order is preserved but has no satisfaction semantics; every clause must
// hold independently. Lines matching no clause grammar are ignored.
func ParseGoal(goal string) []Clause {
	var out []Clause
	for _, line := range strings.Split(goal, "\n") {
		m := goalRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		out = append(out, Clause{Top: m[1], Below: m[2]})
	}
	return out
}
