package runner

import (
	"fmt"
	"strings"

	"blockstack.ai/internal/protocol"
	"blockstack.ai/internal/sim/geom"
	"blockstack.ai/internal/sim/plan"
	"blockstack.ai/internal/sim/scene"
	"blockstack.ai/internal/sim/spatial"
)

// Observer receives scene mutation and presentation notifications. The
// engine's correctness never depends on anyone observing them: a cascading
// relocation notifies only after its final move, single moves after each.
type Observer interface {
	SceneLoaded(sc *scene.Scene)
	SceneUpdated(sc *scene.Scene)
	StepStarted(index int, instruction string, original []string)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) SceneLoaded(*scene.Scene)          {}
func (NopObserver) SceneUpdated(*scene.Scene)         {}
func (NopObserver) StepStarted(int, string, []string) {}

// Executor applies single relocations against a scene, enforcing the
// stacking preconditions before any geometry changes. Failed calls leave the
// scene untouched.
type Executor struct {
	tolerance float64
	observer  Observer
}

func NewExecutor(tolerance float64, observer Observer) *Executor {
	if tolerance <= 0 {
		tolerance = spatial.DefaultAboveTolerance
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &Executor{tolerance: tolerance, observer: observer}
}

// MoveOnto relocates source directly on top of destination. It fails without
// side effects when destination already rests on source, when destination
// carries an occupant other than source (unless destination is source's own
// table), or when source itself is not clear.
func (e *Executor) MoveOnto(sc *scene.Scene, source, destination string) *RunError {
	onSource, onDestination, err := e.stackState(sc, source, destination)
	if err != nil {
		return err
	}
	if err := checkDestination(source, destination, onSource, onDestination); err != nil {
		return err
	}
	if len(onSource) > 0 {
		return newError(protocol.ErrSourceNotClear, fmt.Sprintf(
			"Evaluator: '%s' is not clear: '%s' is positioned on top of it!",
			source, joinLabels(onSource)))
	}
	return e.placeOnTop(sc, source, destination, true)
}

// MoveStack relocates source together with every box resting on it,
// preserving relative stacking order: source moves first, then each formerly
// resting box lands on the one that was directly below it. Observers are
// notified once, after the final move of the group.
func (e *Executor) MoveStack(sc *scene.Scene, source, destination string) *RunError {
	onSource, onDestination, err := e.stackState(sc, source, destination)
	if err != nil {
		return err
	}
	if err := checkDestination(source, destination, onSource, onDestination); err != nil {
		return err
	}
	if err := e.placeOnTop(sc, source, destination, len(onSource) == 0); err != nil {
		return err
	}
	previous := source
	for i, ent := range onSource {
		last := i == len(onSource)-1
		if err := e.placeOnTop(sc, ent.Label, previous, last); err != nil {
			return err
		}
		previous = ent.Label
	}
	return nil
}

func (e *Executor) stackState(sc *scene.Scene, source, destination string) ([]scene.Entry, []scene.Entry, *RunError) {
	src, err := sc.Get(source)
	if err != nil {
		return nil, nil, newError(protocol.ErrUnknownBox, fmt.Sprintf("Evaluator: unknown box '%s'", source))
	}
	dst, err := sc.Get(destination)
	if err != nil {
		return nil, nil, newError(protocol.ErrUnknownBox, fmt.Sprintf("Evaluator: unknown box '%s'", destination))
	}
	return spatial.Above(src, sc, e.tolerance), spatial.Above(dst, sc, e.tolerance), nil
}

// checkDestination enforces the two destination-side preconditions shared by
// single and stack moves: the destination must not already rest on the
// source, and it must be unoccupied unless its first occupant is the source
// itself or it is the source's dedicated table.
func checkDestination(source, destination string, onSource, onDestination []scene.Entry) *RunError {
	for _, ent := range onSource {
		if ent.Label == destination {
			return newError(protocol.ErrAlreadyStacked, fmt.Sprintf(
				"Evaluator: Cannot move %s to %s: %s is already on %s.",
				source, destination, destination, source))
		}
	}
	if len(onDestination) > 0 && onDestination[0].Label != source && destination != ownTable(source) {
		return newError(protocol.ErrDestOccupied, fmt.Sprintf(
			"Evaluator: Cannot move '%s' to %s: '%s' already positioned on top of it!",
			source, destination, joinLabels(onDestination)))
	}
	return nil
}

// placeOnTop is the terminal relocation: source keeps its own extents, its
// footprint snaps to the destination's min corner, its bottom to the
// destination's top.
func (e *Executor) placeOnTop(sc *scene.Scene, source, destination string, notify bool) *RunError {
	src, err := sc.Get(source)
	if err != nil {
		return newError(protocol.ErrUnknownBox, fmt.Sprintf("Evaluator: unknown box '%s'", source))
	}
	dst, err := sc.Get(destination)
	if err != nil {
		return newError(protocol.ErrUnknownBox, fmt.Sprintf("Evaluator: unknown box '%s'", destination))
	}
	bottom := dst.Max[2]
	moved := geom.Box{
		Min: geom.Vec3{dst.Min[0], dst.Min[1], bottom},
		Max: geom.Vec3{dst.Min[0] + src.Width(), dst.Min[1] + src.Depth(), bottom + src.Height()},
	}
	sc.Set(source, moved)
	if notify {
		e.observer.SceneUpdated(sc)
	}
	return nil
}

// ownTable is the dedicated support surface for a box: table<N> for b<N>.
func ownTable(source string) string {
	if n, ok := plan.BlockNumber(source); ok {
		return "table" + n
	}
	return ""
}

func joinLabels(entries []scene.Entry) string {
	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.Label
	}
	return strings.Join(labels, ", ")
}
