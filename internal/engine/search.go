package engine

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
)

// groupState is the mutable search view of one posted cardinality
// restriction: how many member variables are true and how many undecided.
type groupState struct {
	assigned uint64
	unknown  uint64
}

const (
	valueUnknown int8 = -1
	valueFalse   int8 = 0
	valueTrue    int8 = 1
)

// searchState is one worker's view of the search. The model, group
// definitions and membership index are shared read-only; values, group
// counters and the trail are private per worker.
type searchState struct {
	model       *Model
	groups      []cardinality
	memberships [][]int32
	decisions   []int // indexes of exact groups, branched over during search

	value  []int8
	counts []groupState
	trail  []int

	nodes      *atomic.Uint64
	backtracks *atomic.Uint64
}

func newSearchState(m *Model, nodes, backtracks *atomic.Uint64) *searchState {
	st := &searchState{
		model:       m,
		groups:      m.groups,
		memberships: make([][]int32, len(m.variables)),
		value:       make([]int8, len(m.variables)),
		counts:      make([]groupState, len(m.groups)),
		nodes:       nodes,
		backtracks:  backtracks,
	}

	for i := range st.value {
		st.value[i] = valueUnknown
	}
	for g, group := range m.groups {
		st.counts[g] = groupState{unknown: uint64(len(group.vars))}
		for _, id := range group.vars {
			st.memberships[id] = append(st.memberships[id], int32(g))
		}
		if group.exact {
			st.decisions = append(st.decisions, g)
		}
	}
	return st
}

// clone copies the mutable part of the state. Shared indices stay shared;
// they are read-only once the model is sealed.
func (st *searchState) clone() *searchState {
	duplicate := *st
	duplicate.value = make([]int8, len(st.value))
	copy(duplicate.value, st.value)
	duplicate.counts = make([]groupState, len(st.counts))
	copy(duplicate.counts, st.counts)
	duplicate.trail = make([]int, len(st.trail))
	copy(duplicate.trail, st.trail)
	return &duplicate
}

// propagate applies every posted unary restriction and runs the resulting
// cascade. It reports false when the restrictions alone are contradictory.
func (st *searchState) propagate() bool {
	for _, id := range st.model.forbidden {
		if !st.setFalse(id) {
			return false
		}
	}
	return true
}

// setTrue fixes a variable true and propagates through its groups: a group
// at its bound forbids its remaining members, and an exact group whose
// undecided members are all needed forces them true.
func (st *searchState) setTrue(id int) bool {
	switch st.value[id] {
	case valueTrue:
		return true
	case valueFalse:
		return false
	}

	st.value[id] = valueTrue
	st.trail = append(st.trail, id)

	// Commit every counter before checking conflicts, so undo can rewind
	// all memberships uniformly.
	conflict := false
	for _, g := range st.memberships[id] {
		count := &st.counts[g]
		count.assigned++
		count.unknown--
		if count.assigned > st.groups[g].bound {
			conflict = true
		}
	}
	if conflict {
		return false
	}

	for _, g := range st.memberships[id] {
		group := st.groups[g]
		count := &st.counts[g]
		if count.assigned == group.bound {
			if !st.forbidUnknowns(group.vars) {
				return false
			}
		} else if group.exact && !st.tighten(group, count) {
			return false
		}
	}
	return true
}

// setFalse fixes a variable false and propagates: an exact group that can
// no longer reach its bound is a conflict, and one that exactly can forces
// its undecided members true.
func (st *searchState) setFalse(id int) bool {
	switch st.value[id] {
	case valueFalse:
		return true
	case valueTrue:
		return false
	}

	st.value[id] = valueFalse
	st.trail = append(st.trail, id)

	for _, g := range st.memberships[id] {
		st.counts[g].unknown--
	}

	for _, g := range st.memberships[id] {
		group := st.groups[g]
		if group.exact && !st.tighten(group, &st.counts[g]) {
			return false
		}
	}
	return true
}

func (st *searchState) tighten(group cardinality, count *groupState) bool {
	if count.assigned+count.unknown < group.bound {
		return false
	}
	if count.assigned+count.unknown == group.bound && count.unknown > 0 {
		return st.forceUnknowns(group.vars)
	}
	return true
}

func (st *searchState) forbidUnknowns(vars []int) bool {
	for _, id := range vars {
		if st.value[id] == valueUnknown && !st.setFalse(id) {
			return false
		}
	}
	return true
}

func (st *searchState) forceUnknowns(vars []int) bool {
	for _, id := range vars {
		if st.value[id] == valueUnknown && !st.setTrue(id) {
			return false
		}
	}
	return true
}

// undo rewinds the trail to a previous length, restoring values and group
// counters.
func (st *searchState) undo(mark int) {
	for len(st.trail) > mark {
		id := st.trail[len(st.trail)-1]
		st.trail = st.trail[:len(st.trail)-1]

		wasTrue := st.value[id] == valueTrue
		st.value[id] = valueUnknown

		for _, g := range st.memberships[id] {
			count := &st.counts[g]
			count.unknown++
			if wasTrue {
				count.assigned--
			}
		}
	}
}

// pickDecision returns the unsatisfied exact group with the fewest
// undecided candidates (most-constrained ordering), or -1 when every exact
// group is satisfied. Ties break on the lower group index so the search
// order is reproducible.
func (st *searchState) pickDecision() int {
	best := -1
	bestUnknown := uint64(math.MaxUint64)
	for _, g := range st.decisions {
		group := st.groups[g]
		count := st.counts[g]
		if count.assigned == group.bound {
			continue
		}
		if count.unknown < bestUnknown {
			best = g
			bestUnknown = count.unknown
		}
	}
	return best
}

// firstUnknown returns the lowest-id undecided member of a group.
func (st *searchState) firstUnknown(g int) int {
	for _, id := range st.groups[g].vars {
		if st.value[id] == valueUnknown {
			return id
		}
	}
	return -1
}

// complete fixes every remaining undecided variable false and extracts the
// true assignment. Called only when all exact groups are satisfied.
func (st *searchState) complete() ([]Variable, bool) {
	mark := len(st.trail)
	for id := range st.value {
		if st.value[id] == valueUnknown && !st.setFalse(id) {
			st.undo(mark)
			return nil, false
		}
	}

	assignment := make([]Variable, 0)
	for id, value := range st.value {
		if value == valueTrue {
			assignment = append(assignment, st.model.variables[id])
		}
	}
	st.undo(mark)
	return assignment, true
}

type searchOutcome uint8

const (
	outcomeExhausted searchOutcome = iota
	outcomeFound
	outcomeTimedOut
)

// incumbent is the best complete solution found so far, shared across
// workers behind a single lock with a compare-and-swap style update.
type incumbent struct {
	mu         sync.Mutex
	assignment []Variable
	score      float64
	found      bool
}

func (inc *incumbent) offer(assignment []Variable, score float64) {
	inc.mu.Lock()
	if !inc.found || score > inc.score {
		inc.assignment = assignment
		inc.score = score
		inc.found = true
	}
	inc.mu.Unlock()
}

func (inc *incumbent) best() ([]Variable, float64, bool) {
	inc.mu.Lock()
	defer inc.mu.Unlock()
	return inc.assignment, inc.score, inc.found
}

// search runs depth-first branch-and-bound from the current state. With a
// scorer it explores exhaustively, recording complete solutions in the
// incumbent; without one it stops at the first complete solution. The
// deadline is checked cooperatively before every branch.
func (st *searchState) search(ctx context.Context, inc *incumbent, scorer Scorer, stop *atomic.Bool) searchOutcome {
	if ctx.Err() != nil {
		return outcomeTimedOut
	}
	if stop != nil && stop.Load() {
		return outcomeFound
	}
	st.nodes.Add(1)

	g := st.pickDecision()
	if g < 0 {
		assignment, ok := st.complete()
		if !ok {
			return outcomeExhausted
		}
		if scorer == nil {
			inc.offer(assignment, 0)
			return outcomeFound
		}
		inc.offer(assignment, scorer(assignment))
		return outcomeExhausted // Keep searching for a better solution
	}

	id := st.firstUnknown(g)
	if id < 0 {
		return outcomeExhausted
	}

	mark := len(st.trail)
	if st.setTrue(id) {
		if outcome := st.search(ctx, inc, scorer, stop); outcome != outcomeExhausted {
			return outcome
		}
	}
	st.undo(mark)
	st.backtracks.Add(1)

	if st.setFalse(id) {
		if outcome := st.search(ctx, inc, scorer, stop); outcome != outcomeExhausted {
			return outcome
		}
	}
	st.undo(mark)

	return outcomeExhausted
}
