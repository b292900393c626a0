package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"timegrid/internal/catalog"
)

// Status is the solver state machine:
// Idle -> Propagating -> Searching -> {Solved, Infeasible, TimedOut}.
type Status uint8

const (
	Idle Status = iota
	Propagating
	Searching
	Solved
	Infeasible
	TimedOut
)

var statusNames = map[Status]string{
	Idle:        "idle",
	Propagating: "propagating",
	Searching:   "searching",
	Solved:      "solved",
	Infeasible:  "infeasible",
	TimedOut:    "timed-out",
}

func (s Status) String() string {
	return statusNames[s]
}

// Scorer evaluates a complete assignment; higher is better. When supplied,
// the solver searches exhaustively and returns the best-scoring solution;
// the default is first feasible found.
type Scorer func(assignment []Variable) float64

// PreferenceScorer builds a scorer from the catalog's teacher day
// preferences, rewarding assignments on preferred days.
func PreferenceScorer(cat *catalog.Catalog) Scorer {
	return func(assignment []Variable) float64 {
		total := int64(0)
		for _, variable := range assignment {
			total += cat.DayPreference(variable.Section.Teacher, variable.Slot.Day)
		}
		return float64(total)
	}
}

// Options configure one solve run.
type Options struct {
	TimeLimit time.Duration
	Workers   int
	Scorer    Scorer
}

// Stats counts search effort.
type Stats struct {
	Nodes      uint64
	Backtracks uint64
	Duration   time.Duration
}

// Result is the outcome of a solve. Infeasible and TimedOut are normal
// results, not errors; a TimedOut result carries the best incumbent found,
// if any, and is never reported as Solved. TimedOut means a deadline
// expired, caller cancellation surfaces as an error instead.
type Result struct {
	RunID      string
	Status     Status
	Assignment []Variable
	Score      float64
	Stats      Stats
}

// Solver runs constraint propagation and branch-and-bound search over a
// variable model constrained by a library.
type Solver struct {
	library *Library
	logger  *zap.Logger
	status  atomic.Uint32
}

// NewSolver creates a solver over the given library.
func NewSolver(library *Library, logger *zap.Logger) *Solver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Solver{library: library, logger: logger}
}

// Status reports the current state of the solver, safe for concurrent reads.
func (s *Solver) Status() Status {
	return Status(s.status.Load())
}

func (s *Solver) transition(status Status) {
	s.status.Store(uint32(status))
}

// Solve applies the library (unless the model is already sealed), propagates
// and searches. The time limit is enforced by cooperative deadline checks at
// branching points; on expiry the best incumbent found so far is returned
// with a TimedOut status. A cancelled context aborts the run with an error.
func (s *Solver) Solve(ctx context.Context, m *Model, opts Options) (Result, error) {
	runID := uuid.NewString()
	started := time.Now()
	logger := s.logger.With(zap.String("run", runID))

	result := Result{RunID: runID, Status: Idle}

	s.transition(Propagating)
	if !m.Sealed() {
		s.library.Seal()
		restrictions, err := s.library.ApplyAll(m, m.Catalog(), m.Grid())
		if err != nil {
			s.transition(Idle)
			return result, fmt.Errorf("cannot apply constraint library: %w", err)
		}
		m.Seal()
		logger.Info("restrictions posted", zap.Int("count", restrictions))
	}

	if opts.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, started.Add(opts.TimeLimit))
		defer cancel()
	}

	var nodes, backtracks atomic.Uint64
	root := newSearchState(m, &nodes, &backtracks)

	finish := func(status Status, assignment []Variable, score float64) (Result, error) {
		s.transition(status)
		result.Status = status
		result.Assignment = assignment
		result.Score = score
		result.Stats = Stats{
			Nodes:      nodes.Load(),
			Backtracks: backtracks.Load(),
			Duration:   time.Since(started),
		}
		logger.Info("solve finished",
			zap.Stringer("status", status),
			zap.Uint64("nodes", result.Stats.Nodes),
			zap.Uint64("backtracks", result.Stats.Backtracks),
			zap.Duration("duration", result.Stats.Duration))
		return result, nil
	}

	if !capacityFeasible(m) {
		logger.Info("capacity deficit detected, skipping search")
		return finish(Infeasible, nil, 0)
	}

	if !root.propagate() {
		return finish(Infeasible, nil, 0)
	}

	s.transition(Searching)
	inc := &incumbent{}

	var outcome searchOutcome
	if opts.Workers > 1 {
		outcome = s.searchParallel(ctx, root, inc, opts)
	} else {
		outcome = root.search(ctx, inc, opts.Scorer, nil)
	}

	assignment, score, found := inc.best()
	switch {
	case outcome == outcomeTimedOut && errors.Is(ctx.Err(), context.Canceled):
		s.transition(Idle)
		logger.Info("solve cancelled", zap.Uint64("nodes", nodes.Load()))
		return result, fmt.Errorf("solve cancelled: %w", ctx.Err())
	case outcome == outcomeTimedOut:
		return finish(TimedOut, assignment, score)
	case found:
		return finish(Solved, assignment, score)
	default:
		return finish(Infeasible, nil, 0)
	}
}

// searchParallel splits the root decision into disjoint branches and hands
// them to workers. Workers share the model and library read-only; the only
// shared mutable state is the incumbent and the stop flag.
func (s *Solver) searchParallel(ctx context.Context, root *searchState, inc *incumbent, opts Options) searchOutcome {
	g := root.pickDecision()
	if g < 0 {
		return root.search(ctx, inc, opts.Scorer, nil)
	}

	// Branch b fixes the first b candidates false and, unless it is the
	// all-false branch, the next candidate true. Branches are disjoint and
	// cover the whole subtree.
	candidates := make([]int, 0)
	for _, id := range root.groups[g].vars {
		if root.value[id] == valueUnknown {
			candidates = append(candidates, id)
		}
	}

	branches := make(chan int)
	go func() {
		for b := 0; b <= len(candidates); b++ {
			branches <- b
		}
		close(branches)
	}()

	var stop atomic.Bool
	var timedOut atomic.Bool
	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range branches {
				if stop.Load() || workerCtx.Err() != nil {
					continue
				}

				st := root.clone()
				feasible := true
				for i := 0; i < b && feasible; i++ {
					feasible = st.setFalse(candidates[i])
				}
				if feasible && b < len(candidates) {
					feasible = st.setTrue(candidates[b])
				}
				if !feasible {
					continue
				}

				switch st.search(workerCtx, inc, opts.Scorer, &stop) {
				case outcomeFound:
					stop.Store(true)
					cancel()
				case outcomeTimedOut:
					timedOut.Store(true)
				}
			}
		}()
	}
	wg.Wait()

	// A cancel triggered by a found solution is not a timeout.
	if stop.Load() {
		return outcomeFound
	}
	if timedOut.Load() || ctx.Err() != nil {
		return outcomeTimedOut
	}
	return outcomeExhausted
}
