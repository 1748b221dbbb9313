package csp

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/limaJavier/classcsp/pkg/model"
	"go.uber.org/zap"
)

type RoomPolicy string

const (
	StrictRooms  RoomPolicy = "strict"  // Courses in course rooms only, seminars in seminar rooms only
	RelaxedRooms RoomPolicy = "relaxed" // Courses in course rooms only, seminars anywhere
)

type PropagationMode string

const (
	MaintainArcConsistency PropagationMode = "ac3"  // AC-3 before the search and after every assignment
	NoPropagation          PropagationMode = "none" // Plain backtracking with pairwise checks
)

var (
	RoomPolicies     = []RoomPolicy{StrictRooms, RelaxedRooms}
	PropagationModes = []PropagationMode{MaintainArcConsistency, NoPropagation}
)

type Options struct {
	RoomPolicy           RoomPolicy
	Propagation          PropagationMode
	MaxNodes             uint64        // 0 for no node budget
	Timeout              time.Duration // 0 for no wall-clock budget
	HoursPerSlot         uint64        // Hours counted against the teacher caps for every class
	DefaultMaxDailyHours uint64        // Daily cap of teachers without max_daily_hours, 0 to fall back to their weekly cap
	Precheck             bool          // Run the capacity precheck before searching
}

func DefaultOptions() Options {
	return Options{
		RoomPolicy:   StrictRooms,
		Propagation:  MaintainArcConsistency,
		HoursPerSlot: 1,
		Precheck:     true,
	}
}

func (options Options) Validate() error {
	if !slices.Contains(RoomPolicies, options.RoomPolicy) {
		return fmt.Errorf("%v is not a valid room policy", options.RoomPolicy)
	} else if !slices.Contains(PropagationModes, options.Propagation) {
		return fmt.Errorf("%v is not a valid propagation mode", options.Propagation)
	} else if options.HoursPerSlot == 0 {
		return fmt.Errorf("hours per slot must be greater than 0")
	}
	return nil
}

type Stats struct {
	Classes    int
	Values     int // Candidate values before any pruning
	Arcs       int // Undirected neighbor edges
	Nodes      uint64
	Backtracks uint64
	Revisions  uint64
	Pruned     uint64
	Duration   time.Duration
}

type Result struct {
	RunId    string
	Classes  []model.Class
	Solution []model.Assignment // Solution[i] is the value of Classes[i]; nil when only checking
	Stats    Stats
}

func (result *Result) Timetable(catalogue *model.Catalogue) model.Timetable {
	return model.BuildTimetable(catalogue, result.Classes, result.Solution)
}

type Solver interface {
	// Solve returns the first complete assignment found, or an *UnsatisfiableError / *NoSolutionError
	Solve(ctx context.Context, catalogue *model.Catalogue) (*Result, error)

	// Check runs every stage but the search
	Check(ctx context.Context, catalogue *model.Catalogue) (*Result, error)
}

type solverStandard struct {
	options Options
	logger  *zap.Logger
	metrics *Metrics
}

// NewSolver builds a solver. logger and metrics may be nil
func NewSolver(options Options, logger *zap.Logger, metrics *Metrics) Solver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &solverStandard{
		options: options,
		logger:  logger,
		metrics: metrics,
	}
}

func (solver *solverStandard) Solve(ctx context.Context, catalogue *model.Catalogue) (*Result, error) {
	return solver.execute(ctx, catalogue, true)
}

func (solver *solverStandard) Check(ctx context.Context, catalogue *model.Catalogue) (*Result, error) {
	return solver.execute(ctx, catalogue, false)
}

func (solver *solverStandard) execute(ctx context.Context, catalogue *model.Catalogue, searching bool) (*Result, error) {
	if err := solver.options.Validate(); err != nil {
		return nil, err
	}
	if solver.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, solver.options.Timeout)
		defer cancel()
	}

	start := time.Now()
	result := &Result{RunId: uuid.NewString()}
	logger := solver.logger.With(zap.String("run_id", result.RunId))

	//** Build problem
	problem := NewProblem(catalogue, solver.options.RoomPolicy)
	result.Classes = problem.Classes
	result.Stats.Classes, result.Stats.Values, result.Stats.Arcs = len(problem.Classes), problem.Domains.Total(), problem.Neighbors.Edges()
	logger.Info("problem built",
		zap.Int("classes", result.Stats.Classes),
		zap.Int("values", result.Stats.Values),
		zap.Int("arcs", result.Stats.Arcs),
		zap.String("room_policy", string(solver.options.RoomPolicy)),
		zap.String("propagation", string(solver.options.Propagation)),
	)

	finish := func(outcome string, err error) (*Result, error) {
		result.Stats.Duration = time.Since(start)
		solver.metrics.observe(outcome, result.Stats)
		logger.Info("solve finished", zap.String("outcome", outcome), zap.Duration("duration", result.Stats.Duration), zap.Error(err))
		if err != nil {
			return nil, err
		}
		return result, nil
	}

	//** Empty domains
	for class := range problem.Classes {
		if problem.Domains.Size(class) == 0 {
			return finish(OutcomeUnsatisfiable, &UnsatisfiableError{
				Stage:       StageDomain,
				Class:       class,
				Description: fmt.Sprintf("no teacher, room and time slot can host the %v", problem.Describe(class)),
			})
		}
	}

	//** Global arc consistency
	propagator := NewPropagator(problem)
	if solver.options.Propagation == MaintainArcConsistency {
		consistent := propagator.Propagate(problem.Domains)
		stats := propagator.Stats()
		result.Stats.Revisions, result.Stats.Pruned = stats.Revisions, stats.Pruned
		logger.Debug("arc consistency reached", zap.Bool("consistent", consistent), zap.Uint64("revisions", stats.Revisions), zap.Uint64("pruned", stats.Pruned))

		if !consistent {
			return finish(OutcomeUnsatisfiable, &UnsatisfiableError{
				Stage:       StagePropagation,
				Class:       stats.Failed,
				Description: fmt.Sprintf("arc consistency leaves no value for the %v", problem.Describe(stats.Failed)),
			})
		}
	}

	//** Capacity precheck
	if solver.options.Precheck {
		if err := capacityPrecheck(problem); err != nil {
			return finish(OutcomeUnsatisfiable, err)
		}
	}

	if !searching {
		return finish(OutcomeChecked, nil)
	}

	//** Search
	search := newSearch(ctx, problem, propagator, solver.options)
	solved := search.run()
	stats := propagator.Stats()
	result.Stats.Nodes, result.Stats.Backtracks = search.nodes, search.backtracks
	result.Stats.Revisions, result.Stats.Pruned = stats.Revisions, stats.Pruned
	logger.Debug("search finished",
		zap.Bool("solved", solved),
		zap.Uint64("nodes", search.nodes),
		zap.Uint64("backtracks", search.backtracks),
		zap.Uint64("revisions", stats.Revisions),
		zap.Uint64("pruned", stats.Pruned),
	)

	if !solved {
		outcome := OutcomeNoSolution
		if search.err != nil {
			outcome = OutcomeBudgetExhausted
		}
		return finish(outcome, &NoSolutionError{
			BudgetExhausted: search.err != nil,
			Nodes:           search.nodes,
			Cause:           search.err,
		})
	}

	result.Solution = search.solution()
	return finish(OutcomeSolved, nil)
}
