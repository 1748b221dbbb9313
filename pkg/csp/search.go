package csp

import (
	"context"

	"github.com/limaJavier/classcsp/pkg/model"
)

// Interval, in nodes, between two context checks
const contextCheckInterval = 256

type search struct {
	ctx        context.Context
	problem    *Problem
	domains    *Domains
	propagator Propagator
	state      *schedulingState
	options    Options

	assignment []model.Assignment
	assigned   []bool
	nodes      uint64
	backtracks uint64
	err        error // Budget exhaustion cause, stops the search once set
}

func newSearch(ctx context.Context, problem *Problem, propagator Propagator, options Options) *search {
	return &search{
		ctx:        ctx,
		problem:    problem,
		domains:    problem.Domains,
		propagator: propagator,
		state:      newSchedulingState(problem.Catalogue, options.HoursPerSlot, options.DefaultMaxDailyHours),
		options:    options,
		assignment: make([]model.Assignment, len(problem.Classes)),
		assigned:   make([]bool, len(problem.Classes)),
	}
}

// run looks for the first complete assignment. On failure every booking has been undone
func (search *search) run() bool {
	if search.backtrack(0) {
		return true
	}
	if !search.state.Empty() {
		panic(InvariantViolation{Message: "scheduling state is not empty after the search unwound"})
	}
	return false
}

func (search *search) backtrack(depth int) bool {
	if depth == len(search.problem.Classes) {
		return true
	}

	variable := search.selectUnassigned()
	class := search.problem.Classes[variable]

	// Copy-on-write domains: this slice stays valid while deeper levels replace the class's values
	for _, value := range search.domains.Values(variable) {
		if search.exhausted() {
			return false
		}
		if !search.state.Allows(class, value) || !search.consistentWithAssigned(variable, value) {
			continue
		}

		search.nodes++
		search.state.Assign(class, value)
		search.assignment[variable], search.assigned[variable] = value, true
		snapshot := search.domains.Snapshot()

		consistent := true
		if search.options.Propagation == MaintainArcConsistency {
			search.domains.Replace(variable, []model.Assignment{value})
			consistent = search.propagator.PropagateFrom(search.domains, variable)
		}
		if consistent && search.backtrack(depth+1) {
			return true
		}

		search.domains.Restore(snapshot)
		search.assigned[variable] = false
		search.state.Retract(class, value)
		search.backtracks++
	}
	return false
}

// MRV: the unassigned class with the fewest values, ties broken by index
func (search *search) selectUnassigned() int {
	selected := -1
	for variable := range search.problem.Classes {
		if search.assigned[variable] {
			continue
		}
		if selected < 0 || search.domains.Size(variable) < search.domains.Size(selected) {
			selected = variable
		}
	}
	return selected
}

// Without propagation values are checked against the assigned neighbors. With it the domains already guarantee it
func (search *search) consistentWithAssigned(variable int, value model.Assignment) bool {
	if search.options.Propagation == MaintainArcConsistency {
		return true
	}

	class := search.problem.Classes[variable]
	for _, neighbor := range search.problem.Neighbors[variable] {
		if search.assigned[neighbor] &&
			!search.problem.evaluator.Consistent(class, value, search.problem.Classes[neighbor], search.assignment[neighbor]) {
			return false
		}
	}
	return true
}

func (search *search) exhausted() bool {
	if search.err != nil {
		return true
	}
	if search.options.MaxNodes > 0 && search.nodes >= search.options.MaxNodes {
		search.err = ErrNodeBudget
	} else if search.nodes%contextCheckInterval == 0 {
		search.err = search.ctx.Err()
	}
	return search.err != nil
}

func (search *search) solution() []model.Assignment {
	solution := make([]model.Assignment, len(search.assignment))
	copy(solution, search.assignment)
	return solution
}
