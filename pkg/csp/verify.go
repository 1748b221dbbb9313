package csp

import (
	"fmt"

	"github.com/limaJavier/classcsp/pkg/model"
)

// Verify checks a solution against every hard constraint from scratch: static eligibility, pairwise
// consistency, teacher caps and unpreferred slots. Errors wrap ErrInvalidSolution
func Verify(catalogue *model.Catalogue, classes []model.Class, solution []model.Assignment, options Options) error {
	if len(classes) != len(solution) {
		return fmt.Errorf("%w: %v assignments for %v classes", ErrInvalidSolution, len(solution), len(classes))
	}

	evaluator := newPredicateEvaluator(catalogue, options.RoomPolicy)
	state := newSchedulingState(catalogue, options.HoursPerSlot, options.DefaultMaxDailyHours)

	for i, class := range classes {
		value := solution[i]
		if int(value.Teacher) >= len(catalogue.Teachers) || int(value.Slot) >= len(catalogue.Slots) || int(value.Room) >= len(catalogue.Rooms) {
			return fmt.Errorf("%w: class %v has a value outside the catalogue: %+v", ErrInvalidSolution, i, value)
		}
		if !evaluator.Eligible(class, value) {
			return fmt.Errorf("%w: class %v (%+v) cannot statically take %+v", ErrInvalidSolution, i, class, value)
		}

		// Pairwise constraints, course before seminar included
		for j := range i {
			if !evaluator.Consistent(class, value, classes[j], solution[j]) {
				return fmt.Errorf("%w: classes %v and %v conflict", ErrInvalidSolution, j, i)
			}
		}

		// Cumulative constraints
		if violation := state.violation(class, value); violation != "" {
			return fmt.Errorf("%w: class %v: %v", ErrInvalidSolution, i, violation)
		}
		state.Assign(class, value)
	}
	return nil
}
