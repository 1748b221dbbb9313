package csp

import (
	"fmt"

	"github.com/limaJavier/classcsp/pkg/model"
	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

type cell [2]uint64 // (room or teacher, slot)

// capacityPrecheck proves infeasibility when the classes cannot all get distinct room slots, or distinct
// teacher slots, from their current domains. Both are necessary conditions, so it never rejects a solvable problem
func capacityPrecheck(problem *Problem) error {
	resources := []struct {
		name string
		cell func(value model.Assignment) cell
	}{
		{"room", func(value model.Assignment) cell { return cell{uint64(value.Room), uint64(value.Slot)} }},
		{"teacher", func(value model.Assignment) cell { return cell{uint64(value.Teacher), uint64(value.Slot)} }},
	}

	for _, resource := range resources {
		matched, unmatched, err := matchClasses(problem, resource.cell)
		if err != nil {
			return err
		}
		if matched < len(problem.Classes) {
			return &UnsatisfiableError{
				Stage: StageCapacity,
				Class: unmatched,
				Description: fmt.Sprintf("only %v of %v classes can get a distinct %v and time slot (e.g. the %v is left out)",
					matched, len(problem.Classes), resource.name, problem.Describe(unmatched)),
			}
		}
	}
	return nil
}

// Computes a maximum matching between classes and the cells of their values. Returns its size and a class left out of it
func matchClasses(problem *Problem, cellOf func(model.Assignment) cell) (int, int, error) {
	//** Collect cells per class
	relationships := make([]map[cell]bool, len(problem.Classes))
	cells := make([]cell, 0)
	seen := make(map[cell]bool)
	for class := range problem.Classes {
		relationships[class] = make(map[cell]bool)
		for _, value := range problem.Domains.Values(class) {
			c := cellOf(value)
			relationships[class][c] = true
			if !seen[c] {
				seen[c] = true
				cells = append(cells, c)
			}
		}
	}

	// Build neighbors predicate based on relationships
	neighbours := func(classAny any, cellAny any) (bool, error) {
		return relationships[classAny.(int)][cellAny.(cell)], nil
	}

	// Transform classes and cells to slices of any
	classesAny := lo.Map(problem.Classes, func(_ model.Class, class int) any { return class })
	cellsAny := lo.Map(cells, func(c cell, _ int) any { return c })

	graph, err := bipartitegraph.NewBipartiteGraph(classesAny, cellsAny, neighbours)
	if err != nil {
		return 0, -1, err
	}
	matching := graph.LargestMatching()

	matched := make([]bool, len(problem.Classes))
	for _, edge := range matching {
		matched[edge.Node1] = true
	}
	unmatched := lo.IndexOf(matched, false)
	return len(matching), unmatched, nil
}
