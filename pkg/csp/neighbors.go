package csp

import (
	"github.com/limaJavier/classcsp/pkg/model"
	"github.com/samber/lo"
)

// Neighbors[i] lists, in increasing order, the classes that can conflict with class i
type Neighbors [][]int

// BuildNeighbors links two classes when their groups share students, their domains share a teacher
// or a room, or they are a course and its seminar. It reads the domains before any pruning
func BuildNeighbors(catalogue *model.Catalogue, classes []model.Class, domains *Domains, evaluator predicateEvaluator) Neighbors {
	teachers := make([][]bool, len(classes)) // [class][teacher]
	rooms := make([][]bool, len(classes))    // [class][room]
	for i := range classes {
		teachers[i] = make([]bool, len(catalogue.Teachers))
		rooms[i] = make([]bool, len(catalogue.Rooms))
		for _, value := range domains.Values(i) {
			teachers[i][value.Teacher] = true
			rooms[i][value.Room] = true
		}
	}

	intersect := func(set1, set2 []bool) bool {
		return lo.SomeBy(lo.Range(len(set1)), func(i int) bool { return set1[i] && set2[i] })
	}

	neighbors := make(Neighbors, len(classes))
	for i := range classes {
		neighbors[i] = make([]int, 0)
	}
	for i := range classes {
		for j := i + 1; j < len(classes); j++ {
			if evaluator.ShareGroup(classes[i], classes[j]) ||
				intersect(teachers[i], teachers[j]) ||
				intersect(rooms[i], rooms[j]) ||
				evaluator.CoursePair(classes[i], classes[j]) {
				neighbors[i] = append(neighbors[i], j)
				neighbors[j] = append(neighbors[j], i)
			}
		}
	}
	return neighbors
}

// Number of undirected edges
func (neighbors Neighbors) Edges() int {
	return lo.SumBy(neighbors, func(adjacent []int) int { return len(adjacent) }) / 2
}
