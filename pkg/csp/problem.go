package csp

import (
	"fmt"

	"github.com/limaJavier/classcsp/pkg/model"
)

// Problem is the CSP derived from a catalogue: one variable per class, its domain and the constraint graph
type Problem struct {
	Catalogue *model.Catalogue
	Classes   []model.Class
	Domains   *Domains
	Neighbors Neighbors
	evaluator predicateEvaluator
}

func NewProblem(catalogue *model.Catalogue, roomPolicy RoomPolicy) *Problem {
	evaluator := newPredicateEvaluator(catalogue, roomPolicy)
	classes := model.BuildClassList(catalogue)
	domains := InitialDomains(catalogue, classes, evaluator)

	return &Problem{
		Catalogue: catalogue,
		Classes:   classes,
		Domains:   domains,
		Neighbors: BuildNeighbors(catalogue, classes, domains, evaluator),
		evaluator: evaluator,
	}
}

// Describe names a class the way a timetable reader would (e.g. "course of Algebra (100) for A (1)")
func (problem *Problem) Describe(class int) string {
	c := problem.Classes[class]
	subject := problem.Catalogue.Subjects[c.Subject]
	group := problem.Catalogue.Groups[c.Group]
	return fmt.Sprintf("%v of %v (%v) for %v (%v)", c.Type, subject.Name, subject.Code, group.Name, group.Code)
}
