package csp

import (
	"slices"

	"github.com/limaJavier/classcsp/pkg/model"
	"github.com/samber/lo"
)

type domainChange struct {
	class  int
	values []model.Assignment // Values held before the change
}

// Domains holds the candidate values of every class. Value slices are never modified in place:
// a change swaps the class's slice and records the previous one on the trail, so unchanged
// entries stay shared and Restore reverts exactly what changed since a snapshot
type Domains struct {
	values [][]model.Assignment
	trail  []domainChange
}

func newDomains(values [][]model.Assignment) *Domains {
	return &Domains{
		values: values,
		trail:  make([]domainChange, 0, 1024),
	}
}

// InitialDomains computes, for every class, all the values that satisfy its static constraints
func InitialDomains(catalogue *model.Catalogue, classes []model.Class, evaluator predicateEvaluator) *Domains {
	values := make([][]model.Assignment, len(classes))
	for i, class := range classes {
		values[i] = make([]model.Assignment, 0)

		teachers := lo.Filter(catalogue.Teachers, func(teacher model.Teacher, _ int) bool {
			return catalogue.Teaches(teacher.Id, class.Subject) && (class.Type != model.Course || teacher.CanTeachCourse)
		})
		rooms := lo.Filter(catalogue.Rooms, func(room model.Room, _ int) bool {
			return evaluator.RoomFits(room.Id, class.Type)
		})

		for _, teacher := range teachers {
			for _, slot := range catalogue.Slots {
				for _, room := range rooms {
					if catalogue.Available(room.Id, slot.Id) {
						values[i] = append(values[i], model.Assignment{Teacher: teacher.Id, Slot: slot.Id, Room: room.Id})
					}
				}
			}
		}
	}
	return newDomains(values)
}

// Number of classes
func (domains *Domains) Len() int {
	return len(domains.values)
}

func (domains *Domains) Size(class int) int {
	return len(domains.values[class])
}

// Values returns the current values of the class. The slice must not be modified
func (domains *Domains) Values(class int) []model.Assignment {
	return domains.values[class]
}

func (domains *Domains) Contains(class int, value model.Assignment) bool {
	return slices.Contains(domains.values[class], value)
}

// Total number of candidate values
func (domains *Domains) Total() int {
	return lo.SumBy(domains.values, func(values []model.Assignment) int { return len(values) })
}

// Replace swaps the values of the class, recording the previous ones on the trail
func (domains *Domains) Replace(class int, values []model.Assignment) {
	domains.trail = append(domains.trail, domainChange{class: class, values: domains.values[class]})
	domains.values[class] = values
}

// Snapshot returns the current trail size, to be handed to Restore
func (domains *Domains) Snapshot() int {
	return len(domains.trail)
}

// Restore reverts every change made since the snapshot
func (domains *Domains) Restore(snapshot int) {
	for i := len(domains.trail) - 1; i >= snapshot; i-- {
		change := domains.trail[i]
		domains.values[change.class] = change.values
	}
	domains.trail = domains.trail[:snapshot]
}

// Clone returns an independent copy of the current values with an empty trail
func (domains *Domains) Clone() *Domains {
	return newDomains(lo.Map(domains.values, func(values []model.Assignment, _ int) []model.Assignment {
		return slices.Clone(values)
	}))
}
