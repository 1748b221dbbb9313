package csp

import (
	"fmt"

	"github.com/limaJavier/classcsp/pkg/model"
)

// schedulingState records what is booked during the search. assign and retract are exact inverses
type schedulingState struct {
	catalogue            *model.Catalogue
	hoursPerSlot         uint64
	defaultMaxDailyHours uint64

	teacherAssistance [][]bool   // [teacher][slot]
	groupAssistance   [][]bool   // [group][slot]
	roomAssistance    [][]bool   // [room][slot]
	weeklyHours       []uint64   // [teacher]
	dailyHours        [][]uint64 // [teacher][day]
	assigned          int
}

func newSchedulingState(catalogue *model.Catalogue, hoursPerSlot, defaultMaxDailyHours uint64) *schedulingState {
	slots, days := len(catalogue.Slots), len(catalogue.Days)
	matrix := func(rows, columns int) [][]bool {
		result := make([][]bool, rows)
		for i := range result {
			result[i] = make([]bool, columns)
		}
		return result
	}

	dailyHours := make([][]uint64, len(catalogue.Teachers))
	for i := range dailyHours {
		dailyHours[i] = make([]uint64, days)
	}

	return &schedulingState{
		catalogue:            catalogue,
		hoursPerSlot:         hoursPerSlot,
		defaultMaxDailyHours: defaultMaxDailyHours,
		teacherAssistance:    matrix(len(catalogue.Teachers), slots),
		groupAssistance:      matrix(len(catalogue.Groups), slots),
		roomAssistance:       matrix(len(catalogue.Rooms), slots),
		weeklyHours:          make([]uint64, len(catalogue.Teachers)),
		dailyHours:           dailyHours,
	}
}

// Allows checks whether the value can be committed for the class given what is already booked
func (state *schedulingState) Allows(class model.Class, value model.Assignment) bool {
	return state.violation(class, value) == ""
}

// Returns the reason the value cannot be committed, or "" if it can
func (state *schedulingState) violation(class model.Class, value model.Assignment) string {
	teacher, slot := value.Teacher, value.Slot
	day := state.catalogue.Slots[slot].DayId

	switch {
	case state.teacherAssistance[teacher][slot]:
		return "teacher is already teaching at the time slot"
	case state.roomAssistance[value.Room][slot]:
		return "room is already booked at the time slot"
	case state.collide(class.Group, slot):
		return "a group sharing students is already scheduled at the time slot"
	case state.catalogue.Unpreferred(teacher, slot):
		return "time slot is unpreferred by the teacher"
	case state.weeklyHours[teacher]+state.hoursPerSlot > state.catalogue.Teachers[teacher].MaxHours:
		return "teacher exceeds the weekly hours"
	case state.dailyHours[teacher][day]+state.hoursPerSlot > state.maxDailyHours(teacher):
		return "teacher exceeds the daily hours"
	}
	return ""
}

func (state *schedulingState) Assign(class model.Class, value model.Assignment) {
	teacher, slot, room := value.Teacher, value.Slot, value.Room
	if state.teacherAssistance[teacher][slot] || state.roomAssistance[room][slot] || state.groupAssistance[class.Group][slot] {
		panic(InvariantViolation{Message: fmt.Sprintf("assigning %+v to %+v over a booked cell", value, class)})
	}

	state.teacherAssistance[teacher][slot] = true
	state.groupAssistance[class.Group][slot] = true
	state.roomAssistance[room][slot] = true
	state.weeklyHours[teacher] += state.hoursPerSlot
	state.dailyHours[teacher][state.catalogue.Slots[slot].DayId] += state.hoursPerSlot
	state.assigned++
}

func (state *schedulingState) Retract(class model.Class, value model.Assignment) {
	teacher, slot, room := value.Teacher, value.Slot, value.Room
	day := state.catalogue.Slots[slot].DayId
	if !state.teacherAssistance[teacher][slot] || !state.roomAssistance[room][slot] || !state.groupAssistance[class.Group][slot] ||
		state.weeklyHours[teacher] < state.hoursPerSlot || state.dailyHours[teacher][day] < state.hoursPerSlot || state.assigned == 0 {
		panic(InvariantViolation{Message: fmt.Sprintf("retracting %+v from %+v, which was not assigned", value, class)})
	}

	state.teacherAssistance[teacher][slot] = false
	state.groupAssistance[class.Group][slot] = false
	state.roomAssistance[room][slot] = false
	state.weeklyHours[teacher] -= state.hoursPerSlot
	state.dailyHours[teacher][day] -= state.hoursPerSlot
	state.assigned--
}

// Empty checks whether nothing is booked
func (state *schedulingState) Empty() bool {
	if state.assigned != 0 {
		return false
	}
	for teacher := range state.weeklyHours {
		if state.weeklyHours[teacher] != 0 {
			return false
		}
		for _, hours := range state.dailyHours[teacher] {
			if hours != 0 {
				return false
			}
		}
	}
	for _, assistance := range [][][]bool{state.teacherAssistance, state.groupAssistance, state.roomAssistance} {
		for _, row := range assistance {
			for _, booked := range row {
				if booked {
					return false
				}
			}
		}
	}
	return true
}

func (state *schedulingState) maxDailyHours(teacher model.TeacherId) uint64 {
	if hours, ok := state.catalogue.MaxDailyHours(teacher); ok {
		return hours
	}
	if state.defaultMaxDailyHours > 0 {
		return state.defaultMaxDailyHours
	}
	return state.catalogue.Teachers[teacher].MaxHours
}

// Checks whether a group sharing students with the given one is scheduled at the time slot
func (state *schedulingState) collide(group model.GroupId, slot model.SlotId) bool {
	for neighborGroup, notDisjoint := range state.catalogue.GroupsGraph[group] {
		if notDisjoint && state.groupAssistance[neighborGroup][slot] {
			return true
		}
	}
	return false
}
