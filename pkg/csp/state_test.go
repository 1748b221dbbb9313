package csp

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/limaJavier/classcsp/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func copyState(state *schedulingState) schedulingState {
	clone := func(matrix [][]bool) [][]bool {
		result := make([][]bool, len(matrix))
		for i := range matrix {
			result[i] = slices.Clone(matrix[i])
		}
		return result
	}

	dailyHours := make([][]uint64, len(state.dailyHours))
	for i := range state.dailyHours {
		dailyHours[i] = slices.Clone(state.dailyHours[i])
	}

	result := *state
	result.teacherAssistance = clone(state.teacherAssistance)
	result.groupAssistance = clone(state.groupAssistance)
	result.roomAssistance = clone(state.roomAssistance)
	result.weeklyHours = slices.Clone(state.weeklyHours)
	result.dailyHours = dailyHours
	return result
}

func assertInvariantViolation(t *testing.T, f func()) {
	defer func() {
		_, ok := recover().(InvariantViolation)
		assert.True(t, ok, "expected an invariant violation")
	}()
	f()
}

func TestStateAssignRetractAreInverses(t *testing.T) {
	//** Arrange
	problem := NewProblem(loadCatalogue(t), StrictRooms)
	state := newSchedulingState(problem.Catalogue, 1, 0)
	random := rand.New(rand.NewSource(42))

	type booking struct {
		class    model.Class
		value    model.Assignment
		snapshot schedulingState
	}
	stack := make([]booking, 0)

	//** Act & Assert
	for range 5000 {
		if len(stack) > 0 && random.Intn(3) == 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			state.Retract(top.class, top.value)
			require.Equal(t, top.snapshot, copyState(state))
			continue
		}

		class := random.Intn(len(problem.Classes))
		values := problem.Domains.Values(class)
		value := values[random.Intn(len(values))]
		if !state.Allows(problem.Classes[class], value) {
			continue
		}
		snapshot := copyState(state)
		state.Assign(problem.Classes[class], value)
		stack = append(stack, booking{class: problem.Classes[class], value: value, snapshot: snapshot})
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		state.Retract(top.class, top.value)
	}
	assert.True(t, state.Empty())
}

func TestStateViolations(t *testing.T) {
	//** Arrange
	catalogue := loadCatalogue(t)
	// Groups: A=0, B=1, A1=2, A2=3, B1=4. Teachers: Popescu=0, Georgescu=2 (at most 2 daily hours), Stan=3 (unpreferred slots 0 and 1)
	// Slots: 0, 1, 2 on Monday and 3 on Tuesday. Rooms: C1=0, S1=2, S2=3
	seminar := func(group model.GroupId) model.Class {
		return model.Class{Subject: 0, Group: group, Type: model.Seminar}
	}
	course := model.Class{Subject: 0, Group: 0, Type: model.Course}

	testCases := []struct {
		name      string
		booked    []model.Class
		values    []model.Assignment
		class     model.Class
		value     model.Assignment
		violation string
	}{
		{
			name:      "Free cell",
			class:     seminar(2),
			value:     model.Assignment{Teacher: 2, Slot: 0, Room: 2},
			violation: "",
		},
		{
			name:      "Teacher busy",
			booked:    []model.Class{seminar(2)},
			values:    []model.Assignment{{Teacher: 2, Slot: 0, Room: 2}},
			class:     seminar(4),
			value:     model.Assignment{Teacher: 2, Slot: 0, Room: 3},
			violation: "teacher is already teaching at the time slot",
		},
		{
			name:      "Room busy",
			booked:    []model.Class{seminar(2)},
			values:    []model.Assignment{{Teacher: 2, Slot: 0, Room: 2}},
			class:     seminar(4),
			value:     model.Assignment{Teacher: 0, Slot: 0, Room: 2},
			violation: "room is already booked at the time slot",
		},
		{
			name:      "Parent group busy",
			booked:    []model.Class{course},
			values:    []model.Assignment{{Teacher: 0, Slot: 0, Room: 0}},
			class:     seminar(2),
			value:     model.Assignment{Teacher: 2, Slot: 0, Room: 2},
			violation: "a group sharing students is already scheduled at the time slot",
		},
		{
			name:      "Sibling group busy",
			booked:    []model.Class{seminar(2)},
			values:    []model.Assignment{{Teacher: 2, Slot: 0, Room: 2}},
			class:     seminar(3),
			value:     model.Assignment{Teacher: 0, Slot: 0, Room: 3},
			violation: "",
		},
		{
			name:      "Unpreferred slot",
			class:     seminar(2),
			value:     model.Assignment{Teacher: 3, Slot: 1, Room: 2},
			violation: "time slot is unpreferred by the teacher",
		},
		{
			name:      "Daily cap",
			booked:    []model.Class{seminar(2), seminar(3)},
			values:    []model.Assignment{{Teacher: 2, Slot: 0, Room: 2}, {Teacher: 2, Slot: 1, Room: 2}},
			class:     seminar(4),
			value:     model.Assignment{Teacher: 2, Slot: 2, Room: 2},
			violation: "teacher exceeds the daily hours",
		},
		{
			name:      "Daily cap on another day",
			booked:    []model.Class{seminar(2), seminar(3)},
			values:    []model.Assignment{{Teacher: 2, Slot: 0, Room: 2}, {Teacher: 2, Slot: 1, Room: 2}},
			class:     seminar(4),
			value:     model.Assignment{Teacher: 2, Slot: 3, Room: 2},
			violation: "",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			state := newSchedulingState(catalogue, 1, 0)
			for i, class := range testCase.booked {
				state.Assign(class, testCase.values[i])
			}

			//** Act
			violation := state.violation(testCase.class, testCase.value)

			//** Assert
			assert.Equal(t, testCase.violation, violation)
			assert.Equal(t, testCase.violation == "", state.Allows(testCase.class, testCase.value))
		})
	}
}

func TestStateWeeklyCap(t *testing.T) {
	//** Arrange
	catalogue := loadCatalogue(t)
	state := newSchedulingState(catalogue, 5, 0) // Popescu teaches at most 10 hours a week
	course := func(group model.GroupId) model.Class {
		return model.Class{Subject: 0, Group: group, Type: model.Course}
	}

	//** Act
	state.Assign(course(0), model.Assignment{Teacher: 0, Slot: 0, Room: 0})
	state.Assign(course(1), model.Assignment{Teacher: 0, Slot: 3, Room: 0})
	violation := state.violation(course(0), model.Assignment{Teacher: 0, Slot: 6, Room: 0})

	//** Assert
	assert.Equal(t, "teacher exceeds the weekly hours", violation)
}

func TestStateDefaultDailyCap(t *testing.T) {
	//** Arrange
	catalogue := loadCatalogue(t)
	state := newSchedulingState(catalogue, 1, 1)
	course := model.Class{Subject: 0, Group: 0, Type: model.Course}

	//** Act
	state.Assign(course, model.Assignment{Teacher: 0, Slot: 0, Room: 0})
	popescu := state.violation(model.Class{Subject: 0, Group: 1, Type: model.Course}, model.Assignment{Teacher: 0, Slot: 1, Room: 0})
	georgescu := state.maxDailyHours(2)

	//** Assert
	assert.Equal(t, "teacher exceeds the daily hours", popescu)
	assert.Equal(t, uint64(2), georgescu) // Explicit caps win over the default
}

func TestStateMisuse(t *testing.T) {
	//** Arrange
	catalogue := loadCatalogue(t)
	state := newSchedulingState(catalogue, 1, 0)
	course := model.Class{Subject: 0, Group: 0, Type: model.Course}
	value := model.Assignment{Teacher: 0, Slot: 0, Room: 0}

	//** Act & Assert
	assertInvariantViolation(t, func() { state.Retract(course, value) })

	state.Assign(course, value)
	assertInvariantViolation(t, func() { state.Assign(course, value) })

	state.Retract(course, value)
	assert.True(t, state.Empty())
}
