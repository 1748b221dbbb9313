package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTimetable(t *testing.T) {
	//** Arrange
	catalogue, err := CatalogueFromFile(catalogueFile)
	require.NoError(t, err)
	classes := []Class{
		{Subject: 0, Group: 0, Type: Course},
		{Subject: 0, Group: 2, Type: Seminar},
	}
	solution := []Assignment{
		{Teacher: 0, Slot: 0, Room: 0},
		{Teacher: 1, Slot: 1, Room: 1},
	}

	//** Act
	timetable := BuildTimetable(catalogue, classes, solution)

	//** Assert
	assert.Equal(t, Timetable{
		1: {1: {Group: 1, Room: 1, Subject: 100, Type: Course}},
		2: {2: {Group: 11, Room: 2, Subject: 100, Type: Seminar}},
	}, timetable)
	assert.Equal(t, []uint64{1, 2}, timetable.Teachers())
	assert.Panics(t, func() { BuildTimetable(catalogue, classes, solution[:1]) })
}

func TestGroupView(t *testing.T) {
	//** Arrange
	catalogue, err := CatalogueFromFile(catalogueFile)
	require.NoError(t, err)
	timetable := Timetable{
		1: {
			2: {Group: 1, Room: 1, Subject: 100, Type: Course},
			1: {Group: EveryoneCode, Room: 1, Subject: 101, Type: Course},
		},
		2: {
			4: {Group: 11, Room: 2, Subject: 100, Type: Seminar},
		},
	}

	//** Act
	view, err := GroupView(catalogue, timetable)

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, []GroupSchedule{
		{
			Group: 1,
			Name:  "A",
			Days: []DaySchedule{
				{Day: "Monday", Rows: []Row{
					{Interval: "08-10", Subject: "Logic", Teacher: "Popescu", Room: "C1", Type: Course},
					{Interval: "10-12", Subject: "Algebra", Teacher: "Popescu", Room: "C1", Type: Course},
				}},
			},
		},
		{
			Group: 2,
			Name:  "B",
			Days: []DaySchedule{
				{Day: "Monday", Rows: []Row{
					{Interval: "08-10", Subject: "Logic", Teacher: "Popescu", Room: "C1", Type: Course},
				}},
			},
		},
		{
			Group: 11,
			Name:  "A1",
			Days: []DaySchedule{
				{Day: "Tuesday", Rows: []Row{
					{Interval: "08-10", Subject: "Algebra", Teacher: "Ionescu", Room: "S1", Type: Seminar},
				}},
			},
		},
	}, view)
}

func TestGroupViewUnknownCode(t *testing.T) {
	//** Arrange
	catalogue, err := CatalogueFromFile(catalogueFile)
	require.NoError(t, err)
	timetable := Timetable{1: {1: {Group: 1, Room: 9, Subject: 100, Type: Course}}}

	//** Act
	_, err = GroupView(catalogue, timetable)

	//** Assert
	var catalogueErr *CatalogueError
	require.True(t, errors.As(err, &catalogueErr))
	assert.Equal(t, "room", catalogueErr.Entity)
	assert.Equal(t, "timetable of teacher 1", catalogueErr.Referrer)
}

func TestInterval(t *testing.T) {
	assert.Equal(t, "08-10", Interval("08:00"))
	assert.Equal(t, "14-16", Interval("14:30"))
	assert.Equal(t, "22-24", Interval("22:00"))
	assert.Equal(t, "noon", Interval("noon"))
}
