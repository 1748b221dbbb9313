package csp

import (
	"testing"

	"github.com/limaJavier/classcsp/pkg/model"
	"github.com/stretchr/testify/require"
)

const catalogueFile = "testdata/catalogue.json"

func loadCatalogue(t *testing.T) *model.Catalogue {
	catalogue, err := model.CatalogueFromFile(catalogueFile)
	require.NoError(t, err)
	return catalogue
}

func buildCatalogue(t *testing.T, raw model.RawCatalogue) *model.Catalogue {
	catalogue, err := model.ProcessRawInput(raw)
	require.NoError(t, err)
	return catalogue
}

// One class, one teacher, one room and one time slot
func trivialCatalogue() model.RawCatalogue {
	return model.RawCatalogue{
		Groups:    []model.RawGroup{{Code: 1, Name: "A"}},
		Subjects:  []model.RawSubject{{Code: 100, Name: "Algebra"}},
		Teachers:  []model.RawTeacher{{Code: 1, Name: "Popescu", SubjectsTaught: []uint64{100}, CanTeachCourse: true, MaxHours: 10}},
		Rooms:     []model.RawRoom{{Code: 1, Name: "C1", CoursePossible: true, PossibleTimes: []uint64{1}}},
		TimeSlots: []model.RawTimeSlot{{Code: 1, Day: "Monday", Hour: "08:00"}},
	}
}

// Groups A and B share one mandatory subject, one teacher, one course room and two time slots
func twoGroupCatalogue() model.RawCatalogue {
	raw := trivialCatalogue()
	raw.Groups = []model.RawGroup{{Code: 1, Name: "A"}, {Code: 2, Name: "B"}}
	raw.Rooms[0].PossibleTimes = []uint64{1, 2}
	raw.TimeSlots = []model.RawTimeSlot{
		{Code: 1, Day: "Monday", Hour: "08:00"},
		{Code: 2, Day: "Monday", Hour: "10:00"},
	}
	return raw
}

// Group A and its sub-group A1 take the course and the seminar of one subject. Slot codes run against time
func courseSeminarCatalogue() model.RawCatalogue {
	return model.RawCatalogue{
		Groups:   []model.RawGroup{{Code: 1, Name: "A"}, {Code: 11, Name: "A1"}},
		Subjects: []model.RawSubject{{Code: 100, Name: "Algebra"}},
		Teachers: []model.RawTeacher{{Code: 1, Name: "Popescu", SubjectsTaught: []uint64{100}, CanTeachCourse: true, MaxHours: 10}},
		Rooms: []model.RawRoom{
			{Code: 1, Name: "C1", CoursePossible: true, PossibleTimes: []uint64{1, 2}},
			{Code: 2, Name: "S1", PossibleTimes: []uint64{1, 2}},
		},
		TimeSlots: []model.RawTimeSlot{
			{Code: 1, Day: "Monday", Hour: "10:00"},
			{Code: 2, Day: "Monday", Hour: "08:00"},
		},
	}
}

func newTestProblem(t *testing.T, raw model.RawCatalogue) *Problem {
	return NewProblem(buildCatalogue(t, raw), StrictRooms)
}
