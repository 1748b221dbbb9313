package model

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Assignment is a CSP value: the teacher, time slot and room given to a class
type Assignment struct {
	Teacher TeacherId
	Slot    SlotId
	Room    RoomId
}

// Entry describes what a teacher does at a time slot. Fields are catalogue codes
type Entry struct {
	Group   uint64      `json:"group"`
	Room    uint64      `json:"room"`
	Subject uint64      `json:"subject"`
	Type    SessionType `json:"type"`
}

// Timetable maps a teacher code to its time slot codes and what is taught at each of them
type Timetable map[uint64]map[uint64]Entry

// BuildTimetable translates a solution (one assignment per class, indexed as classes) into catalogue codes
func BuildTimetable(catalogue *Catalogue, classes []Class, solution []Assignment) Timetable {
	if len(classes) != len(solution) {
		panic(fmt.Sprintf("solution holds %v assignments for %v classes", len(solution), len(classes)))
	}

	timetable := make(Timetable)
	for i, class := range classes {
		assignment := solution[i]
		teacher := catalogue.Teachers[assignment.Teacher].Code
		if _, ok := timetable[teacher]; !ok {
			timetable[teacher] = make(map[uint64]Entry)
		}

		timetable[teacher][catalogue.Slots[assignment.Slot].Code] = Entry{
			Group:   catalogue.Groups[class.Group].Code,
			Room:    catalogue.Rooms[assignment.Room].Code,
			Subject: catalogue.Subjects[class.Subject].Code,
			Type:    class.Type,
		}
	}
	return timetable
}

type Row struct {
	Interval string      `json:"interval"` // "HH-HH+2"
	Subject  string      `json:"subject"`
	Teacher  string      `json:"teacher"`
	Room     string      `json:"room"`
	Type     SessionType `json:"type"`
}

type DaySchedule struct {
	Day  string `json:"day"`
	Rows []Row  `json:"rows"`
}

type GroupSchedule struct {
	Group uint64        `json:"group"`
	Name  string        `json:"name"`
	Days  []DaySchedule `json:"days"`
}

// GroupView regroups a timetable per group and day, the way it is shown to students.
// Courses shared by everyone are shown in every top-level group
func GroupView(catalogue *Catalogue, timetable Timetable) ([]GroupSchedule, error) {
	rows := make(map[GroupId]map[uint64][]Row) // [group][day]

	for _, teacherCode := range timetable.Teachers() {
		schedule := timetable[teacherCode]
		teacherId, err := catalogue.TeacherByCode(teacherCode)
		if err != nil {
			return nil, referencedBy(err, "timetable")
		}
		teacher := catalogue.Teachers[teacherId]

		for slotCode, entry := range schedule {
			row, slot, group, err := catalogue.viewRow(teacher, slotCode, entry)
			if err != nil {
				return nil, err
			}

			groups := []GroupId{group}
			if group == catalogue.Everyone {
				groups = catalogue.TopLevelGroups()
			}
			for _, group := range groups {
				if _, ok := rows[group]; !ok {
					rows[group] = make(map[uint64][]Row)
				}
				rows[group][slot.DayId] = append(rows[group][slot.DayId], row)
			}
		}
	}

	view := make([]GroupSchedule, 0, len(rows))
	for _, group := range catalogue.Groups {
		days, ok := rows[group.Id]
		if !ok {
			continue
		}

		schedule := GroupSchedule{Group: group.Code, Name: group.Name}
		for dayId, day := range catalogue.Days {
			dayRows, ok := days[uint64(dayId)]
			if !ok {
				continue
			}
			slices.SortStableFunc(dayRows, func(a, b Row) int {
				if interval := strings.Compare(a.Interval, b.Interval); interval != 0 {
					return interval
				}
				return strings.Compare(a.Subject, b.Subject)
			})
			schedule.Days = append(schedule.Days, DaySchedule{Day: day, Rows: dayRows})
		}
		view = append(view, schedule)
	}
	return view, nil
}

func (catalogue *Catalogue) viewRow(teacher Teacher, slotCode uint64, entry Entry) (Row, TimeSlot, GroupId, error) {
	referrer := fmt.Sprintf("timetable of teacher %v", teacher.Code)

	slotId, err := catalogue.SlotByCode(slotCode)
	if err != nil {
		return Row{}, TimeSlot{}, 0, referencedBy(err, referrer)
	}
	group, err := catalogue.GroupByCode(entry.Group)
	if err != nil {
		return Row{}, TimeSlot{}, 0, referencedBy(err, referrer)
	}
	room, err := catalogue.RoomByCode(entry.Room)
	if err != nil {
		return Row{}, TimeSlot{}, 0, referencedBy(err, referrer)
	}
	subject, err := catalogue.SubjectByCode(entry.Subject)
	if err != nil {
		return Row{}, TimeSlot{}, 0, referencedBy(err, referrer)
	}

	slot := catalogue.Slots[slotId]
	return Row{
		Interval: Interval(slot.Hour),
		Subject:  catalogue.Subjects[subject].Name,
		Teacher:  teacher.Name,
		Room:     catalogue.Rooms[room].Name,
		Type:     entry.Type,
	}, slot, group, nil
}

// Interval renders a two-hour interval from a "HH:MM" hour (e.g. "08:00" -> "08-10")
func Interval(hour string) string {
	start, err := time.Parse("15:04", hour)
	if err != nil {
		return hour
	}
	return fmt.Sprintf("%02d-%02d", start.Hour(), start.Hour()+2)
}

// Codes of the teachers present in the timetable, sorted
func (timetable Timetable) Teachers() []uint64 {
	teachers := lo.Keys(timetable)
	slices.Sort(teachers)
	return teachers
}
