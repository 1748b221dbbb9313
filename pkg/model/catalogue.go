package model

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samber/lo"
)

type (
	GroupId   uint64
	SubjectId uint64
	TeacherId uint64
	RoomId    uint64
	SlotId    uint64
)

// NoGroup marks the absence of a parent group
const NoGroup GroupId = math.MaxUint64

// EveryoneCode is the group code standing for all top-level groups at once
const EveryoneCode uint64 = 0

var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

type Group struct {
	Id     GroupId
	Code   uint64
	Name   string
	Parent GroupId // NoGroup for top-level groups and for the everyone group
}

// Top-level groups are the ones whose name is a single character (e.g. "A")
func (group Group) TopLevel() bool {
	return group.Code != EveryoneCode && utf8.RuneCountInString(group.Name) == 1
}

type Subject struct {
	Id       SubjectId
	Code     uint64
	Name     string
	Optional bool
}

type Teacher struct {
	Id             TeacherId
	Code           uint64
	Name           string
	Subjects       []SubjectId
	CanTeachCourse bool
	MaxHours       uint64
}

type Room struct {
	Id             RoomId
	Code           uint64
	Name           string
	CoursePossible bool
	Slots          []SlotId
}

type TimeSlot struct {
	Id      SlotId
	Code    uint64
	Day     string
	Hour    string // "HH:MM"
	DayId   uint64 // Dense index over the catalogue's days
	Ordinal uint64 // Position of the slot in the week (day order, then hour)
}

// ExtraRestrictions holds the soft overrides edited outside the solver. Keys and values are catalogue codes
type ExtraRestrictions struct {
	UnpreferredTimeslots map[uint64][]uint64 `mapstructure:"unpreferred_timeslots" json:"unpreferred_timeslots" yaml:"unpreferred_timeslots"`
	MaxDailyHours        map[uint64]uint64   `mapstructure:"max_daily_hours" json:"max_daily_hours" yaml:"max_daily_hours"`
}

// Catalogue is the immutable set of lookup tables consumed by the solver. It may be shared by reference across solves
type Catalogue struct {
	Groups   []Group
	Subjects []Subject
	Teachers []Teacher
	Rooms    []Room
	Slots    []TimeSlot
	Days     []string
	Extra    ExtraRestrictions
	Everyone GroupId
	// GroupsGraph[i][j] = true if and only if group_i and group_j share students (equal groups, parent and sub-group, or any group and the everyone group)
	GroupsGraph [][]bool

	groupCodes   map[uint64]GroupId
	subjectCodes map[uint64]SubjectId
	teacherCodes map[uint64]TeacherId
	roomCodes    map[uint64]RoomId
	slotCodes    map[uint64]SlotId

	teaches       [][]bool // [teacher][subject]
	available     [][]bool // [room][slot]
	unpreferred   [][]bool // [teacher][slot]
	maxDailyHours []uint64 // [teacher], 0 when not restricted
}

func (catalogue *Catalogue) GroupByCode(code uint64) (GroupId, error) {
	if id, ok := catalogue.groupCodes[code]; ok {
		return id, nil
	}
	return 0, &CatalogueError{Entity: "group", Code: code}
}

func (catalogue *Catalogue) SubjectByCode(code uint64) (SubjectId, error) {
	if id, ok := catalogue.subjectCodes[code]; ok {
		return id, nil
	}
	return 0, &CatalogueError{Entity: "subject", Code: code}
}

func (catalogue *Catalogue) TeacherByCode(code uint64) (TeacherId, error) {
	if id, ok := catalogue.teacherCodes[code]; ok {
		return id, nil
	}
	return 0, &CatalogueError{Entity: "teacher", Code: code}
}

func (catalogue *Catalogue) RoomByCode(code uint64) (RoomId, error) {
	if id, ok := catalogue.roomCodes[code]; ok {
		return id, nil
	}
	return 0, &CatalogueError{Entity: "room", Code: code}
}

func (catalogue *Catalogue) SlotByCode(code uint64) (SlotId, error) {
	if id, ok := catalogue.slotCodes[code]; ok {
		return id, nil
	}
	return 0, &CatalogueError{Entity: "time slot", Code: code}
}

// Checks whether group1 and group2 share students
func (catalogue *Catalogue) Overlap(group1, group2 GroupId) bool {
	return catalogue.GroupsGraph[group1][group2]
}

// Checks whether the teacher teaches the subject
func (catalogue *Catalogue) Teaches(teacher TeacherId, subject SubjectId) bool {
	return catalogue.teaches[teacher][subject]
}

// Checks whether the room is available at the time slot
func (catalogue *Catalogue) Available(room RoomId, slot SlotId) bool {
	return catalogue.available[room][slot]
}

// Checks whether the time slot was listed as unpreferred for the teacher
func (catalogue *Catalogue) Unpreferred(teacher TeacherId, slot SlotId) bool {
	return catalogue.unpreferred[teacher][slot]
}

// Returns the teacher's daily cap from the extra restrictions, if any
func (catalogue *Catalogue) MaxDailyHours(teacher TeacherId) (uint64, bool) {
	hours := catalogue.maxDailyHours[teacher]
	return hours, hours > 0
}

// Checks whether slot1 strictly precedes slot2 in the week
func (catalogue *Catalogue) Precedes(slot1, slot2 SlotId) bool {
	return catalogue.Slots[slot1].Ordinal < catalogue.Slots[slot2].Ordinal
}

func (catalogue *Catalogue) TopLevelGroups() []GroupId {
	return lo.FilterMap(catalogue.Groups, func(group Group, _ int) (GroupId, bool) {
		return group.Id, group.TopLevel()
	})
}

// WithRestrictions returns a catalogue sharing every table with the receiver but the extra restrictions, which are replaced by extra
func (catalogue *Catalogue) WithRestrictions(extra ExtraRestrictions) (*Catalogue, error) {
	clone := *catalogue
	if err := clone.resolveRestrictions(extra); err != nil {
		return nil, err
	}
	return &clone, nil
}

func (catalogue *Catalogue) resolveRestrictions(extra ExtraRestrictions) error {
	unpreferred := make([][]bool, len(catalogue.Teachers))
	for i := range unpreferred {
		unpreferred[i] = make([]bool, len(catalogue.Slots))
	}
	maxDailyHours := make([]uint64, len(catalogue.Teachers))

	for teacherCode, slotCodes := range extra.UnpreferredTimeslots {
		teacher, err := catalogue.TeacherByCode(teacherCode)
		if err != nil {
			return referencedBy(err, "unpreferred_timeslots")
		}
		for _, slotCode := range slotCodes {
			slot, err := catalogue.SlotByCode(slotCode)
			if err != nil {
				return referencedBy(err, "unpreferred_timeslots of teacher "+strconv.FormatUint(teacherCode, 10))
			}
			unpreferred[teacher][slot] = true
		}
	}

	for teacherCode, hours := range extra.MaxDailyHours {
		teacher, err := catalogue.TeacherByCode(teacherCode)
		if err != nil {
			return referencedBy(err, "max_daily_hours")
		}
		maxDailyHours[teacher] = hours
	}

	catalogue.Extra = extra
	catalogue.unpreferred = unpreferred
	catalogue.maxDailyHours = maxDailyHours
	return nil
}

func (catalogue *Catalogue) buildTables() {
	catalogue.teaches = make([][]bool, len(catalogue.Teachers))
	for _, teacher := range catalogue.Teachers {
		catalogue.teaches[teacher.Id] = make([]bool, len(catalogue.Subjects))
		for _, subject := range teacher.Subjects {
			catalogue.teaches[teacher.Id][subject] = true
		}
	}

	catalogue.available = make([][]bool, len(catalogue.Rooms))
	for _, room := range catalogue.Rooms {
		catalogue.available[room.Id] = make([]bool, len(catalogue.Slots))
		for _, slot := range room.Slots {
			catalogue.available[room.Id][slot] = true
		}
	}

	catalogue.GroupsGraph = buildGroupsGraph(catalogue.Groups, catalogue.Everyone)
	catalogue.orderSlots()
}

// Assigns every slot its day index and its ordinal. Known weekdays come first in calendar order, unknown days follow in order of appearance
func (catalogue *Catalogue) orderSlots() {
	appearance := lo.Uniq(lo.Map(catalogue.Slots, func(slot TimeSlot, _ int) string { return slot.Day }))
	dayRank := func(day string) int {
		index := slices.IndexFunc(Weekdays, func(weekday string) bool { return strings.EqualFold(weekday, day) })
		if index < 0 {
			return len(Weekdays) + slices.Index(appearance, day)
		}
		return index
	}

	catalogue.Days = slices.Clone(appearance)
	slices.SortStableFunc(catalogue.Days, func(a, b string) int { return dayRank(a) - dayRank(b) })

	ordered := lo.Map(catalogue.Slots, func(slot TimeSlot, _ int) SlotId { return slot.Id })
	slices.SortStableFunc(ordered, func(a, b SlotId) int {
		slot1, slot2 := catalogue.Slots[a], catalogue.Slots[b]
		if rank := dayRank(slot1.Day) - dayRank(slot2.Day); rank != 0 {
			return rank
		}
		if hour := parseHour(slot1.Hour).Compare(parseHour(slot2.Hour)); hour != 0 {
			return hour
		}
		if slot1.Code < slot2.Code {
			return -1
		} else if slot1.Code > slot2.Code {
			return 1
		}
		return 0
	})

	for ordinal, id := range ordered {
		catalogue.Slots[id].Ordinal = uint64(ordinal)
		catalogue.Slots[id].DayId = uint64(slices.Index(catalogue.Days, catalogue.Slots[id].Day))
	}
}

func buildGroupsGraph(groups []Group, everyone GroupId) [][]bool {
	groupsGraph := make([][]bool, len(groups))
	for i := range groups {
		groupsGraph[i] = make([]bool, len(groups))
	}

	for i := range groups {
		groupsGraph[i][i] = true // For completeness we assume that groups[i][i] = true for all i
		groupsGraph[i][everyone] = true
		groupsGraph[everyone][i] = true

		// A sub-group shares its students with its parent
		if parent := groups[i].Parent; parent != NoGroup {
			groupsGraph[i][parent] = true
			groupsGraph[parent][i] = true
		}
	}

	return groupsGraph
}

// Hours are validated on input; an unparsable one sorts first
func parseHour(hour string) time.Time {
	parsed, _ := time.Parse("15:04", hour)
	return parsed
}
