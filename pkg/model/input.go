package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

type RawGroup struct {
	Code   uint64  `mapstructure:"code"`
	Name   string  `mapstructure:"name" validate:"required"`
	Parent *uint64 `mapstructure:"parent"`
}

type RawSubject struct {
	Code       uint64 `mapstructure:"code"`
	Name       string `mapstructure:"name" validate:"required"`
	IsOptional bool   `mapstructure:"is_optional"`
}

type RawTeacher struct {
	Code           uint64   `mapstructure:"code"`
	Name           string   `mapstructure:"name" validate:"required"`
	SubjectsTaught []uint64 `mapstructure:"subjects_taught"`
	CanTeachCourse bool     `mapstructure:"can_teach_course"`
	MaxHours       uint64   `mapstructure:"max_hours"`
}

type RawRoom struct {
	Code           uint64   `mapstructure:"code"`
	Name           string   `mapstructure:"name" validate:"required"`
	CoursePossible bool     `mapstructure:"course_possible"`
	PossibleTimes  []uint64 `mapstructure:"possible_times"`
}

type RawTimeSlot struct {
	Code uint64 `mapstructure:"code"`
	Day  string `mapstructure:"day" validate:"required"`
	Hour string `mapstructure:"hour" validate:"required,hour"`
}

type RawCatalogue struct {
	Groups            []RawGroup        `mapstructure:"groups" validate:"required,dive"`
	Subjects          []RawSubject      `mapstructure:"subjects" validate:"dive"`
	Teachers          []RawTeacher      `mapstructure:"teachers" validate:"dive"`
	Rooms             []RawRoom         `mapstructure:"rooms" validate:"dive"`
	TimeSlots         []RawTimeSlot     `mapstructure:"time_slots" validate:"required,dive"`
	ExtraRestrictions ExtraRestrictions `mapstructure:"extra_restrictions"`
}

// Files looked up by CatalogueFromDirectory; extra_restrictions is optional
var catalogueFiles = []string{"groups", "subjects", "teachers", "rooms", "time_slots", "extra_restrictions"}

var validate = newValidator()

// Two-digit 24h "HH:MM"
var hourPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("hour", func(fl validator.FieldLevel) bool {
		return hourPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// CatalogueFromFile loads a catalogue stored in a single JSON or YAML document holding every table
func CatalogueFromFile(file string) (*Catalogue, error) {
	document, err := readDocument(file)
	if err != nil {
		return nil, err
	}

	var raw RawCatalogue
	if err := decode(document, &raw); err != nil {
		return nil, &CatalogueError{Err: fmt.Errorf("cannot decode %v: %w", file, err)}
	}
	return ProcessRawInput(raw)
}

// CatalogueFromDirectory loads a catalogue split in one document per table (groups.json, subjects.json, ...)
func CatalogueFromDirectory(directory string) (*Catalogue, error) {
	document := make(map[string]any)
	for _, name := range catalogueFiles {
		file, ok := lo.Find([]string{".json", ".yaml", ".yml"}, func(extension string) bool {
			_, err := os.Stat(filepath.Join(directory, name+extension))
			return err == nil
		})
		if !ok {
			if name == "extra_restrictions" {
				continue
			}
			return nil, fmt.Errorf("cannot find %v in %v", name, directory)
		}

		content, err := readDocument(filepath.Join(directory, name+file))
		if err != nil {
			return nil, err
		}
		document[name] = content
	}

	var raw RawCatalogue
	if err := decode(document, &raw); err != nil {
		return nil, &CatalogueError{Err: fmt.Errorf("cannot decode %v: %w", directory, err)}
	}
	return ProcessRawInput(raw)
}

// RestrictionsFromFile loads an extra-restrictions document, e.g. one rewritten by the restriction editor
func RestrictionsFromFile(file string) (ExtraRestrictions, error) {
	document, err := readDocument(file)
	if err != nil {
		return ExtraRestrictions{}, err
	}

	var extra ExtraRestrictions
	if err := decode(document, &extra); err != nil {
		return ExtraRestrictions{}, fmt.Errorf("cannot decode %v: %w", file, err)
	}
	return extra, nil
}

func ProcessRawInput(raw RawCatalogue) (*Catalogue, error) {
	if err := validate.Struct(raw); err != nil {
		return nil, &CatalogueError{Err: err}
	}
	if err := checkDuplicates(raw); err != nil {
		return nil, err
	}

	catalogue := &Catalogue{
		groupCodes:   make(map[uint64]GroupId),
		subjectCodes: make(map[uint64]SubjectId),
		teacherCodes: make(map[uint64]TeacherId),
		roomCodes:    make(map[uint64]RoomId),
		slotCodes:    make(map[uint64]SlotId),
	}

	//** Manage time slots
	for i, rawSlot := range raw.TimeSlots {
		catalogue.slotCodes[rawSlot.Code] = SlotId(i)
		catalogue.Slots = append(catalogue.Slots, TimeSlot{
			Id:   SlotId(i),
			Code: rawSlot.Code,
			Day:  rawSlot.Day,
			Hour: rawSlot.Hour,
		})
	}

	//** Manage subjects
	for i, rawSubject := range raw.Subjects {
		catalogue.subjectCodes[rawSubject.Code] = SubjectId(i)
		catalogue.Subjects = append(catalogue.Subjects, Subject{
			Id:       SubjectId(i),
			Code:     rawSubject.Code,
			Name:     rawSubject.Name,
			Optional: rawSubject.IsOptional,
		})
	}

	//** Manage teachers
	for i, rawTeacher := range raw.Teachers {
		subjects := make([]SubjectId, 0, len(rawTeacher.SubjectsTaught))
		for _, code := range rawTeacher.SubjectsTaught {
			subject, err := catalogue.SubjectByCode(code)
			if err != nil {
				return nil, referencedBy(err, fmt.Sprintf("teacher %v", rawTeacher.Code))
			}
			subjects = append(subjects, subject)
		}

		catalogue.teacherCodes[rawTeacher.Code] = TeacherId(i)
		catalogue.Teachers = append(catalogue.Teachers, Teacher{
			Id:             TeacherId(i),
			Code:           rawTeacher.Code,
			Name:           rawTeacher.Name,
			Subjects:       subjects,
			CanTeachCourse: rawTeacher.CanTeachCourse,
			MaxHours:       rawTeacher.MaxHours,
		})
	}

	//** Manage rooms
	for i, rawRoom := range raw.Rooms {
		slots := make([]SlotId, 0, len(rawRoom.PossibleTimes))
		for _, code := range rawRoom.PossibleTimes {
			slot, err := catalogue.SlotByCode(code)
			if err != nil {
				return nil, referencedBy(err, fmt.Sprintf("room %v", rawRoom.Code))
			}
			slots = append(slots, slot)
		}

		catalogue.roomCodes[rawRoom.Code] = RoomId(i)
		catalogue.Rooms = append(catalogue.Rooms, Room{
			Id:             RoomId(i),
			Code:           rawRoom.Code,
			Name:           rawRoom.Name,
			CoursePossible: rawRoom.CoursePossible,
			Slots:          slots,
		})
	}

	//** Manage groups
	if err := catalogue.processGroups(raw.Groups); err != nil {
		return nil, err
	}

	catalogue.buildTables()
	if err := catalogue.resolveRestrictions(raw.ExtraRestrictions); err != nil {
		return nil, err
	}
	return catalogue, nil
}

func (catalogue *Catalogue) processGroups(rawGroups []RawGroup) error {
	for i, rawGroup := range rawGroups {
		catalogue.groupCodes[rawGroup.Code] = GroupId(i)
		catalogue.Groups = append(catalogue.Groups, Group{
			Id:     GroupId(i),
			Code:   rawGroup.Code,
			Name:   rawGroup.Name,
			Parent: NoGroup,
		})
	}

	// Make sure there is an everyone group, shared optional courses are attached to it
	everyone, ok := catalogue.groupCodes[EveryoneCode]
	if !ok {
		everyone = GroupId(len(catalogue.Groups))
		catalogue.groupCodes[EveryoneCode] = everyone
		catalogue.Groups = append(catalogue.Groups, Group{
			Id:     everyone,
			Code:   EveryoneCode,
			Name:   "everyone",
			Parent: NoGroup,
		})
	}
	catalogue.Everyone = everyone

	topLevel := lo.Filter(catalogue.Groups, func(group Group, _ int) bool { return group.TopLevel() })
	for i, rawGroup := range rawGroups {
		group := &catalogue.Groups[i]
		if group.TopLevel() || group.Id == everyone {
			continue
		}

		// An explicit parent wins, otherwise the parent is the top-level group whose code prefixes the sub-group's code (e.g. 1 -> 11, 12),
		// then the one whose name prefixes the sub-group's name (e.g. A -> A1)
		if rawGroup.Parent != nil {
			parent, err := catalogue.GroupByCode(*rawGroup.Parent)
			if err != nil {
				return referencedBy(err, fmt.Sprintf("group %v", rawGroup.Code))
			}
			group.Parent = parent
			continue
		}

		code := strconv.FormatUint(group.Code, 10)
		if parent, ok := lo.Find(topLevel, func(candidate Group) bool {
			candidateCode := strconv.FormatUint(candidate.Code, 10)
			return candidateCode != code && strings.HasPrefix(code, candidateCode)
		}); ok {
			group.Parent = parent.Id
			continue
		}

		if parent, ok := lo.Find(topLevel, func(candidate Group) bool {
			return strings.HasPrefix(group.Name, candidate.Name)
		}); ok {
			group.Parent = parent.Id
			continue
		}

		return &CatalogueError{Entity: "group", Code: group.Code, Err: fmt.Errorf("sub-group %v (%v) has no parent group", group.Name, group.Code)}
	}

	return nil
}

func checkDuplicates(raw RawCatalogue) error {
	duplicates := []struct {
		entity string
		codes  []uint64
	}{
		{"group", lo.Map(raw.Groups, func(group RawGroup, _ int) uint64 { return group.Code })},
		{"subject", lo.Map(raw.Subjects, func(subject RawSubject, _ int) uint64 { return subject.Code })},
		{"teacher", lo.Map(raw.Teachers, func(teacher RawTeacher, _ int) uint64 { return teacher.Code })},
		{"room", lo.Map(raw.Rooms, func(room RawRoom, _ int) uint64 { return room.Code })},
		{"time slot", lo.Map(raw.TimeSlots, func(slot RawTimeSlot, _ int) uint64 { return slot.Code })},
	}

	for _, table := range duplicates {
		if repeated := lo.FindDuplicates(table.codes); len(repeated) > 0 {
			return &CatalogueError{Entity: table.entity, Code: repeated[0], Err: fmt.Errorf("duplicate %v code %v", table.entity, repeated[0])}
		}
	}
	return nil
}

func readDocument(file string) (any, error) {
	var unmarshal func([]byte, any) error
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	case ".json":
		unmarshal = json.Unmarshal
	default:
		return nil, fmt.Errorf("cannot parse %v: unsupported file extension", file)
	}

	bytes, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("cannot read %v: %w", file, err)
	}

	var document any
	if err := unmarshal(bytes, &document); err != nil {
		return nil, fmt.Errorf("cannot parse %v: %w", file, err)
	}
	return document, nil
}

// Integer flags (0/1) and string-keyed codes are accepted, since that is how the catalogue files are usually written
func decode(input any, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           output,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
