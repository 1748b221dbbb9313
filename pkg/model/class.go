package model

import "fmt"

type SessionType uint8

const (
	Course SessionType = iota
	Seminar
)

func (sessionType SessionType) String() string {
	switch sessionType {
	case Course:
		return "course"
	case Seminar:
		return "seminar"
	}
	return fmt.Sprintf("SessionType(%d)", uint8(sessionType))
}

func (sessionType SessionType) MarshalText() ([]byte, error) {
	return []byte(sessionType.String()), nil
}

func (sessionType *SessionType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "course":
		*sessionType = Course
	case "seminar":
		*sessionType = Seminar
	default:
		return fmt.Errorf("unknown session type %q", text)
	}
	return nil
}

// Class is one atomic teaching unit; its position in the class list is its CSP variable
type Class struct {
	Subject SubjectId
	Group   GroupId
	Type    SessionType
}

// BuildClassList expands every subject into its classes, in catalogue order:
//   - a mandatory subject yields a course per top-level group and a seminar per sub-group
//   - an optional subject yields a single course shared by everyone and a seminar per sub-group
func BuildClassList(catalogue *Catalogue) []Class {
	classes := make([]Class, 0)
	for _, subject := range catalogue.Subjects {
		if subject.Optional {
			classes = append(classes, Class{Subject: subject.Id, Group: catalogue.Everyone, Type: Course})
		}

		for _, group := range catalogue.Groups {
			switch {
			case group.Id == catalogue.Everyone:
				continue
			case group.TopLevel():
				if !subject.Optional {
					classes = append(classes, Class{Subject: subject.Id, Group: group.Id, Type: Course})
				}
			default:
				classes = append(classes, Class{Subject: subject.Id, Group: group.Id, Type: Seminar})
			}
		}
	}
	return classes
}
