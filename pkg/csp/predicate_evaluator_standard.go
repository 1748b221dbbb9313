package csp

import "github.com/limaJavier/classcsp/pkg/model"

type predicateEvaluatorStandard struct {
	catalogue  *model.Catalogue
	roomPolicy RoomPolicy
}

func newPredicateEvaluator(catalogue *model.Catalogue, roomPolicy RoomPolicy) predicateEvaluator {
	return &predicateEvaluatorStandard{
		catalogue:  catalogue,
		roomPolicy: roomPolicy,
	}
}

func (evaluator *predicateEvaluatorStandard) Eligible(class model.Class, value model.Assignment) bool {
	teacher := evaluator.catalogue.Teachers[value.Teacher]
	return evaluator.catalogue.Teaches(value.Teacher, class.Subject) &&
		(class.Type != model.Course || teacher.CanTeachCourse) &&
		evaluator.RoomFits(value.Room, class.Type) &&
		evaluator.catalogue.Available(value.Room, value.Slot)
}

func (evaluator *predicateEvaluatorStandard) RoomFits(room model.RoomId, sessionType model.SessionType) bool {
	coursePossible := evaluator.catalogue.Rooms[room].CoursePossible
	if sessionType == model.Course {
		return coursePossible
	}
	// Strict: seminar rooms and course rooms are disjoint sets
	return evaluator.roomPolicy == RelaxedRooms || !coursePossible
}

func (evaluator *predicateEvaluatorStandard) ShareGroup(class1, class2 model.Class) bool {
	return evaluator.catalogue.Overlap(class1.Group, class2.Group)
}

func (evaluator *predicateEvaluatorStandard) CoursePair(class1, class2 model.Class) bool {
	return class1.Subject == class2.Subject &&
		class1.Type != class2.Type &&
		evaluator.ShareGroup(class1, class2)
}

func (evaluator *predicateEvaluatorStandard) Consistent(class1 model.Class, value1 model.Assignment, class2 model.Class, value2 model.Assignment) bool {
	if value1.Slot == value2.Slot &&
		(value1.Teacher == value2.Teacher || value1.Room == value2.Room || evaluator.ShareGroup(class1, class2)) {
		return false
	}

	if evaluator.CoursePair(class1, class2) {
		course, seminar := value1.Slot, value2.Slot
		if class1.Type == model.Seminar {
			course, seminar = seminar, course
		}
		return evaluator.catalogue.Precedes(course, seminar)
	}
	return true
}
