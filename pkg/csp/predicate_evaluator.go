package csp

import "github.com/limaJavier/classcsp/pkg/model"

type predicateEvaluator interface {
	// Checks whether the value satisfies the class's static constraints (teacher, session type, room and availability)
	Eligible(class model.Class, value model.Assignment) bool

	// Checks whether the room may host the session type under the room policy
	RoomFits(room model.RoomId, sessionType model.SessionType) bool

	// Checks whether class1 and class2 share students
	ShareGroup(class1, class2 model.Class) bool

	// Checks whether class1 and class2 are the course and the seminar of the same subject for groups sharing students
	CoursePair(class1, class2 model.Class) bool

	// Checks whether value1 for class1 and value2 for class2 can hold together
	Consistent(class1 model.Class, value1 model.Assignment, class2 model.Class, value2 model.Assignment) bool
}
