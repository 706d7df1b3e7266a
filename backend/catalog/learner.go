package catalog

import (
	"courseplatform/backend/models"
	"courseplatform/backend/utils"
)

// CanEnroll decides whether the enroll action is offered. Lecturers and
// admins never enroll; annual members already have access to everything.
func CanEnroll(p utils.Principal, enrolled, annualMember bool) bool {
	if p.Authenticated() && p.Role != utils.RoleUser {
		return false
	}
	return !enrolled && !annualMember
}

// Visible reports whether learners may see the course.
func Visible(c models.Course) bool {
	return !c.IsDeleted && c.IsPublished()
}

// Listing returns every course of the snapshot as a flat list: main courses
// first, then all sub-courses.
func Listing(s *Snapshot) []models.Course {
	subs := AllSubCourses(s)
	out := make([]models.Course, 0, len(s.MainCourses)+len(subs))
	out = append(out, s.MainCourses...)
	return append(out, subs...)
}
