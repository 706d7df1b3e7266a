package catalog

import (
	"fmt"
	"sort"
	"strings"

	"courseplatform/backend/models"
)

// ClassifyByIDShape is the hyphen-count rule. Prefer Course.Kind, which is
// set from the same rule when the record is loaded.
func ClassifyByIDShape(id string) models.CourseKind {
	return models.ClassifyCourseID(id)
}

// DuplicateIDError reports two catalog entries sharing an id.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("catalog: duplicate course id %q", e.ID)
}

// FlattenForLookup indexes main courses, their embedded sub-courses and
// independent sub-courses by id. A colliding id is a data error.
func FlattenForLookup(s *Snapshot) (map[string]models.Course, error) {
	out := make(map[string]models.Course)
	if s == nil {
		return out, nil
	}
	add := func(c models.Course) error {
		if _, exists := out[c.ID]; exists {
			return &DuplicateIDError{ID: c.ID}
		}
		out[c.ID] = c
		return nil
	}
	for _, main := range s.MainCourses {
		if err := add(main); err != nil {
			return nil, err
		}
		for _, sub := range main.SubCourses {
			if err := add(sub); err != nil {
				return nil, err
			}
		}
	}
	for _, sub := range s.IndependentSubCourses {
		if err := add(sub); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// AllSubCourses returns embedded and independent sub-courses.
func AllSubCourses(s *Snapshot) []models.Course {
	var out []models.Course
	for _, main := range s.MainCourses {
		out = append(out, main.SubCourses...)
	}
	return append(out, s.IndependentSubCourses...)
}

type Partition struct {
	Active  []models.Course `json:"active"`
	Deleted []models.Course `json:"deleted"`
}

// SplitByDeletion partitions by is_deleted, keeping input order.
func SplitByDeletion(items []models.Course) Partition {
	p := Partition{Active: []models.Course{}, Deleted: []models.Course{}}
	for _, c := range items {
		if c.IsDeleted {
			p.Deleted = append(p.Deleted, c)
		} else {
			p.Active = append(p.Active, c)
		}
	}
	return p
}

// RecoveryView splits main and sub-courses separately and concatenates the
// results, main courses first.
func RecoveryView(s *Snapshot) Partition {
	mains := SplitByDeletion(s.MainCourses)
	subs := SplitByDeletion(AllSubCourses(s))
	return Partition{
		Active:  append(mains.Active, subs.Active...),
		Deleted: append(mains.Deleted, subs.Deleted...),
	}
}

type StatusSplit struct {
	Draft     []models.Course `json:"draft"`
	Published []models.Course `json:"published"`
}

func SplitByStatus(items []models.Course) StatusSplit {
	out := StatusSplit{Draft: []models.Course{}, Published: []models.Course{}}
	for _, c := range items {
		if c.IsPublished() {
			out.Published = append(out.Published, c)
		} else {
			out.Draft = append(out.Draft, c)
		}
	}
	return out
}

type EnrollmentSplit struct {
	Enrolled    []models.Course `json:"enrolled"`
	NotEnrolled []models.Course `json:"not_enrolled"`
}

func SplitByEnrollment(items []models.Course, enrolled map[string]bool) EnrollmentSplit {
	out := EnrollmentSplit{Enrolled: []models.Course{}, NotEnrolled: []models.Course{}}
	for _, c := range items {
		if enrolled[c.ID] {
			out.Enrolled = append(out.Enrolled, c)
		} else {
			out.NotEnrolled = append(out.NotEnrolled, c)
		}
	}
	return out
}

// LearnerView drops deleted and draft courses, including deleted or draft
// sub-courses embedded in a visible main course.
func LearnerView(s *Snapshot) *Snapshot {
	out := &Snapshot{
		Lecturers:          s.Lecturers,
		LecturersMap:       s.LecturersMap,
		ActivePromotions:   s.ActivePromotions,
		TopThreeSubCourses: s.TopThreeSubCourses,
	}
	for _, main := range s.MainCourses {
		if !Visible(main) {
			continue
		}
		subs := make([]models.Course, 0, len(main.SubCourses))
		for _, sub := range main.SubCourses {
			if Visible(sub) {
				subs = append(subs, sub)
			}
		}
		main.SubCourses = subs
		out.MainCourses = append(out.MainCourses, main)
	}
	for _, sub := range s.IndependentSubCourses {
		if Visible(sub) {
			out.IndependentSubCourses = append(out.IndependentSubCourses, sub)
		}
	}
	return out
}

// BelongsToMain reports whether a course id is the main course itself or
// one of its children. A bare string prefix is not enough: ABC-1234-5678-01
// shares the prefix ABC-1234-567 without being its child.
func BelongsToMain(courseID, mainID string) bool {
	return courseID == mainID || strings.HasPrefix(courseID, mainID+"-")
}

// FindRelevantLecturers returns the non-deleted lecturers mapped to the main
// course or any of its sub-courses, in snapshot order.
func FindRelevantLecturers(s *Snapshot, main models.Course) []models.Lecturer {
	ids := make(map[uint]bool)
	for _, m := range s.LecturersMap {
		if BelongsToMain(m.CourseID, main.ID) {
			ids[m.LecturerID] = true
		}
	}
	out := []models.Lecturer{}
	for _, l := range s.Lecturers {
		if ids[l.ID] && !l.IsDeleted {
			out = append(out, l)
		}
	}
	return out
}

// LecturersForCourse returns lecturers mapped to exactly courseID.
func LecturersForCourse(s *Snapshot, courseID string) []models.Lecturer {
	ids := make(map[uint]bool)
	for _, m := range s.LecturersMap {
		if m.CourseID == courseID {
			ids[m.LecturerID] = true
		}
	}
	out := []models.Lecturer{}
	for _, l := range s.Lecturers {
		if ids[l.ID] && !l.IsDeleted {
			out = append(out, l)
		}
	}
	return out
}

// RankSubCourses picks the top n visible sub-courses by score (descending),
// ties broken by id.
func RankSubCourses(subs []models.Course, score map[string]int, n int) []models.Course {
	ranked := make([]models.Course, 0, len(subs))
	for _, c := range subs {
		if !c.IsDeleted && c.IsPublished() {
			ranked = append(ranked, c)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := score[ranked[i].ID], score[ranked[j].ID]
		if si != sj {
			return si > sj
		}
		return ranked[i].ID < ranked[j].ID
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// CertificateView is a certificate with its resolved course title.
type CertificateView struct {
	models.Certificate
	CourseTitle string            `json:"course_title"`
	Kind        models.CourseKind `json:"kind"`
}

type CertificateBuckets struct {
	Main []CertificateView `json:"main"`
	Sub  []CertificateView `json:"sub"`
}

// BucketCertificates resolves titles through the lookup map and groups
// certificates by course kind. Certificates for unknown ids are skipped.
func BucketCertificates(lookup map[string]models.Course, certs []models.Certificate) CertificateBuckets {
	out := CertificateBuckets{Main: []CertificateView{}, Sub: []CertificateView{}}
	for _, cert := range certs {
		course, ok := lookup[cert.CourseID]
		if !ok {
			continue
		}
		view := CertificateView{Certificate: cert, CourseTitle: course.Title, Kind: ClassifyByIDShape(cert.CourseID)}
		switch view.Kind {
		case models.KindMain:
			out.Main = append(out.Main, view)
		case models.KindSub:
			out.Sub = append(out.Sub, view)
		}
	}
	return out
}
