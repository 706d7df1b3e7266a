package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// AllCourses is the promotion course_id sentinel that targets every course.
const AllCourses = "ALL_COURSES"

// Promotion is a time-boxed percentage discount. CourseID is either
// AllCourses or a JSON array of course ids.
type Promotion struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Title           string    `gorm:"not null" json:"title"`
	Description     string    `json:"description"`
	PromotionAmount int       `json:"promotion_amount"`
	StartDate       time.Time `gorm:"index" json:"start_date"`
	EndDate         time.Time `gorm:"index" json:"end_date"`
	CourseID        string    `gorm:"type:text;not null" json:"course_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Running reports start_date <= now < end_date.
func (p *Promotion) Running(now time.Time) bool {
	return !now.Before(p.StartDate) && now.Before(p.EndDate)
}

func (p *Promotion) Scheduled(now time.Time) bool {
	return now.Before(p.StartDate)
}

func (p *Promotion) Expired(now time.Time) bool {
	return !now.Before(p.EndDate)
}

// TargetCourseIDs decodes CourseID. all is true for the AllCourses sentinel.
func (p *Promotion) TargetCourseIDs() (ids []string, all bool, err error) {
	if p.CourseID == AllCourses {
		return nil, true, nil
	}
	if err := json.Unmarshal([]byte(p.CourseID), &ids); err != nil {
		return nil, false, fmt.Errorf("promotion %d: course_id is neither %s nor a JSON array: %w", p.ID, AllCourses, err)
	}
	return ids, false, nil
}

// AppliesTo reports whether the promotion targets courseID. Malformed
// course_id values apply to nothing.
func (p *Promotion) AppliesTo(courseID string) bool {
	ids, all, err := p.TargetCourseIDs()
	if err != nil {
		return false
	}
	if all {
		return true
	}
	for _, id := range ids {
		if id == courseID {
			return true
		}
	}
	return false
}

// EncodeCourseTargets builds the stored course_id value.
func EncodeCourseTargets(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
