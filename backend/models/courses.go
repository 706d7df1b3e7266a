package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CourseKind distinguishes main courses from sub-courses. It is derived from
// the id shape once, when a record enters or leaves the store.
type CourseKind string

const (
	KindUnknown CourseKind = ""
	KindMain    CourseKind = "main"
	KindSub     CourseKind = "sub"
)

type CourseStatus string

const (
	StatusDraft     CourseStatus = "draft"
	StatusPublished CourseStatus = "published"
)

// ClassifyCourseID counts hyphens: XXX-NNNN-NNN is a main course,
// XXX-NNNN-NNN-NN a sub-course, anything else is unknown.
func ClassifyCourseID(id string) CourseKind {
	if id == "" {
		return KindUnknown
	}
	for _, part := range strings.Split(id, "-") {
		if part == "" {
			return KindUnknown
		}
	}
	switch strings.Count(id, "-") {
	case 2:
		return KindMain
	case 3:
		return KindSub
	default:
		return KindUnknown
	}
}

type Course struct {
	ID               string                      `gorm:"primaryKey;size:64" json:"id"`
	ParentID         *string                     `gorm:"index;size:64" json:"parent_id,omitempty"`
	Title            string                      `gorm:"not null" json:"title" validate:"notblank"`
	Overview         string                      `json:"overview"`
	Cost             int64                       `json:"cost" validate:"min=0"`
	Duration         int                         `json:"duration" validate:"min=0"`
	Category         datatypes.JSONSlice[string] `json:"category"`
	Skills           datatypes.JSONSlice[string] `json:"skills"`
	WhatYouWillLearn datatypes.JSONSlice[string] `gorm:"column:what_you_will_learn" json:"what_you_will_learn" validate:"max=6"`
	Status           CourseStatus                `gorm:"size:16;default:draft" json:"status" validate:"omitempty,oneof=draft published"`
	IsDeleted        bool                        `gorm:"default:false" json:"is_deleted"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`

	Kind       CourseKind `gorm:"-" json:"kind"`
	SubCourses []Course   `gorm:"foreignKey:ParentID" json:"subCourses,omitempty"`
	Modules    []Module   `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
}

func (c *Course) AfterFind(tx *gorm.DB) error {
	c.Kind = ClassifyCourseID(c.ID)
	return nil
}

func (c *Course) BeforeSave(tx *gorm.DB) error {
	c.Kind = ClassifyCourseID(c.ID)
	return nil
}

func (c *Course) IsPublished() bool { return c.Status == StatusPublished }

// Module is an ordered group of lectures inside a sub-course. Its id is
// <courseId>-NN.
type Module struct {
	ID        string    `gorm:"primaryKey;size:80" json:"id"`
	CourseID  string    `gorm:"index;size:64;not null" json:"course_id"`
	Title     string    `gorm:"not null" json:"title"`
	Duration  int       `json:"duration"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Lectures []Lecture `gorm:"foreignKey:ModuleID" json:"lectures,omitempty"`
}

type LectureType string

const (
	LectureVideo   LectureType = "video"
	LectureReading LectureType = "reading"
	LectureQuiz    LectureType = "quiz"
)

func (t LectureType) Valid() bool {
	switch t {
	case LectureVideo, LectureReading, LectureQuiz:
		return true
	}
	return false
}

// QuizQuestion is one entry of a quiz lecture's qa_data.
type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// Complete reports whether the question can be followed by another one.
func (q QuizQuestion) Complete() bool {
	if strings.TrimSpace(q.Question) == "" || strings.TrimSpace(q.Answer) == "" {
		return false
	}
	if len(q.Options) < 2 {
		return false
	}
	for _, o := range q.Options {
		if o == q.Answer {
			return true
		}
	}
	return false
}

// Lecture ids are <moduleId>-NN and are regenerated on every module save.
type Lecture struct {
	ID             string                            `gorm:"primaryKey;size:96" json:"id"`
	ModuleID       string                            `gorm:"index;size:80;not null" json:"module_id"`
	Title          string                            `gorm:"not null" json:"title"`
	Type           LectureType                       `gorm:"size:16;not null" json:"type"`
	Duration       int                               `json:"duration"`
	Link           string                            `json:"link,omitempty"`
	Slides         string                            `json:"slides,omitempty"`
	QAData         datatypes.JSONSlice[QuizQuestion] `gorm:"column:qa_data" json:"qa_data,omitempty"`
	MinScoreToPass *int                              `json:"min_score_to_pass,omitempty"`
	CreatedAt      time.Time                         `json:"created_at"`
	UpdatedAt      time.Time                         `json:"updated_at"`
}

// Enrollment links a user to a course they bought or started.
type Enrollment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"user_id"`
	CourseID  string    `gorm:"uniqueIndex:idx_enrollment_user_course;size:64;not null" json:"course_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Certificate is issued by the completion workflow and only read here.
type Certificate struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CourseID      string    `gorm:"index;size:64;not null" json:"course_id"`
	UserID        uint      `gorm:"index;not null" json:"user_id"`
	CompletedDate time.Time `json:"completed_date"`
}

// Score counts answers matching qa_data by position and reports whether the
// score reaches min_score_to_pass.
func (l *Lecture) Score(answers []string) (score int, passed bool) {
	for i, q := range l.QAData {
		if i < len(answers) && answers[i] == q.Answer {
			score++
		}
	}
	min := 0
	if l.MinScoreToPass != nil {
		min = *l.MinScoreToPass
	}
	return score, score >= min
}
