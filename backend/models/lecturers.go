package models

import "time"

type Lecturer struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"not null" json:"username" validate:"notblank"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email" validate:"required,email"`
	Phone        string    `json:"phone"`
	Bio          string    `json:"bio"`
	CanShareInfo bool      `gorm:"default:false" json:"can_share_info"`
	IsDeleted    bool      `gorm:"default:false" json:"is_deleted"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LecturerMap is the many-to-many join between lecturers and courses.
type LecturerMap struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	CourseID   string `gorm:"uniqueIndex:idx_lecturer_map;size:64;not null" json:"course_id"`
	LecturerID uint   `gorm:"uniqueIndex:idx_lecturer_map;not null" json:"lecturer_id"`
}
