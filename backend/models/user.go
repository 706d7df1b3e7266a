package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null"`
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         string `gorm:"default:user"` // user, lecturer, admin
	// AnnualMemberUntil is set while the user holds an annual membership.
	AnnualMemberUntil *time.Time
}

// ActiveAnnualMember reports whether the membership covers now.
func (u *User) ActiveAnnualMember(now time.Time) bool {
	return u.AnnualMemberUntil != nil && now.Before(*u.AnnualMemberUntil)
}

type LoginHistory struct {
	gorm.Model
	UserID    uint
	LoginTime time.Time
}

// All returns every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&LoginHistory{},
		&Course{},
		&Module{},
		&Lecture{},
		&Lecturer{},
		&LecturerMap{},
		&Promotion{},
		&Certificate{},
		&Enrollment{},
	}
}
