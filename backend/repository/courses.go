package repository

import (
	"context"
	"errors"
	"strings"

	"courseplatform/backend/models"
	"courseplatform/backend/utils"

	"gorm.io/gorm"
)

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ValidateCourse checks the id shape, the parent link and the field limits.
func ValidateCourse(c *models.Course) error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	if c.Status == "" {
		c.Status = models.StatusDraft
	}
	switch models.ClassifyCourseID(c.ID) {
	case models.KindMain:
		if c.ParentID != nil {
			return utils.Validation("A main course cannot have a parent")
		}
	case models.KindSub:
		if c.ParentID != nil && !strings.HasPrefix(c.ID, *c.ParentID+"-") {
			return utils.Validation("Sub-course id must start with its parent id")
		}
	default:
		return utils.Validation("Course id %q is neither XXX-NNNN-NNN nor XXX-NNNN-NNN-NN", c.ID)
	}
	return nil
}

func (r *CourseRepository) Create(ctx context.Context, c *models.Course) error {
	if err := ValidateCourse(c); err != nil {
		return err
	}
	db := r.db.WithContext(ctx)
	if c.ParentID != nil {
		var parent models.Course
		if err := db.First(&parent, "id = ?", *c.ParentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.Validation("Parent course %s does not exist", *c.ParentID)
			}
			return utils.Server("Could not query database", err)
		}
	}
	var count int64
	if err := db.Model(&models.Course{}).Where("id = ?", c.ID).Count(&count).Error; err != nil {
		return utils.Server("Could not query database", err)
	}
	if count > 0 {
		return utils.Conflict("Course %s already exists", c.ID)
	}
	if err := db.Create(c).Error; err != nil {
		return utils.Server("Could not create course", err)
	}
	return nil
}

func (r *CourseRepository) Get(ctx context.Context, id string) (*models.Course, error) {
	var c models.Course
	err := r.db.WithContext(ctx).
		Preload("SubCourses", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, utils.FromDB(err, "Course")
	}
	return &c, nil
}

// CourseUpdate carries editable fields; nil fields are left unchanged.
type CourseUpdate struct {
	Title            *string   `json:"title"`
	Overview         *string   `json:"overview"`
	Cost             *int64    `json:"cost"`
	Duration         *int      `json:"duration"`
	Category         *[]string `json:"category"`
	Skills           *[]string `json:"skills"`
	WhatYouWillLearn *[]string `json:"what_you_will_learn"`
}

func (r *CourseRepository) Update(ctx context.Context, id string, in CourseUpdate) (*models.Course, error) {
	c, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		c.Title = *in.Title
	}
	if in.Overview != nil {
		c.Overview = *in.Overview
	}
	if in.Cost != nil {
		c.Cost = *in.Cost
	}
	if in.Duration != nil {
		c.Duration = *in.Duration
	}
	if in.Category != nil {
		c.Category = *in.Category
	}
	if in.Skills != nil {
		c.Skills = *in.Skills
	}
	if in.WhatYouWillLearn != nil {
		c.WhatYouWillLearn = *in.WhatYouWillLearn
	}
	if err := ValidateCourse(c); err != nil {
		return nil, err
	}
	subs := c.SubCourses
	c.SubCourses = nil
	if err := r.db.WithContext(ctx).Omit("SubCourses", "Modules").Save(c).Error; err != nil {
		return nil, utils.Server("Could not update course", err)
	}
	c.SubCourses = subs
	return c, nil
}

func (r *CourseRepository) SetStatus(ctx context.Context, id string, status models.CourseStatus) error {
	if status != models.StatusDraft && status != models.StatusPublished {
		return utils.Validation("Unknown course status %q", status)
	}
	return r.updateColumn(ctx, id, "status", status)
}

// SetDeleted soft-deletes (or recovers) a course.
func (r *CourseRepository) SetDeleted(ctx context.Context, id string, deleted bool) error {
	return r.updateColumn(ctx, id, "is_deleted", deleted)
}

func (r *CourseRepository) updateColumn(ctx context.Context, id, column string, value interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Course{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return utils.Server("Could not update course", res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.NotFound("Course not found")
	}
	return nil
}

// HardDelete removes a course, its sub-courses, their modules, lectures,
// lecturer links and enrollments in one transaction. Certificates stay.
func (r *CourseRepository) HardDelete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.First(&course, "id = ?", id).Error; err != nil {
			return utils.FromDB(err, "Course")
		}
		courseIDs := []string{id}
		if course.Kind == models.KindMain {
			var subIDs []string
			if err := tx.Model(&models.Course{}).Where("parent_id = ?", id).Pluck("id", &subIDs).Error; err != nil {
				return utils.Server("Could not query database", err)
			}
			courseIDs = append(courseIDs, subIDs...)
		}

		var moduleIDs []string
		if err := tx.Model(&models.Module{}).Where("course_id IN ?", courseIDs).Pluck("id", &moduleIDs).Error; err != nil {
			return utils.Server("Could not query database", err)
		}
		if len(moduleIDs) > 0 {
			if err := tx.Where("module_id IN ?", moduleIDs).Delete(&models.Lecture{}).Error; err != nil {
				return utils.Server("Could not delete lectures", err)
			}
			if err := tx.Where("id IN ?", moduleIDs).Delete(&models.Module{}).Error; err != nil {
				return utils.Server("Could not delete modules", err)
			}
		}
		if err := tx.Where("course_id IN ?", courseIDs).Delete(&models.LecturerMap{}).Error; err != nil {
			return utils.Server("Could not delete lecturer links", err)
		}
		if err := tx.Where("course_id IN ?", courseIDs).Delete(&models.Enrollment{}).Error; err != nil {
			return utils.Server("Could not delete enrollments", err)
		}
		if err := tx.Where("id IN ?", courseIDs).Delete(&models.Course{}).Error; err != nil {
			return utils.Server("Could not delete course", err)
		}
		return nil
	})
}
