package repository

import (
	"context"
	"strings"

	"courseplatform/backend/models"
	"courseplatform/backend/utils"

	"gorm.io/gorm"
)

type LecturerRepository struct {
	db *gorm.DB
}

func NewLecturerRepository(db *gorm.DB) *LecturerRepository {
	return &LecturerRepository{db: db}
}

func validateLecturer(l *models.Lecturer) error {
	l.Email = strings.ToLower(strings.TrimSpace(l.Email))
	return utils.ValidateStruct(l)
}

func (r *LecturerRepository) emailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Lecturer{}).
		Where("email = ? AND id <> ?", email, exceptID).
		Count(&count).Error
	return count > 0, err
}

func (r *LecturerRepository) Create(ctx context.Context, l *models.Lecturer) error {
	if err := validateLecturer(l); err != nil {
		return err
	}
	taken, err := r.emailTaken(ctx, l.Email, 0)
	if err != nil {
		return utils.Server("Could not query database", err)
	}
	if taken {
		return utils.Conflict("A lecturer with email %s already exists", l.Email)
	}
	if err := r.db.WithContext(ctx).Create(l).Error; err != nil {
		return utils.Server("Could not create lecturer", err)
	}
	return nil
}

func (r *LecturerRepository) Get(ctx context.Context, id uint) (*models.Lecturer, error) {
	var l models.Lecturer
	if err := r.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, utils.FromDB(err, "Lecturer")
	}
	return &l, nil
}

func (r *LecturerRepository) Update(ctx context.Context, id uint, in models.Lecturer) (*models.Lecturer, error) {
	l, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	l.Username, l.Email, l.Phone, l.Bio, l.CanShareInfo = in.Username, in.Email, in.Phone, in.Bio, in.CanShareInfo
	if err := validateLecturer(l); err != nil {
		return nil, err
	}
	taken, err := r.emailTaken(ctx, l.Email, l.ID)
	if err != nil {
		return nil, utils.Server("Could not query database", err)
	}
	if taken {
		return nil, utils.Conflict("A lecturer with email %s already exists", l.Email)
	}
	if err := r.db.WithContext(ctx).Save(l).Error; err != nil {
		return nil, utils.Server("Could not update lecturer", err)
	}
	return l, nil
}

// SoftDelete hides a lecturer from learner views; links stay in place.
func (r *LecturerRepository) SoftDelete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Lecturer{}).Where("id = ?", id).Update("is_deleted", true)
	if res.Error != nil {
		return utils.Server("Could not delete lecturer", res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.NotFound("Lecturer not found")
	}
	return nil
}

// List returns lecturers by name. A non-empty email filters by a
// case-insensitive substring match.
func (r *LecturerRepository) List(ctx context.Context, email string, includeDeleted bool) ([]models.Lecturer, error) {
	q := r.db.WithContext(ctx).Model(&models.Lecturer{})
	if !includeDeleted {
		q = q.Where("is_deleted = ?", false)
	}
	if email = strings.TrimSpace(email); email != "" {
		q = q.Where("LOWER(email) LIKE ?", "%"+strings.ToLower(email)+"%")
	}
	var out []models.Lecturer
	if err := q.Order("username asc").Find(&out).Error; err != nil {
		return nil, utils.Server("Could not query database", err)
	}
	return out, nil
}

func (r *LecturerRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Lecturer, error) {
	var out []models.Lecturer
	err := r.db.WithContext(ctx).
		Joins("JOIN lecturer_maps ON lecturer_maps.lecturer_id = lecturers.id").
		Where("lecturer_maps.course_id = ? AND lecturers.is_deleted = ?", courseID, false).
		Order("lecturers.username asc").
		Find(&out).Error
	if err != nil {
		return nil, utils.Server("Could not query database", err)
	}
	return out, nil
}

func (r *LecturerRepository) CoursesByLecturer(ctx context.Context, lecturerID uint) ([]models.Course, error) {
	if _, err := r.Get(ctx, lecturerID); err != nil {
		return nil, err
	}
	var out []models.Course
	err := r.db.WithContext(ctx).
		Joins("JOIN lecturer_maps ON lecturer_maps.course_id = courses.id").
		Where("lecturer_maps.lecturer_id = ?", lecturerID).
		Order("courses.id asc").
		Find(&out).Error
	if err != nil {
		return nil, utils.Server("Could not query database", err)
	}
	return out, nil
}

// Link attaches a lecturer to a course.
func (r *LecturerRepository) Link(ctx context.Context, courseID string, lecturerID uint) (*models.LecturerMap, error) {
	db := r.db.WithContext(ctx)
	if err := db.First(&models.Course{}, "id = ?", courseID).Error; err != nil {
		return nil, utils.FromDB(err, "Course")
	}
	if _, err := r.Get(ctx, lecturerID); err != nil {
		return nil, err
	}
	var count int64
	if err := db.Model(&models.LecturerMap{}).
		Where("course_id = ? AND lecturer_id = ?", courseID, lecturerID).
		Count(&count).Error; err != nil {
		return nil, utils.Server("Could not query database", err)
	}
	if count > 0 {
		return nil, utils.Conflict("Lecturer %d is already linked to %s", lecturerID, courseID)
	}
	m := &models.LecturerMap{CourseID: courseID, LecturerID: lecturerID}
	if err := db.Create(m).Error; err != nil {
		return nil, utils.Server("Could not link lecturer", err)
	}
	return m, nil
}

func (r *LecturerRepository) Unlink(ctx context.Context, courseID string, lecturerID uint) error {
	res := r.db.WithContext(ctx).
		Where("course_id = ? AND lecturer_id = ?", courseID, lecturerID).
		Delete(&models.LecturerMap{})
	if res.Error != nil {
		return utils.Server("Could not unlink lecturer", res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.NotFound("Lecturer link not found")
	}
	return nil
}
