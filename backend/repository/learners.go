package repository

import (
	"context"
	"time"

	"courseplatform/backend/models"
	"courseplatform/backend/utils"

	"gorm.io/gorm"
)

// LearnerRepository reads and writes per-user course state: enrollments,
// certificates and annual membership.
type LearnerRepository struct {
	db *gorm.DB
}

func NewLearnerRepository(db *gorm.DB) *LearnerRepository {
	return &LearnerRepository{db: db}
}

func (r *LearnerRepository) User(ctx context.Context, userID uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, userID).Error; err != nil {
		return nil, utils.FromDB(err, "User")
	}
	return &u, nil
}

// EnrolledCourseIDs returns the set of course ids the user is enrolled in.
func (r *LearnerRepository) EnrolledCourseIDs(ctx context.Context, userID uint) (map[string]bool, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("user_id = ?", userID).
		Pluck("course_id", &ids).Error; err != nil {
		return nil, utils.Server("Could not query database", err)
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *LearnerRepository) Enroll(ctx context.Context, userID uint, courseID string) (*models.Enrollment, error) {
	db := r.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error; err != nil {
		return nil, utils.Server("Could not query database", err)
	}
	if count > 0 {
		return nil, utils.Conflict("Already enrolled in %s", courseID)
	}
	e := &models.Enrollment{UserID: userID, CourseID: courseID}
	if err := db.Create(e).Error; err != nil {
		return nil, utils.Server("Could not enroll", err)
	}
	return e, nil
}

func (r *LearnerRepository) Certificates(ctx context.Context, userID uint) ([]models.Certificate, error) {
	var out []models.Certificate
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_date desc").
		Find(&out).Error
	if err != nil {
		return nil, utils.Server("Could not query database", err)
	}
	return out, nil
}

// GrantAnnualMembership extends the user's membership to until.
func (r *LearnerRepository) GrantAnnualMembership(ctx context.Context, userID uint, until time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("annual_member_until", until)
	if res.Error != nil {
		return utils.Server("Could not update membership", res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.NotFound("User not found")
	}
	return nil
}
