package repository

import (
	"context"
	"time"

	"courseplatform/backend/models"
	"courseplatform/backend/utils"

	"gorm.io/gorm"
)

type PromotionRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPromotionRepository(db *gorm.DB) *PromotionRepository {
	return &PromotionRepository{db: db, now: time.Now}
}

// PromotionInput is the editable shape of a promotion. CourseIDs is ignored
// when AllCourses is set.
type PromotionInput struct {
	Title           string    `json:"title" validate:"notblank"`
	Description     string    `json:"description"`
	PromotionAmount int       `json:"promotion_amount" validate:"min=1,max=100"`
	StartDate       time.Time `json:"start_date" validate:"required"`
	EndDate         time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
	AllCourses      bool      `json:"all_courses"`
	CourseIDs       []string  `json:"course_ids"`
}

func (in PromotionInput) apply(p *models.Promotion) error {
	if err := utils.ValidateStruct(in); err != nil {
		return err
	}
	target := models.AllCourses
	if !in.AllCourses {
		if len(in.CourseIDs) == 0 {
			return utils.Validation("Pick at least one course or all courses")
		}
		for _, id := range in.CourseIDs {
			if models.ClassifyCourseID(id) == models.KindUnknown {
				return utils.Validation("Invalid course id %q", id)
			}
		}
		encoded, err := models.EncodeCourseTargets(in.CourseIDs)
		if err != nil {
			return utils.Server("Could not encode promotion targets", err)
		}
		target = encoded
	}
	p.Title = in.Title
	p.Description = in.Description
	p.PromotionAmount = in.PromotionAmount
	p.StartDate = in.StartDate
	p.EndDate = in.EndDate
	p.CourseID = target
	return nil
}

func (r *PromotionRepository) Create(ctx context.Context, in PromotionInput) (*models.Promotion, error) {
	p := &models.Promotion{}
	if err := in.apply(p); err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, utils.Server("Could not create promotion", err)
	}
	return p, nil
}

func (r *PromotionRepository) Get(ctx context.Context, id uint) (*models.Promotion, error) {
	var p models.Promotion
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, utils.FromDB(err, "Promotion")
	}
	return &p, nil
}

func (r *PromotionRepository) Update(ctx context.Context, id uint, in PromotionInput) (*models.Promotion, error) {
	p, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(p); err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, utils.Server("Could not update promotion", err)
	}
	return p, nil
}

func (r *PromotionRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Promotion{}, id)
	if res.Error != nil {
		return utils.Server("Could not delete promotion", res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.NotFound("Promotion not found")
	}
	return nil
}

// PromotionSplit buckets promotions by their state at read time.
type PromotionSplit struct {
	Running   []models.Promotion `json:"running"`
	Scheduled []models.Promotion `json:"scheduled"`
	Expired   []models.Promotion `json:"expired,omitempty"`
}

// Split divides promotions into running and scheduled ones. Expired
// promotions are listed only when includeExpired is set.
func (r *PromotionRepository) Split(ctx context.Context, includeExpired bool) (PromotionSplit, error) {
	var all []models.Promotion
	if err := r.db.WithContext(ctx).Order("start_date asc, id asc").Find(&all).Error; err != nil {
		return PromotionSplit{}, utils.Server("Could not query database", err)
	}
	now := r.now()
	out := PromotionSplit{Running: []models.Promotion{}, Scheduled: []models.Promotion{}}
	if includeExpired {
		out.Expired = []models.Promotion{}
	}
	for _, p := range all {
		switch {
		case p.Expired(now):
			if includeExpired {
				out.Expired = append(out.Expired, p)
			}
		case p.Running(now):
			out.Running = append(out.Running, p)
		case p.Scheduled(now):
			out.Scheduled = append(out.Scheduled, p)
		}
	}
	return out, nil
}
