package catalog

import (
	"time"

	"courseplatform/backend/models"
)

const (
	// FlatPrice is the single-course price; only main courses above it get
	// the bundle discount.
	FlatPrice int64 = 45000

	bundleWithPromotionPercent = 5
	bundleOnlyPercent          = 10
)

// DiscountPercent sums the running promotions that target courseID and
// clamps the total to [0, 100].
func DiscountPercent(promotions []models.Promotion, courseID string, now time.Time) int {
	total := 0
	for i := range promotions {
		p := &promotions[i]
		if !p.Running(now) || !p.AppliesTo(courseID) {
			continue
		}
		total += p.PromotionAmount
	}
	return clampPercent(total)
}

// ComputeDiscount is DiscountPercent as a fraction in [0, 1].
func ComputeDiscount(promotions []models.Promotion, courseID string, now time.Time) float64 {
	return float64(DiscountPercent(promotions, courseID, now)) / 100
}

// Quote is the price shown for a course.
type Quote struct {
	CourseID         string `json:"course_id"`
	Cost             int64  `json:"cost"`
	PromotionPercent int    `json:"promotion_percent"`
	BundlePercent    int    `json:"bundle_percent"`
	TotalPercent     int    `json:"total_percent"`
	Price            int64  `json:"price"`
}

// PriceCourse applies promotions and, for main courses priced above
// FlatPrice, the bundle discount: 5% on top of a promotion, 10% without
// one. Flat-priced courses only get the promotion.
func PriceCourse(course models.Course, promotions []models.Promotion, now time.Time) Quote {
	promo := DiscountPercent(promotions, course.ID, now)
	bundle := 0
	if ClassifyByIDShape(course.ID) == models.KindMain && course.Cost > FlatPrice {
		if promo > 0 {
			bundle = bundleWithPromotionPercent
		} else {
			bundle = bundleOnlyPercent
		}
	}
	total := clampPercent(promo + bundle)
	return Quote{
		CourseID:         course.ID,
		Cost:             course.Cost,
		PromotionPercent: promo,
		BundlePercent:    bundle,
		TotalPercent:     total,
		Price:            applyPercent(course.Cost, total),
	}
}

// applyPercent returns cost * (100 - percent) / 100 rounded half up.
func applyPercent(cost int64, percent int) int64 {
	return (cost*int64(100-percent) + 50) / 100
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
