package repository

import (
	"context"
	"time"

	"courseplatform/backend/catalog"
	"courseplatform/backend/models"
	"courseplatform/backend/utils"

	"gorm.io/gorm"
)

// TopSubCourses is how many sub-courses the catalog ranks.
const TopSubCourses = 3

// CatalogSource builds catalog snapshots from the database.
type CatalogSource struct {
	db  *gorm.DB
	now func() time.Time
}

func NewCatalogSource(db *gorm.DB) *CatalogSource {
	return &CatalogSource{db: db, now: time.Now}
}

type courseCount struct {
	CourseID string
	Total    int
}

// LoadSnapshot reads every course, lecturer, lecturer link and current
// promotion. Sub-courses are nested under their main course when the parent
// exists and listed as independent otherwise.
func (s *CatalogSource) LoadSnapshot(ctx context.Context) (*catalog.Snapshot, error) {
	db := s.db.WithContext(ctx)

	var courses []models.Course
	if err := db.Order("id asc").Find(&courses).Error; err != nil {
		return nil, utils.Server("Could not load courses", err)
	}

	snap := &catalog.Snapshot{
		MainCourses:           []models.Course{},
		IndependentSubCourses: []models.Course{},
	}
	mainIndex := make(map[string]int)
	for _, c := range courses {
		if c.Kind == models.KindMain {
			c.SubCourses = []models.Course{}
			mainIndex[c.ID] = len(snap.MainCourses)
			snap.MainCourses = append(snap.MainCourses, c)
		}
	}
	for _, c := range courses {
		if c.Kind != models.KindSub {
			continue
		}
		if c.ParentID != nil {
			if i, ok := mainIndex[*c.ParentID]; ok {
				snap.MainCourses[i].SubCourses = append(snap.MainCourses[i].SubCourses, c)
				continue
			}
		}
		snap.IndependentSubCourses = append(snap.IndependentSubCourses, c)
	}

	if err := db.Order("id asc").Find(&snap.Lecturers).Error; err != nil {
		return nil, utils.Server("Could not load lecturers", err)
	}
	if err := db.Order("id asc").Find(&snap.LecturersMap).Error; err != nil {
		return nil, utils.Server("Could not load lecturer links", err)
	}
	if err := db.Where("end_date > ?", s.now()).Order("start_date asc, id asc").Find(&snap.ActivePromotions).Error; err != nil {
		return nil, utils.Server("Could not load promotions", err)
	}

	var counts []courseCount
	if err := db.Model(&models.Certificate{}).
		Select("course_id, COUNT(*) AS total").
		Group("course_id").
		Scan(&counts).Error; err != nil {
		return nil, utils.Server("Could not rank sub-courses", err)
	}
	score := make(map[string]int, len(counts))
	for _, c := range counts {
		score[c.CourseID] = c.Total
	}
	snap.TopThreeSubCourses = catalog.RankSubCourses(catalog.AllSubCourses(snap), score, TopSubCourses)

	return snap, nil
}
