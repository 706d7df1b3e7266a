package repository

import (
	"context"
	"strconv"
	"strings"

	"courseplatform/backend/editor"
	"courseplatform/backend/models"
	"courseplatform/backend/utils"

	"gorm.io/gorm"
)

// ModuleRepository stores modules and their lectures. It implements
// editor.Store, editor.Transactor and editor.LectureDeleter.
type ModuleRepository struct {
	db *gorm.DB
}

func NewModuleRepository(db *gorm.DB) *ModuleRepository {
	return &ModuleRepository{db: db}
}

// WithinTx runs fn in one database transaction, so the bulk delete and the
// recreates of a save commit or roll back together.
func (r *ModuleRepository) WithinTx(ctx context.Context, fn func(editor.Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ModuleRepository{db: tx})
	})
}

func (r *ModuleRepository) UpsertModule(ctx context.Context, m *models.Module) error {
	db := r.db.WithContext(ctx)

	if m.ID != "" {
		res := db.Model(&models.Module{}).Where("id = ?", m.ID).Updates(map[string]interface{}{
			"title":    m.Title,
			"duration": m.Duration,
		})
		if res.Error != nil {
			return utils.Server("Could not update module", res.Error)
		}
		if res.RowsAffected > 0 {
			return nil
		}
		// The module was created by a save that rolled back; create it again
		// under the same id.
		if !strings.HasPrefix(m.ID, m.CourseID+"-") {
			return utils.NotFound("Module not found")
		}
	}

	var course models.Course
	if err := db.First(&course, "id = ?", m.CourseID).Error; err != nil {
		return utils.FromDB(err, "Course")
	}
	if course.Kind != models.KindSub {
		return utils.Validation("Modules can only be added to a sub-course")
	}
	if m.ID == "" {
		id, err := r.nextModuleID(ctx, m.CourseID)
		if err != nil {
			return err
		}
		m.ID = id
	}
	if err := db.Create(m).Error; err != nil {
		return utils.Server("Could not create module", err)
	}
	return nil
}

func (r *ModuleRepository) nextModuleID(ctx context.Context, courseID string) (string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&models.Module{}).
		Where("course_id = ?", courseID).
		Pluck("id", &ids).Error; err != nil {
		return "", utils.Server("Could not query database", err)
	}
	max := 0
	prefix := courseID + "-"
	for _, id := range ids {
		n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
		if err == nil && n > max {
			max = n
		}
	}
	if max >= editor.MaxChildren {
		return "", utils.Validation("A sub-course holds at most %d modules", editor.MaxChildren)
	}
	return editor.ChildID(courseID, max+1), nil
}

func (r *ModuleRepository) DeleteLecturesByModule(ctx context.Context, moduleID string) error {
	if err := r.db.WithContext(ctx).Where("module_id = ?", moduleID).Delete(&models.Lecture{}).Error; err != nil {
		return utils.Server("Could not delete lectures", err)
	}
	return nil
}

func (r *ModuleRepository) CreateLecture(ctx context.Context, l *models.Lecture) error {
	if err := r.db.WithContext(ctx).Create(l).Error; err != nil {
		return utils.Server("Could not create lecture", err)
	}
	return nil
}

// DeleteLecture removes a stored lecture and resets the module duration to
// the sum of the lectures left.
func (r *ModuleRepository) DeleteLecture(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var l models.Lecture
		if err := tx.Select("id", "module_id").First(&l, "id = ?", id).Error; err != nil {
			return utils.FromDB(err, "Lecture")
		}
		if err := tx.Delete(&models.Lecture{}, "id = ?", id).Error; err != nil {
			return utils.Server("Could not delete lecture", err)
		}
		var total int64
		if err := tx.Model(&models.Lecture{}).
			Where("module_id = ?", l.ModuleID).
			Select("COALESCE(SUM(duration), 0)").
			Scan(&total).Error; err != nil {
			return utils.Server("Could not query database", err)
		}
		if err := tx.Model(&models.Module{}).
			Where("id = ?", l.ModuleID).
			Update("duration", total).Error; err != nil {
			return utils.Server("Could not update module", err)
		}
		return nil
	})
}

// GetModule loads a module with its lectures in id order.
func (r *ModuleRepository) GetModule(ctx context.Context, id string) (*models.Module, error) {
	var m models.Module
	err := r.db.WithContext(ctx).
		Preload("Lectures", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, utils.FromDB(err, "Module")
	}
	return &m, nil
}

func (r *ModuleRepository) ListModules(ctx context.Context, courseID string) ([]models.Module, error) {
	var out []models.Module
	err := r.db.WithContext(ctx).
		Preload("Lectures", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		Where("course_id = ?", courseID).
		Order("id asc").
		Find(&out).Error
	if err != nil {
		return nil, utils.Server("Could not query database", err)
	}
	return out, nil
}

func (r *ModuleRepository) GetLecture(ctx context.Context, id string) (*models.Lecture, error) {
	var l models.Lecture
	if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, utils.FromDB(err, "Lecture")
	}
	return &l, nil
}

// DeleteModule removes a module and its lectures.
func (r *ModuleRepository) DeleteModule(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("module_id = ?", id).Delete(&models.Lecture{}).Error; err != nil {
			return utils.Server("Could not delete lectures", err)
		}
		res := tx.Delete(&models.Module{}, "id = ?", id)
		if res.Error != nil {
			return utils.Server("Could not delete module", res.Error)
		}
		if res.RowsAffected == 0 {
			return utils.NotFound("Module not found")
		}
		return nil
	})
}
