package testutil

import (
	"fmt"
	"testing"
	"time"

	"courseplatform/backend/models"
	"courseplatform/backend/utils"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB opens a fresh in-memory sqlite database with every table migrated.
// A single connection keeps transactions and plain queries on the same
// database.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=0", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := utils.Migrate(db, models.All()...); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

func Logger(tb testing.TB) *utils.Logger {
	tb.Helper()
	log, err := utils.InitLogger("test")
	if err != nil {
		tb.Fatalf("init logger: %v", err)
	}
	return log
}

func must(tb testing.TB, err error) {
	tb.Helper()
	if err != nil {
		tb.Fatalf("seed: %v", err)
	}
}

// SeedCourse inserts a published course. parent may be empty.
func SeedCourse(tb testing.TB, db *gorm.DB, id, parent string, cost int64) *models.Course {
	tb.Helper()
	c := &models.Course{ID: id, Title: "Course " + id, Cost: cost, Status: models.StatusPublished}
	if parent != "" {
		c.ParentID = &parent
	}
	must(tb, db.Create(c).Error)
	return c
}

func SeedModule(tb testing.TB, db *gorm.DB, courseID string, n int, lectures ...models.Lecture) *models.Module {
	tb.Helper()
	m := &models.Module{ID: fmt.Sprintf("%s-%02d", courseID, n), CourseID: courseID, Title: fmt.Sprintf("Module %d", n)}
	for i, l := range lectures {
		l.ID = fmt.Sprintf("%s-%02d", m.ID, i+1)
		l.ModuleID = m.ID
		if l.Type == "" {
			l.Type = models.LectureVideo
		}
		if l.Title == "" {
			l.Title = l.ID
		}
		m.Duration += l.Duration
		m.Lectures = append(m.Lectures, l)
	}
	must(tb, db.Create(m).Error)
	return m
}

func SeedLecturer(tb testing.TB, db *gorm.DB, name, email string, courseIDs ...string) *models.Lecturer {
	tb.Helper()
	l := &models.Lecturer{Username: name, Email: email}
	must(tb, db.Create(l).Error)
	for _, id := range courseIDs {
		must(tb, db.Create(&models.LecturerMap{CourseID: id, LecturerID: l.ID}).Error)
	}
	return l
}

// SeedPromotion inserts a promotion running from start for d.
func SeedPromotion(tb testing.TB, db *gorm.DB, amount int, target string, start time.Time, d time.Duration) *models.Promotion {
	tb.Helper()
	p := &models.Promotion{Title: "Promo", PromotionAmount: amount, CourseID: target, StartDate: start, EndDate: start.Add(d)}
	must(tb, db.Create(p).Error)
	return p
}

func SeedCertificates(tb testing.TB, db *gorm.DB, courseID string, n int) {
	tb.Helper()
	for i := 0; i < n; i++ {
		must(tb, db.Create(&models.Certificate{CourseID: courseID, UserID: uint(1000 + i), CompletedDate: time.Now()}).Error)
	}
}

func SeedUser(tb testing.TB, db *gorm.DB, username, role string) *models.User {
	tb.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", PasswordHash: "x", Role: role}
	must(tb, db.Create(u).Error)
	return u
}
