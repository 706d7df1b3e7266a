package repository

import (
	"context"
	"testing"
	"time"

	"courseplatform/backend/models"
	"courseplatform/backend/repository/testutil"
	"courseplatform/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCourseCreateValidation(t *testing.T) {
	db := testutil.DB(t)
	repo := NewCourseRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Course{ID: mainID, Title: "Main"}))

	cases := map[string]*models.Course{
		"bad id shape":     {ID: "ABC-1234", Title: "x"},
		"missing title":    {ID: "ABC-1234-568", Title: " "},
		"main with parent": {ID: "ABC-1234-569", Title: "x", ParentID: strPtr(mainID)},
		"foreign prefix":   {ID: "XYZ-1234-567-01", Title: "x", ParentID: strPtr(mainID)},
		"missing parent":   {ID: "QQQ-1234-567-01", Title: "x", ParentID: strPtr("QQQ-1234-567")},
		"too many outcomes": {ID: "ABC-1234-570", Title: "x",
			WhatYouWillLearn: []string{"1", "2", "3", "4", "5", "6", "7"}},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			err := repo.Create(ctx, c)
			assert.True(t, utils.IsKind(err, utils.KindValidation), "got %v", err)
		})
	}

	err := repo.Create(ctx, &models.Course{ID: mainID, Title: "Again"})
	assert.True(t, utils.IsKind(err, utils.KindConflict))

	require.NoError(t, repo.Create(ctx, &models.Course{ID: subID, Title: "Sub", ParentID: strPtr(mainID)}))
	got, err := repo.Get(ctx, mainID)
	require.NoError(t, err)
	assert.Equal(t, models.KindMain, got.Kind)
	assert.Equal(t, models.StatusDraft, got.Status)
	require.Len(t, got.SubCourses, 1)
	assert.Equal(t, models.KindSub, got.SubCourses[0].Kind)
}

func TestCourseUpdateStatusAndSoftDelete(t *testing.T) {
	db := testutil.DB(t)
	testutil.SeedCourse(t, db, mainID, "", 1000)
	repo := NewCourseRepository(db)
	ctx := context.Background()

	title := "Renamed"
	cost := int64(50000)
	updated, err := repo.Update(ctx, mainID, CourseUpdate{Title: &title, Cost: &cost, Skills: &[]string{"go"}})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)

	require.NoError(t, repo.SetStatus(ctx, mainID, models.StatusDraft))
	require.NoError(t, repo.SetDeleted(ctx, mainID, true))

	got, err := repo.Get(ctx, mainID)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), got.Cost)
	assert.Equal(t, []string{"go"}, []string(got.Skills))
	assert.Equal(t, models.StatusDraft, got.Status)
	assert.True(t, got.IsDeleted)

	assert.True(t, utils.IsKind(repo.SetStatus(ctx, mainID, "archived"), utils.KindValidation))
	assert.True(t, utils.IsKind(repo.SetDeleted(ctx, "NOP-0000-000", false), utils.KindNotFound))
}

func TestCourseHardDeleteCascades(t *testing.T) {
	db := testutil.DB(t)
	testutil.SeedCourse(t, db, mainID, "", 0)
	testutil.SeedCourse(t, db, subID, mainID, 0)
	testutil.SeedCourse(t, db, "ZZZ-0000-000", "", 0)
	testutil.SeedModule(t, db, subID, 1, models.Lecture{Title: "A"}, models.Lecture{Title: "B"})
	testutil.SeedLecturer(t, db, "Ada", "ada@example.com", mainID, subID, "ZZZ-0000-000")
	testutil.SeedCertificates(t, db, subID, 2)
	repo := NewCourseRepository(db)

	require.NoError(t, repo.HardDelete(context.Background(), mainID))

	count := func(model interface{}) int64 {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		return n
	}
	assert.EqualValues(t, 1, count(&models.Course{}))
	assert.Zero(t, count(&models.Module{}))
	assert.Zero(t, count(&models.Lecture{}))
	assert.EqualValues(t, 1, count(&models.LecturerMap{}))
	assert.EqualValues(t, 2, count(&models.Certificate{}))

	assert.True(t, utils.IsKind(repo.HardDelete(context.Background(), mainID), utils.KindNotFound))
}

func TestLecturerRepository(t *testing.T) {
	db := testutil.DB(t)
	testutil.SeedCourse(t, db, mainID, "", 0)
	testutil.SeedCourse(t, db, subID, mainID, 0)
	repo := NewLecturerRepository(db)
	ctx := context.Background()

	ada := &models.Lecturer{Username: "Ada", Email: "Ada@Example.com"}
	require.NoError(t, repo.Create(ctx, ada))
	assert.Equal(t, "ada@example.com", ada.Email)
	assert.True(t, utils.IsKind(repo.Create(ctx, &models.Lecturer{Username: "Other", Email: "ada@example.com"}), utils.KindConflict))
	assert.True(t, utils.IsKind(repo.Create(ctx, &models.Lecturer{Username: "Bad", Email: "nope"}), utils.KindValidation))
	assert.True(t, utils.IsKind(repo.Create(ctx, &models.Lecturer{Username: " ", Email: "blank@example.com"}), utils.KindValidation))

	bob := &models.Lecturer{Username: "Bob", Email: "bob@school.org"}
	require.NoError(t, repo.Create(ctx, bob))

	found, err := repo.List(ctx, "EXAMPLE", false)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, ada.ID, found[0].ID)

	_, err = repo.Link(ctx, subID, ada.ID)
	require.NoError(t, err)
	_, err = repo.Link(ctx, subID, ada.ID)
	assert.True(t, utils.IsKind(err, utils.KindConflict))
	_, err = repo.Link(ctx, "NOP-0000-000", ada.ID)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	byCourse, err := repo.ListByCourse(ctx, subID)
	require.NoError(t, err)
	require.Len(t, byCourse, 1)

	courses, err := repo.CoursesByLecturer(ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, subID, courses[0].ID)

	require.NoError(t, repo.SoftDelete(ctx, ada.ID))
	byCourse, err = repo.ListByCourse(ctx, subID)
	require.NoError(t, err)
	assert.Empty(t, byCourse)
	all, err := repo.List(ctx, "", true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.Unlink(ctx, subID, ada.ID))
	assert.True(t, utils.IsKind(repo.Unlink(ctx, subID, ada.ID), utils.KindNotFound))

	_, err = repo.Update(ctx, bob.ID, models.Lecturer{Username: "Bob", Email: "ada@example.com"})
	assert.True(t, utils.IsKind(err, utils.KindConflict))
}

func TestLecturerEmailMustBeBareAddress(t *testing.T) {
	db := testutil.DB(t)
	repo := NewLecturerRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Lecturer{Username: "Bob", Email: "bob@example.com"}))

	for _, email := range []string{
		"Bob Smith <bob@example.com>",
		"Robert <bob@example.com>",
		"<bob@example.com>",
	} {
		err := repo.Create(ctx, &models.Lecturer{Username: "Bob", Email: email})
		assert.True(t, utils.IsKind(err, utils.KindValidation), "%q: got %v", email, err)
	}

	var stored []models.Lecturer
	require.NoError(t, db.Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, "bob@example.com", stored[0].Email)

	_, err := repo.Update(ctx, stored[0].ID, models.Lecturer{Username: "Bob", Email: "Bob <bob@example.com>"})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestPromotionRepository(t *testing.T) {
	db := testutil.DB(t)
	repo := NewPromotionRepository(db)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := repo.Create(ctx, PromotionInput{Title: "x", PromotionAmount: 0, StartDate: now, EndDate: now.Add(time.Hour), AllCourses: true})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
	_, err = repo.Create(ctx, PromotionInput{Title: "x", PromotionAmount: 10, StartDate: now, EndDate: now, AllCourses: true})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
	_, err = repo.Create(ctx, PromotionInput{Title: "x", PromotionAmount: 10, StartDate: now, EndDate: now.Add(time.Hour)})
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	running, err := repo.Create(ctx, PromotionInput{Title: "Spring", PromotionAmount: 20,
		StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour), CourseIDs: []string{mainID}})
	require.NoError(t, err)
	assert.Equal(t, `["ABC-1234-567"]`, running.CourseID)
	assert.True(t, running.AppliesTo(mainID))

	_, err = repo.Create(ctx, PromotionInput{Title: "Summer", PromotionAmount: 30,
		StartDate: now.Add(24 * time.Hour), EndDate: now.Add(48 * time.Hour), AllCourses: true})
	require.NoError(t, err)
	_, err = repo.Create(ctx, PromotionInput{Title: "Winter", PromotionAmount: 30,
		StartDate: now.Add(-48 * time.Hour), EndDate: now.Add(-24 * time.Hour), AllCourses: true})
	require.NoError(t, err)

	split, err := repo.Split(ctx, false)
	require.NoError(t, err)
	require.Len(t, split.Running, 1)
	require.Len(t, split.Scheduled, 1)
	assert.Nil(t, split.Expired)
	assert.Equal(t, "Spring", split.Running[0].Title)
	assert.Equal(t, models.AllCourses, split.Scheduled[0].CourseID)

	withExpired, err := repo.Split(ctx, true)
	require.NoError(t, err)
	require.Len(t, withExpired.Expired, 1)
	assert.Equal(t, "Winter", withExpired.Expired[0].Title)

	now = now.Add(72 * time.Hour)
	later, err := repo.Split(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, later.Running)
	assert.Empty(t, later.Scheduled)
	assert.Len(t, later.Expired, 3)
	now = now.Add(-72 * time.Hour)

	updated, err := repo.Update(ctx, running.ID, PromotionInput{Title: "Spring", PromotionAmount: 25,
		StartDate: running.StartDate, EndDate: running.EndDate, AllCourses: true})
	require.NoError(t, err)
	assert.Equal(t, models.AllCourses, updated.CourseID)

	require.NoError(t, repo.Delete(ctx, running.ID))
	assert.True(t, utils.IsKind(repo.Delete(ctx, running.ID), utils.KindNotFound))
}

func TestLearnerRepository(t *testing.T) {
	db := testutil.DB(t)
	testutil.SeedCourse(t, db, mainID, "", 0)
	user := testutil.SeedUser(t, db, "learner", "user")
	repo := NewLearnerRepository(db)
	ctx := context.Background()

	_, err := repo.Enroll(ctx, user.ID, mainID)
	require.NoError(t, err)
	_, err = repo.Enroll(ctx, user.ID, mainID)
	assert.True(t, utils.IsKind(err, utils.KindConflict))

	enrolled, err := repo.EnrolledCourseIDs(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{mainID: true}, enrolled)

	until := time.Now().Add(365 * 24 * time.Hour)
	require.NoError(t, repo.GrantAnnualMembership(ctx, user.ID, until))
	got, err := repo.User(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.ActiveAnnualMember(time.Now()))
}

func TestCatalogSourceBuildsSnapshot(t *testing.T) {
	db := testutil.DB(t)
	testutil.SeedCourse(t, db, mainID, "", 90000)
	testutil.SeedCourse(t, db, "ABC-1234-567-01", mainID, 45000)
	testutil.SeedCourse(t, db, "ABC-1234-567-02", mainID, 45000)
	testutil.SeedCourse(t, db, "IND-0001-001-01", "", 20000)
	testutil.SeedCourse(t, db, "ORP-0001-001-01", "ORP-0001-001", 20000)
	testutil.SeedLecturer(t, db, "Ada", "ada@example.com", "ABC-1234-567-01")
	testutil.SeedCertificates(t, db, "ABC-1234-567-02", 3)
	testutil.SeedCertificates(t, db, "IND-0001-001-01", 1)

	now := time.Now()
	testutil.SeedPromotion(t, db, 10, models.AllCourses, now.Add(-time.Hour), 2*time.Hour)
	testutil.SeedPromotion(t, db, 10, models.AllCourses, now.Add(time.Hour), time.Hour)
	testutil.SeedPromotion(t, db, 10, models.AllCourses, now.Add(-3*time.Hour), time.Hour)

	snap, err := NewCatalogSource(db).LoadSnapshot(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.MainCourses, 1)
	assert.Len(t, snap.MainCourses[0].SubCourses, 2)
	require.Len(t, snap.IndependentSubCourses, 2)
	assert.Equal(t, "IND-0001-001-01", snap.IndependentSubCourses[0].ID)
	assert.Len(t, snap.Lecturers, 1)
	assert.Len(t, snap.LecturersMap, 1)
	assert.Len(t, snap.ActivePromotions, 2)

	require.Len(t, snap.TopThreeSubCourses, 3)
	assert.Equal(t, "ABC-1234-567-02", snap.TopThreeSubCourses[0].ID)
	assert.Equal(t, "IND-0001-001-01", snap.TopThreeSubCourses[1].ID)
	assert.Equal(t, "ABC-1234-567-01", snap.TopThreeSubCourses[2].ID)
}
