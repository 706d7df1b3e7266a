package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"courseplatform/backend/config"
	"courseplatform/backend/models"
	"courseplatform/backend/repository/testutil"
	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	mainID = "ABC-1234-567"
	subID  = "ABC-1234-567-01"
)

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	cfg   *config.Config
	admin string
	user  string
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:           "testsecret",
		SaveTimeout:         5 * time.Second,
		MaxConcurrentWrites: 4,
	}
	db := testutil.DB(t)
	app := fiber.New()
	SetupRoutes(app, db, cfg, Services{Log: testutil.Logger(t)})

	env := &testEnv{app: app, db: db, cfg: cfg}
	env.admin = env.token(t, testutil.SeedUser(t, db, "admin", utils.RoleAdmin))
	env.user = env.token(t, testutil.SeedUser(t, db, "learner", utils.RoleUser))
	return env
}

func (e *testEnv) token(t *testing.T, u *models.User) string {
	t.Helper()
	token, err := utils.GenerateJWTToken(u.ID, u.Role, e.cfg)
	require.NoError(t, err)
	return "Bearer " + token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(jsonData)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var result map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&result)
	return resp.StatusCode, result
}

func data(t *testing.T, result map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := result["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", result)
	return d
}

func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	testutil.SeedCourse(t, db, mainID, "", 90000)
	testutil.SeedCourse(t, db, subID, mainID, 45000)
	draft := testutil.SeedCourse(t, db, "ABC-1234-567-02", mainID, 45000)
	require.NoError(t, db.Model(draft).Update("status", models.StatusDraft).Error)
	testutil.SeedLecturer(t, db, "Ada", "ada@example.com", subID)
	testutil.SeedLecturer(t, db, "Eve", "eve@example.com", "ABC-1234-5678-01")
}

func TestRegisterAndLogin(t *testing.T) {
	env := setup(t)

	status, result := env.do(t, "POST", "/api/auth/register", "", map[string]string{
		"username": "newuser",
		"email":    "newuser@example.com",
		"password": "password123",
	})
	assert.Equal(t, fiber.StatusCreated, status)
	assert.NotEmpty(t, data(t, result)["token"])

	status, _ = env.do(t, "POST", "/api/auth/register", "", map[string]string{
		"username": "newuser",
		"email":    "other@example.com",
		"password": "password123",
	})
	assert.Equal(t, fiber.StatusConflict, status)

	status, result = env.do(t, "POST", "/api/auth/login", "", map[string]string{
		"username": "newuser",
		"password": "password123",
	})
	assert.Equal(t, fiber.StatusOK, status)
	user := data(t, result)["user"].(map[string]interface{})
	assert.Equal(t, utils.RoleUser, user["role"])

	status, result = env.do(t, "POST", "/api/auth/login", "", map[string]string{
		"username": "newuser",
		"password": "wrong",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", result["message"])
}

func TestCatalogViews(t *testing.T) {
	env := setup(t)
	seedCatalog(t, env.db)

	status, result := env.do(t, "GET", "/api/catalog", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	mains := data(t, result)["mainCourses"].([]interface{})
	require.Len(t, mains, 1)
	subs := mains[0].(map[string]interface{})["subCourses"].([]interface{})
	assert.Len(t, subs, 1)
	assert.Equal(t, "ready", result["meta"].(map[string]interface{})["status"])

	status, result = env.do(t, "GET", "/api/catalog", env.admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	mains = data(t, result)["mainCourses"].([]interface{})
	assert.Len(t, mains[0].(map[string]interface{})["subCourses"].([]interface{}), 2)

	status, _ = env.do(t, "GET", "/api/courses/ABC-1234-567-02", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, result = env.do(t, "GET", "/api/courses/"+mainID, env.user, nil)
	require.Equal(t, fiber.StatusOK, status)
	d := data(t, result)
	lecturers := d["lecturers"].([]interface{})
	require.Len(t, lecturers, 1)
	assert.Equal(t, "Ada", lecturers[0].(map[string]interface{})["username"])
	course := d["course"].(map[string]interface{})
	assert.Equal(t, "main", course["kind"])
	assert.Equal(t, true, course["can_enroll"])

	status, result = env.do(t, "GET", "/api/courses/"+mainID+"/price", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 81000, data(t, result)["price"])
}

func TestCatalogEmpty(t *testing.T) {
	env := setup(t)
	status, result := env.do(t, "GET", "/api/catalog/courses", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "empty", result["meta"].(map[string]interface{})["status"])
}

func TestPromotionAffectsPrice(t *testing.T) {
	env := setup(t)
	seedCatalog(t, env.db)
	now := time.Now()

	status, _ := env.do(t, "POST", "/api/admin/promotions", env.admin, map[string]interface{}{
		"title":            "Spring",
		"promotion_amount": 10,
		"start_date":       now.Add(-time.Hour),
		"end_date":         now.Add(time.Hour),
		"course_ids":       []string{mainID},
	})
	require.Equal(t, fiber.StatusCreated, status)

	status, result := env.do(t, "GET", "/api/courses/"+mainID+"/price", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 76500, data(t, result)["price"])

	status, result = env.do(t, "GET", "/api/promotions", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, data(t, result)["running"].([]interface{}), 1)
	assert.NotContains(t, data(t, result), "expired")

	status, _ = env.do(t, "POST", "/api/admin/promotions", env.admin, map[string]interface{}{
		"title":            "Winter",
		"promotion_amount": 30,
		"start_date":       now.Add(-48 * time.Hour),
		"end_date":         now.Add(-24 * time.Hour),
		"all_courses":      true,
	})
	require.Equal(t, fiber.StatusCreated, status)

	status, result = env.do(t, "GET", "/api/admin/promotions", env.admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, data(t, result)["running"].([]interface{}), 1)
	assert.Len(t, data(t, result)["expired"].([]interface{}), 1)

	status, result = env.do(t, "GET", "/api/courses/"+mainID+"/price", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 76500, data(t, result)["price"])

	status, _ = env.do(t, "POST", "/api/admin/promotions", env.user, map[string]interface{}{"title": "x"})
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestEnrollment(t *testing.T) {
	env := setup(t)
	seedCatalog(t, env.db)

	status, _ := env.do(t, "POST", "/api/courses/"+subID+"/enroll", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = env.do(t, "POST", "/api/courses/"+subID+"/enroll", env.user, nil)
	assert.Equal(t, fiber.StatusCreated, status)
	status, _ = env.do(t, "POST", "/api/courses/"+subID+"/enroll", env.user, nil)
	assert.Equal(t, fiber.StatusConflict, status)
	status, _ = env.do(t, "POST", "/api/courses/"+mainID+"/enroll", env.admin, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, result := env.do(t, "GET", "/api/catalog/courses", env.user, nil)
	require.Equal(t, fiber.StatusOK, status)
	enrolled := data(t, result)["enrolled"].([]interface{})
	require.Len(t, enrolled, 1)
	assert.Equal(t, subID, enrolled[0].(map[string]interface{})["id"])
	assert.Equal(t, false, enrolled[0].(map[string]interface{})["can_enroll"])
}

func TestCertificatesAreBucketed(t *testing.T) {
	env := setup(t)
	seedCatalog(t, env.db)
	var learner models.User
	require.NoError(t, env.db.Where("username = ?", "learner").First(&learner).Error)
	for _, id := range []string{mainID, subID, "GONE-0000-000"} {
		require.NoError(t, env.db.Create(&models.Certificate{CourseID: id, UserID: learner.ID, CompletedDate: time.Now()}).Error)
	}

	status, result := env.do(t, "GET", "/api/certificates", env.user, nil)
	require.Equal(t, fiber.StatusOK, status)
	d := data(t, result)
	assert.Len(t, d["main"].([]interface{}), 1)
	assert.Len(t, d["sub"].([]interface{}), 1)
	assert.Equal(t, "Course "+subID, d["sub"].([]interface{})[0].(map[string]interface{})["course_title"])
}

func TestAdminCourseLifecycle(t *testing.T) {
	env := setup(t)

	status, _ := env.do(t, "POST", "/api/admin/courses", "", map[string]interface{}{"id": mainID})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, _ = env.do(t, "POST", "/api/admin/courses", env.user, map[string]interface{}{"id": mainID})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, result := env.do(t, "POST", "/api/admin/courses", env.admin, map[string]interface{}{
		"id": mainID, "title": "Philosophy", "cost": 90000, "what_you_will_learn": []string{"logic"},
	})
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "draft", data(t, result)["status"])

	status, _ = env.do(t, "POST", "/api/admin/courses", env.admin, map[string]interface{}{"id": "ABC-12", "title": "Bad"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, result = env.do(t, "GET", "/api/admin/courses/drafts", env.admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, data(t, result)["draft"].([]interface{}), 1)

	status, _ = env.do(t, "PUT", "/api/admin/courses/"+mainID+"/status", env.admin, map[string]string{"status": "published"})
	require.Equal(t, fiber.StatusOK, status)
	status, _ = env.do(t, "DELETE", "/api/admin/courses/"+mainID, env.admin, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, result = env.do(t, "GET", "/api/admin/courses/recovery", env.admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, data(t, result)["deleted"].([]interface{}), 1)

	status, _ = env.do(t, "POST", "/api/admin/courses/"+mainID+"/recover", env.admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	status, _ = env.do(t, "DELETE", "/api/admin/courses/"+mainID+"/hard", env.admin, nil)
	require.Equal(t, fiber.StatusNoContent, status)
	status, _ = env.do(t, "DELETE", "/api/admin/courses/"+mainID+"/hard", env.admin, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestModuleEditorFlow(t *testing.T) {
	env := setup(t)
	seedCatalog(t, env.db)

	status, result := env.do(t, "POST", "/api/admin/courses/"+subID+"/modules", env.admin, map[string]interface{}{
		"title": "Week 1",
		"lectures": []map[string]interface{}{
			{"title": "Intro", "type": "video", "duration": 10, "link": "https://video/1"},
			{"title": "Check", "type": "quiz", "duration": "5", "min_score_to_pass": 1,
				"qa_data": []map[string]interface{}{{"question": "2+2?", "options": []string{"3", "4"}, "answer": "4"}}},
		},
	})
	require.Equal(t, fiber.StatusCreated, status)
	module := data(t, result)
	moduleID := module["id"].(string)
	assert.Equal(t, subID+"-01", moduleID)
	assert.EqualValues(t, 15, module["duration"])
	assert.Len(t, module["lectures"].([]interface{}), 2)

	status, result = env.do(t, "POST", "/api/lectures/"+moduleID+"-02/attempt", env.user, map[string]interface{}{"answers": []string{"4"}})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, data(t, result)["passed"])

	status, _ = env.do(t, "POST", "/api/lectures/"+moduleID+"-01/attempt", env.user, map[string]interface{}{"answers": []string{}})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, result = env.do(t, "PUT", "/api/admin/modules/"+moduleID, env.admin, map[string]interface{}{
		"title": "Week 1",
		"lectures": []map[string]interface{}{
			{"title": "Recap", "type": "reading", "duration": 3},
			{"title": "Intro", "type": "video", "duration": 10},
		},
	})
	require.Equal(t, fiber.StatusOK, status)
	lectures := data(t, result)["lectures"].([]interface{})
	require.Len(t, lectures, 2)
	assert.Equal(t, moduleID+"-01", lectures[0].(map[string]interface{})["id"])
	assert.Equal(t, "Recap", lectures[0].(map[string]interface{})["title"])

	status, result = env.do(t, "PUT", "/api/admin/lectures/"+moduleID+"-02/position", env.admin, map[string]interface{}{"position": 1})
	require.Equal(t, fiber.StatusOK, status)
	lectures = data(t, result)["lectures"].([]interface{})
	require.Len(t, lectures, 2)
	assert.Equal(t, moduleID+"-01", lectures[0].(map[string]interface{})["id"])
	assert.Equal(t, "Intro", lectures[0].(map[string]interface{})["title"])
	assert.Equal(t, "Recap", lectures[1].(map[string]interface{})["title"])

	status, _ = env.do(t, "PUT", "/api/admin/lectures/"+moduleID+"-02/position", env.admin, map[string]interface{}{"position": 3})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	status, _ = env.do(t, "PUT", "/api/admin/lectures/"+moduleID+"-02/position", env.admin, map[string]interface{}{"position": 0})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, _ = env.do(t, "PUT", "/api/admin/modules/"+moduleID, env.admin, map[string]interface{}{
		"title":    "Week 1",
		"lectures": []map[string]interface{}{{"title": "", "type": "video"}},
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, result = env.do(t, "DELETE", "/api/admin/lectures/"+moduleID+"-01", env.admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, data(t, result)["lectures"].([]interface{}), 1)
	assert.EqualValues(t, 3, data(t, result)["duration"])

	status, result = env.do(t, "GET", "/api/admin/courses/"+subID+"/modules", env.admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	stored := result["data"].([]interface{})
	require.Len(t, stored, 1)
	assert.EqualValues(t, 3, stored[0].(map[string]interface{})["duration"])

	status, result = env.do(t, "DELETE", "/api/admin/lectures/"+moduleID+"-02", env.admin, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "A module must contain at least one lecture", result["message"])

	status, _ = env.do(t, "POST", "/api/admin/courses/"+mainID+"/modules", env.admin, map[string]interface{}{
		"title":    "Wrong level",
		"lectures": []map[string]interface{}{{"title": "A", "type": "video", "duration": 1}},
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func TestLecturerAdmin(t *testing.T) {
	env := setup(t)
	seedCatalog(t, env.db)

	status, result := env.do(t, "POST", "/api/admin/lecturers", env.admin, map[string]interface{}{
		"username": "Grace", "email": "grace@navy.mil",
	})
	require.Equal(t, fiber.StatusCreated, status)
	id := int(data(t, result)["id"].(float64))

	status, result = env.do(t, "GET", "/api/admin/lecturers?email=NAVY", env.admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, result["data"].([]interface{}), 1)

	status, _ = env.do(t, "POST", "/api/admin/lecturer-maps", env.admin, map[string]interface{}{"course_id": mainID, "lecturer_id": id})
	require.Equal(t, fiber.StatusCreated, status)

	status, result = env.do(t, "GET", "/api/courses/"+mainID+"/lecturers", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, result["data"].([]interface{}), 2)

	status, _ = env.do(t, "DELETE", "/api/admin/lecturer-maps", env.admin, map[string]interface{}{"course_id": mainID, "lecturer_id": id})
	assert.Equal(t, fiber.StatusNoContent, status)
	status, _ = env.do(t, "GET", "/api/admin/lecturers/abc", env.admin, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func TestAssetsWithoutStore(t *testing.T) {
	env := setup(t)

	status, result := env.do(t, "GET", "/api/assets/image/"+mainID, "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Nil(t, data(t, result)["url"])

	status, _ = env.do(t, "GET", "/api/assets/audio/"+mainID, "", nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, result = env.do(t, "POST", "/api/assets/resolve", "", map[string]interface{}{
		"assets": []map[string]string{{"type": "image", "id": "A"}, {"type": "pdf", "id": "B"}},
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, result["data"].([]interface{}), 2)
}

func TestProfileAndMembership(t *testing.T) {
	env := setup(t)
	seedCatalog(t, env.db)

	status, result := env.do(t, "GET", "/api/user/profile", env.user, nil)
	require.Equal(t, fiber.StatusOK, status)
	profile := data(t, result)
	assert.Equal(t, "learner", profile["username"])
	assert.Equal(t, false, profile["annual_member"])

	id := int(profile["id"].(float64))
	status, _ = env.do(t, "POST", "/api/admin/users/"+strconv.Itoa(id)+"/membership", env.admin, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, _ = env.do(t, "POST", "/api/courses/"+subID+"/enroll", env.user, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = env.do(t, "PUT", "/api/user/profile", env.user, map[string]string{"username": "admin"})
	assert.Equal(t, fiber.StatusConflict, status)
	status, _ = env.do(t, "PUT", "/api/user/profile", env.user, map[string]string{"email": "Learner2@Example.com"})
	assert.Equal(t, fiber.StatusOK, status)
}
