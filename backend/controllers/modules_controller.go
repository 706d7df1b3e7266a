package controllers

import (
	"context"

	"courseplatform/backend/catalog"
	"courseplatform/backend/editor"
	"courseplatform/backend/models"
	"courseplatform/backend/repository"
	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// ModulesController exposes the module editor. Each request rebuilds an
// editing session from the stored module and the submitted form.
type ModulesController struct {
	Modules    *repository.ModuleRepository
	Reconciler *editor.Reconciler
	Catalog    *catalog.Aggregator
}

func NewModulesController(modules *repository.ModuleRepository, rec *editor.Reconciler, agg *catalog.Aggregator) *ModulesController {
	return &ModulesController{Modules: modules, Reconciler: rec, Catalog: agg}
}

type moduleForm struct {
	Title    string              `json:"title"`
	Lectures []editor.DraftInput `json:"lectures"`
}

type moduleView struct {
	ID       editor.PersistedID `json:"id"`
	CourseID string             `json:"course_id"`
	Title    string             `json:"title"`
	Duration int                `json:"duration"`
	Lectures []editor.Draft     `json:"lectures"`
}

func viewOf(s *editor.Session) moduleView {
	return moduleView{
		ID:       s.ModuleID,
		CourseID: s.CourseID,
		Title:    s.Title,
		Duration: s.Duration,
		Lectures: s.Drafts(),
	}
}

// GetModule opens a stored module for editing.
func (mc *ModulesController) GetModule(c *fiber.Ctx) error {
	m, err := mc.Modules.GetModule(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, viewOf(editor.LoadSession(m)))
}

func (mc *ModulesController) ListModules(c *fiber.Ctx) error {
	modules, err := mc.Modules.ListModules(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, modules)
}

func (mc *ModulesController) CreateModule(c *fiber.Ctx) error {
	var form moduleForm
	if err := c.BodyParser(&form); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	s := editor.NewSession(c.Params("id"))
	return mc.save(c, s, form, fiber.StatusCreated)
}

func (mc *ModulesController) UpdateModule(c *fiber.Ctx) error {
	var form moduleForm
	if err := c.BodyParser(&form); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	m, err := mc.Modules.GetModule(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return mc.save(c, editor.LoadSession(m), form, fiber.StatusOK)
}

func (mc *ModulesController) save(c *fiber.Ctx, s *editor.Session, form moduleForm, status int) error {
	if err := s.ApplyForm(form.Title, form.Lectures); err != nil {
		return utils.Fail(c, err)
	}
	module, err := mc.Reconciler.Save(c.UserContext(), s, mc.Modules)
	if err != nil {
		return utils.Fail(c, err)
	}
	mc.Catalog.Invalidate(c.UserContext())
	return utils.Success(c, status, module)
}

// lectureSession opens the module holding a stored lecture and returns the
// draft key of that lecture.
func (mc *ModulesController) lectureSession(ctx context.Context, lectureID string) (*editor.Session, editor.LocalID, error) {
	lecture, err := mc.Modules.GetLecture(ctx, lectureID)
	if err != nil {
		return nil, "", err
	}
	m, err := mc.Modules.GetModule(ctx, lecture.ModuleID)
	if err != nil {
		return nil, "", err
	}
	s := editor.LoadSession(m)
	for _, d := range s.Drafts() {
		if string(d.ID) == lecture.ID {
			return s, d.Key, nil
		}
	}
	return nil, "", utils.NotFound("Lecture not found in module")
}

// DeleteLecture removes one stored lecture right away. The last lecture of
// a module cannot be removed.
func (mc *ModulesController) DeleteLecture(c *fiber.Ctx) error {
	ctx := c.UserContext()
	s, key, err := mc.lectureSession(ctx, c.Params("id"))
	if err != nil {
		return utils.Fail(c, err)
	}
	if err := s.DeleteLecture(ctx, key, mc.Modules); err != nil {
		return utils.Fail(c, err)
	}
	mc.Catalog.Invalidate(ctx)
	return utils.OK(c, viewOf(s))
}

// MoveLecture moves a stored lecture to a 1-based position and saves the
// module, which renumbers every lecture.
func (mc *ModulesController) MoveLecture(c *fiber.Ctx) error {
	var input struct {
		Position int `json:"position" validate:"min=1"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.Fail(c, err)
	}
	ctx := c.UserContext()
	s, key, err := mc.lectureSession(ctx, c.Params("id"))
	if err != nil {
		return utils.Fail(c, err)
	}
	if err := s.MoveLecture(key, input.Position-1); err != nil {
		return utils.Fail(c, err)
	}
	module, err := mc.Reconciler.Save(ctx, s, mc.Modules)
	if err != nil {
		return utils.Fail(c, err)
	}
	mc.Catalog.Invalidate(ctx)
	return utils.OK(c, module)
}

// SubmitAttempt scores a quiz attempt.
func (mc *ModulesController) SubmitAttempt(c *fiber.Ctx) error {
	var input struct {
		Answers []string `json:"answers"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	lecture, err := mc.Modules.GetLecture(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.Fail(c, err)
	}
	if lecture.Type != models.LectureQuiz {
		return utils.Fail(c, utils.Validation("Lecture %s is not a quiz", lecture.ID))
	}
	score, passed := lecture.Score(input.Answers)
	return utils.OK(c, fiber.Map{
		"lecture_id": lecture.ID,
		"score":      score,
		"total":      len(lecture.QAData),
		"passed":     passed,
	})
}
