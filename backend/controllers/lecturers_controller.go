package controllers

import (
	"courseplatform/backend/catalog"
	"courseplatform/backend/models"
	"courseplatform/backend/repository"
	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type LecturersController struct {
	Lecturers *repository.LecturerRepository
	Catalog   *catalog.Aggregator
}

func NewLecturersController(lecturers *repository.LecturerRepository, agg *catalog.Aggregator) *LecturersController {
	return &LecturersController{Lecturers: lecturers, Catalog: agg}
}

func lecturerID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, utils.Validation("Invalid lecturer id")
	}
	return uint(id), nil
}

// ListLecturers supports ?email= substring search and ?deleted=true.
func (lc *LecturersController) ListLecturers(c *fiber.Ctx) error {
	out, err := lc.Lecturers.List(c.UserContext(), c.Query("email"), c.QueryBool("deleted", false))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, out)
}

func (lc *LecturersController) GetLecturer(c *fiber.Ctx) error {
	id, err := lecturerID(c)
	if err != nil {
		return utils.Fail(c, err)
	}
	l, err := lc.Lecturers.Get(c.UserContext(), id)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, l)
}

func (lc *LecturersController) CreateLecturer(c *fiber.Ctx) error {
	var l models.Lecturer
	if err := c.BodyParser(&l); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	l.ID, l.IsDeleted = 0, false
	if err := lc.Lecturers.Create(c.UserContext(), &l); err != nil {
		return utils.Fail(c, err)
	}
	lc.Catalog.Invalidate(c.UserContext())
	return utils.Created(c, l)
}

func (lc *LecturersController) UpdateLecturer(c *fiber.Ctx) error {
	id, err := lecturerID(c)
	if err != nil {
		return utils.Fail(c, err)
	}
	var in models.Lecturer
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	l, err := lc.Lecturers.Update(c.UserContext(), id, in)
	if err != nil {
		return utils.Fail(c, err)
	}
	lc.Catalog.Invalidate(c.UserContext())
	return utils.OK(c, l)
}

func (lc *LecturersController) DeleteLecturer(c *fiber.Ctx) error {
	id, err := lecturerID(c)
	if err != nil {
		return utils.Fail(c, err)
	}
	if err := lc.Lecturers.SoftDelete(c.UserContext(), id); err != nil {
		return utils.Fail(c, err)
	}
	lc.Catalog.Invalidate(c.UserContext())
	return utils.NoContent(c)
}

func (lc *LecturersController) GetLecturerCourses(c *fiber.Ctx) error {
	id, err := lecturerID(c)
	if err != nil {
		return utils.Fail(c, err)
	}
	courses, err := lc.Lecturers.CoursesByLecturer(c.UserContext(), id)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, courses)
}

type lecturerMapInput struct {
	CourseID   string `json:"course_id"`
	LecturerID uint   `json:"lecturer_id"`
}

func (lc *LecturersController) CreateMap(c *fiber.Ctx) error {
	var in lecturerMapInput
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	m, err := lc.Lecturers.Link(c.UserContext(), in.CourseID, in.LecturerID)
	if err != nil {
		return utils.Fail(c, err)
	}
	lc.Catalog.Invalidate(c.UserContext())
	return utils.Created(c, m)
}

func (lc *LecturersController) DeleteMap(c *fiber.Ctx) error {
	var in lecturerMapInput
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := lc.Lecturers.Unlink(c.UserContext(), in.CourseID, in.LecturerID); err != nil {
		return utils.Fail(c, err)
	}
	lc.Catalog.Invalidate(c.UserContext())
	return utils.NoContent(c)
}
