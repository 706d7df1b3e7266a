package controllers

import (
	"courseplatform/backend/catalog"
	"courseplatform/backend/models"
	"courseplatform/backend/repository"
	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// CoursesController handles course administration. Every write drops the
// cached catalog.
type CoursesController struct {
	Courses *repository.CourseRepository
	Catalog *catalog.Aggregator
	Log     *utils.Logger
}

func NewCoursesController(courses *repository.CourseRepository, agg *catalog.Aggregator, log *utils.Logger) *CoursesController {
	return &CoursesController{Courses: courses, Catalog: agg, Log: log}
}

type courseInput struct {
	ID               string              `json:"id"`
	ParentID         *string             `json:"parent_id"`
	Title            string              `json:"title"`
	Overview         string              `json:"overview"`
	Cost             int64               `json:"cost"`
	Duration         int                 `json:"duration"`
	Category         []string            `json:"category"`
	Skills           []string            `json:"skills"`
	WhatYouWillLearn []string            `json:"what_you_will_learn"`
	Status           models.CourseStatus `json:"status"`
}

func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	var input courseInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	course := models.Course{
		ID:               input.ID,
		ParentID:         input.ParentID,
		Title:            input.Title,
		Overview:         input.Overview,
		Cost:             input.Cost,
		Duration:         input.Duration,
		Category:         input.Category,
		Skills:           input.Skills,
		WhatYouWillLearn: input.WhatYouWillLearn,
		Status:           input.Status,
	}
	if err := cc.Courses.Create(c.UserContext(), &course); err != nil {
		return utils.Fail(c, err)
	}
	cc.Catalog.Invalidate(c.UserContext())
	cc.Log.Info("course created", "course_id", course.ID, "kind", course.Kind)
	return utils.Created(c, course)
}

func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	var input repository.CourseUpdate
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	course, err := cc.Courses.Update(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return utils.Fail(c, err)
	}
	cc.Catalog.Invalidate(c.UserContext())
	return utils.OK(c, course)
}

func (cc *CoursesController) SetStatus(c *fiber.Ctx) error {
	var input struct {
		Status models.CourseStatus `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := cc.Courses.SetStatus(c.UserContext(), c.Params("id"), input.Status); err != nil {
		return utils.Fail(c, err)
	}
	cc.Catalog.Invalidate(c.UserContext())
	return utils.OK(c, fiber.Map{"id": c.Params("id"), "status": input.Status})
}

func (cc *CoursesController) SoftDelete(c *fiber.Ctx) error {
	return cc.setDeleted(c, true)
}

func (cc *CoursesController) Recover(c *fiber.Ctx) error {
	return cc.setDeleted(c, false)
}

func (cc *CoursesController) setDeleted(c *fiber.Ctx, deleted bool) error {
	if err := cc.Courses.SetDeleted(c.UserContext(), c.Params("id"), deleted); err != nil {
		return utils.Fail(c, err)
	}
	cc.Catalog.Invalidate(c.UserContext())
	return utils.OK(c, fiber.Map{"id": c.Params("id"), "is_deleted": deleted})
}

func (cc *CoursesController) HardDelete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := cc.Courses.HardDelete(c.UserContext(), id); err != nil {
		return utils.Fail(c, err)
	}
	cc.Catalog.Invalidate(c.UserContext())
	cc.Log.Warn("course permanently deleted", "course_id", id, "by", utils.CurrentPrincipal(c).UserID)
	return utils.NoContent(c)
}

// GetRecovery lists active and deleted courses, main courses first.
func (cc *CoursesController) GetRecovery(c *fiber.Ctx) error {
	snap, err := cc.Catalog.FetchCatalog(c.UserContext())
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, catalog.RecoveryView(snap))
}

// GetDrafts splits non-deleted courses into draft and published.
func (cc *CoursesController) GetDrafts(c *fiber.Ctx) error {
	snap, err := cc.Catalog.FetchCatalog(c.UserContext())
	if err != nil {
		return utils.Fail(c, err)
	}
	active := catalog.SplitByDeletion(catalog.Listing(snap)).Active
	return utils.OK(c, catalog.SplitByStatus(active))
}
