package controllers

import (
	"courseplatform/backend/catalog"
	"courseplatform/backend/repository"
	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type PromotionsController struct {
	Promotions *repository.PromotionRepository
	Catalog    *catalog.Aggregator
}

func NewPromotionsController(promotions *repository.PromotionRepository, agg *catalog.Aggregator) *PromotionsController {
	return &PromotionsController{Promotions: promotions, Catalog: agg}
}

func promotionID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, utils.Validation("Invalid promotion id")
	}
	return uint(id), nil
}

// GetPromotions returns running and scheduled promotions.
func (pc *PromotionsController) GetPromotions(c *fiber.Ctx) error {
	return pc.split(c, false)
}

// GetAllPromotions also lists expired promotions.
func (pc *PromotionsController) GetAllPromotions(c *fiber.Ctx) error {
	return pc.split(c, true)
}

func (pc *PromotionsController) split(c *fiber.Ctx, includeExpired bool) error {
	split, err := pc.Promotions.Split(c.UserContext(), includeExpired)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, split)
}

func (pc *PromotionsController) CreatePromotion(c *fiber.Ctx) error {
	var in repository.PromotionInput
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	p, err := pc.Promotions.Create(c.UserContext(), in)
	if err != nil {
		return utils.Fail(c, err)
	}
	pc.Catalog.Invalidate(c.UserContext())
	return utils.Created(c, p)
}

func (pc *PromotionsController) UpdatePromotion(c *fiber.Ctx) error {
	id, err := promotionID(c)
	if err != nil {
		return utils.Fail(c, err)
	}
	var in repository.PromotionInput
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	p, err := pc.Promotions.Update(c.UserContext(), id, in)
	if err != nil {
		return utils.Fail(c, err)
	}
	pc.Catalog.Invalidate(c.UserContext())
	return utils.OK(c, p)
}

func (pc *PromotionsController) DeletePromotion(c *fiber.Ctx) error {
	id, err := promotionID(c)
	if err != nil {
		return utils.Fail(c, err)
	}
	if err := pc.Promotions.Delete(c.UserContext(), id); err != nil {
		return utils.Fail(c, err)
	}
	pc.Catalog.Invalidate(c.UserContext())
	return utils.NoContent(c)
}
