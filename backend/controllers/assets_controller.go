package controllers

import (
	"courseplatform/backend/storage"
	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// maxAssetBatch caps a single resolve request.
const maxAssetBatch = 100

type AssetsController struct {
	Assets storage.Resolver
	Limit  int
}

func NewAssetsController(assets storage.Resolver, limit int) *AssetsController {
	return &AssetsController{Assets: assets, Limit: limit}
}

// GetAsset answers {url: null} when the entity has no asset.
func (ac *AssetsController) GetAsset(c *fiber.Ctx) error {
	t, err := storage.ParseAssetType(c.Params("type"))
	if err != nil {
		return utils.Fail(c, err)
	}
	u, err := ac.Assets.Resolve(c.UserContext(), t, c.Params("id"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, storage.Result{Type: t, ID: c.Params("id"), URL: u})
}

func (ac *AssetsController) ResolveAssets(c *fiber.Ctx) error {
	var input struct {
		Assets []struct {
			Type string `json:"type"`
			ID   string `json:"id"`
		} `json:"assets"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if len(input.Assets) > maxAssetBatch {
		return utils.Fail(c, utils.Validation("At most %d assets per request", maxAssetBatch))
	}
	reqs := make([]storage.Request, 0, len(input.Assets))
	for _, a := range input.Assets {
		t, err := storage.ParseAssetType(a.Type)
		if err != nil {
			return utils.Fail(c, err)
		}
		reqs = append(reqs, storage.Request{Type: t, ID: a.ID})
	}
	return utils.OK(c, storage.ResolveMany(c.UserContext(), ac.Assets, reqs, ac.Limit))
}
