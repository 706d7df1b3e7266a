package middleware

import (
	"courseplatform/backend/config"
	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware rejects requests without a valid token and stores the
// caller's principal for the handlers.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := utils.ExtractPrincipal(c, cfg)
		if err != nil {
			return utils.Fail(c, err)
		}
		utils.SetPrincipal(c, p)
		return c.Next()
	}
}

// OptionalAuth stores the principal when a valid token is present and lets
// anonymous requests through.
func OptionalAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get("Authorization") != "" {
			if p, err := utils.ExtractPrincipal(c, cfg); err == nil {
				utils.SetPrincipal(c, p)
			}
		}
		return c.Next()
	}
}

// RoleMiddleware lets through principals holding one of roles. It must run
// after AuthMiddleware.
func RoleMiddleware(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := utils.CurrentPrincipal(c)
		if !p.Authenticated() {
			return utils.Fail(c, utils.Unauthorized("Unauthorized"))
		}
		for _, r := range roles {
			if p.Role == r {
				return c.Next()
			}
		}
		return utils.Fail(c, utils.Forbidden("Forbidden - %s access required", roles[0]))
	}
}

// AdminMiddleware requires the admin role.
func AdminMiddleware() fiber.Handler {
	return RoleMiddleware(utils.RoleAdmin)
}
