package controllers

import (
	"errors"
	"strings"
	"time"

	"courseplatform/backend/config"
	"courseplatform/backend/models"
	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Log *utils.Logger
}

func NewAuthController(db *gorm.DB, cfg *config.Config, log *utils.Logger) *AuthController {
	return &AuthController{DB: db, Cfg: cfg, Log: log}
}

type registerInput struct {
	Username string `json:"username" validate:"notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=8"`
}

func userJSON(user *models.User) fiber.Map {
	return fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	}
}

// Register creates a learner account. Lecturer and admin roles are granted
// out of band.
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input registerInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := utils.ValidateStruct(input); err != nil {
		return utils.Fail(c, err)
	}

	var count int64
	if err := ac.DB.Model(&models.User{}).
		Where("username = ? OR email = ?", input.Username, input.Email).
		Count(&count).Error; err != nil {
		return utils.Fail(c, utils.Server("Could not query database", err))
	}
	if count > 0 {
		return utils.Fail(c, utils.Conflict("Username or email is already taken"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.Fail(c, utils.Server("Could not hash password", err))
	}

	user := models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Role:         utils.RoleUser,
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		return utils.Fail(c, utils.Server("Could not create user", err))
	}

	token, err := utils.GenerateJWTToken(user.ID, user.Role, ac.Cfg)
	if err != nil {
		return utils.Fail(c, utils.Server("Could not generate token", err))
	}
	ac.Log.Info("user registered", "user_id", user.ID)

	return utils.Created(c, fiber.Map{"token": token, "user": userJSON(&user)})
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var user models.User
	if err := ac.DB.Where("username = ?", input.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Fail(c, utils.Unauthorized("Invalid credentials"))
		}
		return utils.Fail(c, utils.Server("Could not query database", err))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return utils.Fail(c, utils.Unauthorized("Invalid credentials"))
	}

	token, err := utils.GenerateJWTToken(user.ID, user.Role, ac.Cfg)
	if err != nil {
		return utils.Fail(c, utils.Server("Could not generate token", err))
	}

	if err := ac.DB.Create(&models.LoginHistory{UserID: user.ID, LoginTime: time.Now()}).Error; err != nil {
		ac.Log.Warn("login history not recorded", "user_id", user.ID, "error", err)
	}

	return utils.OK(c, fiber.Map{"token": token, "user": userJSON(&user)})
}
