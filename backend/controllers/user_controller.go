package controllers

import (
	"strings"
	"time"

	"courseplatform/backend/models"
	"courseplatform/backend/repository"
	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserController struct {
	DB       *gorm.DB
	Learners *repository.LearnerRepository
}

func NewUserController(db *gorm.DB, learners *repository.LearnerRepository) *UserController {
	return &UserController{DB: db, Learners: learners}
}

type UpdateUserRequest struct {
	Username    string `json:"username" example:"john_doe"`
	Email       string `json:"email" example:"user@example.com" validate:"omitempty,email"`
	OldPassword string `json:"old_password" example:"oldPassword123"`
	NewPassword string `json:"new_password" example:"newPassword123" validate:"omitempty,min=8"`
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns the caller's profile, enrollments and membership
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	user, err := uc.Learners.User(ctx, utils.CurrentPrincipal(c).UserID)
	if err != nil {
		return utils.Fail(c, err)
	}
	enrolled, err := uc.Learners.EnrolledCourseIDs(ctx, user.ID)
	if err != nil {
		return utils.Fail(c, err)
	}
	courseIDs := make([]string, 0, len(enrolled))
	for id := range enrolled {
		courseIDs = append(courseIDs, id)
	}
	certs, err := uc.Learners.Certificates(ctx, user.ID)
	if err != nil {
		return utils.Fail(c, err)
	}

	return utils.OK(c, fiber.Map{
		"id":                  user.ID,
		"username":            user.Username,
		"email":               user.Email,
		"role":                user.Role,
		"created_at":          user.CreatedAt,
		"annual_member":       user.ActiveAnnualMember(time.Now()),
		"annual_member_until": user.AnnualMemberUntil,
		"enrolled_courses":    courseIDs,
		"certificates":        len(certs),
	})
}

// UpdateProfile godoc
// @Summary Update user profile
// @Description Updates the caller's username, email or password
// @Tags users
// @Accept json
// @Produce json
// @Param input body UpdateUserRequest true "Profile update data"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	var input UpdateUserRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.Email = strings.TrimSpace(input.Email)
	if err := utils.ValidateStruct(input); err != nil {
		return utils.Fail(c, err)
	}

	user, err := uc.Learners.User(c.UserContext(), utils.CurrentPrincipal(c).UserID)
	if err != nil {
		return utils.Fail(c, err)
	}

	if input.Username != "" && input.Username != user.Username {
		if taken, err := uc.taken("username", input.Username, user.ID); err != nil {
			return utils.Fail(c, err)
		} else if taken {
			return utils.Fail(c, utils.Conflict("Username already taken"))
		}
		user.Username = input.Username
	}

	if input.Email != "" && !strings.EqualFold(input.Email, user.Email) {
		email := strings.ToLower(input.Email)
		if taken, err := uc.taken("email", email, user.ID); err != nil {
			return utils.Fail(c, err)
		} else if taken {
			return utils.Fail(c, utils.Conflict("Email already taken"))
		}
		user.Email = email
	}

	if input.NewPassword != "" {
		if input.OldPassword == "" {
			return utils.Fail(c, utils.Validation("Old password is required to set new password"))
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)); err != nil {
			return utils.Fail(c, utils.Unauthorized("Invalid old password"))
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return utils.Fail(c, utils.Server("Could not hash password", err))
		}
		user.PasswordHash = string(hashedPassword)
	}

	if err := uc.DB.WithContext(c.UserContext()).Save(user).Error; err != nil {
		return utils.Fail(c, utils.Server("Could not update user", err))
	}

	return utils.OK(c, fiber.Map{"message": "Profile updated successfully"})
}

func (uc *UserController) taken(column, value string, exceptID uint) (bool, error) {
	var count int64
	if err := uc.DB.Model(&models.User{}).
		Where(column+" = ? AND id <> ?", value, exceptID).
		Count(&count).Error; err != nil {
		return false, utils.Server("Could not query database", err)
	}
	return count > 0, nil
}

// GrantMembership godoc
// @Summary Grant an annual membership
// @Tags admin
// @Accept json
// @Param id path int true "User ID"
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /admin/users/{id}/membership [post]
func (uc *UserController) GrantMembership(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.Fail(c, utils.Validation("Invalid user id"))
	}
	until := time.Now().AddDate(1, 0, 0)
	if err := uc.Learners.GrantAnnualMembership(c.UserContext(), uint(id), until); err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.Map{"user_id": id, "annual_member_until": until})
}
