package controllers

import (
	"lms/backend/services"
	"lms/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Accounts *services.AccountService
	Learning *services.LearningService
	Log      *utils.Logger
}

func NewUserController(accounts *services.AccountService, learning *services.LearningService, log *utils.Logger) *UserController {
	return &UserController{Accounts: accounts, Learning: learning, Log: log}
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns the user with enrolled course progress and certificates
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	req := requester(c)
	ctx := c.UserContext()

	user, err := uc.Accounts.Profile(ctx, req)
	if err != nil {
		return utils.HandleError(c, uc.Log, err)
	}
	courses, err := uc.Learning.Dashboard(ctx, req)
	if err != nil {
		return utils.HandleError(c, uc.Log, err)
	}
	certificates, err := uc.Accounts.Certificates(ctx, req)
	if err != nil {
		return utils.HandleError(c, uc.Log, err)
	}

	return c.JSON(fiber.Map{
		"id":           user.ID,
		"username":     user.Username,
		"email":        user.Email,
		"joined_at":    user.CreatedAt,
		"courses":      courses,
		"certificates": certificates,
	})
}

// UpdateProfile godoc
// @Summary Update user profile
// @Description Updates username, email or password
// @Tags users
// @Accept json
// @Produce json
// @Param request body services.ProfileInput true "Profile changes"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	var input services.ProfileInput
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}

	user, err := uc.Accounts.UpdateProfile(c.UserContext(), requester(c), input)
	if err != nil {
		return utils.HandleError(c, uc.Log, err)
	}
	return c.JSON(fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}
