package controllers

import (
	"errors"

	"lms/backend/config"
	"lms/backend/models"
	"lms/backend/services"
	"lms/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	Accounts *services.AccountService
	Cfg      *config.Config
	Log      *utils.Logger
}

func NewAuthController(accounts *services.AccountService, cfg *config.Config, log *utils.Logger) *AuthController {
	return &AuthController{Accounts: accounts, Cfg: cfg, Log: log}
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (ac *AuthController) tokenResponse(c *fiber.Ctx, status int, user *models.User) error {
	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}
	return c.Status(status).JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// Register godoc
// @Summary Register a new user
// @Description Creates a new user account and returns a token
// @Tags auth
// @Accept json
// @Produce json
// @Param user body services.RegisterInput true "User registration data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input services.RegisterInput
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}

	user, err := ac.Accounts.Register(c.UserContext(), input)
	if err != nil {
		return utils.HandleError(c, ac.Log, err)
	}
	return ac.tokenResponse(c, fiber.StatusCreated, user)
}

// Login godoc
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginInput true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input LoginInput
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}

	user, err := ac.Accounts.Authenticate(c.UserContext(), input.Username, input.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		return utils.Unauthorized(c, "Invalid credentials")
	}
	if err != nil {
		return utils.HandleError(c, ac.Log, err)
	}
	return ac.tokenResponse(c, fiber.StatusOK, user)
}
