package controllers

import (
	"strconv"

	"lms/backend/services"
	"lms/backend/utils"

	"github.com/gofiber/fiber/v2"
)

func requester(c *fiber.Ctx) services.Requester {
	userID, _ := utils.CurrentUserID(c)
	return services.NewRequester(userID)
}

// paramID reads a positive numeric route parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

func courseAndLessonIDs(c *fiber.Ctx) (uint, uint, error) {
	courseID, err := paramID(c, "id")
	if err != nil {
		return 0, 0, err
	}
	lessonID, err := paramID(c, "lessonId")
	if err != nil {
		return 0, 0, err
	}
	return courseID, lessonID, nil
}
