package controllers

import (
	"lms/backend/services"
	"lms/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ProgressController struct {
	Learning *services.LearningService
	Log      *utils.Logger
}

func NewProgressController(learning *services.LearningService, log *utils.Logger) *ProgressController {
	return &ProgressController{Learning: learning, Log: log}
}

// GetProgress godoc
// @Summary Learner dashboard
// @Description Progress across every enrolled course
// @Tags progress
// @Produce json
// @Success 200 {array} models.CourseProgress
// @Security ApiKeyAuth
// @Router /progress [get]
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	rows, err := pc.Learning.Dashboard(c.UserContext(), requester(c))
	if err != nil {
		return utils.HandleError(c, pc.Log, err)
	}
	return c.JSON(rows)
}

// GetCourseProgress godoc
// @Summary Course progress
// @Tags progress
// @Param id path int true "Course ID"
// @Success 200 {object} services.Progress
// @Security ApiKeyAuth
// @Router /courses/{id}/progress [get]
func (pc *ProgressController) GetCourseProgress(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, pc.Log, err)
	}
	progress, err := pc.Learning.CourseProgress(c.UserContext(), requester(c), courseID)
	if err != nil {
		return utils.HandleError(c, pc.Log, err)
	}
	return c.JSON(progress)
}
