package controllers

import (
	"lms/backend/services"
	"lms/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsController struct {
	Learning *services.LearningService
	Log      *utils.Logger
}

func NewAnalyticsController(learning *services.LearningService, log *utils.Logger) *AnalyticsController {
	return &AnalyticsController{Learning: learning, Log: log}
}

// GetCourseAnalytics godoc
// @Summary Course analytics
// @Description Per-quiz attempt statistics and class progress (instructor only)
// @Tags analytics
// @Param id path int true "Course ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/analytics [get]
func (ac *AnalyticsController) GetCourseAnalytics(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, ac.Log, err)
	}
	ctx := c.UserContext()
	req := requester(c)

	quizzes, err := ac.Learning.QuizAnalytics(ctx, req, courseID)
	if err != nil {
		return utils.HandleError(c, ac.Log, err)
	}
	students, err := ac.Learning.InstructorProgressSummary(ctx, req, courseID)
	if err != nil {
		return utils.HandleError(c, ac.Log, err)
	}

	completed := 0
	sum := 0
	for _, s := range students {
		sum += s.Progress
		if s.Progress == 100 {
			completed++
		}
	}
	average := 0
	if len(students) > 0 {
		average = sum / len(students)
	}

	return c.JSON(fiber.Map{
		"course_id":        courseID,
		"enrolled":         len(students),
		"completed":        completed,
		"average_progress": average,
		"quizzes":          quizzes,
	})
}
