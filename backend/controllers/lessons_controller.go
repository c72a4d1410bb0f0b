package controllers

import (
	"lms/backend/services"
	"lms/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type LessonsController struct {
	Catalog  *services.CatalogService
	Learning *services.LearningService
	Practice *services.PracticeService
	Log      *utils.Logger
}

func NewLessonsController(catalog *services.CatalogService, learning *services.LearningService, practice *services.PracticeService, log *utils.Logger) *LessonsController {
	return &LessonsController{Catalog: catalog, Learning: learning, Practice: practice, Log: log}
}

// ListLessons godoc
// @Summary List lessons
// @Tags lessons
// @Param id path int true "Course ID"
// @Success 200 {array} services.LessonView
// @Security ApiKeyAuth
// @Router /courses/{id}/lessons [get]
func (lc *LessonsController) ListLessons(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, lc.Log, err)
	}
	lessons, err := lc.Catalog.ListLessons(c.UserContext(), requester(c), courseID)
	if err != nil {
		return utils.HandleError(c, lc.Log, err)
	}
	return c.JSON(lessons)
}

// GetLesson godoc
// @Summary Lesson details
// @Tags lessons
// @Param id path int true "Course ID"
// @Param lessonId path int true "Lesson ID"
// @Success 200 {object} services.LessonView
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/lessons/{lessonId} [get]
func (lc *LessonsController) GetLesson(c *fiber.Ctx) error {
	courseID, lessonID, err := courseAndLessonIDs(c)
	if err != nil {
		return utils.HandleError(c, lc.Log, err)
	}
	lesson, err := lc.Catalog.GetLesson(c.UserContext(), requester(c), courseID, lessonID)
	if err != nil {
		return utils.HandleError(c, lc.Log, err)
	}
	return c.JSON(lesson)
}

// AddLesson godoc
// @Summary Add lesson
// @Description Instructor only; order defaults to the end of the course
// @Tags lessons
// @Accept json
// @Param id path int true "Course ID"
// @Param lesson body services.LessonInput true "Lesson"
// @Success 201 {object} models.Lesson
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/lessons [post]
func (lc *LessonsController) AddLesson(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, lc.Log, err)
	}
	var input services.LessonInput
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}
	lesson, err := lc.Catalog.AddLesson(c.UserContext(), requester(c), courseID, input)
	if err != nil {
		return utils.HandleError(c, lc.Log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(lesson)
}

// UpdateLesson godoc
// @Summary Update lesson
// @Tags lessons
// @Accept json
// @Param id path int true "Course ID"
// @Param lessonId path int true "Lesson ID"
// @Param lesson body services.LessonInput true "Lesson"
// @Success 200 {object} models.Lesson
// @Security ApiKeyAuth
// @Router /courses/{id}/lessons/{lessonId} [put]
func (lc *LessonsController) UpdateLesson(c *fiber.Ctx) error {
	courseID, lessonID, err := courseAndLessonIDs(c)
	if err != nil {
		return utils.HandleError(c, lc.Log, err)
	}
	var input services.LessonInput
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}
	lesson, err := lc.Catalog.UpdateLesson(c.UserContext(), requester(c), courseID, lessonID, input)
	if err != nil {
		return utils.HandleError(c, lc.Log, err)
	}
	return c.JSON(lesson)
}

// DeleteLesson godoc
// @Summary Delete lesson
// @Tags lessons
// @Param id path int true "Course ID"
// @Param lessonId path int true "Lesson ID"
// @Success 204
// @Security ApiKeyAuth
// @Router /courses/{id}/lessons/{lessonId} [delete]
func (lc *LessonsController) DeleteLesson(c *fiber.Ctx) error {
	courseID, lessonID, err := courseAndLessonIDs(c)
	if err != nil {
		return utils.HandleError(c, lc.Log, err)
	}
	if err := lc.Catalog.DeleteLesson(c.UserContext(), requester(c), courseID, lessonID); err != nil {
		return utils.HandleError(c, lc.Log, err)
	}
	return utils.NoContent(c)
}

// CompleteLesson godoc
// @Summary Mark lesson complete
// @Tags lessons
// @Param id path int true "Course ID"
// @Param lessonId path int true "Lesson ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/lessons/{lessonId}/complete [post]
func (lc *LessonsController) CompleteLesson(c *fiber.Ctx) error {
	courseID, lessonID, err := courseAndLessonIDs(c)
	if err != nil {
		return utils.HandleError(c, lc.Log, err)
	}
	req := requester(c)
	if err := lc.Learning.MarkLessonComplete(c.UserContext(), req, courseID, lessonID); err != nil {
		return utils.HandleError(c, lc.Log, err)
	}
	progress, err := lc.Learning.CourseProgress(c.UserContext(), req, courseID)
	if err != nil {
		return utils.HandleError(c, lc.Log, err)
	}
	return utils.Message(c, fiber.StatusOK, "Lesson marked as complete", progress)
}

// GeneratePractice godoc
// @Summary Generate practice questions
// @Description Asks the AI provider for practice questions; nothing is stored
// @Tags lessons
// @Param id path int true "Course ID"
// @Param lessonId path int true "Lesson ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/lessons/{lessonId}/generate-practice [post]
func (lc *LessonsController) GeneratePractice(c *fiber.Ctx) error {
	courseID, lessonID, err := courseAndLessonIDs(c)
	if err != nil {
		return utils.HandleError(c, lc.Log, err)
	}
	questions, err := lc.Practice.Generate(c.UserContext(), requester(c), courseID, lessonID)
	if err != nil {
		return utils.HandleError(c, lc.Log, err)
	}
	return c.JSON(fiber.Map{"questions": questions})
}
