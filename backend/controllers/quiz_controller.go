package controllers

import (
	"strconv"

	"lms/backend/services"
	"lms/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type QuizController struct {
	Catalog  *services.CatalogService
	Learning *services.LearningService
	Log      *utils.Logger
}

func NewQuizController(catalog *services.CatalogService, learning *services.LearningService, log *utils.Logger) *QuizController {
	return &QuizController{Catalog: catalog, Learning: learning, Log: log}
}

// SubmitInput maps question ids to chosen choice ids. Clients send ids as numbers or strings.
type SubmitInput struct {
	Answers map[string]interface{} `json:"answers"`
}

func normalizeAnswers(raw map[string]interface{}) map[string]string {
	answers := make(map[string]string, len(raw))
	for question, choice := range raw {
		switch v := choice.(type) {
		case string:
			answers[question] = v
		case float64:
			answers[question] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return answers
}

// GetQuiz godoc
// @Summary Get lesson quiz
// @Description Correct choices are only included for the instructor
// @Tags quizzes
// @Param id path int true "Course ID"
// @Param lessonId path int true "Lesson ID"
// @Success 200 {object} services.QuizView
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/lessons/{lessonId}/quiz [get]
func (qc *QuizController) GetQuiz(c *fiber.Ctx) error {
	courseID, lessonID, err := courseAndLessonIDs(c)
	if err != nil {
		return utils.HandleError(c, qc.Log, err)
	}
	quiz, err := qc.Catalog.GetQuiz(c.UserContext(), requester(c), courseID, lessonID)
	if err != nil {
		return utils.HandleError(c, qc.Log, err)
	}
	return c.JSON(quiz)
}

// SubmitQuiz godoc
// @Summary Submit quiz answers
// @Description Scores the answers; a pass marks the lesson complete
// @Tags quizzes
// @Accept json
// @Param id path int true "Course ID"
// @Param lessonId path int true "Lesson ID"
// @Param request body SubmitInput true "Answers"
// @Success 200 {object} services.Verdict
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/lessons/{lessonId}/quiz [post]
func (qc *QuizController) SubmitQuiz(c *fiber.Ctx) error {
	courseID, lessonID, err := courseAndLessonIDs(c)
	if err != nil {
		return utils.HandleError(c, qc.Log, err)
	}
	var input SubmitInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	verdict, err := qc.Learning.SubmitQuizAnswers(c.UserContext(), requester(c), courseID, lessonID, normalizeAnswers(input.Answers))
	if err != nil {
		return utils.HandleError(c, qc.Log, err)
	}
	return c.JSON(verdict)
}

// ReplaceQuiz godoc
// @Summary Create or replace lesson quiz
// @Description Instructor only; replaces every question and choice
// @Tags quizzes
// @Accept json
// @Param id path int true "Course ID"
// @Param lessonId path int true "Lesson ID"
// @Param quiz body services.QuizInput true "Quiz"
// @Success 200 {object} services.QuizView
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/lessons/{lessonId}/quiz [put]
func (qc *QuizController) ReplaceQuiz(c *fiber.Ctx) error {
	courseID, lessonID, err := courseAndLessonIDs(c)
	if err != nil {
		return utils.HandleError(c, qc.Log, err)
	}
	var input services.QuizInput
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}
	quiz, err := qc.Catalog.CreateOrReplaceQuiz(c.UserContext(), requester(c), courseID, lessonID, input)
	if err != nil {
		return utils.HandleError(c, qc.Log, err)
	}
	return c.JSON(quiz)
}

// ListAttempts godoc
// @Summary Quiz attempt history
// @Description The caller's own attempts, newest first
// @Tags quizzes
// @Param id path int true "Course ID"
// @Param lessonId path int true "Lesson ID"
// @Success 200 {array} models.QuizAttempt
// @Security ApiKeyAuth
// @Router /courses/{id}/lessons/{lessonId}/quiz/attempts [get]
func (qc *QuizController) ListAttempts(c *fiber.Ctx) error {
	courseID, lessonID, err := courseAndLessonIDs(c)
	if err != nil {
		return utils.HandleError(c, qc.Log, err)
	}
	attempts, err := qc.Learning.QuizAttempts(c.UserContext(), requester(c), courseID, lessonID)
	if err != nil {
		return utils.HandleError(c, qc.Log, err)
	}
	return c.JSON(attempts)
}
