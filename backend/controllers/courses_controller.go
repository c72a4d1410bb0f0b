package controllers

import (
	"lms/backend/models"
	"lms/backend/services"
	"lms/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// CertificateRenderer turns a certificate into an image.
type CertificateRenderer interface {
	RenderPNG(a *models.CertificateArtifact) ([]byte, error)
}

type CoursesController struct {
	Catalog  *services.CatalogService
	Learning *services.LearningService
	Renderer CertificateRenderer
	Log      *utils.Logger
}

func NewCoursesController(catalog *services.CatalogService, learning *services.LearningService, renderer CertificateRenderer, log *utils.Logger) *CoursesController {
	return &CoursesController{Catalog: catalog, Learning: learning, Renderer: renderer, Log: log}
}

type RateInput struct {
	Rating int `json:"rating"`
}

// ListCourses godoc
// @Summary List courses
// @Description Searches courses by title or description
// @Tags courses
// @Produce json
// @Param search query string false "Search text"
// @Param sort query string false "newest, rating or popularity"
// @Success 200 {array} services.CourseSummary
// @Security ApiKeyAuth
// @Router /courses [get]
func (cc *CoursesController) ListCourses(c *fiber.Ctx) error {
	courses, err := cc.Catalog.ListCourses(c.UserContext(), requester(c), c.Query("search"), c.Query("sort", "newest"))
	if err != nil {
		return utils.HandleError(c, cc.Log, err)
	}
	return c.JSON(courses)
}

// CreateCourse godoc
// @Summary Create course
// @Description The caller becomes the course instructor
// @Tags courses
// @Accept json
// @Produce json
// @Param course body services.CourseInput true "Course"
// @Success 201 {object} models.Course
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses [post]
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	var input services.CourseInput
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}
	course, err := cc.Catalog.CreateCourse(c.UserContext(), requester(c), input)
	if err != nil {
		return utils.HandleError(c, cc.Log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(course)
}

// GetCourseDetails godoc
// @Summary Course details
// @Description Course with lessons and the caller's progress
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} services.CourseDetail
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id} [get]
func (cc *CoursesController) GetCourseDetails(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, cc.Log, err)
	}
	course, err := cc.Catalog.GetCourse(c.UserContext(), requester(c), courseID)
	if err != nil {
		return utils.HandleError(c, cc.Log, err)
	}
	return c.JSON(course)
}

// UpdateCourse godoc
// @Summary Update course
// @Tags courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param course body services.CourseInput true "Course"
// @Success 200 {object} models.Course
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id} [put]
func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, cc.Log, err)
	}
	var input services.CourseInput
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}
	course, err := cc.Catalog.UpdateCourse(c.UserContext(), requester(c), courseID, input)
	if err != nil {
		return utils.HandleError(c, cc.Log, err)
	}
	return c.JSON(course)
}

// DeleteCourse godoc
// @Summary Delete course
// @Tags courses
// @Param id path int true "Course ID"
// @Success 204
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id} [delete]
func (cc *CoursesController) DeleteCourse(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, cc.Log, err)
	}
	if err := cc.Catalog.DeleteCourse(c.UserContext(), requester(c), courseID); err != nil {
		return utils.HandleError(c, cc.Log, err)
	}
	return utils.NoContent(c)
}

// Enroll godoc
// @Summary Enroll in course
// @Tags courses
// @Param id path int true "Course ID"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/enroll [post]
func (cc *CoursesController) Enroll(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, cc.Log, err)
	}
	if err := cc.Learning.Enroll(c.UserContext(), requester(c), courseID); err != nil {
		return utils.HandleError(c, cc.Log, err)
	}
	return utils.Message(c, fiber.StatusCreated, "Enrolled successfully")
}

// RateCourse godoc
// @Summary Rate course
// @Description Stores a 1..5 rating, replacing the caller's previous one
// @Tags courses
// @Accept json
// @Param id path int true "Course ID"
// @Param request body RateInput true "Rating"
// @Success 200 {object} models.CourseRating
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/rate [post]
func (cc *CoursesController) RateCourse(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, cc.Log, err)
	}
	var input RateInput
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}
	rating, err := cc.Learning.RateCourse(c.UserContext(), requester(c), courseID, input.Rating)
	if err != nil {
		return utils.HandleError(c, cc.Log, err)
	}
	return c.JSON(rating)
}

// IssueCertificate godoc
// @Summary Issue certificate
// @Description Returns the caller's certificate once every lesson is completed
// @Tags courses
// @Param id path int true "Course ID"
// @Success 200 {object} models.Certificate
// @Failure 403 {object} utils.ErrorResponse
// @Failure 412 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/certificate [post]
func (cc *CoursesController) IssueCertificate(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, cc.Log, err)
	}
	cert, err := cc.Learning.IssueCertificate(c.UserContext(), requester(c), courseID)
	if err != nil {
		return utils.HandleError(c, cc.Log, err)
	}
	return c.JSON(cert)
}

// DownloadCertificate godoc
// @Summary Download certificate
// @Description Renders the caller's certificate as a PNG image
// @Tags courses
// @Produce png
// @Param id path int true "Course ID"
// @Success 200 {file} binary
// @Failure 412 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/certificate [get]
func (cc *CoursesController) DownloadCertificate(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, cc.Log, err)
	}
	artifact, err := cc.Learning.CertificateArtifact(c.UserContext(), requester(c), courseID)
	if err != nil {
		return utils.HandleError(c, cc.Log, err)
	}
	image, err := cc.Renderer.RenderPNG(artifact)
	if err != nil {
		return utils.HandleError(c, cc.Log, err)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="certificate_`+artifact.CertificateID+`.png"`)
	return c.Send(image)
}

// GetProgressSummary godoc
// @Summary Class progress
// @Description Lists enrolled learners with their progress (instructor only)
// @Tags courses
// @Param id path int true "Course ID"
// @Success 200 {array} models.StudentProgress
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/progress-summary [get]
func (cc *CoursesController) GetProgressSummary(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, cc.Log, err)
	}
	rows, err := cc.Learning.InstructorProgressSummary(c.UserContext(), requester(c), courseID)
	if err != nil {
		return utils.HandleError(c, cc.Log, err)
	}
	return c.JSON(rows)
}
