package routes

import (
	"lms/backend/config"
	"lms/backend/controllers"
	_ "lms/backend/docs"
	"lms/backend/middleware"
	"lms/backend/repository"
	"lms/backend/services"
	"lms/backend/utils"

	"github.com/gofiber/fiber/v2"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"gorm.io/gorm"
)

// Deps are the collaborators the HTTP layer is built from. Generator, Cache and
// Renderer may be swapped for fakes in tests.
type Deps struct {
	DB        *gorm.DB
	Cfg       *config.Config
	Log       *utils.Logger
	Generator services.PracticeGenerator
	Cache     services.PracticeCache
	Renderer  controllers.CertificateRenderer
}

func SetupRoutes(app *fiber.App, deps Deps) {
	repos := repository.New(deps.DB, deps.Log)
	accounts := services.NewAccountService(deps.DB, repos, deps.Log)
	catalog := services.NewCatalogService(deps.DB, repos, deps.Log)
	learning := services.NewLearningService(deps.DB, repos, deps.Log)
	practice := services.NewPracticeService(repos, deps.Generator, deps.Cache, deps.Log)

	app.Get("/swagger/*", fiberSwagger.WrapHandler)

	// Auth routes
	authController := controllers.NewAuthController(accounts, deps.Cfg, deps.Log)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	authMiddleware := middleware.AuthMiddleware(deps.Cfg)

	// User routes
	userController := controllers.NewUserController(accounts, learning, deps.Log)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Progress routes
	progressController := controllers.NewProgressController(learning, deps.Log)
	app.Get("/api/progress", authMiddleware, progressController.GetProgress)

	// Courses routes
	coursesController := controllers.NewCoursesController(catalog, learning, deps.Renderer, deps.Log)
	analyticsController := controllers.NewAnalyticsController(learning, deps.Log)
	courses := app.Group("/api/courses", authMiddleware)
	courses.Get("/", coursesController.ListCourses)
	courses.Post("/", coursesController.CreateCourse)
	courses.Get("/:id", coursesController.GetCourseDetails)
	courses.Put("/:id", coursesController.UpdateCourse)
	courses.Delete("/:id", coursesController.DeleteCourse)
	courses.Post("/:id/enroll", coursesController.Enroll)
	courses.Post("/:id/rate", coursesController.RateCourse)
	courses.Get("/:id/progress", progressController.GetCourseProgress)
	courses.Get("/:id/progress-summary", coursesController.GetProgressSummary)
	courses.Post("/:id/certificate", coursesController.IssueCertificate)
	courses.Get("/:id/certificate", coursesController.DownloadCertificate)
	courses.Get("/:id/analytics", analyticsController.GetCourseAnalytics)

	// Lesson routes
	lessonsController := controllers.NewLessonsController(catalog, learning, practice, deps.Log)
	courses.Get("/:id/lessons", lessonsController.ListLessons)
	courses.Post("/:id/lessons", lessonsController.AddLesson)
	courses.Get("/:id/lessons/:lessonId", lessonsController.GetLesson)
	courses.Put("/:id/lessons/:lessonId", lessonsController.UpdateLesson)
	courses.Delete("/:id/lessons/:lessonId", lessonsController.DeleteLesson)
	courses.Post("/:id/lessons/:lessonId/complete", lessonsController.CompleteLesson)
	courses.Post("/:id/lessons/:lessonId/generate-practice", lessonsController.GeneratePractice)

	// Quiz routes
	quizController := controllers.NewQuizController(catalog, learning, deps.Log)
	courses.Get("/:id/lessons/:lessonId/quiz", quizController.GetQuiz)
	courses.Post("/:id/lessons/:lessonId/quiz", quizController.SubmitQuiz)
	courses.Put("/:id/lessons/:lessonId/quiz", quizController.ReplaceQuiz)
	courses.Get("/:id/lessons/:lessonId/quiz/attempts", quizController.ListAttempts)
}
