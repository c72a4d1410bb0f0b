package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"lms/backend/apperr"
	"lms/backend/models"
	"lms/backend/repository"
	"lms/backend/utils"

	"gorm.io/gorm"
)

type CourseInput struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
}

type LessonInput struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content"`
	Order   *int   `json:"order" validate:"omitempty,min=0"`
}

type ChoiceInput struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}

type QuestionInput struct {
	Text    string        `json:"text" validate:"required"`
	Choices []ChoiceInput `json:"choices" validate:"required,min=1,dive"`
}

// QuizInput replaces the whole quiz of a lesson; an empty title gets a default.
type QuizInput struct {
	Title     string          `json:"title" validate:"max=255"`
	Questions []QuestionInput `json:"questions" validate:"dive"`
}

// CourseSummary is a course as seen by the requester in listings.
type CourseSummary struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	InstructorID    uint      `json:"instructor_id"`
	InstructorName  string    `json:"instructor_name"`
	CreatedAt       time.Time `json:"created_at"`
	EnrollmentCount int64     `json:"enrollment_count"`
	AverageRating   float64   `json:"average_rating"`
	UserRating      *int      `json:"user_rating"`
	IsEnrolled      bool      `json:"is_enrolled"`
	IsInstructor    bool      `json:"is_instructor"`
	Progress        int       `json:"progress"`
}

type CourseDetail struct {
	CourseSummary
	Lessons []LessonView `json:"lessons"`
}

type LessonView struct {
	ID          uint   `json:"id"`
	CourseID    uint   `json:"course_id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Order       int    `json:"order"`
	IsCompleted bool   `json:"is_completed"`
	HasQuiz     bool   `json:"has_quiz"`
	QuizPassed  bool   `json:"quiz_passed"`
}

type ChoiceView struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	IsCorrect *bool  `json:"is_correct,omitempty"`
}

type QuestionView struct {
	ID      uint         `json:"id"`
	Text    string       `json:"text"`
	Choices []ChoiceView `json:"choices"`
}

type QuizView struct {
	ID        uint           `json:"id"`
	LessonID  uint           `json:"lesson_id"`
	Title     string         `json:"title"`
	Questions []QuestionView `json:"questions"`
}

// CatalogService owns course, lesson and quiz authoring plus the enriched read views.
type CatalogService struct {
	db       *gorm.DB
	repos    *repository.Repos
	progress *ProgressTracker
	log      *utils.Logger
}

func NewCatalogService(db *gorm.DB, repos *repository.Repos, log *utils.Logger) *CatalogService {
	return &CatalogService{
		db:       db,
		repos:    repos,
		progress: NewProgressTracker(repos),
		log:      log.With("component", "catalog"),
	}
}

func (s *CatalogService) ownedCourse(ctx context.Context, tx *gorm.DB, req Requester, courseID uint) (*models.Course, error) {
	course, err := s.repos.Courses.GetByID(ctx, tx, courseID)
	if err != nil {
		return nil, notFound(err, "course")
	}
	if !req.IsInstructorOf(course) {
		return nil, apperr.Forbidden("only the course instructor can modify this course")
	}
	return course, nil
}

func (s *CatalogService) CreateCourse(ctx context.Context, req Requester, in CourseInput) (*models.Course, error) {
	course := models.Course{
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		InstructorID: req.UserID,
	}
	if course.Title == "" {
		return nil, apperr.BadRequest("title is required")
	}
	if err := s.repos.Courses.Create(ctx, nil, &course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	s.log.Info("course created", "course_id", course.ID, "instructor_id", req.UserID)
	return &course, nil
}

func (s *CatalogService) UpdateCourse(ctx context.Context, req Requester, courseID uint, in CourseInput) (*models.Course, error) {
	course, err := s.ownedCourse(ctx, nil, req, courseID)
	if err != nil {
		return nil, err
	}
	course.Title = strings.TrimSpace(in.Title)
	course.Description = in.Description
	if course.Title == "" {
		return nil, apperr.BadRequest("title is required")
	}
	if err := s.repos.Courses.UpdateDetails(ctx, nil, course); err != nil {
		return nil, err
	}
	return course, nil
}

// DeleteCourse removes the course with its lessons, quizzes and learner records.
func (s *CatalogService) DeleteCourse(ctx context.Context, req Requester, courseID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.ownedCourse(ctx, tx, req, courseID); err != nil {
			return err
		}
		return s.repos.Courses.DeleteTree(ctx, tx, courseID)
	})
}

// ListCourses searches title and description; sort is newest, rating or popularity.
func (s *CatalogService) ListCourses(ctx context.Context, req Requester, search, sort string) ([]CourseSummary, error) {
	courses, err := s.repos.Courses.Search(ctx, nil, search, sort)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, req, courses)
}

func (s *CatalogService) GetCourse(ctx context.Context, req Requester, courseID uint) (*CourseDetail, error) {
	course, err := s.repos.Courses.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, notFound(err, "course")
	}
	summaries, err := s.summarize(ctx, req, []models.Course{*course})
	if err != nil {
		return nil, err
	}
	lessons, err := s.lessonViews(ctx, req, courseID)
	if err != nil {
		return nil, err
	}
	return &CourseDetail{CourseSummary: summaries[0], Lessons: lessons}, nil
}

func (s *CatalogService) summarize(ctx context.Context, req Requester, courses []models.Course) ([]CourseSummary, error) {
	ids := make([]uint, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	enrollmentCounts, err := s.repos.Enrollments.CountByCourses(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	ratings, err := s.repos.Ratings.SummaryByCourses(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	own, err := s.repos.Ratings.ByUserForCourses(ctx, nil, req.UserID, ids)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.repos.Enrollments.ListByUser(ctx, nil, req.UserID)
	if err != nil {
		return nil, err
	}
	enrolled := make(map[uint]bool, len(enrollments))
	for _, e := range enrollments {
		enrolled[e.CourseID] = true
	}

	out := make([]CourseSummary, 0, len(courses))
	for i := range courses {
		course := &courses[i]
		summary := CourseSummary{
			ID:              course.ID,
			Title:           course.Title,
			Description:     course.Description,
			InstructorID:    course.InstructorID,
			InstructorName:  course.Instructor.Username,
			CreatedAt:       course.CreatedAt,
			EnrollmentCount: enrollmentCounts[course.ID],
			AverageRating:   math.Round(ratings[course.ID].Average*10) / 10,
			IsEnrolled:      enrolled[course.ID],
			IsInstructor:    req.IsInstructorOf(course),
		}
		if r, ok := own[course.ID]; ok {
			rating := r
			summary.UserRating = &rating
		}
		if summary.IsEnrolled {
			p, err := s.progress.Snapshot(ctx, nil, req.UserID, course.ID)
			if err != nil {
				return nil, err
			}
			summary.Progress = p.Percent
		}
		out = append(out, summary)
	}
	return out, nil
}

func (s *CatalogService) lessonViews(ctx context.Context, req Requester, courseID uint) ([]LessonView, error) {
	lessons, err := s.repos.Lessons.ListByCourse(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	completed, err := s.repos.Completions.LessonIDsInCourse(ctx, nil, req.UserID, courseID)
	if err != nil {
		return nil, err
	}
	quizIDs := make([]uint, 0, len(lessons))
	for _, l := range lessons {
		if l.Quiz != nil {
			quizIDs = append(quizIDs, l.Quiz.ID)
		}
	}
	passed, err := s.repos.Attempts.PassedQuizIDs(ctx, nil, req.UserID, quizIDs)
	if err != nil {
		return nil, err
	}

	views := make([]LessonView, 0, len(lessons))
	for _, l := range lessons {
		view := LessonView{
			ID:          l.ID,
			CourseID:    l.CourseID,
			Title:       l.Title,
			Content:     l.Content,
			Order:       l.Order,
			IsCompleted: completed[l.ID],
			HasQuiz:     l.Quiz != nil,
		}
		if l.Quiz != nil {
			view.QuizPassed = passed[l.Quiz.ID]
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *CatalogService) ListLessons(ctx context.Context, req Requester, courseID uint) ([]LessonView, error) {
	if _, err := s.repos.Courses.GetByID(ctx, nil, courseID); err != nil {
		return nil, notFound(err, "course")
	}
	return s.lessonViews(ctx, req, courseID)
}

func (s *CatalogService) GetLesson(ctx context.Context, req Requester, courseID, lessonID uint) (*LessonView, error) {
	if _, err := s.repos.Lessons.GetInCourse(ctx, nil, courseID, lessonID); err != nil {
		return nil, notFound(err, "lesson")
	}
	views, err := s.lessonViews(ctx, req, courseID)
	if err != nil {
		return nil, err
	}
	for i := range views {
		if views[i].ID == lessonID {
			return &views[i], nil
		}
	}
	return nil, apperr.NotFound("lesson not found")
}

func (s *CatalogService) AddLesson(ctx context.Context, req Requester, courseID uint, in LessonInput) (*models.Lesson, error) {
	var lesson *models.Lesson
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.ownedCourse(ctx, tx, req, courseID); err != nil {
			return err
		}
		lesson = &models.Lesson{CourseID: courseID, Title: strings.TrimSpace(in.Title), Content: in.Content}
		if lesson.Title == "" {
			return apperr.BadRequest("title is required")
		}
		if in.Order != nil {
			lesson.Order = *in.Order
		} else {
			next, err := s.repos.Lessons.NextOrder(ctx, tx, courseID)
			if err != nil {
				return err
			}
			lesson.Order = next
		}
		return s.repos.Lessons.Create(ctx, tx, lesson)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("lesson added", "course_id", courseID, "lesson_id", lesson.ID)
	return lesson, nil
}

func (s *CatalogService) UpdateLesson(ctx context.Context, req Requester, courseID, lessonID uint, in LessonInput) (*models.Lesson, error) {
	if _, err := s.ownedCourse(ctx, nil, req, courseID); err != nil {
		return nil, err
	}
	lesson, err := s.repos.Lessons.GetInCourse(ctx, nil, courseID, lessonID)
	if err != nil {
		return nil, notFound(err, "lesson")
	}
	lesson.Title = strings.TrimSpace(in.Title)
	lesson.Content = in.Content
	if lesson.Title == "" {
		return nil, apperr.BadRequest("title is required")
	}
	if in.Order != nil {
		lesson.Order = *in.Order
	}
	if err := s.repos.Lessons.Update(ctx, nil, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

// DeleteLesson removes the lesson with its quiz, attempts and completions.
func (s *CatalogService) DeleteLesson(ctx context.Context, req Requester, courseID, lessonID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.ownedCourse(ctx, tx, req, courseID); err != nil {
			return err
		}
		if _, err := s.repos.Lessons.GetInCourse(ctx, tx, courseID, lessonID); err != nil {
			return notFound(err, "lesson")
		}
		return s.repos.Lessons.DeleteTree(ctx, tx, lessonID)
	})
}

// GetQuiz returns the lesson quiz. Choice correctness is only shown to the instructor.
func (s *CatalogService) GetQuiz(ctx context.Context, req Requester, courseID, lessonID uint) (*QuizView, error) {
	course, err := s.repos.Courses.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, notFound(err, "course")
	}
	if _, err := s.repos.Lessons.GetInCourse(ctx, nil, courseID, lessonID); err != nil {
		return nil, notFound(err, "lesson")
	}
	quiz, err := s.repos.Quizzes.GetByLessonID(ctx, nil, lessonID)
	if err != nil {
		return nil, notFound(err, "quiz")
	}
	return quizView(quiz, req.IsInstructorOf(course)), nil
}

func quizView(quiz *models.Quiz, withAnswers bool) *QuizView {
	view := &QuizView{
		ID:        quiz.ID,
		LessonID:  quiz.LessonID,
		Title:     quiz.Title,
		Questions: make([]QuestionView, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		qv := QuestionView{ID: q.ID, Text: q.Text, Choices: make([]ChoiceView, 0, len(q.Choices))}
		for _, c := range q.Choices {
			cv := ChoiceView{ID: c.ID, Text: c.Text}
			if withAnswers {
				correct := c.IsCorrect
				cv.IsCorrect = &correct
			}
			qv.Choices = append(qv.Choices, cv)
		}
		view.Questions = append(view.Questions, qv)
	}
	return view
}

// CreateOrReplaceQuiz swaps the lesson's questions for the given ones.
// Every question needs text and exactly one correct choice.
func (s *CatalogService) CreateOrReplaceQuiz(ctx context.Context, req Requester, courseID, lessonID uint, in QuizInput) (*QuizView, error) {
	questions, err := buildQuestions(in.Questions)
	if err != nil {
		return nil, err
	}

	var quiz *models.Quiz
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.ownedCourse(ctx, tx, req, courseID); err != nil {
			return err
		}
		lesson, err := s.repos.Lessons.GetInCourse(ctx, tx, courseID, lessonID)
		if err != nil {
			return notFound(err, "lesson")
		}
		title := strings.TrimSpace(in.Title)
		if title == "" {
			title = "Quiz for " + lesson.Title
		}
		quiz, err = s.repos.Quizzes.Replace(ctx, tx, lessonID, title, questions)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("quiz saved", "lesson_id", lessonID, "quiz_id", quiz.ID, "questions", len(quiz.Questions))
	return quizView(quiz, true), nil
}

func buildQuestions(in []QuestionInput) ([]models.Question, error) {
	questions := make([]models.Question, 0, len(in))
	for i, q := range in {
		text := strings.TrimSpace(q.Text)
		if text == "" {
			return nil, apperr.BadRequest("question %d has no text", i+1)
		}
		if len(q.Choices) == 0 {
			return nil, apperr.BadRequest("question %d has no choices", i+1)
		}
		question := models.Question{Text: text}
		correct := 0
		for j, c := range q.Choices {
			choiceText := strings.TrimSpace(c.Text)
			if choiceText == "" {
				return nil, apperr.BadRequest("choice %d of question %d has no text", j+1, i+1)
			}
			if c.IsCorrect {
				correct++
			}
			question.Choices = append(question.Choices, models.Choice{Text: choiceText, IsCorrect: c.IsCorrect})
		}
		if correct != 1 {
			return nil, apperr.BadRequest("question %d must have exactly one correct choice", i+1)
		}
		questions = append(questions, question)
	}
	return questions, nil
}
