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

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	minRating = 1
	maxRating = 5

	certificateIDLength   = 12
	certificateDateLayout = "January 02, 2006"
)

// LearningService is the gate between learners and the progress records:
// enrollment, lesson completion, quiz submission, certificates and ratings.
// Every mutating operation runs in one transaction.
type LearningService struct {
	db       *gorm.DB
	repos    *repository.Repos
	progress *ProgressTracker
	log      *utils.Logger

	newCertificateID func() string
	now              func() time.Time
}

func NewLearningService(db *gorm.DB, repos *repository.Repos, log *utils.Logger) *LearningService {
	return &LearningService{
		db:               db,
		repos:            repos,
		progress:         NewProgressTracker(repos),
		log:              log.With("component", "learning"),
		newCertificateID: NewCertificateID,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// NewCertificateID returns 12 upper-case hex characters from a random UUID.
func NewCertificateID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:certificateIDLength])
}

func (s *LearningService) loadCourse(ctx context.Context, tx *gorm.DB, courseID uint) (*models.Course, error) {
	course, err := s.repos.Courses.GetByID(ctx, tx, courseID)
	if err != nil {
		return nil, notFound(err, "course")
	}
	return course, nil
}

func (s *LearningService) loadLesson(ctx context.Context, tx *gorm.DB, courseID, lessonID uint) (*models.Lesson, error) {
	lesson, err := s.repos.Lessons.GetInCourse(ctx, tx, courseID, lessonID)
	if err != nil {
		return nil, notFound(err, "lesson")
	}
	return lesson, nil
}

func (s *LearningService) requireEnrollment(ctx context.Context, tx *gorm.DB, req Requester, courseID uint, message string) error {
	enrolled, err := s.repos.Enrollments.Exists(ctx, tx, req.UserID, courseID)
	if err != nil {
		return err
	}
	if !enrolled {
		return apperr.Forbidden("%s", message)
	}
	return nil
}

// canParticipate reports whether the requester is the course instructor or an enrolled learner.
func (s *LearningService) canParticipate(ctx context.Context, tx *gorm.DB, req Requester, course *models.Course) (bool, error) {
	if req.IsInstructorOf(course) {
		return true, nil
	}
	return s.repos.Enrollments.Exists(ctx, tx, req.UserID, course.ID)
}

func (s *LearningService) Enroll(ctx context.Context, req Requester, courseID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		course, err := s.loadCourse(ctx, tx, courseID)
		if err != nil {
			return err
		}
		if req.IsInstructorOf(course) {
			return apperr.BadRequest("instructors cannot enroll in their own course")
		}
		created, err := s.repos.Enrollments.Create(ctx, tx, req.UserID, courseID)
		if err != nil {
			return fmt.Errorf("create enrollment: %w", err)
		}
		if !created {
			return apperr.BadRequest("already enrolled")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("learner enrolled", "user_id", req.UserID, "course_id", courseID)
	return nil
}

// MarkLessonComplete is idempotent: completing a lesson twice keeps one record.
func (s *LearningService) MarkLessonComplete(ctx context.Context, req Requester, courseID, lessonID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		course, err := s.loadCourse(ctx, tx, courseID)
		if err != nil {
			return err
		}
		if _, err := s.loadLesson(ctx, tx, courseID, lessonID); err != nil {
			return err
		}
		ok, err := s.canParticipate(ctx, tx, req, course)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Forbidden("you must be enrolled in this course to complete lessons")
		}
		created, err := s.repos.Completions.GetOrCreate(ctx, tx, req.UserID, lessonID)
		if err != nil {
			return fmt.Errorf("record completion: %w", err)
		}
		if created {
			s.log.Debug("lesson completed", "user_id", req.UserID, "lesson_id", lessonID)
		}
		return nil
	})
}

// SubmitQuizAnswers scores the answers, appends an attempt and, on a pass,
// records the lesson as completed in the same transaction.
func (s *LearningService) SubmitQuizAnswers(ctx context.Context, req Requester, courseID, lessonID uint, answers map[string]string) (*Verdict, error) {
	var verdict Verdict
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.loadLesson(ctx, tx, courseID, lessonID); err != nil {
			return err
		}
		quiz, err := s.repos.Quizzes.GetByLessonID(ctx, tx, lessonID)
		if err != nil {
			return notFound(err, "quiz")
		}

		verdict = ScoreQuiz(quiz, answers)

		attempt := models.QuizAttempt{
			UserID:      req.UserID,
			QuizID:      quiz.ID,
			Score:       verdict.Score,
			Total:       verdict.Total,
			Passed:      verdict.Passed,
			AttemptedAt: s.now(),
		}
		if err := s.repos.Attempts.Append(ctx, tx, &attempt); err != nil {
			return fmt.Errorf("append attempt: %w", err)
		}
		if verdict.Passed {
			if _, err := s.repos.Completions.GetOrCreate(ctx, tx, req.UserID, lessonID); err != nil {
				return fmt.Errorf("record completion: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("quiz submitted",
		"user_id", req.UserID,
		"lesson_id", lessonID,
		"score", verdict.Score,
		"total", verdict.Total,
		"passed", verdict.Passed,
	)
	return &verdict, nil
}

// IssueCertificate returns the learner's certificate for the course, creating
// it once every lesson is completed. Repeated calls return the same record.
func (s *LearningService) IssueCertificate(ctx context.Context, req Requester, courseID uint) (*models.Certificate, error) {
	var (
		cert    *models.Certificate
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.loadCourse(ctx, tx, courseID); err != nil {
			return err
		}
		if err := s.requireEnrollment(ctx, tx, req, courseID, "you must be enrolled in this course to receive a certificate"); err != nil {
			return err
		}
		progress, err := s.progress.Snapshot(ctx, tx, req.UserID, courseID)
		if err != nil {
			return err
		}
		if progress.Total == 0 || progress.Completed < progress.Total {
			return apperr.PreconditionFailed("course is not completed yet (%d%%)", progress.Percent)
		}
		cert, created, err = s.repos.Certificates.GetOrCreate(ctx, tx, req.UserID, courseID, s.newCertificateID)
		if err != nil {
			return fmt.Errorf("issue certificate: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if created {
		s.log.Info("certificate issued", "user_id", req.UserID, "course_id", courseID, "certificate_id", cert.CertificateID)
	}
	return cert, nil
}

// CertificateArtifact issues (or reuses) the certificate and collects the text printed on it.
func (s *LearningService) CertificateArtifact(ctx context.Context, req Requester, courseID uint) (*models.CertificateArtifact, error) {
	cert, err := s.IssueCertificate(ctx, req, courseID)
	if err != nil {
		return nil, err
	}
	course, err := s.loadCourse(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	user, err := s.repos.Users.GetByID(ctx, nil, req.UserID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return &models.CertificateArtifact{
		LearnerName:   user.Username,
		CourseTitle:   course.Title,
		IssuedOn:      cert.IssuedAt.Format(certificateDateLayout),
		CertificateID: cert.CertificateID,
	}, nil
}

// RateCourse stores the learner's 1..5 rating, replacing any earlier one.
func (s *LearningService) RateCourse(ctx context.Context, req Requester, courseID uint, rating int) (*models.CourseRating, error) {
	var stored *models.CourseRating
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.loadCourse(ctx, tx, courseID); err != nil {
			return err
		}
		if err := s.requireEnrollment(ctx, tx, req, courseID, "you must be enrolled in this course to rate it"); err != nil {
			return err
		}
		if rating < minRating || rating > maxRating {
			return apperr.BadRequest("rating must be between %d and %d", minRating, maxRating)
		}
		var err error
		stored, err = s.repos.Ratings.Upsert(ctx, tx, req.UserID, courseID, rating)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *LearningService) CourseProgress(ctx context.Context, req Requester, courseID uint) (Progress, error) {
	if _, err := s.loadCourse(ctx, nil, courseID); err != nil {
		return Progress{}, err
	}
	return s.progress.Snapshot(ctx, nil, req.UserID, courseID)
}

// InstructorProgressSummary lists every enrolled learner with their percent.
func (s *LearningService) InstructorProgressSummary(ctx context.Context, req Requester, courseID uint) ([]models.StudentProgress, error) {
	course, err := s.loadCourse(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	if !req.IsInstructorOf(course) {
		return nil, apperr.Forbidden("only the course instructor can view class progress")
	}

	total, err := s.repos.Lessons.CountByCourse(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	counts, err := s.repos.Completions.CountsByUserInCourse(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.repos.Enrollments.ListByCourse(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}

	rows := make([]models.StudentProgress, 0, len(enrollments))
	for _, e := range enrollments {
		rows = append(rows, models.StudentProgress{
			UserID:      e.UserID,
			StudentName: e.User.Username,
			Email:       e.User.Email,
			Progress:    CoursePercent(counts[e.UserID], total),
		})
	}
	return rows, nil
}

// Dashboard returns progress across every course the requester is enrolled in.
func (s *LearningService) Dashboard(ctx context.Context, req Requester) ([]models.CourseProgress, error) {
	enrollments, err := s.repos.Enrollments.ListByUser(ctx, nil, req.UserID)
	if err != nil {
		return nil, err
	}
	courseIDs := make([]uint, 0, len(enrollments))
	for _, e := range enrollments {
		courseIDs = append(courseIDs, e.CourseID)
	}
	courses, err := s.repos.Courses.GetByIDs(ctx, nil, courseIDs)
	if err != nil {
		return nil, err
	}
	certs, err := s.repos.Certificates.ListByUser(ctx, nil, req.UserID)
	if err != nil {
		return nil, err
	}
	certified := make(map[uint]bool, len(certs))
	for _, c := range certs {
		certified[c.CourseID] = true
	}

	rows := make([]models.CourseProgress, 0, len(courses))
	for _, course := range courses {
		p, err := s.progress.Snapshot(ctx, nil, req.UserID, course.ID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, models.CourseProgress{
			CourseID:         course.ID,
			Title:            course.Title,
			LessonsCompleted: p.Completed,
			TotalLessons:     p.Total,
			Progress:         p.Percent,
			HasCertificate:   certified[course.ID],
		})
	}
	return rows, nil
}

// QuizAttempts lists the requester's own attempts on the lesson quiz, newest first.
func (s *LearningService) QuizAttempts(ctx context.Context, req Requester, courseID, lessonID uint) ([]models.QuizAttempt, error) {
	if _, err := s.loadLesson(ctx, nil, courseID, lessonID); err != nil {
		return nil, err
	}
	quiz, err := s.repos.Quizzes.GetByLessonID(ctx, nil, lessonID)
	if err != nil {
		return nil, notFound(err, "quiz")
	}
	return s.repos.Attempts.ListByUserQuiz(ctx, nil, req.UserID, quiz.ID)
}

func (s *LearningService) QuizAnalytics(ctx context.Context, req Requester, courseID uint) ([]models.QuizStats, error) {
	course, err := s.loadCourse(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	if !req.IsInstructorOf(course) {
		return nil, apperr.Forbidden("only the course instructor can view analytics")
	}
	stats, err := s.repos.Attempts.StatsByCourse(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	for i := range stats {
		stats[i].AverageScore = math.Round(stats[i].AverageScore*10) / 10
	}
	return stats, nil
}
