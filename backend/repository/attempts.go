package repository

import (
	"context"

	"lms/backend/models"

	"gorm.io/gorm"
)

type AttemptRepo interface {
	Append(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error
	ListByUserQuiz(ctx context.Context, tx *gorm.DB, userID, quizID uint) ([]models.QuizAttempt, error)
	PassedQuizIDs(ctx context.Context, tx *gorm.DB, userID uint, quizIDs []uint) (map[uint]bool, error)
	StatsByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]models.QuizStats, error)
}

type attemptRepo struct {
	db *gorm.DB
}

func NewAttemptRepo(db *gorm.DB) AttemptRepo {
	return &attemptRepo{db: db}
}

// Append inserts a new attempt; attempts are never updated.
func (r *attemptRepo) Append(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error {
	attempt.ID = 0
	return conn(r.db, tx).WithContext(ctx).Create(attempt).Error
}

func (r *attemptRepo) ListByUserQuiz(ctx context.Context, tx *gorm.DB, userID, quizID uint) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	if err := conn(r.db, tx).WithContext(ctx).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("attempted_at DESC, id DESC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (r *attemptRepo) PassedQuizIDs(ctx context.Context, tx *gorm.DB, userID uint, quizIDs []uint) (map[uint]bool, error) {
	set := make(map[uint]bool)
	if len(quizIDs) == 0 {
		return set, nil
	}
	var ids []uint
	if err := conn(r.db, tx).WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("user_id = ? AND quiz_id IN ? AND passed = ?", userID, quizIDs, true).
		Distinct().
		Pluck("quiz_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// StatsByCourse aggregates attempts per quiz of the course, in lesson order.
// AverageScore is the mean percentage of correct answers.
func (r *attemptRepo) StatsByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]models.QuizStats, error) {
	var stats []models.QuizStats
	err := conn(r.db, tx).WithContext(ctx).Raw(`
		SELECT quizzes.id AS quiz_id,
		       lessons.id AS lesson_id,
		       lessons.title AS lesson_title,
		       COUNT(quiz_attempts.id) AS attempts,
		       COALESCE(SUM(CASE WHEN quiz_attempts.passed THEN 1 ELSE 0 END), 0) AS passed,
		       COUNT(DISTINCT quiz_attempts.user_id) AS learners,
		       COALESCE(AVG(CASE WHEN quiz_attempts.total > 0 THEN quiz_attempts.score * 100.0 / quiz_attempts.total END), 0) AS average_score
		FROM quizzes
		JOIN lessons ON lessons.id = quizzes.lesson_id
		LEFT JOIN quiz_attempts ON quiz_attempts.quiz_id = quizzes.id
		WHERE lessons.course_id = ?
		GROUP BY quizzes.id, lessons.id, lessons.title, lessons.sequence_order
		ORDER BY lessons.sequence_order ASC, lessons.id ASC`, courseID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
