package repository

import (
	"context"
	"strings"

	"lms/backend/models"
	"lms/backend/utils"

	"gorm.io/gorm"
)

type CourseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Course, error)
	Search(ctx context.Context, tx *gorm.DB, search, sort string) ([]models.Course, error)
	UpdateDetails(ctx context.Context, tx *gorm.DB, course *models.Course) error
	DeleteTree(ctx context.Context, tx *gorm.DB, courseID uint) error
}

type courseRepo struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *utils.Logger) CourseRepo {
	return &courseRepo{db: db, log: baseLog.With("repo", "CourseRepo")}
}

func (r *courseRepo) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	return conn(r.db, tx).WithContext(ctx).Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	var course models.Course
	if err := conn(r.db, tx).WithContext(ctx).Preload("Instructor").First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Course, error) {
	var courses []models.Course
	if len(ids) == 0 {
		return courses, nil
	}
	if err := conn(r.db, tx).WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

// Search filters by title/description and orders by "newest" (default), "rating" or "popularity".
func (r *courseRepo) Search(ctx context.Context, tx *gorm.DB, search, sort string) ([]models.Course, error) {
	query := conn(r.db, tx).WithContext(ctx).Model(&models.Course{}).Preload("Instructor")

	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	switch sort {
	case "rating":
		query = query.Order("(SELECT COALESCE(AVG(rating), 0) FROM course_ratings WHERE course_ratings.course_id = courses.id) DESC")
	case "popularity":
		query = query.Order("(SELECT COUNT(*) FROM enrollments WHERE enrollments.course_id = courses.id) DESC")
	default:
		query = query.Order("created_at DESC")
	}

	var courses []models.Course
	if err := query.Order("id DESC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

// UpdateDetails writes title and description only; the instructor is fixed at creation.
func (r *courseRepo) UpdateDetails(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	return conn(r.db, tx).WithContext(ctx).
		Model(course).
		Select("title", "description").
		Updates(map[string]interface{}{"title": course.Title, "description": course.Description}).Error
}

// DeleteTree removes the course, its lessons with their quiz subtrees, and every
// join record that references them. Callers must pass a transaction.
func (r *courseRepo) DeleteTree(ctx context.Context, tx *gorm.DB, courseID uint) error {
	db := conn(r.db, tx).WithContext(ctx)

	var lessonIDs []uint
	if err := db.Model(&models.Lesson{}).Where("course_id = ?", courseID).Pluck("id", &lessonIDs).Error; err != nil {
		return err
	}
	if err := deleteLessonSubtrees(db, lessonIDs); err != nil {
		return err
	}

	for _, joinModel := range []interface{}{&models.Enrollment{}, &models.Certificate{}, &models.CourseRating{}} {
		if err := db.Where("course_id = ?", courseID).Delete(joinModel).Error; err != nil {
			return err
		}
	}

	res := db.Delete(&models.Course{}, courseID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.log.Info("course tree deleted", "course_id", courseID, "lessons", len(lessonIDs))
	return nil
}

func deleteLessonSubtrees(db *gorm.DB, lessonIDs []uint) error {
	if len(lessonIDs) == 0 {
		return nil
	}

	var quizIDs []uint
	if err := db.Model(&models.Quiz{}).Where("lesson_id IN ?", lessonIDs).Pluck("id", &quizIDs).Error; err != nil {
		return err
	}
	if err := deleteQuizContent(db, quizIDs); err != nil {
		return err
	}
	if len(quizIDs) > 0 {
		if err := db.Where("quiz_id IN ?", quizIDs).Delete(&models.QuizAttempt{}).Error; err != nil {
			return err
		}
		if err := db.Where("id IN ?", quizIDs).Delete(&models.Quiz{}).Error; err != nil {
			return err
		}
	}

	if err := db.Where("lesson_id IN ?", lessonIDs).Delete(&models.LessonCompletion{}).Error; err != nil {
		return err
	}
	return db.Where("id IN ?", lessonIDs).Delete(&models.Lesson{}).Error
}

// deleteQuizContent removes questions and choices but keeps the quiz rows.
func deleteQuizContent(db *gorm.DB, quizIDs []uint) error {
	if len(quizIDs) == 0 {
		return nil
	}
	var questionIDs []uint
	if err := db.Model(&models.Question{}).Where("quiz_id IN ?", quizIDs).Pluck("id", &questionIDs).Error; err != nil {
		return err
	}
	if len(questionIDs) > 0 {
		if err := db.Where("question_id IN ?", questionIDs).Delete(&models.Choice{}).Error; err != nil {
			return err
		}
	}
	return db.Where("quiz_id IN ?", quizIDs).Delete(&models.Question{}).Error
}
