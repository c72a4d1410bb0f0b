package repository

import (
	"context"

	"lms/backend/models"
	"lms/backend/utils"

	"gorm.io/gorm"
)

type LessonRepo interface {
	Create(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error
	GetInCourse(ctx context.Context, tx *gorm.DB, courseID, lessonID uint) (*models.Lesson, error)
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]models.Lesson, error)
	CountByCourse(ctx context.Context, tx *gorm.DB, courseID uint) (int64, error)
	NextOrder(ctx context.Context, tx *gorm.DB, courseID uint) (int, error)
	Update(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error
	DeleteTree(ctx context.Context, tx *gorm.DB, lessonID uint) error
}

type lessonRepo struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *utils.Logger) LessonRepo {
	return &lessonRepo{db: db, log: baseLog.With("repo", "LessonRepo")}
}

func (r *lessonRepo) Create(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error {
	return conn(r.db, tx).WithContext(ctx).Create(lesson).Error
}

func (r *lessonRepo) GetInCourse(ctx context.Context, tx *gorm.DB, courseID, lessonID uint) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := conn(r.db, tx).WithContext(ctx).
		Where("id = ? AND course_id = ?", lessonID, courseID).
		First(&lesson).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

// ListByCourse returns lessons in display order with their quiz header (no questions).
func (r *lessonRepo) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]models.Lesson, error) {
	var lessons []models.Lesson
	if err := conn(r.db, tx).WithContext(ctx).
		Preload("Quiz").
		Where("course_id = ?", courseID).
		Order("sequence_order ASC, id ASC").
		Find(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *lessonRepo) CountByCourse(ctx context.Context, tx *gorm.DB, courseID uint) (int64, error) {
	var count int64
	err := conn(r.db, tx).WithContext(ctx).
		Model(&models.Lesson{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

func (r *lessonRepo) NextOrder(ctx context.Context, tx *gorm.DB, courseID uint) (int, error) {
	var maxOrder int
	err := conn(r.db, tx).WithContext(ctx).
		Model(&models.Lesson{}).
		Where("course_id = ?", courseID).
		Select("COALESCE(MAX(sequence_order), 0)").
		Scan(&maxOrder).Error
	return maxOrder + 1, err
}

func (r *lessonRepo) Update(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error {
	return conn(r.db, tx).WithContext(ctx).
		Model(lesson).
		Updates(map[string]interface{}{
			"title":          lesson.Title,
			"content":        lesson.Content,
			"sequence_order": lesson.Order,
		}).Error
}

func (r *lessonRepo) DeleteTree(ctx context.Context, tx *gorm.DB, lessonID uint) error {
	if err := deleteLessonSubtrees(conn(r.db, tx).WithContext(ctx), []uint{lessonID}); err != nil {
		return err
	}
	r.log.Info("lesson tree deleted", "lesson_id", lessonID)
	return nil
}
