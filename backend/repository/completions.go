package repository

import (
	"context"
	"time"

	"lms/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CompletionRepo interface {
	// GetOrCreate records the completion; a concurrent or repeated insert is a no-op.
	GetOrCreate(ctx context.Context, tx *gorm.DB, userID, lessonID uint) (created bool, err error)
	CountInCourse(ctx context.Context, tx *gorm.DB, userID, courseID uint) (int64, error)
	CountsByUserInCourse(ctx context.Context, tx *gorm.DB, courseID uint) (map[uint]int64, error)
	LessonIDsInCourse(ctx context.Context, tx *gorm.DB, userID, courseID uint) (map[uint]bool, error)
}

type completionRepo struct {
	db *gorm.DB
}

func NewCompletionRepo(db *gorm.DB) CompletionRepo {
	return &completionRepo{db: db}
}

func (r *completionRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, userID, lessonID uint) (bool, error) {
	completion := models.LessonCompletion{UserID: userID, LessonID: lessonID, CompletedAt: time.Now().UTC()}
	res := conn(r.db, tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&completion)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *completionRepo) inCourse(ctx context.Context, tx *gorm.DB, courseID uint) *gorm.DB {
	return conn(r.db, tx).WithContext(ctx).
		Model(&models.LessonCompletion{}).
		Joins("JOIN lessons ON lessons.id = lesson_completions.lesson_id").
		Where("lessons.course_id = ?", courseID)
}

func (r *completionRepo) CountInCourse(ctx context.Context, tx *gorm.DB, userID, courseID uint) (int64, error) {
	var count int64
	err := r.inCourse(ctx, tx, courseID).
		Where("lesson_completions.user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *completionRepo) CountsByUserInCourse(ctx context.Context, tx *gorm.DB, courseID uint) (map[uint]int64, error) {
	var rows []struct {
		UserID uint
		Total  int64
	}
	if err := r.inCourse(ctx, tx, courseID).
		Select("lesson_completions.user_id AS user_id, COUNT(*) AS total").
		Group("lesson_completions.user_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.UserID] = row.Total
	}
	return counts, nil
}

func (r *completionRepo) LessonIDsInCourse(ctx context.Context, tx *gorm.DB, userID, courseID uint) (map[uint]bool, error) {
	var ids []uint
	if err := r.inCourse(ctx, tx, courseID).
		Where("lesson_completions.user_id = ?", userID).
		Pluck("lesson_completions.lesson_id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
