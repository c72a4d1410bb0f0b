package repository

import (
	"context"
	"time"

	"lms/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentRepo interface {
	// Create inserts the (user, course) pair; created is false when it already existed.
	Create(ctx context.Context, tx *gorm.DB, userID, courseID uint) (created bool, err error)
	Exists(ctx context.Context, tx *gorm.DB, userID, courseID uint) (bool, error)
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]models.Enrollment, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]models.Enrollment, error)
	CountByCourses(ctx context.Context, tx *gorm.DB, courseIDs []uint) (map[uint]int64, error)
}

type enrollmentRepo struct {
	db *gorm.DB
}

func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepo {
	return &enrollmentRepo{db: db}
}

func (r *enrollmentRepo) Create(ctx context.Context, tx *gorm.DB, userID, courseID uint) (bool, error) {
	enrollment := models.Enrollment{UserID: userID, CourseID: courseID, EnrolledAt: time.Now().UTC()}
	res := conn(r.db, tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&enrollment)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *enrollmentRepo) Exists(ctx context.Context, tx *gorm.DB, userID, courseID uint) (bool, error) {
	var count int64
	err := conn(r.db, tx).WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

// ListByCourse returns enrollments with their learner, oldest first.
func (r *enrollmentRepo) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := conn(r.db, tx).WithContext(ctx).
		Preload("User").
		Where("course_id = ?", courseID).
		Order("enrolled_at ASC, id ASC").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := conn(r.db, tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("enrolled_at DESC, id DESC").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepo) CountByCourses(ctx context.Context, tx *gorm.DB, courseIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(courseIDs))
	if len(courseIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		CourseID uint
		Total    int64
	}
	if err := conn(r.db, tx).WithContext(ctx).
		Model(&models.Enrollment{}).
		Select("course_id, COUNT(*) AS total").
		Where("course_id IN ?", courseIDs).
		Group("course_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.CourseID] = row.Total
	}
	return counts, nil
}
