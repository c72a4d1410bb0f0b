package repository

import (
	"context"
	"time"

	"lms/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingSummary struct {
	Average float64
	Count   int64
}

type RatingRepo interface {
	// Upsert writes the rating for the pair, overwriting any earlier value.
	Upsert(ctx context.Context, tx *gorm.DB, userID, courseID uint, rating int) (*models.CourseRating, error)
	Get(ctx context.Context, tx *gorm.DB, userID, courseID uint) (*models.CourseRating, error)
	ByUserForCourses(ctx context.Context, tx *gorm.DB, userID uint, courseIDs []uint) (map[uint]int, error)
	SummaryByCourses(ctx context.Context, tx *gorm.DB, courseIDs []uint) (map[uint]RatingSummary, error)
}

type ratingRepo struct {
	db *gorm.DB
}

func NewRatingRepo(db *gorm.DB) RatingRepo {
	return &ratingRepo{db: db}
}

func (r *ratingRepo) Upsert(ctx context.Context, tx *gorm.DB, userID, courseID uint, rating int) (*models.CourseRating, error) {
	now := time.Now().UTC()
	row := models.CourseRating{UserID: userID, CourseID: courseID, Rating: rating, CreatedAt: now, UpdatedAt: now}
	if err := conn(r.db, tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "updated_at"}),
		}).
		Create(&row).Error; err != nil {
		return nil, err
	}
	return r.Get(ctx, tx, userID, courseID)
}

func (r *ratingRepo) Get(ctx context.Context, tx *gorm.DB, userID, courseID uint) (*models.CourseRating, error) {
	var rating models.CourseRating
	if err := conn(r.db, tx).WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&rating).Error; err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepo) ByUserForCourses(ctx context.Context, tx *gorm.DB, userID uint, courseIDs []uint) (map[uint]int, error) {
	out := make(map[uint]int)
	if len(courseIDs) == 0 {
		return out, nil
	}
	var rows []models.CourseRating
	if err := conn(r.db, tx).WithContext(ctx).
		Where("user_id = ? AND course_id IN ?", userID, courseIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.CourseID] = row.Rating
	}
	return out, nil
}

func (r *ratingRepo) SummaryByCourses(ctx context.Context, tx *gorm.DB, courseIDs []uint) (map[uint]RatingSummary, error) {
	out := make(map[uint]RatingSummary, len(courseIDs))
	if len(courseIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		CourseID uint
		Average  float64
		Total    int64
	}
	if err := conn(r.db, tx).WithContext(ctx).
		Model(&models.CourseRating{}).
		Select("course_id, AVG(rating) AS average, COUNT(*) AS total").
		Where("course_id IN ?", courseIDs).
		Group("course_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.CourseID] = RatingSummary{Average: row.Average, Count: row.Total}
	}
	return out, nil
}
