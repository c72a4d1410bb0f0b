package repository

import (
	"context"
	"time"

	"lms/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuizRepo interface {
	GetByLessonID(ctx context.Context, tx *gorm.DB, lessonID uint) (*models.Quiz, error)
	Replace(ctx context.Context, tx *gorm.DB, lessonID uint, title string, questions []models.Question) (*models.Quiz, error)
}

type quizRepo struct {
	db *gorm.DB
}

func NewQuizRepo(db *gorm.DB) QuizRepo {
	return &quizRepo{db: db}
}

// GetByLessonID loads the quiz with questions and choices in stored order.
func (r *quizRepo) GetByLessonID(ctx context.Context, tx *gorm.DB, lessonID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := conn(r.db, tx).WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Preload("Questions.Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Where("lesson_id = ?", lessonID).
		First(&quiz).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

// Replace gets or creates the lesson's quiz row and swaps its title and content.
// The quiz id survives so attempt history stays attached. Callers must pass a transaction.
func (r *quizRepo) Replace(ctx context.Context, tx *gorm.DB, lessonID uint, title string, questions []models.Question) (*models.Quiz, error) {
	db := conn(r.db, tx).WithContext(ctx)

	now := time.Now().UTC()
	fresh := models.Quiz{LessonID: lessonID, Title: title, CreatedAt: now, UpdatedAt: now}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh).Error; err != nil {
		return nil, err
	}

	var quiz models.Quiz
	if err := db.Where("lesson_id = ?", lessonID).First(&quiz).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&quiz).Updates(map[string]interface{}{"title": title, "updated_at": now}).Error; err != nil {
		return nil, err
	}
	if err := deleteQuizContent(db, []uint{quiz.ID}); err != nil {
		return nil, err
	}

	for i := range questions {
		questions[i].ID = 0
		questions[i].QuizID = quiz.ID
		questions[i].Position = i
		for j := range questions[i].Choices {
			questions[i].Choices[j].ID = 0
			questions[i].Choices[j].Position = j
		}
	}
	if len(questions) > 0 {
		if err := db.Create(&questions).Error; err != nil {
			return nil, err
		}
	}
	quiz.Title = title
	quiz.Questions = questions
	return &quiz, nil
}
