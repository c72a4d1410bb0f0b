package models

import "time"

// Quiz is attached to at most one lesson. Questions and choices are replaced
// wholesale on re-authoring, so none of the quiz tree is soft-deleted.
type Quiz struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	LessonID  uint       `gorm:"not null;uniqueIndex" json:"lesson_id"`
	Title     string     `gorm:"not null" json:"title"`
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Question struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	QuizID   uint     `gorm:"not null;index" json:"quiz_id"`
	Text     string   `gorm:"not null" json:"text"`
	Position int      `json:"position"`
	Choices  []Choice `json:"choices"`
}

type Choice struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	QuestionID uint   `gorm:"not null;index" json:"question_id"`
	Text       string `gorm:"not null" json:"text"`
	IsCorrect  bool   `gorm:"not null;default:false" json:"is_correct"`
	Position   int    `json:"position"`
}

// QuizAttempt is an append-only record of one submission.
type QuizAttempt struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index:idx_attempt_user_quiz,priority:1" json:"user_id"`
	QuizID      uint      `gorm:"not null;index:idx_attempt_user_quiz,priority:2;index" json:"quiz_id"`
	Score       int       `gorm:"not null" json:"score"`
	Total       int       `gorm:"not null" json:"total"`
	Passed      bool      `gorm:"not null" json:"passed"`
	AttemptedAt time.Time `gorm:"not null" json:"attempted_at"`
}
