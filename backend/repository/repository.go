// Package repository is the storage boundary: every write that must be
// idempotent is an insert-or-return-existing under a unique index.
package repository

import (
	"lms/backend/utils"

	"gorm.io/gorm"
)

type Repos struct {
	Users        UserRepo
	Courses      CourseRepo
	Lessons      LessonRepo
	Quizzes      QuizRepo
	Enrollments  EnrollmentRepo
	Completions  CompletionRepo
	Attempts     AttemptRepo
	Certificates CertificateRepo
	Ratings      RatingRepo
}

func New(db *gorm.DB, log *utils.Logger) *Repos {
	return &Repos{
		Users:        NewUserRepo(db),
		Courses:      NewCourseRepo(db, log),
		Lessons:      NewLessonRepo(db, log),
		Quizzes:      NewQuizRepo(db),
		Enrollments:  NewEnrollmentRepo(db),
		Completions:  NewCompletionRepo(db),
		Attempts:     NewAttemptRepo(db),
		Certificates: NewCertificateRepo(db, log),
		Ratings:      NewRatingRepo(db),
	}
}

func conn(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}
