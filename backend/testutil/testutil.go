// Package testutil opens isolated in-memory databases and seeds fixtures for tests.
package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"lms/backend/models"
	"lms/backend/repository"
	"lms/backend/utils"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var dbCounter int64

func Logger(tb testing.TB) *utils.Logger {
	tb.Helper()
	log, err := utils.InitLogger("test")
	if err != nil {
		tb.Fatalf("failed to init logger: %v", err)
	}
	return log
}

// DB returns a migrated in-memory SQLite database private to the calling test.
// A single connection serializes access so concurrent callers behave like a locked database.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	name := fmt.Sprintf("file:lms_test_%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("test db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := utils.Migrate(db); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	return db
}

func Repos(tb testing.TB, db *gorm.DB) *repository.Repos {
	tb.Helper()
	return repository.New(db, Logger(tb))
}

func SeedUser(tb testing.TB, db *gorm.DB, username string) *models.User {
	tb.Helper()
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
	}
	if err := db.WithContext(context.Background()).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCourse(tb testing.TB, db *gorm.DB, instructorID uint, title string) *models.Course {
	tb.Helper()
	c := &models.Course{Title: title, Description: title + " description", InstructorID: instructorID}
	if err := db.Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedLesson(tb testing.TB, db *gorm.DB, courseID uint, title string, order int) *models.Lesson {
	tb.Helper()
	l := &models.Lesson{CourseID: courseID, Title: title, Content: title + " content", Order: order}
	if err := db.Create(l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

// SeedQuiz creates a quiz where each question has two choices and the first is correct.
func SeedQuiz(tb testing.TB, db *gorm.DB, lessonID uint, questions int) *models.Quiz {
	tb.Helper()
	q := &models.Quiz{LessonID: lessonID, Title: "quiz"}
	for i := 0; i < questions; i++ {
		q.Questions = append(q.Questions, models.Question{
			Text:     fmt.Sprintf("question %d", i+1),
			Position: i,
			Choices: []models.Choice{
				{Text: "right", IsCorrect: true, Position: 0},
				{Text: "wrong", Position: 1},
			},
		})
	}
	if err := db.Create(q).Error; err != nil {
		tb.Fatalf("seed quiz: %v", err)
	}
	return q
}

func SeedEnrollment(tb testing.TB, db *gorm.DB, userID, courseID uint) *models.Enrollment {
	tb.Helper()
	e := &models.Enrollment{UserID: userID, CourseID: courseID, EnrolledAt: time.Now().UTC()}
	if err := db.Create(e).Error; err != nil {
		tb.Fatalf("seed enrollment: %v", err)
	}
	return e
}

func SeedCompletion(tb testing.TB, db *gorm.DB, userID, lessonID uint) {
	tb.Helper()
	c := &models.LessonCompletion{UserID: userID, LessonID: lessonID, CompletedAt: time.Now().UTC()}
	if err := db.Create(c).Error; err != nil {
		tb.Fatalf("seed completion: %v", err)
	}
}

// Answers maps every question of the quiz to its correct choice for the first n questions
// and to a wrong choice for the rest.
func Answers(quiz *models.Quiz, correct int) map[string]string {
	out := make(map[string]string, len(quiz.Questions))
	for i, q := range quiz.Questions {
		for _, c := range q.Choices {
			if c.IsCorrect == (i < correct) {
				out[fmt.Sprint(q.ID)] = fmt.Sprint(c.ID)
				break
			}
		}
	}
	return out
}
