package models

import "time"

type Enrollment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_enrollment_user_course,priority:1" json:"user_id"`
	CourseID   uint      `gorm:"not null;uniqueIndex:idx_enrollment_user_course,priority:2;index" json:"course_id"`
	User       User      `gorm:"foreignKey:UserID" json:"-"`
	EnrolledAt time.Time `gorm:"not null" json:"enrolled_at"`
}

// LessonCompletion is monotonic: once recorded it is only removed together with its lesson.
type LessonCompletion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_completion_user_lesson,priority:1" json:"user_id"`
	LessonID    uint      `gorm:"not null;uniqueIndex:idx_completion_user_lesson,priority:2;index" json:"lesson_id"`
	CompletedAt time.Time `gorm:"not null" json:"completed_at"`
}

type Certificate struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_certificate_user_course,priority:1" json:"user_id"`
	CourseID      uint      `gorm:"not null;uniqueIndex:idx_certificate_user_course,priority:2;index" json:"course_id"`
	CertificateID string    `gorm:"size:32;not null;uniqueIndex" json:"certificate_id"`
	IssuedAt      time.Time `gorm:"not null" json:"issued_at"`
}

type CourseRating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_rating_user_course,priority:1" json:"user_id"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_rating_user_course,priority:2;index" json:"course_id"`
	Rating    int       `gorm:"not null;check:rating>=1 AND rating<=5" json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StudentProgress is one row of the instructor progress summary.
type StudentProgress struct {
	UserID      uint   `json:"user_id"`
	StudentName string `json:"student_name"`
	Email       string `json:"email"`
	Progress    int    `json:"progress"`
}

// CourseProgress is one row of a learner's dashboard.
type CourseProgress struct {
	CourseID         uint   `json:"course_id"`
	Title            string `json:"title"`
	LessonsCompleted int64  `json:"lessons_completed"`
	TotalLessons     int64  `json:"total_lessons"`
	Progress         int    `json:"progress"`
	HasCertificate   bool   `json:"has_certificate"`
}

// QuizStats aggregates attempts of one quiz for instructor analytics.
type QuizStats struct {
	QuizID       uint    `json:"quiz_id"`
	LessonID     uint    `json:"lesson_id"`
	LessonTitle  string  `json:"lesson_title"`
	Attempts     int64   `json:"attempts"`
	Passed       int64   `json:"passed"`
	Learners     int64   `json:"learners"`
	AverageScore float64 `json:"average_score"`
}

// CertificateArtifact carries what is printed on a rendered certificate.
type CertificateArtifact struct {
	LearnerName   string `json:"learner_name"`
	CourseTitle   string `json:"course_title"`
	IssuedOn      string `json:"issued_on"`
	CertificateID string `json:"certificate_id"`
}
