package models

import "time"

// Course is owned by its instructor; ownership is what grants authoring rights.
type Course struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"not null" json:"title"`
	Description  string    `json:"description"`
	InstructorID uint      `gorm:"not null;index" json:"instructor_id"`
	Instructor   User      `gorm:"foreignKey:InstructorID" json:"-"`
	Lessons      []Lesson  `json:"lessons,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Lesson struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CourseID  uint      `gorm:"not null;index" json:"course_id"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `json:"content"`
	Order     int       `gorm:"column:sequence_order;index" json:"order"`
	Quiz      *Quiz     `json:"quiz,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
