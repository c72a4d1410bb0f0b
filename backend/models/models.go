package models

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Course{},
		&Lesson{},
		&Quiz{},
		&Question{},
		&Choice{},
		&Enrollment{},
		&LessonCompletion{},
		&QuizAttempt{},
		&Certificate{},
		&CourseRating{},
	}
}
