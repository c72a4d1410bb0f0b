package services

import (
	"errors"

	"lms/backend/apperr"
	"lms/backend/models"

	"gorm.io/gorm"
)

// Requester is the capability every gate operation receives. Instructorship is
// decided per course from ownership, never from a stored role.
type Requester struct {
	UserID uint
}

func NewRequester(userID uint) Requester {
	return Requester{UserID: userID}
}

func (r Requester) IsInstructorOf(course *models.Course) bool {
	return course != nil && r.UserID != 0 && course.InstructorID == r.UserID
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s not found", what)
	}
	return err
}

var errNoGenerator = errors.New("practice generator is not configured")
