package services

import (
	"context"

	"lms/backend/repository"

	"gorm.io/gorm"
)

type Progress struct {
	Completed int64 `json:"lessons_completed"`
	Total     int64 `json:"total_lessons"`
	Percent   int   `json:"progress"`
}

// CoursePercent is floor(completed/total*100), or 0 for a course without lessons.
func CoursePercent(completed, total int64) int {
	if total <= 0 {
		return 0
	}
	if completed > total {
		completed = total
	}
	return int(completed * 100 / total)
}

// ProgressTracker derives progress from completion rows on every read.
type ProgressTracker struct {
	repos *repository.Repos
}

func NewProgressTracker(repos *repository.Repos) *ProgressTracker {
	return &ProgressTracker{repos: repos}
}

func (p *ProgressTracker) Snapshot(ctx context.Context, tx *gorm.DB, userID, courseID uint) (Progress, error) {
	total, err := p.repos.Lessons.CountByCourse(ctx, tx, courseID)
	if err != nil {
		return Progress{}, err
	}
	completed, err := p.repos.Completions.CountInCourse(ctx, tx, userID, courseID)
	if err != nil {
		return Progress{}, err
	}
	return Progress{Completed: completed, Total: total, Percent: CoursePercent(completed, total)}, nil
}
