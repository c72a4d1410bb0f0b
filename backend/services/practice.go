package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"lms/backend/apperr"
	"lms/backend/models"
	"lms/backend/repository"
	"lms/backend/utils"

	"golang.org/x/sync/singleflight"
)

// PracticeGenerator produces practice questions from lesson text.
type PracticeGenerator interface {
	GeneratePractice(ctx context.Context, lessonContent string) ([]models.PracticeQuestion, error)
}

// PracticeCache stores generated questions by content key.
type PracticeCache interface {
	Get(ctx context.Context, key string) ([]models.PracticeQuestion, bool, error)
	Set(ctx context.Context, key string, questions []models.PracticeQuestion) error
}

type PracticeService struct {
	repos     *repository.Repos
	generator PracticeGenerator
	cache     PracticeCache
	log       *utils.Logger
	group     singleflight.Group
}

// NewPracticeService wires the generator; cache may be nil.
func NewPracticeService(repos *repository.Repos, generator PracticeGenerator, cache PracticeCache, log *utils.Logger) *PracticeService {
	return &PracticeService{
		repos:     repos,
		generator: generator,
		cache:     cache,
		log:       log.With("component", "practice"),
	}
}

func PracticeCacheKey(content string) string {
	sum := sha256.Sum256([]byte(content))
	return "practice:" + hex.EncodeToString(sum[:])
}

// Generate returns practice questions for a lesson the requester participates in.
// Results are not persisted; identical content is generated once at a time and cached.
func (s *PracticeService) Generate(ctx context.Context, req Requester, courseID, lessonID uint) ([]models.PracticeQuestion, error) {
	course, err := s.repos.Courses.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, notFound(err, "course")
	}
	lesson, err := s.repos.Lessons.GetInCourse(ctx, nil, courseID, lessonID)
	if err != nil {
		return nil, notFound(err, "lesson")
	}
	if !req.IsInstructorOf(course) {
		enrolled, err := s.repos.Enrollments.Exists(ctx, nil, req.UserID, courseID)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			return nil, apperr.Forbidden("you must be enrolled in this course to practice")
		}
	}
	if strings.TrimSpace(lesson.Content) == "" {
		return nil, apperr.BadRequest("lesson has no content to practice on")
	}
	if s.generator == nil {
		return nil, apperr.ExternalService(errNoGenerator)
	}

	key := PracticeCacheKey(lesson.Content)
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Warn("practice cache read failed", "lesson_id", lessonID, "error", err)
		} else if ok {
			return cached, nil
		}
	}

	// The shared generation outlives any single caller; the generator's own
	// timeout bounds it.
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		questions, err := s.generator.GeneratePractice(detached, lesson.Content)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(detached, key, questions); err != nil {
				s.log.Warn("practice cache write failed", "lesson_id", lessonID, "error", err)
			}
		}
		return questions, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, apperr.ExternalService(res.Err)
	}
	questions := res.Val.([]models.PracticeQuestion)
	s.log.Info("practice generated", "lesson_id", lessonID, "questions", len(questions), "shared", res.Shared)
	return questions, nil
}
