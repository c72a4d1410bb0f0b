package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"lms/backend/apperr"
	"lms/backend/models"
	"lms/backend/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	calls int32
	err   error
}

func (g *stubGenerator) GeneratePractice(_ context.Context, content string) ([]models.PracticeQuestion, error) {
	atomic.AddInt32(&g.calls, 1)
	if g.err != nil {
		return nil, g.err
	}
	return []models.PracticeQuestion{{
		Question:    "About: " + content,
		Options:     []string{"a", "b", "c", "d"},
		Answer:      "a",
		Explanation: "because",
	}}, nil
}

// gatedGenerator blocks every call until release is closed.
type gatedGenerator struct {
	calls   int32
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (g *gatedGenerator) GeneratePractice(ctx context.Context, content string) ([]models.PracticeQuestion, error) {
	atomic.AddInt32(&g.calls, 1)
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return []models.PracticeQuestion{{Question: content, Options: []string{"a", "b", "c", "d"}, Answer: "a"}}, nil
}

type mapCache struct {
	mu    sync.Mutex
	items map[string][]models.PracticeQuestion
}

func (c *mapCache) Get(_ context.Context, key string) ([]models.PracticeQuestion, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	qs, ok := c.items[key]
	return qs, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, qs []models.PracticeQuestion) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = qs
	return nil
}

func TestPracticeGenerate(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repos := testutil.Repos(t, db)
	owner := testutil.SeedUser(t, db, "owner")
	learner := testutil.SeedUser(t, db, "learner")
	stranger := testutil.SeedUser(t, db, "stranger")
	course := testutil.SeedCourse(t, db, owner.ID, "c")
	lesson := testutil.SeedLesson(t, db, course.ID, "Maps", 1)
	testutil.SeedEnrollment(t, db, learner.ID, course.ID)

	gen := &stubGenerator{}
	cache := &mapCache{items: map[string][]models.PracticeQuestion{}}
	svc := NewPracticeService(repos, gen, cache, testutil.Logger(t))

	_, err := svc.Generate(ctx, NewRequester(stranger.ID), course.ID, lesson.ID)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))

	qs, err := svc.Generate(ctx, NewRequester(learner.ID), course.ID, lesson.ID)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Len(t, qs[0].Options, 4)

	_, err = svc.Generate(ctx, NewRequester(owner.ID), course.ID, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&gen.calls), "second call should hit the cache")
	assert.Contains(t, cache.items, PracticeCacheKey(lesson.Content))

	var attempts int64
	require.NoError(t, db.Model(&models.QuizAttempt{}).Count(&attempts).Error)
	assert.Zero(t, attempts)
}

func TestPracticeGeneratorFailureIsExternal(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repos := testutil.Repos(t, db)
	owner := testutil.SeedUser(t, db, "owner")
	course := testutil.SeedCourse(t, db, owner.ID, "c")
	lesson := testutil.SeedLesson(t, db, course.ID, "Maps", 1)

	cause := errors.New("quota exceeded")
	svc := NewPracticeService(repos, &stubGenerator{err: cause}, nil, testutil.Logger(t))

	_, err := svc.Generate(ctx, NewRequester(owner.ID), course.ID, lesson.ID)
	assert.True(t, apperr.Is(err, apperr.CodeExternalService))
	assert.ErrorIs(t, err, cause)

	none := NewPracticeService(repos, nil, nil, testutil.Logger(t))
	_, err = none.Generate(ctx, NewRequester(owner.ID), course.ID, lesson.ID)
	assert.True(t, apperr.Is(err, apperr.CodeExternalService))
}

func TestPracticeSharedGenerationSurvivesCancelledCaller(t *testing.T) {
	db := testutil.DB(t)
	repos := testutil.Repos(t, db)
	owner := testutil.SeedUser(t, db, "owner")
	learner := testutil.SeedUser(t, db, "learner")
	course := testutil.SeedCourse(t, db, owner.ID, "c")
	lesson := testutil.SeedLesson(t, db, course.ID, "Maps", 1)
	testutil.SeedEnrollment(t, db, learner.ID, course.ID)

	gen := &gatedGenerator{started: make(chan struct{}), release: make(chan struct{})}
	cache := &mapCache{items: map[string][]models.PracticeQuestion{}}
	svc := NewPracticeService(repos, gen, cache, testutil.Logger(t))

	firstCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Generate(firstCtx, NewRequester(learner.ID), course.ID, lesson.ID)
		firstErr <- err
	}()
	select {
	case <-gen.started:
	case <-time.After(2 * time.Second):
		t.Fatal("generation never started")
	}

	type result struct {
		questions []models.PracticeQuestion
		err       error
	}
	second := make(chan result, 1)
	go func() {
		qs, err := svc.Generate(context.Background(), NewRequester(owner.ID), course.ID, lesson.ID)
		second <- result{qs, err}
	}()

	cancel()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, apperr.Is(err, apperr.CodeExternalService))
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller did not return")
	}

	// Let the second caller join the in-flight generation before it finishes.
	time.Sleep(100 * time.Millisecond)
	close(gen.release)

	select {
	case res := <-second:
		require.NoError(t, res.err)
		assert.Len(t, res.questions, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("second caller did not return")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&gen.calls))
	assert.Contains(t, cache.items, PracticeCacheKey(lesson.Content))
}
