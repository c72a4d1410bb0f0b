package repository_test

import (
	"context"
	"testing"
	"time"

	"lms/backend/models"
	"lms/backend/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestEnrollmentCreateIsInsertOnce(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repos := testutil.Repos(t, db)
	owner := testutil.SeedUser(t, db, "owner")
	learner := testutil.SeedUser(t, db, "learner")
	course := testutil.SeedCourse(t, db, owner.ID, "c")

	created, err := repos.Enrollments.Create(ctx, nil, learner.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repos.Enrollments.Create(ctx, nil, learner.ID, course.ID)
	require.NoError(t, err)
	assert.False(t, created)

	ok, err := repos.Enrollments.Exists(ctx, nil, learner.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	counts, err := repos.Enrollments.CountByCourses(ctx, nil, []uint{course.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[course.ID])
}

func TestCompletionCountsIgnoreOtherCourses(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repos := testutil.Repos(t, db)
	owner := testutil.SeedUser(t, db, "owner")
	learner := testutil.SeedUser(t, db, "learner")
	a := testutil.SeedCourse(t, db, owner.ID, "a")
	b := testutil.SeedCourse(t, db, owner.ID, "b")
	la := testutil.SeedLesson(t, db, a.ID, "la", 1)
	lb := testutil.SeedLesson(t, db, b.ID, "lb", 1)

	for _, lessonID := range []uint{la.ID, la.ID, lb.ID} {
		_, err := repos.Completions.GetOrCreate(ctx, nil, learner.ID, lessonID)
		require.NoError(t, err)
	}

	n, err := repos.Completions.CountInCourse(ctx, nil, learner.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	byUser, err := repos.Completions.CountsByUserInCourse(ctx, nil, b.ID)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{learner.ID: 1}, byUser)

	ids, err := repos.Completions.LessonIDsInCourse(ctx, nil, learner.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{la.ID: true}, ids)
}

func TestQuizReplaceKeepsQuizAndAttempts(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repos := testutil.Repos(t, db)
	owner := testutil.SeedUser(t, db, "owner")
	course := testutil.SeedCourse(t, db, owner.ID, "c")
	lesson := testutil.SeedLesson(t, db, course.ID, "l", 1)

	first, err := repos.Quizzes.Replace(ctx, db, lesson.ID, "v1", []models.Question{
		{Text: "a", Choices: []models.Choice{{Text: "x", IsCorrect: true}, {Text: "y"}}},
		{Text: "b", Choices: []models.Choice{{Text: "x", IsCorrect: true}}},
	})
	require.NoError(t, err)
	require.NoError(t, repos.Attempts.Append(ctx, nil, &models.QuizAttempt{
		UserID: owner.ID, QuizID: first.ID, Score: 2, Total: 2, Passed: true, AttemptedAt: time.Now(),
	}))

	second, err := repos.Quizzes.Replace(ctx, db, lesson.ID, "v2", []models.Question{
		{Text: "c", Choices: []models.Choice{{Text: "z", IsCorrect: true}}},
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	loaded, err := repos.Quizzes.GetByLessonID(ctx, nil, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", loaded.Title)
	require.Len(t, loaded.Questions, 1)
	assert.Equal(t, "c", loaded.Questions[0].Text)

	attempts, err := repos.Attempts.ListByUserQuiz(ctx, nil, owner.ID, first.ID)
	require.NoError(t, err)
	assert.Len(t, attempts, 1)
}

func TestRatingUpsertAndSummary(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repos := testutil.Repos(t, db)
	owner := testutil.SeedUser(t, db, "owner")
	a := testutil.SeedUser(t, db, "a")
	b := testutil.SeedUser(t, db, "b")
	course := testutil.SeedCourse(t, db, owner.ID, "c")

	_, err := repos.Ratings.Upsert(ctx, nil, a.ID, course.ID, 1)
	require.NoError(t, err)
	_, err = repos.Ratings.Upsert(ctx, nil, a.ID, course.ID, 3)
	require.NoError(t, err)
	_, err = repos.Ratings.Upsert(ctx, nil, b.ID, course.ID, 4)
	require.NoError(t, err)

	summary, err := repos.Ratings.SummaryByCourses(ctx, nil, []uint{course.ID})
	require.NoError(t, err)
	assert.InDelta(t, 3.5, summary[course.ID].Average, 0.001)
	assert.Equal(t, int64(2), summary[course.ID].Count)

	own, err := repos.Ratings.ByUserForCourses(ctx, nil, a.ID, []uint{course.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, own[course.ID])
}

func TestCourseDeleteTree(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	repos := testutil.Repos(t, db)
	owner := testutil.SeedUser(t, db, "owner")
	learner := testutil.SeedUser(t, db, "learner")
	keep := testutil.SeedCourse(t, db, owner.ID, "keep")
	drop := testutil.SeedCourse(t, db, owner.ID, "drop")
	keptLesson := testutil.SeedLesson(t, db, keep.ID, "k", 1)
	droppedLesson := testutil.SeedLesson(t, db, drop.ID, "d", 1)
	testutil.SeedQuiz(t, db, keptLesson.ID, 1)
	testutil.SeedQuiz(t, db, droppedLesson.ID, 2)
	testutil.SeedEnrollment(t, db, learner.ID, drop.ID)
	testutil.SeedCompletion(t, db, learner.ID, droppedLesson.ID)
	testutil.SeedCompletion(t, db, learner.ID, keptLesson.ID)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repos.Courses.DeleteTree(ctx, tx, drop.ID)
	}))

	count := func(m interface{}) int64 {
		var n int64
		require.NoError(t, db.Model(m).Count(&n).Error)
		return n
	}
	assert.Equal(t, int64(1), count(&models.Course{}))
	assert.Equal(t, int64(1), count(&models.Lesson{}))
	assert.Equal(t, int64(1), count(&models.Quiz{}))
	assert.Equal(t, int64(1), count(&models.Question{}))
	assert.Equal(t, int64(2), count(&models.Choice{}))
	assert.Equal(t, int64(0), count(&models.Enrollment{}))
	assert.Equal(t, int64(1), count(&models.LessonCompletion{}))
	assert.False(t, db.Migrator().HasColumn(&models.Course{}, "deleted_at"), "courses are hard deleted")
	assert.False(t, db.Migrator().HasColumn(&models.Lesson{}, "deleted_at"), "lessons are hard deleted")

	err := db.Transaction(func(tx *gorm.DB) error {
		return repos.Courses.DeleteTree(ctx, tx, drop.ID)
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
