package services

import (
	"fmt"
	"testing"

	"lms/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureQuiz builds n questions with ids 1..n; question i has choices 10i (correct) and 10i+1.
func fixtureQuiz(n int) *models.Quiz {
	quiz := &models.Quiz{ID: 1, Title: "q"}
	for i := 1; i <= n; i++ {
		quiz.Questions = append(quiz.Questions, models.Question{
			ID:   uint(i),
			Text: fmt.Sprintf("Q%d", i),
			Choices: []models.Choice{
				{ID: uint(10 * i), Text: "yes", IsCorrect: true},
				{ID: uint(10*i + 1), Text: "no"},
			},
		})
	}
	return quiz
}

func answersFor(n, correct int) map[string]string {
	out := map[string]string{}
	for i := 1; i <= n; i++ {
		choice := 10 * i
		if i > correct {
			choice++
		}
		out[fmt.Sprint(i)] = fmt.Sprint(choice)
	}
	return out
}

func TestScoreQuizPassThreshold(t *testing.T) {
	tests := []struct {
		name      string
		questions int
		correct   int
		passed    bool
	}{
		{"all correct", 5, 5, true},
		{"four of five is exactly 80 percent", 5, 4, true},
		{"three of four is below 80 percent", 4, 3, false},
		{"none correct", 3, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ScoreQuiz(fixtureQuiz(tt.questions), answersFor(tt.questions, tt.correct))
			assert.Equal(t, tt.correct, v.Score)
			assert.Equal(t, tt.questions, v.Total)
			assert.Equal(t, tt.passed, v.Passed)
		})
	}
}

func TestScoreQuizEmptyQuizPasses(t *testing.T) {
	v := ScoreQuiz(&models.Quiz{ID: 1}, nil)
	assert.Equal(t, 0, v.Score)
	assert.Equal(t, 0, v.Total)
	assert.True(t, v.Passed)
	assert.NotNil(t, v.CorrectAnswers)
	assert.Empty(t, v.CorrectAnswers)
}

func TestScoreQuizIgnoresUnknownAndMalformedAnswers(t *testing.T) {
	quiz := fixtureQuiz(2)
	answers := map[string]string{
		"1":   "10",
		"abc": "20",
		"2":   "not-a-number",
		"99":  "10",
	}
	v := ScoreQuiz(quiz, answers)
	assert.Equal(t, 1, v.Score)
	assert.Equal(t, 2, v.Total)
	assert.False(t, v.Passed)
}

func TestScoreQuizChoiceFromAnotherQuestionDoesNotCount(t *testing.T) {
	quiz := fixtureQuiz(2)
	v := ScoreQuiz(quiz, map[string]string{"1": "20", "2": "10"})
	assert.Equal(t, 0, v.Score)
}

func TestScoreQuizCountsEachQuestionOnce(t *testing.T) {
	quiz := fixtureQuiz(2)

	v := ScoreQuiz(quiz, map[string]string{"1": "10", "01": "10", " 1": "10", "001": "10"})
	assert.Equal(t, 1, v.Score)
	assert.Equal(t, 2, v.Total)
	assert.False(t, v.Passed)

	// Spellings that disagree cannot cover every choice of one question.
	v = ScoreQuiz(quiz, map[string]string{"1": "10", "01": "11", "2": "20"})
	assert.Equal(t, 1, v.Score)
	assert.LessOrEqual(t, v.Score, v.Total)
}

func TestScoreQuizReportsCorrectAnswersInQuestionOrder(t *testing.T) {
	quiz := fixtureQuiz(3)
	quiz.Questions[1].Choices[0].IsCorrect = false

	v := ScoreQuiz(quiz, nil)
	require.Len(t, v.CorrectAnswers, 2)
	assert.Equal(t, CorrectAnswer{QuestionID: 1, QuestionText: "Q1", CorrectChoiceID: 10, CorrectChoiceText: "yes"}, v.CorrectAnswers[0])
	assert.Equal(t, uint(3), v.CorrectAnswers[1].QuestionID)
	assert.Equal(t, 3, v.Total)
}

func TestIsPassing(t *testing.T) {
	assert.True(t, IsPassing(0, 0))
	assert.True(t, IsPassing(8, 10))
	assert.False(t, IsPassing(7, 9))
	assert.True(t, IsPassing(1, 1))
	assert.False(t, IsPassing(0, 1))
}

func TestCoursePercent(t *testing.T) {
	assert.Equal(t, 0, CoursePercent(0, 0))
	assert.Equal(t, 0, CoursePercent(0, 3))
	assert.Equal(t, 33, CoursePercent(1, 3))
	assert.Equal(t, 66, CoursePercent(2, 3))
	assert.Equal(t, 100, CoursePercent(3, 3))
}
