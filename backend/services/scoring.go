package services

import (
	"strconv"
	"strings"

	"lms/backend/models"
)

// A quiz is passed when score/total >= passNumerator/passDenominator (0.8).
const (
	passNumerator   = 4
	passDenominator = 5
)

type CorrectAnswer struct {
	QuestionID        uint   `json:"question_id"`
	QuestionText      string `json:"question_text"`
	CorrectChoiceID   uint   `json:"correct_choice_id"`
	CorrectChoiceText string `json:"correct_choice_text"`
}

// Verdict is the outcome of scoring one submission.
type Verdict struct {
	Score          int             `json:"score"`
	Total          int             `json:"total"`
	Passed         bool            `json:"passed"`
	CorrectAnswers []CorrectAnswer `json:"correct_answers"`
}

// ScoreQuiz grades answers (question id -> choice id) against the quiz.
// Ids that do not parse or do not exist are ignored, as are choices of another
// question. Scoring never fails and never exceeds the question count.
// Questions are reported in the order given.
func ScoreQuiz(quiz *models.Quiz, answers map[string]string) Verdict {
	verdict := Verdict{CorrectAnswers: []CorrectAnswer{}}
	if quiz == nil {
		verdict.Passed = true
		return verdict
	}

	questions := make(map[uint]*models.Question, len(quiz.Questions))
	for i := range quiz.Questions {
		questions[quiz.Questions[i].ID] = &quiz.Questions[i]
	}
	verdict.Total = len(quiz.Questions)

	// Keys like "1" and "01" name the same question; it is scored once, and
	// only when every spelling picks the same choice.
	picked := make(map[uint]uint, len(answers))
	conflicted := make(map[uint]bool)
	for rawQuestionID, rawChoiceID := range answers {
		questionID, ok := parseID(rawQuestionID)
		if !ok {
			continue
		}
		choiceID, ok := parseID(rawChoiceID)
		if !ok {
			continue
		}
		if _, ok := questions[questionID]; !ok {
			continue
		}
		if prev, seen := picked[questionID]; seen && prev != choiceID {
			conflicted[questionID] = true
			continue
		}
		picked[questionID] = choiceID
	}

	for questionID, choiceID := range picked {
		if conflicted[questionID] {
			continue
		}
		for _, choice := range questions[questionID].Choices {
			if choice.ID == choiceID {
				if choice.IsCorrect {
					verdict.Score++
				}
				break
			}
		}
	}

	verdict.Passed = IsPassing(verdict.Score, verdict.Total)

	for _, question := range quiz.Questions {
		for _, choice := range question.Choices {
			if !choice.IsCorrect {
				continue
			}
			verdict.CorrectAnswers = append(verdict.CorrectAnswers, CorrectAnswer{
				QuestionID:        question.ID,
				QuestionText:      question.Text,
				CorrectChoiceID:   choice.ID,
				CorrectChoiceText: choice.Text,
			})
			break
		}
	}

	return verdict
}

// IsPassing compares score/total with the pass ratio exactly; an empty quiz passes.
func IsPassing(score, total int) bool {
	if total == 0 {
		return true
	}
	return score*passDenominator >= total*passNumerator
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
