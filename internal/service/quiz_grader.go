package service

import (
	"fmt"
	"strconv"

	"github.com/openlearn/lms-go-api/internal/models"
)

// QuizResult is the outcome of auto-grading one quiz submission.
type QuizResult struct {
	PointsEarned   float64
	PointsPossible float64
	Percentage     float64
	CorrectCount   int
	QuestionCount  int
}

// Comment renders the canonical feedback line for an auto-graded quiz.
func (r QuizResult) Comment() string {
	return fmt.Sprintf("Automatically graded: %d/%d correct", r.CorrectCount, r.QuestionCount)
}

// GradeQuiz scores answers against the stored key. Answers are keyed by the
// stringified question index; a missing or malformed answer scores zero for
// that question. Questions without an explicit point value are worth one
// point. An empty key yields a zero percentage rather than a division by
// zero.
func GradeQuiz(data models.QuizData, submission models.Submission) QuizResult {
	result := QuizResult{QuestionCount: len(data.Questions)}

	for i, question := range data.Questions {
		points := float64(question.Points)
		if points <= 0 {
			points = 1
		}
		result.PointsPossible += points

		choice, ok := submission.AnswerFor(strconv.Itoa(i))
		if !ok {
			continue
		}
		if choice == question.CorrectAnswer {
			result.PointsEarned += points
			result.CorrectCount++
		}
	}

	if result.PointsPossible > 0 {
		result.Percentage = result.PointsEarned / result.PointsPossible * 100
	}

	return result
}
