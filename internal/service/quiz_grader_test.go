package service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/openlearn/lms-go-api/internal/models"
)

func quizKey(questions ...models.QuizQuestion) models.QuizData {
	return models.QuizData{Questions: questions}
}

func TestGradeQuizAllCorrect(t *testing.T) {
	data := quizKey(
		models.QuizQuestion{Question: "q1", Options: []string{"a", "b"}, CorrectAnswer: 1, Points: 5},
		models.QuizQuestion{Question: "q2", Options: []string{"a", "b", "c"}, CorrectAnswer: 2, Points: 5},
	)
	submission := models.Submission{QuizAnswers: datatypes.JSONMap{"0": 1, "1": 2}}

	result := GradeQuiz(data, submission)

	require.Equal(t, 2, result.CorrectCount)
	require.Equal(t, 2, result.QuestionCount)
	require.Equal(t, float64(10), result.PointsEarned)
	require.Equal(t, float64(10), result.PointsPossible)
	require.Equal(t, float64(100), result.Percentage)
	require.Equal(t, "Automatically graded: 2/2 correct", result.Comment())
}

func TestGradeQuizPartialScore(t *testing.T) {
	data := quizKey(
		models.QuizQuestion{Question: "q1", Options: []string{"a", "b"}, CorrectAnswer: 0, Points: 3},
		models.QuizQuestion{Question: "q2", Options: []string{"a", "b"}, CorrectAnswer: 1, Points: 1},
	)
	submission := models.Submission{QuizAnswers: datatypes.JSONMap{"0": 0, "1": 0}}

	result := GradeQuiz(data, submission)

	require.Equal(t, 1, result.CorrectCount)
	require.Equal(t, float64(3), result.PointsEarned)
	require.Equal(t, float64(4), result.PointsPossible)
	require.Equal(t, float64(75), result.Percentage)
}

func TestGradeQuizDefaultsToOnePoint(t *testing.T) {
	data := quizKey(
		models.QuizQuestion{Question: "q1", Options: []string{"a", "b"}, CorrectAnswer: 1},
		models.QuizQuestion{Question: "q2", Options: []string{"a", "b"}, CorrectAnswer: 0, Points: -2},
	)
	submission := models.Submission{QuizAnswers: datatypes.JSONMap{"0": 1, "1": 0}}

	result := GradeQuiz(data, submission)

	require.Equal(t, float64(2), result.PointsPossible)
	require.Equal(t, float64(2), result.PointsEarned)
	require.Equal(t, float64(100), result.Percentage)
}

func TestGradeQuizMissingAnswerScoresZero(t *testing.T) {
	data := quizKey(
		models.QuizQuestion{Question: "q1", Options: []string{"a", "b"}, CorrectAnswer: 1},
		models.QuizQuestion{Question: "q2", Options: []string{"a", "b"}, CorrectAnswer: 1},
	)
	submission := models.Submission{QuizAnswers: datatypes.JSONMap{"0": 1}}

	result := GradeQuiz(data, submission)

	require.Equal(t, 1, result.CorrectCount)
	require.Equal(t, float64(50), result.Percentage)
}

func TestGradeQuizMalformedAnswerScoresZero(t *testing.T) {
	data := quizKey(
		models.QuizQuestion{Question: "q1", Options: []string{"a", "b"}, CorrectAnswer: 1},
	)
	submission := models.Submission{QuizAnswers: datatypes.JSONMap{"0": "b"}}

	result := GradeQuiz(data, submission)

	require.Equal(t, 0, result.CorrectCount)
	require.Equal(t, float64(0), result.Percentage)
}

func TestGradeQuizEmptyKey(t *testing.T) {
	result := GradeQuiz(models.QuizData{}, models.Submission{})

	require.Equal(t, 0, result.QuestionCount)
	require.Equal(t, float64(0), result.PointsPossible)
	require.Equal(t, float64(0), result.Percentage)
}

func TestGradeQuizJSONNumbersFromStorage(t *testing.T) {
	// Answers round-tripped through the JSON column come back as float64.
	data := quizKey(
		models.QuizQuestion{Question: "q1", Options: []string{"a", "b"}, CorrectAnswer: 1, Points: 2},
	)
	submission := models.Submission{QuizAnswers: datatypes.JSONMap{"0": float64(1)}}

	result := GradeQuiz(data, submission)

	require.Equal(t, 1, result.CorrectCount)
	require.Equal(t, float64(100), result.Percentage)
}
