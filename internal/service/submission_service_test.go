package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/openlearn/lms-go-api/internal/dto"
	"github.com/openlearn/lms-go-api/internal/models"
	"github.com/openlearn/lms-go-api/internal/repository"
)

type submissionFixture struct {
	service     SubmissionService
	submissions *fakeSubmissionRepo
	assignments *fakeAssignmentRepo
	enrollments *fakeEnrollmentRepo
	grades      *fakeGradeRepo
	awarder     *fakeAwarder
}

func newSubmissionFixture(t *testing.T) *submissionFixture {
	t.Helper()
	fixture := &submissionFixture{
		submissions: newFakeSubmissionRepo(),
		assignments: newFakeAssignmentRepo(),
		enrollments: newFakeEnrollmentRepo(),
		grades:      newFakeGradeRepo(),
		awarder:     &fakeAwarder{},
	}
	fixture.service = NewSubmissionService(
		fixture.submissions,
		fixture.assignments,
		fixture.enrollments,
		fixture.grades,
		fixture.awarder,
		validator.New(validator.WithRequiredStructEnabled()),
		bluemonday.UGCPolicy(),
		nil,
		testLogger(),
	)
	return fixture
}

func (f *submissionFixture) addQuizAssignment(t *testing.T, id, courseID uint, questions ...models.QuizQuestion) {
	t.Helper()
	assignment := models.Assignment{
		ID:             id,
		LessonID:       1,
		Title:          "Weekly quiz",
		AssignmentType: models.AssignmentTypeQuiz,
		PointsPossible: 100,
	}
	require.NoError(t, assignment.SetQuizData(models.QuizData{Questions: questions}))
	f.assignments.assignments[id] = assignment
	f.assignments.refs[id] = repository.CourseRef{CourseID: courseID, AuthorID: 99}
}

func (f *submissionFixture) addEssayAssignment(id, courseID uint, due *time.Time) {
	f.assignments.assignments[id] = models.Assignment{
		ID:             id,
		LessonID:       1,
		Title:          "Essay",
		AssignmentType: models.AssignmentTypeEssay,
		PointsPossible: 100,
		DueDate:        due,
	}
	f.assignments.refs[id] = repository.CourseRef{CourseID: courseID, AuthorID: 99}
}

func TestSubmitQuizAutoGrades(t *testing.T) {
	fixture := newSubmissionFixture(t)
	fixture.addQuizAssignment(t, 1, 10,
		models.QuizQuestion{Question: "q1", Options: []string{"a", "b"}, CorrectAnswer: 1, Points: 5},
		models.QuizQuestion{Question: "q2", Options: []string{"a", "b"}, CorrectAnswer: 0, Points: 5},
	)
	fixture.enrollments.enroll(10, 7)
	actor := Actor{ID: 7, Role: models.RoleUser}

	response, err := fixture.service.Submit(context.Background(), 1, dto.SubmissionCreateRequest{
		QuizAnswers: map[string]int{"0": 1, "1": 1},
	}, actor)
	require.NoError(t, err)

	require.Equal(t, models.SubmissionStatusGraded, response.Status)
	require.NotNil(t, response.GradedAt)
	require.Equal(t, "Automatically graded: 1/2 correct", response.Comments)

	grade, ok := fixture.grades.bySubmission[response.ID]
	require.True(t, ok)
	require.Nil(t, grade.GraderID)
	require.Equal(t, float64(5), grade.PointsEarned)
	require.Equal(t, float64(10), grade.PointsPossible)
	require.Equal(t, float64(50), grade.Percentage)
	require.Empty(t, fixture.awarder.awards)
}

func TestSubmitPerfectQuizAwardsTopPerformer(t *testing.T) {
	fixture := newSubmissionFixture(t)
	fixture.addQuizAssignment(t, 1, 10,
		models.QuizQuestion{Question: "q1", Options: []string{"a", "b"}, CorrectAnswer: 1},
	)
	fixture.enrollments.enroll(10, 7)

	response, err := fixture.service.Submit(context.Background(), 1, dto.SubmissionCreateRequest{
		QuizAnswers: map[string]int{"0": 1},
	}, Actor{ID: 7, Role: models.RoleUser})
	require.NoError(t, err)

	require.Equal(t, models.SubmissionStatusGraded, response.Status)
	require.Equal(t, []string{models.BadgeTopPerformer}, fixture.awarder.awards)
}

func TestSubmitQuizWithoutKeyStaysSubmitted(t *testing.T) {
	fixture := newSubmissionFixture(t)
	fixture.addQuizAssignment(t, 1, 10)
	fixture.enrollments.enroll(10, 7)

	response, err := fixture.service.Submit(context.Background(), 1, dto.SubmissionCreateRequest{
		QuizAnswers: map[string]int{"0": 1},
	}, Actor{ID: 7, Role: models.RoleUser})
	require.NoError(t, err)

	require.Equal(t, models.SubmissionStatusSubmitted, response.Status)
	require.Empty(t, fixture.grades.bySubmission)
}

func TestSubmitQuizKeepsAttemptWhenGradingFails(t *testing.T) {
	fixture := newSubmissionFixture(t)
	fixture.assignments.assignments[1] = models.Assignment{
		ID:             1,
		LessonID:       1,
		Title:          "Weekly quiz",
		AssignmentType: models.AssignmentTypeQuiz,
		PointsPossible: 100,
		QuizData:       datatypes.JSON(`{broken`),
	}
	fixture.assignments.refs[1] = repository.CourseRef{CourseID: 10, AuthorID: 99}
	fixture.enrollments.enroll(10, 7)

	// A broken answer key must not lose the hand-in.
	response, err := fixture.service.Submit(context.Background(), 1, dto.SubmissionCreateRequest{
		QuizAnswers: map[string]int{"0": 1},
	}, Actor{ID: 7, Role: models.RoleUser})
	require.NoError(t, err)

	require.Equal(t, models.SubmissionStatusSubmitted, response.Status)
	require.Nil(t, response.GradedAt)
	require.Empty(t, fixture.grades.bySubmission)
	require.Equal(t, 1, fixture.submissions.createCalls)
}

func TestSubmitAfterDueDateIsLate(t *testing.T) {
	fixture := newSubmissionFixture(t)
	due := time.Now().Add(-time.Hour)
	fixture.addEssayAssignment(1, 10, &due)
	fixture.enrollments.enroll(10, 7)

	response, err := fixture.service.Submit(context.Background(), 1, dto.SubmissionCreateRequest{
		EssayText: "my essay",
	}, Actor{ID: 7, Role: models.RoleUser})
	require.NoError(t, err)

	require.Equal(t, models.SubmissionStatusLate, response.Status)
}

func TestSubmitRequiresEnrollment(t *testing.T) {
	fixture := newSubmissionFixture(t)
	fixture.addEssayAssignment(1, 10, nil)

	_, err := fixture.service.Submit(context.Background(), 1, dto.SubmissionCreateRequest{
		EssayText: "my essay",
	}, Actor{ID: 7, Role: models.RoleUser})
	require.ErrorIs(t, err, ErrNotEnrolled)
}

func TestSubmitUnknownAssignment(t *testing.T) {
	fixture := newSubmissionFixture(t)

	_, err := fixture.service.Submit(context.Background(), 42, dto.SubmissionCreateRequest{
		EssayText: "my essay",
	}, Actor{ID: 7, Role: models.RoleUser})
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestSubmitEmptyPayloadRejected(t *testing.T) {
	fixture := newSubmissionFixture(t)
	fixture.addEssayAssignment(1, 10, nil)
	fixture.enrollments.enroll(10, 7)

	_, err := fixture.service.Submit(context.Background(), 1, dto.SubmissionCreateRequest{}, Actor{ID: 7, Role: models.RoleUser})
	require.ErrorIs(t, err, ErrEmptySubmission)
}

func TestSubmitSanitizesEssayMarkup(t *testing.T) {
	fixture := newSubmissionFixture(t)
	fixture.addEssayAssignment(1, 10, nil)
	fixture.enrollments.enroll(10, 7)

	response, err := fixture.service.Submit(context.Background(), 1, dto.SubmissionCreateRequest{
		EssayText: `<script>alert(1)</script><p>clean</p>`,
	}, Actor{ID: 7, Role: models.RoleUser})
	require.NoError(t, err)

	require.NotContains(t, response.EssayText, "<script>")
	require.Contains(t, response.EssayText, "clean")
}

func TestResubmitReplacesAttempt(t *testing.T) {
	fixture := newSubmissionFixture(t)
	fixture.addEssayAssignment(1, 10, nil)
	fixture.enrollments.enroll(10, 7)
	actor := Actor{ID: 7, Role: models.RoleUser}

	first, err := fixture.service.Submit(context.Background(), 1, dto.SubmissionCreateRequest{EssayText: "draft"}, actor)
	require.NoError(t, err)

	second, err := fixture.service.Submit(context.Background(), 1, dto.SubmissionCreateRequest{EssayText: "final"}, actor)
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "final", second.EssayText)
	require.Equal(t, 1, fixture.submissions.createCalls)
	require.Equal(t, 1, fixture.submissions.updateCalls)
}

func TestResubmitGradedEssayRejected(t *testing.T) {
	fixture := newSubmissionFixture(t)
	fixture.addEssayAssignment(1, 10, nil)
	fixture.enrollments.enroll(10, 7)

	gradedAt := time.Now()
	fixture.submissions.byID[1] = models.Submission{
		ID:           1,
		AssignmentID: 1,
		UserID:       7,
		Status:       models.SubmissionStatusGraded,
		GradedAt:     &gradedAt,
	}

	_, err := fixture.service.Submit(context.Background(), 1, dto.SubmissionCreateRequest{
		EssayText: "second try",
	}, Actor{ID: 7, Role: models.RoleUser})
	require.ErrorIs(t, err, ErrAlreadyGraded)
}

func TestResubmitGradedQuizRegrades(t *testing.T) {
	fixture := newSubmissionFixture(t)
	fixture.addQuizAssignment(t, 1, 10,
		models.QuizQuestion{Question: "q1", Options: []string{"a", "b"}, CorrectAnswer: 1},
	)
	fixture.enrollments.enroll(10, 7)
	actor := Actor{ID: 7, Role: models.RoleUser}

	first, err := fixture.service.Submit(context.Background(), 1, dto.SubmissionCreateRequest{
		QuizAnswers: map[string]int{"0": 0},
	}, actor)
	require.NoError(t, err)
	require.Equal(t, float64(0), fixture.grades.bySubmission[first.ID].Percentage)

	second, err := fixture.service.Submit(context.Background(), 1, dto.SubmissionCreateRequest{
		QuizAnswers: map[string]int{"0": 1},
	}, actor)
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, float64(100), fixture.grades.bySubmission[second.ID].Percentage)
	require.Equal(t, 2, fixture.grades.recordCalls)
}

func TestStartIsIdempotent(t *testing.T) {
	fixture := newSubmissionFixture(t)
	fixture.addEssayAssignment(1, 10, nil)
	fixture.enrollments.enroll(10, 7)
	actor := Actor{ID: 7, Role: models.RoleUser}

	first, err := fixture.service.Start(context.Background(), 1, actor)
	require.NoError(t, err)
	require.False(t, first.AlreadyStarted)
	require.Equal(t, models.SubmissionStatusPending, first.Status)

	second, err := fixture.service.Start(context.Background(), 1, actor)
	require.NoError(t, err)
	require.True(t, second.AlreadyStarted)
	require.Equal(t, first.SubmissionID, second.SubmissionID)
	require.Equal(t, 1, fixture.submissions.createCalls)
}

func TestDeleteMineOwnershipAndGradedLock(t *testing.T) {
	fixture := newSubmissionFixture(t)
	submittedAt := time.Now()
	fixture.submissions.byID[1] = models.Submission{
		ID: 1, AssignmentID: 1, UserID: 7,
		Status: models.SubmissionStatusSubmitted, SubmittedAt: &submittedAt,
	}
	fixture.submissions.byID[2] = models.Submission{
		ID: 2, AssignmentID: 2, UserID: 7,
		Status: models.SubmissionStatusGraded,
	}

	err := fixture.service.DeleteMine(context.Background(), 1, Actor{ID: 8, Role: models.RoleUser})
	require.ErrorIs(t, err, ErrSubmissionForbidden)

	err = fixture.service.DeleteMine(context.Background(), 2, Actor{ID: 7, Role: models.RoleUser})
	require.ErrorIs(t, err, ErrAlreadyGraded)

	err = fixture.service.DeleteMine(context.Background(), 3, Actor{ID: 7, Role: models.RoleUser})
	require.ErrorIs(t, err, ErrSubmissionNotFound)

	require.NoError(t, fixture.service.DeleteMine(context.Background(), 1, Actor{ID: 7, Role: models.RoleUser}))
	require.Equal(t, 1, fixture.submissions.deleteCalls)
}

func TestListMineMapsJoinedRows(t *testing.T) {
	fixture := newSubmissionFixture(t)
	earned := 80.0
	percentage := 80.0
	feedback := "solid work"
	fixture.submissions.mineRows = []repository.SubmissionJoinRow{{
		SubmissionID:   1,
		Status:         models.SubmissionStatusGraded,
		AssignmentID:   3,
		AssignmentName: "Essay",
		PointsPossible: 100,
		CourseID:       10,
		CourseTitle:    "Go basics",
		PointsEarned:   &earned,
		Percentage:     &percentage,
		Feedback:       &feedback,
	}}

	responses, err := fixture.service.ListMine(context.Background(), Actor{ID: 7, Role: models.RoleUser})
	require.NoError(t, err)
	require.Len(t, responses, 1)
	require.Equal(t, "Essay", responses[0].AssignmentName)
	require.Equal(t, "solid work", responses[0].Feedback)
	require.NotNil(t, responses[0].Percentage)
	require.Equal(t, 80.0, *responses[0].Percentage)
}
