package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openlearn/lms-go-api/internal/models"
)

func TestSubmissionRepositoryGetByAssignmentAndUser(t *testing.T) {
	db := setupTestDB(t)
	work := seedCourseWork(t, db)
	repo := NewSubmissionRepository(db)

	submission := models.Submission{
		AssignmentID: work.assignment.ID,
		UserID:       work.student.ID,
		Status:       models.SubmissionStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), &submission))

	found, err := repo.GetByAssignmentAndUser(context.Background(), work.assignment.ID, work.student.ID)
	require.NoError(t, err)
	require.Equal(t, submission.ID, found.ID)

	_, err = repo.GetByAssignmentAndUser(context.Background(), work.assignment.ID, 9999)
	require.Error(t, err)
}

func TestSubmissionRepositoryGetByIDPreloadsAssignment(t *testing.T) {
	db := setupTestDB(t)
	work := seedCourseWork(t, db)
	repo := NewSubmissionRepository(db)

	submission := models.Submission{
		AssignmentID: work.assignment.ID,
		UserID:       work.student.ID,
		Status:       models.SubmissionStatusSubmitted,
	}
	require.NoError(t, repo.Create(context.Background(), &submission))

	found, err := repo.GetByID(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, work.assignment.ID, found.Assignment.ID)
	require.Equal(t, 100, found.Assignment.PointsPossible)
}

func TestSubmissionRepositoryListMineSkipsPending(t *testing.T) {
	db := setupTestDB(t)
	work := seedCourseWork(t, db)
	repo := NewSubmissionRepository(db)

	quiz := models.Assignment{
		LessonID:       work.lessons[1].ID,
		Title:          "Quiz",
		Description:    "answer",
		AssignmentType: models.AssignmentTypeQuiz,
		PointsPossible: 10,
	}
	require.NoError(t, db.Create(&quiz).Error)

	submittedAt := time.Now()
	handedIn := models.Submission{
		AssignmentID: work.assignment.ID,
		UserID:       work.student.ID,
		Status:       models.SubmissionStatusSubmitted,
		SubmittedAt:  &submittedAt,
	}
	pending := models.Submission{
		AssignmentID: quiz.ID,
		UserID:       work.student.ID,
		Status:       models.SubmissionStatusPending,
	}
	require.NoError(t, db.Create(&handedIn).Error)
	require.NoError(t, db.Create(&pending).Error)

	rows, err := repo.ListMine(context.Background(), work.student.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, handedIn.ID, rows[0].SubmissionID)
	require.Equal(t, work.assignment.Title, rows[0].AssignmentName)
	require.Equal(t, work.course.Title, rows[0].CourseTitle)
	require.Nil(t, rows[0].Percentage, "ungraded submission has no grade columns")
}

func TestSubmissionRepositoryListMineIncludesGrade(t *testing.T) {
	db := setupTestDB(t)
	work := seedCourseWork(t, db)
	repo := NewSubmissionRepository(db)

	submittedAt := time.Now()
	submission := models.Submission{
		AssignmentID: work.assignment.ID,
		UserID:       work.student.ID,
		Status:       models.SubmissionStatusGraded,
		SubmittedAt:  &submittedAt,
	}
	require.NoError(t, db.Create(&submission).Error)
	require.NoError(t, db.Create(&models.Grade{
		SubmissionID:   submission.ID,
		PointsEarned:   85,
		PointsPossible: 100,
		Percentage:     85,
		Feedback:       "nice",
	}).Error)

	rows, err := repo.ListMine(context.Background(), work.student.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Percentage)
	require.Equal(t, float64(85), *rows[0].Percentage)
	require.NotNil(t, rows[0].Feedback)
	require.Equal(t, "nice", *rows[0].Feedback)
}

func TestSubmissionRepositoryListTeachingFilters(t *testing.T) {
	db := setupTestDB(t)
	work := seedCourseWork(t, db)
	repo := NewSubmissionRepository(db)

	submittedAt := time.Now()
	submission := models.Submission{
		AssignmentID: work.assignment.ID,
		UserID:       work.student.ID,
		Status:       models.SubmissionStatusSubmitted,
		SubmittedAt:  &submittedAt,
	}
	require.NoError(t, db.Create(&submission).Error)

	rows, err := repo.ListTeaching(context.Background(), TeachingFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, work.student.Name, rows[0].StudentName)

	rows, err = repo.ListTeaching(context.Background(), TeachingFilter{AuthorID: &work.author.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	other := uint(9999)
	rows, err = repo.ListTeaching(context.Background(), TeachingFilter{AuthorID: &other})
	require.NoError(t, err)
	require.Empty(t, rows)

	rows, err = repo.ListTeaching(context.Background(), TeachingFilter{Status: models.SubmissionStatusGraded})
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestSubmissionRepositoryDeleteWithGrade(t *testing.T) {
	db := setupTestDB(t)
	work := seedCourseWork(t, db)
	repo := NewSubmissionRepository(db)

	submission := models.Submission{
		AssignmentID: work.assignment.ID,
		UserID:       work.student.ID,
		Status:       models.SubmissionStatusGraded,
	}
	require.NoError(t, db.Create(&submission).Error)
	require.NoError(t, db.Create(&models.Grade{
		SubmissionID:   submission.ID,
		PointsEarned:   50,
		PointsPossible: 100,
		Percentage:     50,
	}).Error)

	require.NoError(t, repo.DeleteWithGrade(context.Background(), submission.ID))

	var submissions, grades int64
	require.NoError(t, db.Model(&models.Submission{}).Count(&submissions).Error)
	require.NoError(t, db.Model(&models.Grade{}).Count(&grades).Error)
	require.Zero(t, submissions)
	require.Zero(t, grades)
}

func TestSubmissionRepositoryHandedInCounts(t *testing.T) {
	db := setupTestDB(t)
	work := seedCourseWork(t, db)
	repo := NewSubmissionRepository(db)

	quiz := models.Assignment{
		LessonID:       work.lessons[1].ID,
		Title:          "Quiz",
		Description:    "answer",
		AssignmentType: models.AssignmentTypeQuiz,
		PointsPossible: 10,
	}
	require.NoError(t, db.Create(&quiz).Error)

	require.NoError(t, db.Create(&models.Submission{
		AssignmentID: work.assignment.ID,
		UserID:       work.student.ID,
		Status:       models.SubmissionStatusLate,
	}).Error)
	require.NoError(t, db.Create(&models.Submission{
		AssignmentID: quiz.ID,
		UserID:       work.student.ID,
		Status:       models.SubmissionStatusPending,
	}).Error)

	count, err := repo.CountHandedInByUser(context.Background(), work.student.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}
