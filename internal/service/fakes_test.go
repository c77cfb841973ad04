package service

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/openlearn/lms-go-api/internal/models"
	"github.com/openlearn/lms-go-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type submissionKey struct {
	assignmentID uint
	userID       uint
}

type fakeSubmissionRepo struct {
	byID        map[uint]models.Submission
	nextID      uint
	mineRows    []repository.SubmissionJoinRow
	createCalls int
	updateCalls int
	deleteCalls int
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{byID: map[uint]models.Submission{}, nextID: 1}
}

func (f *fakeSubmissionRepo) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	submission, ok := f.byID[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (f *fakeSubmissionRepo) GetByAssignmentAndUser(ctx context.Context, assignmentID, userID uint) (models.Submission, error) {
	for _, submission := range f.byID {
		if submission.AssignmentID == assignmentID && submission.UserID == userID {
			return submission, nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (f *fakeSubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	submission.ID = f.nextID
	f.nextID++
	f.byID[submission.ID] = *submission
	f.createCalls++
	return nil
}

func (f *fakeSubmissionRepo) Update(ctx context.Context, submission *models.Submission) error {
	f.byID[submission.ID] = *submission
	f.updateCalls++
	return nil
}

func (f *fakeSubmissionRepo) DeleteWithGrade(ctx context.Context, submissionID uint) error {
	delete(f.byID, submissionID)
	f.deleteCalls++
	return nil
}

func (f *fakeSubmissionRepo) ListMine(ctx context.Context, userID uint) ([]repository.SubmissionJoinRow, error) {
	return f.mineRows, nil
}

func (f *fakeSubmissionRepo) ListTeaching(ctx context.Context, filter repository.TeachingFilter) ([]repository.SubmissionJoinRow, error) {
	return f.mineRows, nil
}

func (f *fakeSubmissionRepo) ListByAssignment(ctx context.Context, assignmentID uint) ([]repository.SubmissionJoinRow, error) {
	return f.mineRows, nil
}

func (f *fakeSubmissionRepo) CountHandedInByUser(ctx context.Context, userID uint) (int64, error) {
	return int64(len(f.byID)), nil
}

func (f *fakeSubmissionRepo) CountHandedInByUserInCourse(ctx context.Context, userID, courseID uint) (int64, error) {
	return int64(len(f.byID)), nil
}

func (f *fakeSubmissionRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.byID)), nil
}

type fakeAssignmentRepo struct {
	assignments map[uint]models.Assignment
	refs        map[uint]repository.CourseRef
	userRows    []repository.UserAssignmentRow
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{
		assignments: map[uint]models.Assignment{},
		refs:        map[uint]repository.CourseRef{},
	}
}

func (f *fakeAssignmentRepo) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, ok := f.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (f *fakeAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == 0 {
		assignment.ID = uint(len(f.assignments) + 1)
	}
	f.assignments[assignment.ID] = *assignment
	return nil
}

func (f *fakeAssignmentRepo) Update(ctx context.Context, assignment *models.Assignment) error {
	f.assignments[assignment.ID] = *assignment
	return nil
}

func (f *fakeAssignmentRepo) ListByLesson(ctx context.Context, lessonID uint) ([]models.Assignment, error) {
	var result []models.Assignment
	for _, assignment := range f.assignments {
		if assignment.LessonID == lessonID {
			result = append(result, assignment)
		}
	}
	return result, nil
}

func (f *fakeAssignmentRepo) ResolveCourse(ctx context.Context, assignmentID uint) (repository.CourseRef, error) {
	ref, ok := f.refs[assignmentID]
	if !ok {
		return repository.CourseRef{}, gorm.ErrRecordNotFound
	}
	return ref, nil
}

func (f *fakeAssignmentRepo) ListForUser(ctx context.Context, userID uint, status string) ([]repository.UserAssignmentRow, error) {
	return f.userRows, nil
}

func (f *fakeAssignmentRepo) CountInCourse(ctx context.Context, courseID uint) (int64, error) {
	return int64(len(f.assignments)), nil
}

func (f *fakeAssignmentRepo) CountForUser(ctx context.Context, userID uint) (int64, error) {
	return int64(len(f.assignments)), nil
}

type fakeEnrollmentRepo struct {
	enrollments    map[submissionKey]models.Enrollment
	completedCount int64
	progressWrites map[submissionKey]float64
}

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{
		enrollments:    map[submissionKey]models.Enrollment{},
		progressWrites: map[submissionKey]float64{},
	}
}

func (f *fakeEnrollmentRepo) enroll(courseID, userID uint) {
	f.enrollments[submissionKey{courseID, userID}] = models.Enrollment{
		ID:       uint(len(f.enrollments) + 1),
		CourseID: courseID,
		UserID:   userID,
	}
}

func (f *fakeEnrollmentRepo) Get(ctx context.Context, courseID, userID uint) (models.Enrollment, error) {
	enrollment, ok := f.enrollments[submissionKey{courseID, userID}]
	if !ok {
		return models.Enrollment{}, gorm.ErrRecordNotFound
	}
	return enrollment, nil
}

func (f *fakeEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	enrollment.ID = uint(len(f.enrollments) + 1)
	f.enrollments[submissionKey{enrollment.CourseID, enrollment.UserID}] = *enrollment
	return nil
}

func (f *fakeEnrollmentRepo) UpdateProgress(ctx context.Context, courseID, userID uint, percentage float64) error {
	key := submissionKey{courseID, userID}
	f.progressWrites[key] = percentage
	enrollment := f.enrollments[key]
	enrollment.ProgressPercentage = percentage
	f.enrollments[key] = enrollment
	return nil
}

func (f *fakeEnrollmentRepo) MarkCompleted(ctx context.Context, courseID, userID uint, completedAt time.Time) error {
	key := submissionKey{courseID, userID}
	enrollment := f.enrollments[key]
	enrollment.CompletedAt = &completedAt
	f.enrollments[key] = enrollment
	f.completedCount++
	return nil
}

func (f *fakeEnrollmentRepo) CountForUser(ctx context.Context, userID uint) (int64, error) {
	return int64(len(f.enrollments)), nil
}

func (f *fakeEnrollmentRepo) CountCompletedForUser(ctx context.Context, userID uint) (int64, error) {
	return f.completedCount, nil
}

func (f *fakeEnrollmentRepo) AverageProgressForUser(ctx context.Context, userID uint) (float64, error) {
	return 0, nil
}

func (f *fakeEnrollmentRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.enrollments)), nil
}

func (f *fakeEnrollmentRepo) CountInProgressRange(ctx context.Context, low, high float64) (int64, error) {
	return 0, nil
}

type fakeGradeRepo struct {
	bySubmission map[uint]models.Grade
	recordCalls  int
}

func newFakeGradeRepo() *fakeGradeRepo {
	return &fakeGradeRepo{bySubmission: map[uint]models.Grade{}}
}

func (f *fakeGradeRepo) GetBySubmission(ctx context.Context, submissionID uint) (models.Grade, error) {
	grade, ok := f.bySubmission[submissionID]
	if !ok {
		return models.Grade{}, gorm.ErrRecordNotFound
	}
	return grade, nil
}

func (f *fakeGradeRepo) RecordGrade(ctx context.Context, grade *models.Grade, submission *models.Submission) error {
	if existing, ok := f.bySubmission[grade.SubmissionID]; ok {
		grade.ID = existing.ID
	} else if grade.ID == 0 {
		grade.ID = uint(len(f.bySubmission) + 1)
	}
	f.bySubmission[grade.SubmissionID] = *grade
	f.recordCalls++
	return nil
}

func (f *fakeGradeRepo) ListForUser(ctx context.Context, userID uint, courseID *uint) ([]repository.GradeJoinRow, error) {
	return nil, nil
}

func (f *fakeGradeRepo) AverageForUserInCourse(ctx context.Context, userID, courseID uint) (float64, error) {
	var sum float64
	for _, grade := range f.bySubmission {
		sum += grade.Percentage
	}
	if len(f.bySubmission) == 0 {
		return 0, nil
	}
	return sum / float64(len(f.bySubmission)), nil
}

func (f *fakeGradeRepo) CountForUserInCourse(ctx context.Context, userID, courseID uint) (int64, error) {
	return int64(len(f.bySubmission)), nil
}

func (f *fakeGradeRepo) AverageForUser(ctx context.Context, userID uint) (float64, error) {
	return f.AverageForUserInCourse(ctx, userID, 0)
}

type fakeLessonRepo struct {
	lessons  map[uint]models.Lesson
	courseOf map[uint]uint
	inCourse int64
}

func newFakeLessonRepo() *fakeLessonRepo {
	return &fakeLessonRepo{lessons: map[uint]models.Lesson{}, courseOf: map[uint]uint{}}
}

func (f *fakeLessonRepo) GetByID(ctx context.Context, id uint) (models.Lesson, error) {
	lesson, ok := f.lessons[id]
	if !ok {
		return models.Lesson{}, gorm.ErrRecordNotFound
	}
	return lesson, nil
}

func (f *fakeLessonRepo) Create(ctx context.Context, lesson *models.Lesson) error {
	if lesson.ID == 0 {
		lesson.ID = uint(len(f.lessons) + 1)
	}
	f.lessons[lesson.ID] = *lesson
	return nil
}

func (f *fakeLessonRepo) Delete(ctx context.Context, id uint) error {
	delete(f.lessons, id)
	return nil
}

func (f *fakeLessonRepo) CountInCourse(ctx context.Context, courseID uint) (int64, error) {
	return f.inCourse, nil
}

func (f *fakeLessonRepo) CourseOf(ctx context.Context, lessonID uint) (uint, error) {
	courseID, ok := f.courseOf[lessonID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	return courseID, nil
}

type fakeProgressRepo struct {
	completed map[submissionKey]bool
	// completed lessons the user has in courses outside the fixture
	otherCompleted int64
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{completed: map[submissionKey]bool{}}
}

func (f *fakeProgressRepo) Get(ctx context.Context, userID, lessonID uint) (models.UserLessonProgress, error) {
	if !f.completed[submissionKey{lessonID, userID}] {
		return models.UserLessonProgress{}, gorm.ErrRecordNotFound
	}
	return models.UserLessonProgress{UserID: userID, LessonID: lessonID, Completed: true}, nil
}

func (f *fakeProgressRepo) MarkCompleted(ctx context.Context, userID, lessonID uint, at time.Time) error {
	f.completed[submissionKey{lessonID, userID}] = true
	return nil
}

func (f *fakeProgressRepo) CountCompletedInCourse(ctx context.Context, userID, courseID uint) (int64, error) {
	var count int64
	for _, done := range f.completed {
		if done {
			count++
		}
	}
	return count, nil
}

func (f *fakeProgressRepo) CountCompletedTotal(ctx context.Context, userID uint) (int64, error) {
	count, _ := f.CountCompletedInCourse(ctx, userID, 0)
	return count + f.otherCompleted, nil
}

type fakeBadgeRepo struct {
	byName map[string]models.Badge
	grants []models.UserBadge
}

func newFakeBadgeRepo(names ...string) *fakeBadgeRepo {
	repo := &fakeBadgeRepo{byName: map[string]models.Badge{}}
	for i, name := range names {
		repo.byName[name] = models.Badge{ID: uint(i + 1), Name: name}
	}
	return repo
}

func (f *fakeBadgeRepo) GetByName(ctx context.Context, name string) (models.Badge, error) {
	badge, ok := f.byName[name]
	if !ok {
		return models.Badge{}, gorm.ErrRecordNotFound
	}
	return badge, nil
}

func (f *fakeBadgeRepo) Has(ctx context.Context, userID, badgeID uint) (bool, error) {
	for _, grant := range f.grants {
		if grant.UserID == userID && grant.BadgeID == badgeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBadgeRepo) Grant(ctx context.Context, award *models.UserBadge) error {
	award.ID = uint(len(f.grants) + 1)
	f.grants = append(f.grants, *award)
	return nil
}

func (f *fakeBadgeRepo) ListForUser(ctx context.Context, userID uint) ([]models.UserBadge, error) {
	var result []models.UserBadge
	for _, grant := range f.grants {
		if grant.UserID == userID {
			grant.Badge = f.byName[f.nameOf(grant.BadgeID)]
			result = append(result, grant)
		}
	}
	return result, nil
}

func (f *fakeBadgeRepo) nameOf(badgeID uint) string {
	for name, badge := range f.byName {
		if badge.ID == badgeID {
			return name
		}
	}
	return ""
}

func (f *fakeBadgeRepo) Seed(ctx context.Context, badges []models.Badge) error {
	for _, badge := range badges {
		if _, ok := f.byName[badge.Name]; !ok {
			badge.ID = uint(len(f.byName) + 1)
			f.byName[badge.Name] = badge
		}
	}
	return nil
}

type fakeCourseRepo struct {
	courses       map[uint]models.Course
	lastFilter    repository.CourseFilter
	recounts      []uint
	reviews       []models.Review
	ratingWrites  []uint
	curriculumErr error
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: map[uint]models.Course{}}
}

func (f *fakeCourseRepo) GetByID(ctx context.Context, id uint) (models.Course, error) {
	course, ok := f.courses[id]
	if !ok {
		return models.Course{}, gorm.ErrRecordNotFound
	}
	return course, nil
}

func (f *fakeCourseRepo) GetWithCurriculum(ctx context.Context, id uint) (models.Course, error) {
	if f.curriculumErr != nil {
		return models.Course{}, f.curriculumErr
	}
	return f.GetByID(ctx, id)
}

func (f *fakeCourseRepo) List(ctx context.Context, filter repository.CourseFilter) ([]models.Course, error) {
	f.lastFilter = filter
	var result []models.Course
	for _, course := range f.courses {
		result = append(result, course)
	}
	return result, nil
}

func (f *fakeCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if course.ID == 0 {
		course.ID = uint(len(f.courses) + 1)
	}
	f.courses[course.ID] = *course
	return nil
}

func (f *fakeCourseRepo) Update(ctx context.Context, course *models.Course) error {
	f.courses[course.ID] = *course
	return nil
}

func (f *fakeCourseRepo) RecountEnrollments(ctx context.Context, courseID uint) error {
	f.recounts = append(f.recounts, courseID)
	return nil
}

func (f *fakeCourseRepo) UpsertReview(ctx context.Context, review *models.Review) error {
	for i := range f.reviews {
		if f.reviews[i].CourseID == review.CourseID && f.reviews[i].UserID == review.UserID {
			f.reviews[i].Rating = review.Rating
			f.reviews[i].Comment = review.Comment
			*review = f.reviews[i]
			return nil
		}
	}
	review.ID = uint(len(f.reviews) + 1)
	f.reviews = append(f.reviews, *review)
	return nil
}

func (f *fakeCourseRepo) RecomputeRating(ctx context.Context, courseID uint) error {
	f.ratingWrites = append(f.ratingWrites, courseID)
	course := f.courses[courseID]
	var sum, count int
	for _, review := range f.reviews {
		if review.CourseID == courseID {
			sum += review.Rating
			count++
		}
	}
	course.RatingCount = count
	if count > 0 {
		course.RatingAvg = float64(sum) / float64(count)
	} else {
		course.RatingAvg = 0
	}
	f.courses[courseID] = course
	return nil
}

func (f *fakeCourseRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.courses)), nil
}

func (f *fakeCourseRepo) TopByEnrollment(ctx context.Context, limit int) ([]repository.CourseEnrollmentRow, error) {
	return nil, nil
}

type fakeAwarder struct {
	awards []string
}

func (f *fakeAwarder) Award(ctx context.Context, userID uint, badgeName string) {
	f.awards = append(f.awards, badgeName)
}

type fakeUserRepo struct {
	byEmail map[string]models.User
	byID    map[uint]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]models.User{}, byID: map[uint]models.User{}}
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uint) (models.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = uint(len(f.byID) + 1)
	f.byEmail[user.Email] = *user
	f.byID[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.byID)), nil
}
