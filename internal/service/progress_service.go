package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/openlearn/lms-go-api/internal/dto"
	"github.com/openlearn/lms-go-api/internal/models"
	"github.com/openlearn/lms-go-api/internal/observability"
	"github.com/openlearn/lms-go-api/internal/repository"
)

// ProgressService recomputes and reports course progress. The enrollment's
// progress_percentage is a cache rewritten in full after every lesson
// completion; it is never adjusted incrementally.
type ProgressService interface {
	CompleteLesson(ctx context.Context, lessonID uint, actor Actor) (dto.LessonCompletionResponse, error)
	GetCourseProgress(ctx context.Context, courseID uint, actor Actor) (dto.CourseProgressResponse, error)
}

type progressService struct {
	lessons     repository.LessonRepository
	progress    repository.LessonProgressRepository
	enrollments repository.EnrollmentRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	grades      repository.GradeRepository
	badges      BadgeAwarder
	cache       *redis.Client
	cacheTTL    time.Duration
	activity    ActivityRecorder
	logger      zerolog.Logger
	now         func() time.Time
}

// NewProgressService constructs the progress service. The cache client may
// be nil, in which case every read recomputes.
func NewProgressService(lessons repository.LessonRepository, progress repository.LessonProgressRepository, enrollments repository.EnrollmentRepository, assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, grades repository.GradeRepository, badges BadgeAwarder, cache *redis.Client, cacheTTL time.Duration, activity ActivityRecorder, logger zerolog.Logger) ProgressService {
	return &progressService{
		lessons:     lessons,
		progress:    progress,
		enrollments: enrollments,
		assignments: assignments,
		submissions: submissions,
		grades:      grades,
		badges:      badges,
		cache:       cache,
		cacheTTL:    cacheTTL,
		activity:    activity,
		logger:      logger.With().Str("component", "progress_service").Logger(),
		now:         time.Now,
	}
}

func progressCacheKey(userID, courseID uint) string {
	return fmt.Sprintf("progress:%d:%d", userID, courseID)
}

// CompleteLesson marks a lesson done and recomputes the course percentage
// from scratch. The very first lesson a user ever completes earns the
// First steps badge; hitting 100% stamps the enrollment completion time
// and earns Course completer. Repeating a completed lesson is a no-op for
// the percentage.
func (s *progressService) CompleteLesson(ctx context.Context, lessonID uint, actor Actor) (dto.LessonCompletionResponse, error) {
	courseID, err := s.lessons.CourseOf(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonCompletionResponse{}, ErrLessonNotFound
		}
		return dto.LessonCompletionResponse{}, err
	}

	enrollment, err := s.enrollments.Get(ctx, courseID, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonCompletionResponse{}, ErrNotEnrolled
		}
		return dto.LessonCompletionResponse{}, err
	}

	if err := s.progress.MarkCompleted(ctx, actor.ID, lessonID, s.now()); err != nil {
		return dto.LessonCompletionResponse{}, err
	}

	percentage, err := s.recompute(ctx, actor.ID, courseID)
	if err != nil {
		return dto.LessonCompletionResponse{}, err
	}

	if s.badges != nil {
		totalCompleted, err := s.progress.CountCompletedTotal(ctx, actor.ID)
		if err != nil {
			s.logger.Warn().Err(err).Uint("user_id", actor.ID).Msg("failed to count completed lessons")
		} else if totalCompleted == 1 {
			s.badges.Award(ctx, actor.ID, models.BadgeFirstSteps)
		}
	}

	courseCompleted := false
	if percentage == 100 && enrollment.CompletedAt == nil {
		courseCompleted = true
		if err := s.enrollments.MarkCompleted(ctx, courseID, actor.ID, s.now()); err != nil {
			return dto.LessonCompletionResponse{}, err
		}
		observability.CoursesCompleted().Inc()

		if s.badges != nil {
			s.badges.Award(ctx, actor.ID, models.BadgeCourseCompleter)
		}

		if s.activity != nil {
			_, _ = s.activity.Record(ctx, ActivityEntry{
				ActorID:    actor.ID,
				ActorRole:  actor.Role,
				Action:     "course.completed",
				EntityType: "course",
				EntityID:   &courseID,
			})
		}
	}

	s.invalidateCache(ctx, actor.ID, courseID)

	return dto.LessonCompletionResponse{
		LessonID:           lessonID,
		CourseID:           courseID,
		ProgressPercentage: percentage,
		CourseCompleted:    courseCompleted,
	}, nil
}

// recompute rewrites the enrollment percentage from the lesson counts. A
// course with no lessons reports zero.
func (s *progressService) recompute(ctx context.Context, userID, courseID uint) (float64, error) {
	total, err := s.lessons.CountInCourse(ctx, courseID)
	if err != nil {
		return 0, err
	}

	var percentage float64
	if total > 0 {
		completed, err := s.progress.CountCompletedInCourse(ctx, userID, courseID)
		if err != nil {
			return 0, err
		}
		percentage = 100 * float64(completed) / float64(total)
	}

	if err := s.enrollments.UpdateProgress(ctx, courseID, userID, percentage); err != nil {
		return 0, err
	}
	return percentage, nil
}

func (s *progressService) GetCourseProgress(ctx context.Context, courseID uint, actor Actor) (dto.CourseProgressResponse, error) {
	cacheKey := progressCacheKey(actor.ID, courseID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.CourseProgressResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("course_id", courseID).Msg("progress cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read progress cache")
		}
	}

	if _, err := s.enrollments.Get(ctx, courseID, actor.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseProgressResponse{}, ErrNotEnrolled
		}
		return dto.CourseProgressResponse{}, err
	}

	totalLessons, err := s.lessons.CountInCourse(ctx, courseID)
	if err != nil {
		return dto.CourseProgressResponse{}, err
	}
	completedLessons, err := s.progress.CountCompletedInCourse(ctx, actor.ID, courseID)
	if err != nil {
		return dto.CourseProgressResponse{}, err
	}
	totalAssignments, err := s.assignments.CountInCourse(ctx, courseID)
	if err != nil {
		return dto.CourseProgressResponse{}, err
	}
	completedAssignments, err := s.submissions.CountHandedInByUserInCourse(ctx, actor.ID, courseID)
	if err != nil {
		return dto.CourseProgressResponse{}, err
	}

	var percentage float64
	if totalLessons > 0 {
		percentage = 100 * float64(completedLessons) / float64(totalLessons)
	}

	response := dto.CourseProgressResponse{
		CourseID:             courseID,
		CompletedLessons:     int(completedLessons),
		TotalLessons:         int(totalLessons),
		CompletedAssignments: int(completedAssignments),
		TotalAssignments:     int(totalAssignments),
		ProgressPercentage:   percentage,
	}

	gradedCount, err := s.grades.CountForUserInCourse(ctx, actor.ID, courseID)
	if err != nil {
		return dto.CourseProgressResponse{}, err
	}
	if gradedCount > 0 {
		average, err := s.grades.AverageForUserInCourse(ctx, actor.ID, courseID)
		if err != nil {
			return dto.CourseProgressResponse{}, err
		}
		response.AverageGrade = &average
	}

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store progress cache")
			}
		}
	}

	return response, nil
}

func (s *progressService) invalidateCache(ctx context.Context, userID, courseID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, progressCacheKey(userID, courseID)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate progress cache")
	}
}
