package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/openlearn/lms-go-api/internal/dto"
	"github.com/openlearn/lms-go-api/internal/repository"
)

// AnalyticsService aggregates profile and platform-wide statistics.
type AnalyticsService interface {
	ProfileStats(ctx context.Context, actor Actor) (dto.ProfileStatsResponse, error)
	AdminStats(ctx context.Context) (dto.AdminStatsResponse, error)
}

type analyticsService struct {
	users       repository.UserRepository
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	grades      repository.GradeRepository
	activity    repository.ActivityRepository
	logger      zerolog.Logger
}

// NewAnalyticsService constructs the analytics service.
func NewAnalyticsService(users repository.UserRepository, courses repository.CourseRepository, enrollments repository.EnrollmentRepository, assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, grades repository.GradeRepository, activity repository.ActivityRepository, logger zerolog.Logger) AnalyticsService {
	return &analyticsService{
		users:       users,
		courses:     courses,
		enrollments: enrollments,
		assignments: assignments,
		submissions: submissions,
		grades:      grades,
		activity:    activity,
		logger:      logger.With().Str("component", "analytics_service").Logger(),
	}
}

func (s *analyticsService) ProfileStats(ctx context.Context, actor Actor) (dto.ProfileStatsResponse, error) {
	activeCourses, err := s.enrollments.CountForUser(ctx, actor.ID)
	if err != nil {
		return dto.ProfileStatsResponse{}, err
	}
	completedCourses, err := s.enrollments.CountCompletedForUser(ctx, actor.ID)
	if err != nil {
		return dto.ProfileStatsResponse{}, err
	}
	submitted, err := s.submissions.CountHandedInByUser(ctx, actor.ID)
	if err != nil {
		return dto.ProfileStatsResponse{}, err
	}
	totalAssignments, err := s.assignments.CountForUser(ctx, actor.ID)
	if err != nil {
		return dto.ProfileStatsResponse{}, err
	}
	avgProgress, err := s.enrollments.AverageProgressForUser(ctx, actor.ID)
	if err != nil {
		return dto.ProfileStatsResponse{}, err
	}
	avgGrade, err := s.grades.AverageForUser(ctx, actor.ID)
	if err != nil {
		return dto.ProfileStatsResponse{}, err
	}

	return dto.ProfileStatsResponse{
		ActiveCourses:       int(activeCourses),
		CompletedCourses:    int(completedCourses),
		SubmittedWorks:      int(submitted),
		TotalAssignments:    int(totalAssignments),
		ProgressPercent:     avgProgress,
		AverageGradePercent: avgGrade,
	}, nil
}

func (s *analyticsService) AdminStats(ctx context.Context) (dto.AdminStatsResponse, error) {
	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return dto.AdminStatsResponse{}, err
	}
	totalCourses, err := s.courses.Count(ctx)
	if err != nil {
		return dto.AdminStatsResponse{}, err
	}
	totalEnrollments, err := s.enrollments.Count(ctx)
	if err != nil {
		return dto.AdminStatsResponse{}, err
	}
	totalSubmissions, err := s.submissions.Count(ctx)
	if err != nil {
		return dto.AdminStatsResponse{}, err
	}

	ranges, err := s.progressRanges(ctx, totalEnrollments)
	if err != nil {
		return dto.AdminStatsResponse{}, err
	}

	topRows, err := s.courses.TopByEnrollment(ctx, 5)
	if err != nil {
		return dto.AdminStatsResponse{}, err
	}
	topCourses := make([]dto.CourseEnrollmentStat, 0, len(topRows))
	for _, row := range topRows {
		topCourses = append(topCourses, dto.CourseEnrollmentStat{
			Title:    row.Title,
			Students: row.Students,
		})
	}

	feed, err := s.activity.ListRecentWithActor(ctx, 10)
	if err != nil {
		return dto.AdminStatsResponse{}, err
	}
	recent := make([]dto.RecentActivity, 0, len(feed))
	for _, row := range feed {
		recent = append(recent, dto.RecentActivity{
			User:      row.ActorName,
			Action:    row.Action,
			Timestamp: row.CreatedAt,
		})
	}

	return dto.AdminStatsResponse{
		TotalUsers:       totalUsers,
		TotalCourses:     totalCourses,
		TotalEnrollments: totalEnrollments,
		TotalSubmissions: totalSubmissions,
		ProgressRanges:   ranges,
		TopCourses:       topCourses,
		RecentActivities: recent,
	}, nil
}

// progressRanges buckets enrollments by progress percentage and reports
// each bucket's share of the total.
func (s *analyticsService) progressRanges(ctx context.Context, total int64) ([]dto.ProgressRange, error) {
	buckets := []struct {
		label string
		low   float64
		high  float64
	}{
		{"0-25%", 0, 25},
		{"26-50%", 25.000001, 50},
		{"51-75%", 50.000001, 75},
		{"76-100%", 75.000001, 100},
	}

	ranges := make([]dto.ProgressRange, 0, len(buckets))
	for _, bucket := range buckets {
		count, err := s.enrollments.CountInProgressRange(ctx, bucket.low, bucket.high)
		if err != nil {
			return nil, err
		}
		var share float64
		if total > 0 {
			share = 100 * float64(count) / float64(total)
		}
		ranges = append(ranges, dto.ProgressRange{Label: bucket.label, Percentage: share})
	}
	return ranges, nil
}
