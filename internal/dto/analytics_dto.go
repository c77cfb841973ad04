package dto

import "time"

// ProfileStatsResponse summarizes the caller's own learning activity.
type ProfileStatsResponse struct {
	ActiveCourses       int     `json:"active_courses"`
	CompletedCourses    int     `json:"completed_courses"`
	SubmittedWorks      int     `json:"submitted_works"`
	TotalAssignments    int     `json:"total_assignments"`
	ProgressPercent     float64 `json:"progress_percent"`
	AverageGradePercent float64 `json:"average_grade_percent"`
}

// ProgressRange is one bucket of the enrollment progress distribution.
type ProgressRange struct {
	Label      string  `json:"label"`
	Percentage float64 `json:"percentage"`
}

// CourseEnrollmentStat ranks a course by enrollment for the admin overview.
type CourseEnrollmentStat struct {
	Title    string `json:"title"`
	Students int    `json:"students"`
}

// RecentActivity is one row of the admin activity feed.
type RecentActivity struct {
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// AdminStatsResponse is the admin/teacher dashboard payload.
type AdminStatsResponse struct {
	TotalUsers       int64                  `json:"total_users"`
	TotalCourses     int64                  `json:"total_courses"`
	TotalEnrollments int64                  `json:"total_enrollments"`
	TotalSubmissions int64                  `json:"total_submissions"`
	ProgressRanges   []ProgressRange        `json:"progress_ranges"`
	TopCourses       []CourseEnrollmentStat `json:"top_courses"`
	RecentActivities []RecentActivity       `json:"recent_activities"`
}
