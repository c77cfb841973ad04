package dto

// CourseProgressResponse aggregates a user's standing in one course.
// AverageGrade is nil until at least one submission has been graded.
type CourseProgressResponse struct {
	CourseID             uint     `json:"course_id"`
	CompletedLessons     int      `json:"completed_lessons"`
	TotalLessons         int      `json:"total_lessons"`
	CompletedAssignments int      `json:"completed_assignments"`
	TotalAssignments     int      `json:"total_assignments"`
	ProgressPercentage   float64  `json:"progress_percentage"`
	AverageGrade         *float64 `json:"average_grade,omitempty"`
}

// LessonCompletionResponse reports the recomputed progress after a lesson
// is marked complete.
type LessonCompletionResponse struct {
	LessonID           uint    `json:"lesson_id"`
	CourseID           uint    `json:"course_id"`
	ProgressPercentage float64 `json:"progress_percentage"`
	CourseCompleted    bool    `json:"course_completed"`
}
