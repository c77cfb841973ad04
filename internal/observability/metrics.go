package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	requestsTotal        *prometheus.CounterVec
	latencySeconds       *prometheus.HistogramVec
	errorsTotal          *prometheus.CounterVec
	gradesRecordedTotal  *prometheus.CounterVec
	badgesAwardedTotal   *prometheus.CounterVec
	submissionsTotal     *prometheus.CounterVec
	coursesCompletedTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lms_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		gradesRecordedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_grades_recorded_total",
			Help: "Total number of grades written to the ledger.",
		}, []string{"source"})

		badgesAwardedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_badges_awarded_total",
			Help: "Total number of badges granted to users.",
		}, []string{"badge"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_submissions_total",
			Help: "Total number of assignment submissions received.",
		}, []string{"type", "status"})

		coursesCompletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lms_courses_completed_total",
			Help: "Total number of course completions reached.",
		})

		prometheus.MustRegister(
			requestsTotal,
			latencySeconds,
			errorsTotal,
			gradesRecordedTotal,
			badgesAwardedTotal,
			submissionsTotal,
			coursesCompletedTotal,
		)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// GradesRecorded exposes the ledger write counter, labelled by grading
// source (auto or manual).
func GradesRecorded() *prometheus.CounterVec {
	RegisterMetrics()
	return gradesRecordedTotal
}

// BadgesAwarded exposes the badge grant counter, labelled by badge name.
func BadgesAwarded() *prometheus.CounterVec {
	RegisterMetrics()
	return badgesAwardedTotal
}

// Submissions exposes the submission counter, labelled by assignment type
// and resulting status.
func Submissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// CoursesCompleted exposes the course completion counter.
func CoursesCompleted() prometheus.Counter {
	RegisterMetrics()
	return coursesCompletedTotal
}
