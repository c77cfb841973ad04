package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/openlearn/lms-go-api/internal/config"
	"github.com/openlearn/lms-go-api/internal/handler"
	"github.com/openlearn/lms-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	CourseHandler     *handler.CourseHandler
	CurriculumHandler *handler.CurriculumHandler
	AssignmentHandler *handler.AssignmentHandler
	SubmissionHandler *handler.SubmissionHandler
	GradingHandler    *handler.GradingHandler
	ProfileHandler    *handler.ProfileHandler
	AdminHandler      *handler.AdminHandler
	JWTMiddleware     fiber.Handler
	AuthRateLimit     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		if deps.AuthRateLimit != nil {
			auth.Use(deps.AuthRateLimit)
		}
		deps.AuthHandler.Register(auth)
		deps.AuthHandler.RegisterProtected(api.Group("", jwtMiddleware))
	}

	if deps.CourseHandler != nil {
		courses := api.Group("/courses", jwtMiddleware)
		deps.CourseHandler.Register(courses)
		if deps.CurriculumHandler != nil {
			deps.CurriculumHandler.RegisterCourseRoutes(courses)
		}
	}

	if deps.CurriculumHandler != nil {
		modules := api.Group("/modules", jwtMiddleware)
		deps.CurriculumHandler.RegisterModuleRoutes(modules)

		lessons := api.Group("/lessons", jwtMiddleware)
		deps.CurriculumHandler.RegisterLessonRoutes(lessons)
		if deps.AssignmentHandler != nil {
			deps.AssignmentHandler.RegisterLessonRoutes(lessons)
		}
	}

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware)
		deps.AssignmentHandler.Register(assignments)
		if deps.SubmissionHandler != nil {
			deps.SubmissionHandler.RegisterAssignmentRoutes(assignments)
		}
		if deps.GradingHandler != nil {
			deps.GradingHandler.RegisterAssignmentRoutes(assignments)
		}
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		deps.SubmissionHandler.Register(submissions)
		if deps.GradingHandler != nil {
			deps.GradingHandler.RegisterSubmissionRoutes(submissions)
		}
	}

	me := api.Group("/me", jwtMiddleware)
	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.RegisterMine(me)
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.RegisterMine(me)
	}
	if deps.GradingHandler != nil {
		deps.GradingHandler.RegisterMine(me)
		deps.GradingHandler.RegisterTeaching(api.Group("/teaching", jwtMiddleware))
	}
	if deps.ProfileHandler != nil {
		deps.ProfileHandler.Register(me)
	}

	if deps.AdminHandler != nil {
		admin := api.Group("/admin", jwtMiddleware)
		deps.AdminHandler.Register(admin)
	}
}
