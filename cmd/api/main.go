package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/openlearn/lms-go-api/internal/config"
	"github.com/openlearn/lms-go-api/internal/database"
	"github.com/openlearn/lms-go-api/internal/handler"
	"github.com/openlearn/lms-go-api/internal/middleware"
	"github.com/openlearn/lms-go-api/internal/models"
	"github.com/openlearn/lms-go-api/internal/repository"
	"github.com/openlearn/lms-go-api/internal/router"
	"github.com/openlearn/lms-go-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Module{},
		&models.Lesson{},
		&models.Assignment{},
		&models.Enrollment{},
		&models.Submission{},
		&models.Grade{},
		&models.UserLessonProgress{},
		&models.Badge{},
		&models.UserBadge{},
		&models.Review{},
		&models.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	validate := validator.New(validator.WithRequiredStructEnabled())
	sanitizer := bluemonday.UGCPolicy()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	progressRepo := repository.NewLessonProgressRepository(db)
	badgeRepo := repository.NewBadgeRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	badgeService := service.NewBadgeService(badgeRepo, logger)
	authService := service.NewAuthService(userRepo, validate, logger, cfg.JWTSecret, cfg.TokenTTL, cfg.BcryptCost)
	courseService := service.NewCourseService(courseRepo, enrollmentRepo, validate, sanitizer, activityService, logger)
	curriculumService := service.NewCurriculumService(courseRepo, moduleRepo, lessonRepo, validate, sanitizer, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, lessonRepo, courseRepo, submissionRepo, enrollmentRepo, validate, sanitizer, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, enrollmentRepo, gradeRepo, badgeService, validate, sanitizer, activityService, logger)
	gradingService := service.NewGradingService(submissionRepo, assignmentRepo, gradeRepo, validate, sanitizer, activityService, logger)
	progressService := service.NewProgressService(lessonRepo, progressRepo, enrollmentRepo, assignmentRepo, submissionRepo, gradeRepo, badgeService, redisClient, cfg.ProgressCacheTTL, activityService, logger)
	analyticsService := service.NewAnalyticsService(userRepo, courseRepo, enrollmentRepo, assignmentRepo, submissionRepo, gradeRepo, activityRepo, logger)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := badgeService.SeedCatalog(seedCtx); err != nil {
		log.Fatalf("failed to seed badge catalog: %v", err)
	}
	cancelSeed()

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, logger),
		CourseHandler:     handler.NewCourseHandler(courseService, progressService, logger),
		CurriculumHandler: handler.NewCurriculumHandler(curriculumService, progressService, logger),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		GradingHandler:    handler.NewGradingHandler(gradingService, logger),
		ProfileHandler:    handler.NewProfileHandler(badgeService, analyticsService, logger),
		AdminHandler:      handler.NewAdminHandler(analyticsService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
		AuthRateLimit:     middleware.RateLimit("auth", 10, time.Minute),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
