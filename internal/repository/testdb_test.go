package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/openlearn/lms-go-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
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
	))
	return db
}

type courseWork struct {
	author     models.User
	student    models.User
	course     models.Course
	module     models.Module
	lessons    []models.Lesson
	assignment models.Assignment
}

// seedCourseWork creates one course with a module, two lessons, an essay
// assignment on the first lesson and an enrolled student.
func seedCourseWork(t *testing.T, db *gorm.DB) courseWork {
	t.Helper()

	author := models.User{Email: "teacher@example.com", Name: "Teacher", Password: "x", Role: models.RoleTeacher}
	student := models.User{Email: "student@example.com", Name: "Student", Password: "x", Role: models.RoleUser}
	require.NoError(t, db.Create(&author).Error)
	require.NoError(t, db.Create(&student).Error)

	course := models.Course{Title: "Go basics", AuthorID: author.ID, Status: models.CourseStatusPublished, IsPublic: true}
	require.NoError(t, db.Create(&course).Error)

	module := models.Module{CourseID: course.ID, Title: "Chapter 1"}
	require.NoError(t, db.Create(&module).Error)

	lessons := []models.Lesson{
		{ModuleID: module.ID, Title: "Lesson 1", Content: "intro", OrderIndex: 0},
		{ModuleID: module.ID, Title: "Lesson 2", Content: "more", OrderIndex: 1},
	}
	for i := range lessons {
		require.NoError(t, db.Create(&lessons[i]).Error)
	}

	assignment := models.Assignment{
		LessonID:       lessons[0].ID,
		Title:          "Essay",
		Description:    "write",
		AssignmentType: models.AssignmentTypeEssay,
		PointsPossible: 100,
	}
	require.NoError(t, db.Create(&assignment).Error)

	enrollment := models.Enrollment{CourseID: course.ID, UserID: student.ID}
	require.NoError(t, db.Create(&enrollment).Error)

	return courseWork{
		author:     author,
		student:    student,
		course:     course,
		module:     module,
		lessons:    lessons,
		assignment: assignment,
	}
}
