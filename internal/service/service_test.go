package service

import (
	"context"
	"testing"

	"lingocode_backend/internal/curriculum"
	"lingocode_backend/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.LessonProgress{}, &model.UserProfile{}))
	return db
}

func testCatalog(t *testing.T) *curriculum.Catalog {
	t.Helper()
	c, err := curriculum.Load([]byte(`
modules:
  - id: 1
    title: Basics
    description: First steps
    lessons:
      - id: 1
        title: Printing
        duration: 5 min
        content: "# Printing\n\nUse **console.log**."
        exercise:
          instruction: Print hi
          language: javascript
          starter_code: "// code"
          solution: console.log("hi")
      - id: 2
        title: Python
        duration: 5 min
        content: "Python time"
        exercise:
          instruction: Print hello
          language: python
      - id: 3
        title: Rust
        duration: 5 min
        content: "Rust time"
        exercise:
          instruction: Print hello in rust
          language: rust
  - id: 2
    title: Web
    lessons:
      - id: 1
        title: HTML
        content: "<b>"
        exercise:
          instruction: Write a heading
          language: html
`))
	require.NoError(t, err)
	return c
}

type noLevels struct{}

func (noLevels) Levels(context.Context, uint) (Levels, error) {
	return Levels{EnglishLevel: "A2", ProgrammingLevel: "intermediate"}, nil
}
