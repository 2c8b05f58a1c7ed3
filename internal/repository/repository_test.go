package repository

import (
	"context"
	"testing"
	"time"

	"lingocode_backend/internal/model"

	"github.com/stretchr/testify/assert"
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
	// 内存库每个连接独立，限制为单连接
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.LessonProgress{}, &model.UserProfile{}))
	return db
}

func TestProgressRepository_UpsertCompletionIsIdempotent(t *testing.T) {
	repo := NewProgressRepository(newTestDB(t))
	ctx := context.Background()

	first := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpsertCompletion(ctx, &model.LessonProgress{
		UserID: 1, ModuleID: 1, LessonID: 2, CompletedAt: &first,
	}))

	second := first.Add(time.Hour)
	require.NoError(t, repo.UpsertCompletion(ctx, &model.LessonProgress{
		UserID: 1, ModuleID: 1, LessonID: 2, CompletedAt: &second,
	}))

	records, err := repo.ListCompleted(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Completed)
	require.NotNil(t, records[0].CompletedAt)
	assert.True(t, records[0].CompletedAt.Equal(second))
}

func TestProgressRepository_ListCompleted(t *testing.T) {
	repo := NewProgressRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.UpsertCompletion(ctx, &model.LessonProgress{UserID: 1, ModuleID: 1, LessonID: 1}))
	require.NoError(t, repo.UpsertCompletion(ctx, &model.LessonProgress{UserID: 1, ModuleID: 2, LessonID: 1}))
	require.NoError(t, repo.UpsertCompletion(ctx, &model.LessonProgress{UserID: 2, ModuleID: 1, LessonID: 1}))

	records, err := repo.ListCompleted(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	done, err := repo.IsCompleted(ctx, 1, 2, 1)
	require.NoError(t, err)
	assert.True(t, done)

	done, err = repo.IsCompleted(ctx, 1, 3, 1)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestProfileRepository_UpsertLevels(t *testing.T) {
	repo := NewProfileRepository(newTestDB(t))
	ctx := context.Background()

	profile, err := repo.FindByUserID(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, profile)

	require.NoError(t, repo.UpsertLevels(ctx, &model.UserProfile{UserID: 5, EnglishLevel: "A2", ProgrammingLevel: "beginner"}))
	require.NoError(t, repo.UpsertLevels(ctx, &model.UserProfile{UserID: 5, EnglishLevel: "C1", ProgrammingLevel: "advanced"}))

	profile, err = repo.FindByUserID(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "C1", profile.EnglishLevel)
	assert.Equal(t, "advanced", profile.ProgrammingLevel)
}

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	user := &model.User{Name: "Ana", Email: "ana@example.com", Password: "hash", Role: model.Student}
	require.NoError(t, repo.Create(user))
	assert.NotZero(t, user.ID)

	found, err := repo.FindByEmail("ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	assert.Error(t, repo.Create(&model.User{Name: "Dup", Email: "ana@example.com", Password: "x"}))

	now := time.Now()
	require.NoError(t, repo.UpdateLastLogin(user.ID, now))
	found, err = repo.FindByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LastLogin)
}
