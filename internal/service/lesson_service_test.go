package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"lingocode_backend/internal/config"
	"lingocode_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLessonService_GetLesson(t *testing.T) {
	svc := NewLessonService(testCatalog(t), nil)

	view, err := svc.GetLesson(1, 1)
	require.NoError(t, err)
	assert.Equal(t, "Printing", view.Title)
	assert.Equal(t, "Basics", view.ModuleTitle)
	assert.Equal(t, "<h1>Printing</h1><br/><br/>Use <strong>console.log</strong>.", view.ContentHTML)
	require.NotNil(t, view.NextLessonID)
	assert.Equal(t, 2, *view.NextLessonID)
	assert.Nil(t, view.PrevLessonID)

	view, err = svc.GetLesson(1, 3)
	require.NoError(t, err)
	assert.Nil(t, view.NextLessonID)
	require.NotNil(t, view.PrevLessonID)
	assert.Equal(t, 2, *view.PrevLessonID)

	_, err = svc.GetLesson(1, 4)
	assert.ErrorIs(t, err, util.ErrLessonNotFound)
}

func TestLessonService_ListModules(t *testing.T) {
	svc := NewLessonService(testCatalog(t), nil)

	modules := svc.ListModules()
	require.Len(t, modules, 2)
	assert.Equal(t, 3, modules[0].LessonCount)
	assert.Equal(t, "Printing", modules[0].Lessons[0].Title)

	_, err := svc.GetModule(3)
	assert.ErrorIs(t, err, util.ErrModuleNotFound)
}

func TestLessonService_ExportLessons(t *testing.T) {
	dir := t.TempDir()
	storage := NewStorageService(&config.Config{Storage: config.StorageConfig{Type: util.StorageLocal, LocalPath: dir}})
	svc := NewLessonService(testCatalog(t), storage)

	exported, err := svc.ExportLessons(context.Background())
	require.NoError(t, err)
	require.Len(t, exported, 4)
	assert.Equal(t, "/uploads/lessons/1/1.html", exported[0].URL)

	page, err := os.ReadFile(filepath.Join(dir, "lessons", "1", "1.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "<h1>Printing</h1>")
	assert.Contains(t, string(page), "<p>Print hi</p>")
	assert.NotContains(t, string(page), `console.log("hi")`)
}

type failingUploader struct{}

func (failingUploader) Put(context.Context, string, []byte, string) (string, error) {
	return "", errors.New("bucket missing")
}

func TestLessonService_ExportLessonsAllFail(t *testing.T) {
	svc := NewLessonService(testCatalog(t), failingUploader{})

	_, err := svc.ExportLessons(context.Background())
	assert.Error(t, err)
}
