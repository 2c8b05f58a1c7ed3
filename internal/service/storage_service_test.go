package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"lingocode_backend/internal/config"
	"lingocode_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanKey(t *testing.T) {
	for _, key := range []string{"lessons/1/2.html", "a.html"} {
		got, err := cleanKey(key)
		require.NoError(t, err)
		assert.Equal(t, key, got)
	}
	for _, key := range []string{"", "/etc/passwd", "../x", "lessons/../../x", "a//b", "a\\b", "lessons/./x"} {
		_, err := cleanKey(key)
		assert.Error(t, err, key)
	}
}

func TestStorageService_LocalPut(t *testing.T) {
	dir := t.TempDir()
	svc := NewStorageService(&config.Config{Storage: config.StorageConfig{Type: util.StorageLocal, LocalPath: dir}})

	url, err := svc.Put(context.Background(), "lessons/1/1.html", []byte("v1"), util.MimeHTML)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/lessons/1/1.html", url)

	_, err = svc.Put(context.Background(), "lessons/1/1.html", []byte("v2"), util.MimeHTML)
	require.NoError(t, err)

	body, err := os.ReadFile(filepath.Join(dir, "lessons", "1", "1.html"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(body))

	entries, err := os.ReadDir(filepath.Join(dir, "lessons", "1"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = svc.Put(context.Background(), "../escape.html", []byte("x"), util.MimeHTML)
	assert.Error(t, err)
}

func TestStorageService_PublicURL(t *testing.T) {
	svc := NewStorageService(&config.Config{Storage: config.StorageConfig{
		Type:      util.StorageLocal,
		LocalPath: t.TempDir(),
		PublicURL: "https://cdn.example.com/",
	}})

	url, err := svc.Put(context.Background(), "lessons/2/1.html", []byte("x"), util.MimeHTML)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/lessons/2/1.html", url)
}

func TestStorageService_FallsBackToLocal(t *testing.T) {
	svc := NewStorageService(&config.Config{Storage: config.StorageConfig{
		Type:          util.StorageMinio,
		MinioEndpoint: "not a valid host!",
		LocalPath:     t.TempDir(),
	}})
	_, ok := svc.Provider.(*LocalStorageProvider)
	assert.True(t, ok)
}
