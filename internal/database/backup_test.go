package database

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupService(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "source.db")
	storagePath := filepath.Join(tempDir, "backups")

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE test (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)
	db.Close()

	logger := zerolog.Nop()
	s := NewBackupService(dbPath, storagePath, time.Hour, 1, &logger)

	err = s.PerformBackup()
	require.NoError(t, err)

	files, err := os.ReadDir(storagePath)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, files[0].Name(), "rentmimi_")
}

func TestBackupCleanup(t *testing.T) {
	tempDir := t.TempDir()
	storagePath := filepath.Join(tempDir, "backups")
	require.NoError(t, os.MkdirAll(storagePath, 0o755))

	oldFile := filepath.Join(storagePath, "rentmimi_old.db")
	require.NoError(t, os.WriteFile(oldFile, []byte("old"), 0o644))
	oldTime := time.Now().AddDate(0, 0, -10)
	require.NoError(t, os.Chtimes(oldFile, oldTime, oldTime))

	freshFile := filepath.Join(storagePath, "rentmimi_new.db")
	require.NoError(t, os.WriteFile(freshFile, []byte("new"), 0o644))

	logger := zerolog.Nop()
	s := NewBackupService(filepath.Join(tempDir, "source.db"), storagePath, time.Hour, 7, &logger)
	s.cleanupOldBackups()

	assert.NoFileExists(t, oldFile)
	assert.FileExists(t, freshFile)
}
