package batchdir

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.PNG"), 10)
	writeFile(t, filepath.Join(dir, "a.pdf"), 10)
	writeFile(t, filepath.Join(dir, "nested", "c.jpeg"), 10)
	writeFile(t, filepath.Join(dir, "notes.txt"), 10)
	writeFile(t, filepath.Join(dir, "huge.pdf"), domain.MaxUploadBytes+1)
	writeFile(t, filepath.Join(dir, ".cache", "d.pdf"), 10)

	uploads, skipped, err := LoadDirectory(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(uploads))
	for _, u := range uploads {
		names = append(names, u.FileName)
		assert.NotEmpty(t, u.ID)
		assert.EqualValues(t, 10, u.Size)
	}
	assert.Equal(t, []string{"a.pdf", "b.PNG", "c.jpeg"}, names)
	assert.Equal(t, domain.MimePNG, uploads[1].MimeType)
	assert.Equal(t, domain.MimeJPEG, uploads[2].MimeType)

	require.Len(t, skipped, 2)
	assert.Equal(t, filepath.Join(dir, "huge.pdf"), skipped[0].Path)
	assert.Equal(t, "unsupported file type", skipped[1].Reason)
}

func TestLoadDirectoryMissing(t *testing.T) {
	_, _, err := LoadDirectory(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestRecordCollectorOverwritesByID(t *testing.T) {
	c := NewRecordCollector()
	require.NoError(t, c.SaveRecord(context.Background(), &domain.SalaysayRecord{ID: "x", Status: domain.RecordFailed}))
	require.NoError(t, c.SaveRecord(context.Background(), &domain.SalaysayRecord{ID: "x", Status: domain.RecordProcessed}))

	assert.Equal(t, 1, c.Len())
	rec, ok := c.Record("x")
	require.True(t, ok)
	assert.Equal(t, domain.RecordProcessed, rec.Status)
}
