package batchdir

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
)

var mimeByExtension = map[string]string{
	".pdf":  domain.MimePDF,
	".jpg":  domain.MimeJPEG,
	".jpeg": domain.MimeJPEG,
	".png":  domain.MimePNG,
}

// Skipped is a file left out of the batch and the reason why.
type Skipped struct {
	Path   string
	Reason string
}

// LoadDirectory reads every accepted letter under dir, sorted by path.
// Files with other extensions or over the size limit are reported as skipped.
func LoadDirectory(dir string) ([]domain.RawUpload, []Skipped, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(paths)

	var uploads []domain.RawUpload
	var skipped []Skipped
	for _, path := range paths {
		mimeType, ok := mimeByExtension[strings.ToLower(filepath.Ext(path))]
		if !ok {
			skipped = append(skipped, Skipped{Path: path, Reason: "unsupported file type"})
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if err := domain.ValidateUpload(mimeType, info.Size()); err != nil {
			skipped = append(skipped, Skipped{Path: path, Reason: err.Error()})
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", path, err)
		}
		uploads = append(uploads, domain.RawUpload{
			ID:         uuid.NewString(),
			FileName:   filepath.Base(path),
			MimeType:   mimeType,
			Content:    content,
			Size:       int64(len(content)),
			StorageKey: path,
		})
	}
	return uploads, skipped, nil
}

// RecordCollector is an in-memory record sink for runs without a database.
type RecordCollector struct {
	mu      sync.Mutex
	records map[string]domain.SalaysayRecord
}

func NewRecordCollector() *RecordCollector {
	return &RecordCollector{records: make(map[string]domain.SalaysayRecord)}
}

func (c *RecordCollector) SaveRecord(_ context.Context, rec *domain.SalaysayRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[rec.ID] = *rec
	return nil
}

func (c *RecordCollector) Record(id string) (domain.SalaysayRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.records[id]
	return rec, ok
}

func (c *RecordCollector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}
