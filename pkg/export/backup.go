// Package export writes every content record and note into a zip archive
package export

import (
	"archive/zip"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"cmsadmin/pkg/errors"
	"cmsadmin/pkg/models"
)

// maxPages stops a backend that ignores offset from looping forever
const maxPages = 10000

// Lister lists one page of records
type Lister[T any, F any] interface {
	List(ctx context.Context, filter F) (models.Envelope[T], error)
}

// Seeker is implemented by filters that can start at any record offset
type Seeker[F any] interface {
	WithOffset(offset, limit int) F
}

// Summary describes a finished export
type Summary struct {
	Path       string    `json:"-"`
	ExportedAt time.Time `json:"exported_at"`
	Content    int       `json:"content"`
	Notes      int       `json:"notes"`
}

// Backup pages through all content and notes and stores them in a
// timestamped zip archive in dir
func Backup(ctx context.Context, dir string, content Lister[models.Content, models.ContentFilter], notes Lister[models.Note, models.NoteFilter], pageSize int, logger *zap.Logger) (*Summary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = models.DefaultLimit
	}

	contentItems, err := All[models.Content](ctx, content, models.ContentFilter{}, pageSize)
	if err != nil {
		return nil, err
	}
	noteItems, err := All[models.Note](ctx, notes, models.NoteFilter{}, pageSize)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, exportError(err, "failed to create export directory")
	}
	now := time.Now()
	summary := &Summary{
		Path:       filepath.Join(dir, "cms-export-"+now.Format("20060102-150405")+".zip"),
		ExportedAt: now,
		Content:    len(contentItems),
		Notes:      len(noteItems),
	}

	if err := writeArchive(summary.Path, map[string]any{
		"content.json":  contentItems,
		"notes.json":    noteItems,
		"manifest.json": summary,
	}); err != nil {
		os.Remove(summary.Path)
		return nil, err
	}

	logger.Info("export written",
		zap.String("path", summary.Path),
		zap.Int("content", summary.Content),
		zap.Int("notes", summary.Notes))
	return summary, nil
}

// All collects every page of a listing, starting from filter
func All[T any, F Seeker[F]](ctx context.Context, lister Lister[T, F], filter F, pageSize int) ([]T, error) {
	var all []T
	offset := 0
	for range maxPages {
		env, err := lister.List(ctx, filter.WithOffset(offset, pageSize))
		if err != nil {
			return nil, err
		}
		all = append(all, env.Items...)
		// backends may cap limit below pageSize, so advance by what arrived
		offset += len(env.Items)
		if len(env.Items) == 0 || offset >= env.Total {
			break
		}
	}
	if all == nil {
		all = []T{}
	}
	return all, nil
}

func writeArchive(path string, files map[string]any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return exportError(err, "failed to create archive")
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = exportError(cerr, "failed to close archive")
		}
	}()

	zw := zip.NewWriter(f)
	for _, name := range []string{"manifest.json", "content.json", "notes.json"} {
		w, err := zw.Create(name)
		if err != nil {
			return exportError(err, "failed to add "+name)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(files[name]); err != nil {
			return exportError(err, "failed to write "+name)
		}
	}
	if err := zw.Close(); err != nil {
		return exportError(err, "failed to finish archive")
	}
	return nil
}

func exportError(err error, msg string) *errors.AppError {
	return errors.Wrap(err, errors.ErrTypeApp, "EXPORT_FAILED", msg)
}
