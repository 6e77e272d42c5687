// internal/app/system/uploads/uploads.go

// Package uploads stores NGO verification documents in file storage under
// unique, date-partitioned paths.
package uploads

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
	"github.com/lifeflowhq/lifeflow/internal/domain/models"
)

// NGODocument stores one verification document and returns its reference.
// The path is generated as: ngo-documents/YYYY/MM/uuid-filename.
func NGODocument(ctx context.Context, store storage.Store, filename string, reader io.Reader, contentType string) (models.DocumentRef, error) {
	now := time.Now().UTC()
	dateDir := fmt.Sprintf("ngo-documents/%04d/%02d", now.Year(), now.Month())
	uniqueName := fmt.Sprintf("%s-%s", uuid.New().String()[:8], sanitizeFilename(filename))
	path := filepath.ToSlash(filepath.Join(dateDir, uniqueName))

	opts := &storage.PutOptions{ContentType: contentType}
	if err := store.Put(ctx, path, reader, opts); err != nil {
		return models.DocumentRef{}, fmt.Errorf("failed to upload document: %w", err)
	}

	return models.DocumentRef{
		Path:       path,
		FileName:   filename,
		UploadedAt: now,
	}, nil
}

// sanitizeFilename replaces characters that could be problematic in storage
// keys and bounds the length, preserving the extension where possible.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	if len(result) == 0 {
		return "file"
	}
	if len(result) > 100 {
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}
	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
