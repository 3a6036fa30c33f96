package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fitmacro/internal/server/export"
)

// ExportLinkValidity is how long a presigned export URL stays usable.
const ExportLinkValidity = 15 * time.Minute

// ObjectStore is the storage the CSV exports are uploaded to.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type ExportService struct {
	diary *DiaryService
	store ObjectStore
	now   func() time.Time
}

func NewExportService(diary *DiaryService, store ObjectStore) *ExportService {
	return &ExportService{diary: diary, store: store, now: time.Now}
}

// ExportResult points at an uploaded diary export.
type ExportResult struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Rows      int       `json:"rows"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Export writes the user's diary for [from, to] as CSV, uploads it and
// returns a presigned download link.
func (s *ExportService) Export(ctx context.Context, userID string, from, to time.Time) (*ExportResult, error) {
	lines, err := s.diary.Lines(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.WriteDiaryCSV(&buf, lines); err != nil {
		return nil, fmt.Errorf("error writing csv: %w", err)
	}

	now := s.now()
	key := export.StorageKey(userID, now)
	if err := s.store.Put(ctx, key, "text/csv", buf.Bytes()); err != nil {
		return nil, fmt.Errorf("error uploading export: %w", err)
	}

	url, err := s.store.PresignGet(ctx, key, ExportLinkValidity)
	if err != nil {
		return nil, fmt.Errorf("error presigning export: %w", err)
	}

	return &ExportResult{Key: key, URL: url, Rows: len(lines), ExpiresAt: now.Add(ExportLinkValidity)}, nil
}
