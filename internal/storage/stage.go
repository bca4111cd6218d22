package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"
)

// Stage persists an uploaded file and hands its bytes back for parsing. Keys
// are prefixed with a coarse timestamp so near-simultaneous uploads of the
// same filename stay distinct; on a real collision the last write wins.
type Stage struct {
	store  Storage
	prefix string
	now    func() time.Time
}

func NewStage(store Storage, prefix string) *Stage {
	return &Stage{store: store, prefix: prefix, now: time.Now}
}

// Store uploads the raw bytes under a generated key. A blob stored here is
// not removed when later pipeline stages fail.
func (s *Stage) Store(ctx context.Context, filename string, data []byte) (string, error) {
	key := s.key(filename)
	if err := s.store.Upload(ctx, key, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to store upload %q: %w", filename, err)
	}
	return key, nil
}

// Retrieve fetches a stored blob and drains it fully into one buffer. The
// parser never sees a partial read.
func (s *Stage) Retrieve(ctx context.Context, key string) ([]byte, error) {
	reader, err := s.store.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch upload %q: %w", key, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %q: %w", key, err)
	}
	return data, nil
}

func (s *Stage) key(filename string) string {
	name := path.Base(filename)
	return fmt.Sprintf("%s/%d_%s", s.prefix, s.now().UnixMilli(), name)
}
