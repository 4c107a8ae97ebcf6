package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/JaimeStill/waybill/internal/extraction"
	"github.com/JaimeStill/waybill/internal/recovery"
	"github.com/JaimeStill/waybill/pkg/storage"
)

// Entry is the cached outcome of recovering and extracting one document.
// Record is the deterministic record before reconciliation.
type Entry struct {
	Source    recovery.Source   `json:"source"`
	Text      string            `json:"text"`
	Record    extraction.Record `json:"record"`
	PageCount *int              `json:"page_count"`
}

// Cache stores recovery results and original uploads by fingerprint.
// Get reports a miss with (nil, nil).
type Cache interface {
	Get(ctx context.Context, fingerprint string) (*Entry, error)
	Put(ctx context.Context, fingerprint string, entry *Entry) error
	Archive(ctx context.Context, fingerprint string, data []byte) error
}

// EntryKey returns the blob key of a cached entry.
func EntryKey(fingerprint string) string {
	return path.Join("cache", fingerprint, "record.json")
}

// ArchiveKey returns the blob key of an archived upload.
func ArchiveKey(fingerprint string) string {
	return path.Join("documents", fingerprint+".pdf")
}

type blobCache struct {
	store storage.System
}

// NewBlobCache returns a Cache backed by blob storage.
func NewBlobCache(store storage.System) Cache {
	return &blobCache{store: store}
}

func (c *blobCache) Get(ctx context.Context, fingerprint string) (*Entry, error) {
	blob, err := c.store.Download(ctx, EntryKey(fingerprint))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	defer blob.Body.Close()

	data, err := io.ReadAll(blob.Body)
	if err != nil {
		return nil, fmt.Errorf("read cache entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	entry.Record.Normalize()

	return &entry, nil
}

func (c *blobCache) Put(ctx context.Context, fingerprint string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	return c.store.Upload(ctx, EntryKey(fingerprint), bytes.NewReader(data), "application/json")
}

func (c *blobCache) Archive(ctx context.Context, fingerprint string, data []byte) error {
	key := ArchiveKey(fingerprint)

	exists, err := c.store.Exists(ctx, key)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return c.store.Upload(ctx, key, bytes.NewReader(data), "application/pdf")
}

// NoCache is the Cache used when caching is disabled. Every Get misses and
// writes are discarded.
type NoCache struct{}

func (NoCache) Get(context.Context, string) (*Entry, error) { return nil, nil }
func (NoCache) Put(context.Context, string, *Entry) error { return nil }
func (NoCache) Archive(context.Context, string, []byte) error { return nil }
