package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Cache persists one Version record per source, gated by the installer's
// content hash.
type Cache struct {
	Path string
}

// Load returns the stored record, or nil when the cache file is missing
// or unreadable.
func (c Cache) Load() *Version {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil
	}
	var v Version
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	return &v
}

// Store atomically writes the record.
func (c Cache) Store(v *Version) error {
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return fmt.Errorf("ensure metadata cache dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	tmp := c.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write metadata cache: %w", err)
	}
	if err := os.Rename(tmp, c.Path); err != nil {
		return fmt.Errorf("replace metadata cache: %w", err)
	}
	return nil
}

// Resolve returns the cached record when its stored hash matches the
// current hash of installerPath; otherwise it invokes extract to derive
// fresh metadata, stamps it with the hash, and stores it. The extract
// callback is only called on a cache miss, so an unchanged installer
// never triggers a second archive extraction.
func (c Cache) Resolve(ctx context.Context, installerPath string, extract func(context.Context) (*Version, error)) (*Version, error) {
	hash, err := FileHash(installerPath)
	if err != nil {
		return nil, err
	}

	if cached := c.Load(); cached != nil && cached.ContentHash == hash {
		return cached, nil
	}

	v, err := extract(ctx)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errors.New("metadata extraction returned nothing")
	}

	v.ContentHash = hash
	if err := c.Store(v); err != nil {
		return nil, err
	}
	return v, nil
}
