package download

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// urlRecord is the on-disk shape of a cached resolved URL
// (<cache_dir>/<key>_url.json).
type urlRecord struct {
	URL string `json:"url"`
}

func urlCacheFile(cacheDir, cacheKey string) string {
	return filepath.Join(cacheDir, cacheKey+"_url.json")
}

// LoadCachedURL returns the previously resolved URL for a cache key, or
// "" when none is stored. A corrupt record is treated as absent.
func LoadCachedURL(cacheDir, cacheKey string) string {
	data, err := os.ReadFile(urlCacheFile(cacheDir, cacheKey))
	if err != nil {
		return ""
	}
	var rec urlRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return ""
	}
	return rec.URL
}

// SaveCachedURL atomically overwrites the resolved-URL record for a
// cache key.
func SaveCachedURL(cacheDir, cacheKey, url string) error {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return fmt.Errorf("ensure cache dir: %w", err)
	}

	data, err := json.Marshal(urlRecord{URL: url})
	if err != nil {
		return fmt.Errorf("encode url record: %w", err)
	}

	path := urlCacheFile(cacheDir, cacheKey)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write url record: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return fmt.Errorf("replace url record: %w (cleanup: %v)", err, rmErr)
		}
		return fmt.Errorf("replace url record: %w", err)
	}
	return nil
}
