// Package metadata defines the version metadata derived from an
// installer and its hash-gated on-disk cache. A cached record is trusted
// only while the installer's content hash is unchanged; there is no
// time-based expiry.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Version is the structured metadata extracted from an installer.
// Fields unavailable from one source (bundle identifier, node
// requirement) stay empty rather than being fabricated.
type Version struct {
	Version         string `json:"version"`
	ElectronVersion string `json:"electron_version"`
	NodeRequirement string `json:"node_requirement,omitempty"`
	AppName         string `json:"app_name"`
	BundleID        string `json:"bundle_id,omitempty"`
	Source          string `json:"source"`
	ContentHash     string `json:"content_hash"`
}

// FileHash computes the whole-file sha256 of an installer artifact in
// the "sha256-<hex>" form stored alongside cached metadata.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash artifact: %w", err)
	}
	return "sha256-" + hex.EncodeToString(h.Sum(nil)), nil
}
