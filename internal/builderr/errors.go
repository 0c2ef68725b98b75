// Package builderr defines the typed failures the build pipeline
// reports. Each stage wraps its failures in the matching type so
// callers can tell a network problem from a malformed installer.
package builderr

import "fmt"

// DownloadError covers redirect resolution and artifact download
// failures.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// ExtractionError covers archive unpacking and layout validation
// failures.
type ExtractionError struct {
	Path    string
	Message string
	Err     error
}

func (e *ExtractionError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("extract %s: %s: %v", e.Path, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("extract %s: %s", e.Path, e.Message)
	default:
		return fmt.Sprintf("extract %s: %v", e.Path, e.Err)
	}
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// MetadataError reports a required field that could not be determined
// from the unpacked application.
type MetadataError struct {
	Field   string
	Message string
	Err     error
}

func (e *MetadataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("metadata %s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("metadata %s: %s", e.Field, e.Message)
}

func (e *MetadataError) Unwrap() error { return e.Err }

// PatchError reports a mandatory source patch that could not be
// applied.
type PatchError struct {
	Patch   string
	Message string
	Err     error
}

func (e *PatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("patch %s: %s: %v", e.Patch, e.Message, e.Err)
	}
	return fmt.Sprintf("patch %s: %s", e.Patch, e.Message)
}

func (e *PatchError) Unwrap() error { return e.Err }

// PackagingError reports a failure while producing the final Linux
// package artifact.
type PackagingError struct {
	Format  string
	Message string
	Err     error
}

func (e *PackagingError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("package %s: %s: %v", e.Format, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("package %s: %s", e.Format, e.Message)
	default:
		return fmt.Sprintf("package %s: %v", e.Format, e.Err)
	}
}

func (e *PackagingError) Unwrap() error { return e.Err }
