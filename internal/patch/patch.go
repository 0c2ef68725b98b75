// Package patch applies pattern-based rewrites to bundled script files.
// Patches are idempotent by construction: a patch's own output no longer
// matches its pattern, so re-running it reports "not applied" instead of
// rewriting twice.
package patch

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"claudebuild/internal/builderr"
)

type Logger interface {
	Printf(format string, v ...any)
}

// Spec describes a single rewrite of one bundled file.
type Spec struct {
	// Name identifies the patch in logs and errors.
	Name string

	// Glob locates the target file relative to the app root. It must
	// match exactly one file; anything else skips the patch entirely,
	// since the vendor's output layout shifts across releases.
	Glob string

	// Pattern and Replacement define the rewrite. Replacement may use
	// $1-style group references.
	Pattern     *regexp.Regexp
	Replacement string

	// Required marks a patch whose pattern miss must abort the build:
	// silently shipping the unpatched behavior would be a functional
	// regression, not a cosmetic one.
	Required bool
}

// Outcome reports what a patch application did.
type Outcome string

const (
	// OutcomeApplied: the pattern matched and the file was rewritten.
	OutcomeApplied Outcome = "applied"
	// OutcomeUnchanged: the pattern did not match; either the patch was
	// already applied or the vendor changed the surrounding code.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeSkipped: the target file could not be located unambiguously.
	OutcomeSkipped Outcome = "skipped"
)

// Result describes one patch application.
type Result struct {
	Spec    Spec
	Outcome Outcome
	Target  string
	Detail  string
}

// Apply runs a single patch against the extracted app tree. Target
// ambiguity always degrades to a skip; a pattern miss degrades to
// "unchanged" unless the patch is required, in which case it is a
// PatchError.
func Apply(appDir string, spec Spec, logger Logger) (Result, error) {
	result := Result{Spec: spec}

	matches, err := filepath.Glob(filepath.Join(appDir, spec.Glob))
	if err != nil {
		return result, fmt.Errorf("glob %s: %w", spec.Glob, err)
	}
	if len(matches) != 1 {
		result.Outcome = OutcomeSkipped
		result.Detail = fmt.Sprintf("expected 1 file for %s, found %d", spec.Glob, len(matches))
		logger.Printf("patch %s skipped: %s", spec.Name, result.Detail)
		return result, nil
	}

	target := matches[0]
	result.Target = target

	content, err := os.ReadFile(target)
	if err != nil {
		return result, fmt.Errorf("read %s: %w", target, err)
	}

	rewritten := spec.Pattern.ReplaceAll(content, []byte(spec.Replacement))
	if string(rewritten) == string(content) {
		result.Outcome = OutcomeUnchanged
		result.Detail = "pattern not found (already applied or vendor output changed)"
		if spec.Required {
			return result, &builderr.PatchError{Patch: spec.Name, Message: "mandatory pattern not found in " + filepath.Base(target)}
		}
		logger.Printf("patch %s not applied: %s", spec.Name, result.Detail)
		return result, nil
	}

	if err := os.WriteFile(target, rewritten, 0o644); err != nil {
		return result, fmt.Errorf("write %s: %w", target, err)
	}

	result.Outcome = OutcomeApplied
	logger.Printf("patch %s applied to %s", spec.Name, filepath.Base(target))
	return result, nil
}

// ApplyAll runs each patch in order, stopping at the first hard error.
func ApplyAll(appDir string, specs []Spec, logger Logger) ([]Result, error) {
	results := make([]Result, 0, len(specs))
	for _, spec := range specs {
		res, err := Apply(appDir, spec, logger)
		results = append(results, res)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
