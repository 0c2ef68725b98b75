package resolve

import "regexp"

// Resolved artifact URLs embed the release version as a path segment:
//
//	https://downloads.claude.ai/releases/win32/x64/1.0.1217/Claude-...
//	https://downloads.claude.ai/releases/darwin/universal/1.0.1217/Claude-...
var versionSegment = regexp.MustCompile(`/(\d+\.\d+\.\d+)/`)

// VersionFromURL extracts the release version embedded in a resolved
// download URL. The version is a derived convenience only; update checks
// compare whole URLs, never this value.
func VersionFromURL(url string) (string, bool) {
	m := versionSegment.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}
