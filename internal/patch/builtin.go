package patch

import (
	"path/filepath"
	"regexp"
)

// TitleBar enables the in-app title bar on Linux. The renderer gates it
// behind a "not Windows" check; flipping the condition turns it on for
// the main window. Advisory: a miss only logs, since the app remains
// usable with the desktop environment's decorations.
func TitleBar() Spec {
	return Spec{
		Name:        "title-bar",
		Glob:        filepath.Join(".vite", "renderer", "main_window", "assets", "MainWindowPage-*.js"),
		Pattern:     regexp.MustCompile(`if\(!(\w+)\s*&&\s*(\w+)\)`),
		Replacement: `if($1 && $2)`,
	}
}

// ClaudeCodePlatforms teaches the bundled platform-detection routine
// about Linux so the "install runtime dependencies" flow works. Required
// when requested: shipping the unpatched routine would break the feature
// the user explicitly asked for.
func ClaudeCodePlatforms() Spec {
	return Spec{
		Name: "claude-code-platforms",
		Glob: filepath.Join(".vite", "build", "index.js"),
		Pattern: regexp.MustCompile(
			`getHostPlatform\(\)\{const e=process\.arch;` +
				`if\(process\.platform==="darwin"\)` +
				`return e==="arm64"\?"darwin-arm64":"darwin-x64";` +
				`if\(process\.platform==="win32"\)return"win32-x64";` +
				`throw new Error\(` + "`" + `Unsupported platform: \$\{process\.platform\}-\$\{e\}` + "`" + `\)\}`),
		Replacement: `getHostPlatform(){const e=process.arch;` +
			`if(process.platform==="darwin")return e==="arm64"?"darwin-arm64":"darwin-x64";` +
			`if(process.platform==="win32")return"win32-x64";` +
			`if(process.platform==="linux")return e==="arm64"?"linux-arm64":"linux-x64";` +
			"throw new Error(`Unsupported platform: ${process.platform}-${e}`)}",
		Required: true,
	}
}
