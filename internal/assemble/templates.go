package assemble

import (
	"fmt"
	"os"
	"path/filepath"
)

// launcherScript starts the bundled Electron against the packed app. It
// forwards proxy settings, enables Wayland when a compositor is present,
// and works around the openDirectory portal bug on older
// xdg-desktop-portal releases.
const launcherScript = `#!/bin/bash
APP_DIR="$(dirname "$(dirname "$(readlink -f "$0")")")"

# Force Electron to report as packaged app (enables proper resource paths)
export ELECTRON_FORCE_IS_PACKAGED=true

# Build proxy arguments for Electron/Chromium
PROXY_ARGS=""

# Check for proxy environment variables (prefer lowercase, fallback to uppercase)
PROXY_URL="${https_proxy:-${HTTPS_PROXY:-${http_proxy:-${HTTP_PROXY:-}}}}"
NO_PROXY_LIST="${no_proxy:-${NO_PROXY:-}}"

if [ -n "$PROXY_URL" ]; then
    PROXY_ARGS="--proxy-server=$PROXY_URL"

    if [ -n "$NO_PROXY_LIST" ]; then
        PROXY_ARGS="$PROXY_ARGS --proxy-bypass-list=$NO_PROXY_LIST"
    fi
fi

# Fix for folder picker on older systems (Ubuntu 20.04 and similar)
# xdg-desktop-portal < 1.8.0 doesn't properly support openDirectory dialogs
# Setting required version to 4 forces fallback to native GTK dialogs
# See: https://github.com/electron/electron/issues/48356
XDG_PORTAL_FIX=""
if command -v dpkg &> /dev/null; then
    PORTAL_VERSION=$(dpkg -s xdg-desktop-portal 2>/dev/null | grep "^Version:" | sed 's/Version: //' | cut -d'-' -f1)
    if [ -n "$PORTAL_VERSION" ]; then
        REQUIRED_VERSION="1.8.0"
        if [ "$(printf '%s\n' "$REQUIRED_VERSION" "$PORTAL_VERSION" | sort -V | head -n1)" != "$REQUIRED_VERSION" ]; then
            XDG_PORTAL_FIX="--xdg-portal-required-version=4"
        fi
    fi
fi

# Launch with Wayland support if available
exec "$APP_DIR/lib/claude-desktop/node_modules/electron/dist/electron" \
    "$APP_DIR/lib/claude-desktop/app.asar" \
    ${WAYLAND_DISPLAY:+--ozone-platform-hint=auto --enable-features=WaylandWindowDecorations} \
    $XDG_PORTAL_FIX \
    $PROXY_ARGS "$@"
`

const desktopEntry = `[Desktop Entry]
Name=Claude
Comment=Unofficial Claude Desktop for Linux
Exec=claude-desktop %u
Icon=claude-desktop
Type=Application
Categories=Office;Utility;
Terminal=false
MimeTypes=x-scheme-handler/claude;
`

// LauncherScript returns the generated launcher shell script.
func LauncherScript() string { return launcherScript }

// DesktopEntry returns the generated .desktop file.
func DesktopEntry() string { return desktopEntry }

// WriteResources writes the launcher script and desktop entry into the
// assembled tree.
func WriteResources(outputDir string) error {
	binDir := filepath.Join(outputDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("create bin dir: %w", err)
	}
	launcher := filepath.Join(binDir, "claude-desktop")
	if err := os.WriteFile(launcher, []byte(launcherScript), 0o755); err != nil {
		return fmt.Errorf("write launcher script: %w", err)
	}

	appsDir := filepath.Join(outputDir, "share", "applications")
	if err := os.MkdirAll(appsDir, 0o755); err != nil {
		return fmt.Errorf("create applications dir: %w", err)
	}
	entry := filepath.Join(appsDir, "claude-desktop.desktop")
	if err := os.WriteFile(entry, []byte(desktopEntry), 0o644); err != nil {
		return fmt.Errorf("write desktop entry: %w", err)
	}
	return nil
}
