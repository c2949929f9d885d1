package adapter

import (
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/ber2minsin/intime/pkg/adapter/x11"
	"github.com/ber2minsin/intime/pkg/window"
)

// New builds the platform adapter for the current session. X11 is the
// only backend; XWayland sessions qualify because they expose DISPLAY.
// Callers treat a failure here as fatal at startup.
func New(pollInterval time.Duration) (window.Adapter, error) {
	if os.Getenv("DISPLAY") == "" {
		return nil, errors.Errorf("DISPLAY is not set (session: %s); an X11 or XWayland session is required",
			DetectDisplayServer())
	}

	a, err := x11.New(pollInterval)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize X11 adapter")
	}
	return a, nil
}

// DetectDisplayServer reports which display server the session runs on.
func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}
