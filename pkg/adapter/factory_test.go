package adapter

import (
	"testing"
	"time"
)

func TestDetectDisplayServer(t *testing.T) {
	tests := []struct {
		name           string
		sessionType    string
		waylandDisplay string
		x11Display     string
		want           string
	}{
		{"x11 session", "x11", "", ":0", "x11"},
		{"wayland session", "wayland", "wayland-0", "", "wayland"},
		{"xwayland counts as wayland", "wayland", "wayland-0", ":0", "wayland"},
		{"display only", "", "", ":1", "x11"},
		{"nothing set", "", "", "", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_SESSION_TYPE", tt.sessionType)
			t.Setenv("WAYLAND_DISPLAY", tt.waylandDisplay)
			t.Setenv("DISPLAY", tt.x11Display)

			if got := DetectDisplayServer(); got != tt.want {
				t.Errorf("DetectDisplayServer() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewWithoutDisplay(t *testing.T) {
	t.Setenv("DISPLAY", "")
	t.Setenv("XDG_SESSION_TYPE", "")
	t.Setenv("WAYLAND_DISPLAY", "")

	if _, err := New(500 * time.Millisecond); err == nil {
		t.Error("New() succeeded without DISPLAY")
	}
}

func TestNew(t *testing.T) {
	a, err := New(500 * time.Millisecond)
	if err != nil {
		t.Logf("New() returned error (may be expected): %v", err)
		return
	}
	defer a.Close()

	if !a.IsAvailable() {
		t.Error("New() returned an unavailable adapter without error")
	}
}
