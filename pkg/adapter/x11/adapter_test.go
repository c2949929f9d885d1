package x11

import (
	"os"
	"testing"
	"time"

	"github.com/ber2minsin/intime/pkg/window"
)

func TestAdapterInterface(t *testing.T) {
	var _ window.Adapter = (*Adapter)(nil)
}

func TestNew(t *testing.T) {
	adapter, err := New(500 * time.Millisecond)
	if err != nil {
		t.Logf("New() returned error (no X server is fine): %v", err)
		return
	}
	defer adapter.Close()

	if !adapter.IsAvailable() {
		t.Error("IsAvailable() = false on a live connection")
	}
	if len(adapter.atoms) != len(atomNames) {
		t.Errorf("interned %d atoms, want %d", len(adapter.atoms), len(atomNames))
	}
}

func TestParseClass(t *testing.T) {
	tests := []struct {
		name         string
		data         []byte
		wantInstance string
		wantClass    string
	}{
		{
			name:         "instance and class",
			data:         []byte("navigator\x00Firefox\x00"),
			wantInstance: "navigator",
			wantClass:    "Firefox",
		},
		{
			name:         "identical pair",
			data:         []byte("kitty\x00kitty\x00"),
			wantInstance: "kitty",
			wantClass:    "kitty",
		},
		{
			name:         "instance only",
			data:         []byte("xterm\x00"),
			wantInstance: "xterm",
			wantClass:    "",
		},
		{
			name:         "empty",
			data:         []byte{},
			wantInstance: "",
			wantClass:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instance, class := parseClass(tt.data)
			if instance != tt.wantInstance || class != tt.wantClass {
				t.Errorf("parseClass(%q) = %q, %q, want %q, %q",
					tt.data, instance, class, tt.wantInstance, tt.wantClass)
			}
		})
	}
}

func TestDecodeText(t *testing.T) {
	if got := decodeText([]byte("Terminal\x00\x00")); got != "Terminal" {
		t.Errorf("decodeText() = %q, want Terminal", got)
	}
	if got := decodeText([]byte{}); got != "" {
		t.Errorf("decodeText(empty) = %q, want empty", got)
	}
}

func TestConvertBGRA(t *testing.T) {
	data := []byte{
		10, 20, 30, 0, // BGRA pixel 0
		40, 50, 60, 0, // BGRA pixel 1
	}

	img := convertBGRA(data, 2, 1, 24)
	if got := img.Pix[0:4]; got[0] != 30 || got[1] != 20 || got[2] != 10 || got[3] != 255 {
		t.Errorf("pixel 0 = %v, want [30 20 10 255]", got)
	}
	if got := img.Pix[4:8]; got[0] != 60 || got[1] != 50 || got[2] != 40 || got[3] != 255 {
		t.Errorf("pixel 1 = %v, want [60 50 40 255]", got)
	}
}

func TestConvertBGRAUnsupportedDepth(t *testing.T) {
	data := []byte{10, 20, 30, 0}

	img := convertBGRA(data, 1, 1, 16)
	for i, v := range img.Pix {
		if v != 0 {
			t.Errorf("Pix[%d] = %d, want 0 for unsupported depth", i, v)
		}
	}
}

func TestConvertBGRATruncatedData(t *testing.T) {
	// only one of two pixels present
	data := []byte{10, 20, 30, 0}

	img := convertBGRA(data, 2, 1, 32)
	if img.Pix[0] != 30 {
		t.Errorf("pixel 0 R = %d, want 30", img.Pix[0])
	}
	for i := 4; i < 8; i++ {
		if img.Pix[i] != 0 {
			t.Errorf("Pix[%d] = %d, want 0 past the data", i, img.Pix[i])
		}
	}
}

func TestExePath(t *testing.T) {
	if got := exePath(0); got != "" {
		t.Errorf("exePath(0) = %q, want empty", got)
	}

	path := exePath(uint32(os.Getpid()))
	if path == "" {
		t.Error("exePath(own pid) = empty, want the test binary path")
	}
	t.Logf("own executable: %s", path)
}
