package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	t.Setenv("MEMEGEN_TEST_DIR", "/tmp/memes")

	tests := []struct {
		in   string
		want string
	}{
		{"~/voices", filepath.Join(home, "voices")},
		{"$MEMEGEN_TEST_DIR/out.png", "/tmp/memes/out.png"},
		{"/abs/path", "/abs/path"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := ExpandPath(tc.in); got != tc.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsImageFile(t *testing.T) {
	tests := map[string]bool{
		"cat.png":      true,
		"CAT.JPG":      true,
		"dog.jpeg":     true,
		"scan.tiff":    true,
		"anim.gif":     true,
		"notes.md":     false,
		"voice.onnx":   false,
		"no-extension": false,
	}
	for name, want := range tests {
		if got := IsImageFile(name); got != want {
			t.Errorf("IsImageFile(%q) = %v, want %v", name, got, want)
		}
	}
}
