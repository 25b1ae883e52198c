package browser

import (
	"strings"
	"testing"
)

func TestOpenRejectsNonHTTP(t *testing.T) {
	for _, u := range []string{"file:///etc/passwd", "javascript:alert(1)", "", "::"} {
		if err := Open(u); err == nil {
			t.Errorf("Open(%q) = nil, want error", u)
		}
	}
}

func TestCommand(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{"darwin", "open"},
		{"linux", "xdg-open"},
		{"windows", "rundll32"},
	}
	for _, tt := range tests {
		cmd, err := command(tt.goos, "https://pay.example.com")
		if err != nil {
			t.Fatalf("command(%q) error: %v", tt.goos, err)
		}
		if !strings.HasSuffix(cmd.Path, tt.want) && cmd.Args[0] != tt.want {
			t.Errorf("command(%q) = %v, want %s", tt.goos, cmd.Args, tt.want)
		}
		if last := cmd.Args[len(cmd.Args)-1]; last != "https://pay.example.com" {
			t.Errorf("last arg = %q, want url", last)
		}
	}
	if _, err := command("plan9", "https://x"); err == nil {
		t.Error("command(plan9) = nil error, want unsupported")
	}
}
