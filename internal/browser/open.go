package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Open opens the specified URL in the user's default browser.
// Only http and https URLs are accepted since the value often comes from an
// API response (payment links).
func Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open %q: scheme must be http or https", rawURL)
	}
	cmd, err := command(runtime.GOOS, u.String())
	if err != nil {
		return err
	}
	return cmd.Start()
}

func command(goos, target string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		return exec.Command("open", target), nil
	case "linux":
		return exec.Command("xdg-open", target), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target), nil
	default:
		return nil, fmt.Errorf("unsupported OS: %s", goos)
	}
}
