package export

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// OpenInBrowser opens a file or URL with the platform's default handler.
// Set CASEDASH_NO_BROWSER=1 to suppress it.
func OpenInBrowser(target string) error {
	if os.Getenv("CASEDASH_NO_BROWSER") != "" {
		return nil
	}

	if abs, err := filepath.Abs(target); err == nil {
		if _, statErr := os.Stat(abs); statErr == nil {
			target = "file://" + filepath.ToSlash(abs)
		}
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "linux":
		cmd = exec.Command("xdg-open", target)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", target)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
