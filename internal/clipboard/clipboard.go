package clipboard

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	sysclip "github.com/atotto/clipboard"
)

// ClipboardError represents an error when no clipboard utility is available
type ClipboardError struct {
	OS      string
	Message string
}

func (e *ClipboardError) Error() string {
	return e.Message
}

// NewClipboardError creates a new ClipboardError with helpful installation instructions
func NewClipboardError() *ClipboardError {
	var msg string
	switch runtime.GOOS {
	case "linux":
		msg = "no clipboard utility found. Install one of:\n" +
			"  • Ubuntu/Debian: sudo apt install xclip\n" +
			"  • Arch: sudo pacman -S xclip\n" +
			"  • For Wayland: install wl-clipboard"
	case "darwin", "windows":
		msg = fmt.Sprintf("system clipboard not reachable on %s", runtime.GOOS)
	default:
		msg = fmt.Sprintf("clipboard not supported on %s", runtime.GOOS)
	}

	return &ClipboardError{
		OS:      runtime.GOOS,
		Message: msg,
	}
}

// Swapped out in tests
var (
	writeAll    = sysclip.WriteAll
	unsupported = func() bool { return sysclip.Unsupported }
	startCmd    = func(name string, args ...string) error {
		return exec.Command(name, args...).Start()
	}
)

// Copy copies text to the system clipboard
func Copy(text string) error {
	if unsupported() {
		return NewClipboardError()
	}
	return writeAll(text)
}

// CopyWithFallback attempts to copy to clipboard and returns a status message
func CopyWithFallback(text string) (string, error) {
	err := Copy(text)
	if err != nil {
		var clipErr *ClipboardError
		if errors.As(err, &clipErr) {
			return "", err
		}
		return "", fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return "Copied to clipboard!", nil
}

// IsClipboardAvailable reports whether a clipboard backend was found
func IsClipboardAvailable() bool {
	return !unsupported()
}

// BrowserOpener opens documentation links with the platform's URL handler.
// It satisfies session.Opener.
type BrowserOpener struct{}

// Open launches url without waiting for the browser to exit.
func (BrowserOpener) Open(url string) error {
	return OpenURL(url)
}

// OpenURL hands url to xdg-open, open or rundll32 depending on the platform.
func OpenURL(url string) error {
	var err error
	switch runtime.GOOS {
	case "darwin":
		err = startCmd("open", url)
	case "windows":
		err = startCmd("rundll32", "url.dll,FileProtocolHandler", url)
	case "linux", "freebsd", "openbsd", "netbsd":
		err = startCmd("xdg-open", url)
	default:
		return fmt.Errorf("opening URLs is not supported on %s", runtime.GOOS)
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}
