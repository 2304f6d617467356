package clipboard

import (
	"errors"
	"runtime"
	"strings"
	"testing"
)

func stubBackend(t *testing.T, isUnsupported bool, write func(string) error) {
	t.Helper()
	origWrite, origUnsupported := writeAll, unsupported
	writeAll = write
	unsupported = func() bool { return isUnsupported }
	t.Cleanup(func() {
		writeAll = origWrite
		unsupported = origUnsupported
	})
}

func TestClipboardError(t *testing.T) {
	err := NewClipboardError()

	if err.OS != runtime.GOOS {
		t.Errorf("Expected OS to be %s, got %s", runtime.GOOS, err.OS)
	}
	if err.Error() == "" {
		t.Error("Error message should not be empty")
	}

	var clipErr *ClipboardError
	if !errors.As(err, &clipErr) {
		t.Error("Should be able to unwrap as ClipboardError")
	}
}

func TestCopyWithFallbackSuccess(t *testing.T) {
	var got string
	stubBackend(t, false, func(text string) error {
		got = text
		return nil
	})

	statusMsg, err := CopyWithFallback("ServerEvents.recipes(event => {})")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if statusMsg != "Copied to clipboard!" {
		t.Errorf("Expected 'Copied to clipboard!', got '%s'", statusMsg)
	}
	if got != "ServerEvents.recipes(event => {})" {
		t.Errorf("clipboard received %q", got)
	}
}

func TestCopyWithFallbackUnsupported(t *testing.T) {
	stubBackend(t, true, func(string) error {
		t.Fatal("backend must not be called when unsupported")
		return nil
	})

	if IsClipboardAvailable() {
		t.Error("clipboard should report unavailable")
	}

	_, err := CopyWithFallback("x")
	var clipErr *ClipboardError
	if !errors.As(err, &clipErr) {
		t.Fatalf("expected ClipboardError, got %v", err)
	}
}

func TestCopyWithFallbackWrapsBackendError(t *testing.T) {
	stubBackend(t, false, func(string) error { return errors.New("xclip exited 1") })

	_, err := CopyWithFallback("x")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "failed to copy to clipboard") {
		t.Errorf("Non-clipboard errors should be wrapped: %v", err)
	}
}

func TestOpenURL(t *testing.T) {
	orig := startCmd
	t.Cleanup(func() { startCmd = orig })

	var calls [][]string
	startCmd = func(name string, args ...string) error {
		calls = append(calls, append([]string{name}, args...))
		return nil
	}

	if err := (BrowserOpener{}).Open("https://kubejs.com/wiki/"); err != nil {
		switch runtime.GOOS {
		case "darwin", "windows", "linux", "freebsd", "openbsd", "netbsd":
			t.Fatalf("unexpected error: %v", err)
		default:
			t.Skipf("platform %s has no opener", runtime.GOOS)
		}
	}

	if len(calls) != 1 {
		t.Fatalf("expected one command, got %v", calls)
	}
	last := calls[0][len(calls[0])-1]
	if last != "https://kubejs.com/wiki/" {
		t.Errorf("URL should be the final argument, got %v", calls[0])
	}

	startCmd = func(string, ...string) error { return errors.New("not found") }
	if err := OpenURL("https://kubejs.com/wiki/"); err == nil {
		t.Error("expected launcher failure to surface")
	}
}
