package errors

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ErrorLogName is the file TUIErrorHandler appends to
const ErrorLogName = "error.log"

// ErrorHandler formats errors for one surface
type ErrorHandler interface {
	HandleError(err error) error
	FormatError(err error) string
}

// CLIErrorHandler prints command failures on stderr
type CLIErrorHandler struct {
	Verbose bool
}

// NewCLIErrorHandler creates a CLI error handler. Verbose adds the error code
// and cause.
func NewCLIErrorHandler(verbose bool) *CLIErrorHandler {
	return &CLIErrorHandler{Verbose: verbose}
}

// HandleError logs err at debug level and returns it formatted for display
func (h *CLIErrorHandler) HandleError(err error) error {
	if appErr, ok := AsAppError(err); ok {
		slog.Debug("Command failed", "code", appErr.Code, "severity", appErr.Severity, "cause", appErr.Cause)
	}
	return fmt.Errorf("%s", h.FormatError(err))
}

// FormatError renders err as "Error: <message>" with any details on the next
// line. Plain errors are printed as they are.
func (h *CLIErrorHandler) FormatError(err error) string {
	appErr, ok := AsAppError(err)
	if !ok {
		return "Error: " + err.Error()
	}

	var b strings.Builder
	switch appErr.Severity {
	case SeverityWarning:
		b.WriteString("Warning: ")
	case SeverityInfo:
		// Not found and friends read as plain statements
	default:
		b.WriteString("Error: ")
	}
	b.WriteString(appErr.Message)
	if appErr.Details != "" {
		b.WriteString("\n  " + appErr.Details)
	}
	if h.Verbose {
		fmt.Fprintf(&b, "\n  [%s]", appErr.Code)
		if appErr.Cause != nil {
			fmt.Fprintf(&b, " caused by: %v", appErr.Cause)
		}
	}
	return b.String()
}

// HTTPErrorHandler writes JSON error bodies for the API and the web page
type HTTPErrorHandler struct {
	IncludeDetails bool
}

// NewHTTPErrorHandler creates an HTTP error handler
func NewHTTPErrorHandler(includeDetails bool) *HTTPErrorHandler {
	return &HTTPErrorHandler{IncludeDetails: includeDetails}
}

// HandleError logs server-side failures; client errors are not logged
func (h *HTTPErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)
	if h.StatusCode(appErr) >= http.StatusInternalServerError {
		slog.Error("Request failed", "code", appErr.Code, "error", appErr.Message, "cause", appErr.Cause)
	}
	return appErr
}

// FormatError renders the {"success": false, "error": {...}} envelope
func (h *HTTPErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	type errorBody struct {
		Code      ErrorCode              `json:"code"`
		Message   string                 `json:"message"`
		Details   string                 `json:"details,omitempty"`
		Context   map[string]interface{} `json:"context,omitempty"`
		Timestamp string                 `json:"timestamp"`
	}
	body := errorBody{
		Code:      appErr.Code,
		Message:   appErr.Message,
		Timestamp: appErr.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if h.IncludeDetails {
		body.Details = appErr.Details
		body.Context = appErr.Context
	}

	data, _ := json.Marshal(struct {
		Success bool      `json:"success"`
		Error   errorBody `json:"error"`
	}{Error: body})
	return string(data)
}

// WriteHTTPError writes err with the status its code maps to
func (h *HTTPErrorHandler) WriteHTTPError(w http.ResponseWriter, err error) {
	appErr := GetAppError(h.HandleError(err))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(h.StatusCode(appErr))
	w.Write([]byte(h.FormatError(appErr)))
}

// StatusCode maps error codes to HTTP status codes
func (h *HTTPErrorHandler) StatusCode(appErr *AppError) int {
	switch appErr.Code {
	case ErrCodeValidation, ErrCodeInvalidInput, ErrCodeMissingField, ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeFileNotFound, ErrCodeCommandNotFound:
		return http.StatusNotFound
	case ErrCodeAlreadyExists:
		return http.StatusConflict
	case ErrCodeInvalidCommand:
		return http.StatusMethodNotAllowed
	case ErrCodeNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// TUIErrorHandler turns errors into status bar text. The terminal belongs to
// the editor, so the full error goes to a log file instead.
type TUIErrorHandler struct {
	ShowDetails bool
	LogDir      string
}

// NewTUIErrorHandler creates a TUI error handler. Errors are appended to
// logDir/error.log; an empty logDir disables file logging.
func NewTUIErrorHandler(showDetails bool, logDir string) *TUIErrorHandler {
	return &TUIErrorHandler{
		ShowDetails: showDetails,
		LogDir:      logDir,
	}
}

// HandleError records err in the error log
func (h *TUIErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)
	if h.LogDir != "" {
		if logErr := appendErrorLog(h.LogDir, appErr); logErr != nil {
			slog.Debug("Could not write error log", "error", logErr)
		}
	}
	return appErr
}

// FormatError returns a single status line, plus details when enabled
func (h *TUIErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	message := appErr.Message
	if appErr.Cause != nil {
		message = fmt.Sprintf("%s: %v", message, appErr.Cause)
	}
	if h.ShowDetails && appErr.Details != "" {
		message += " (" + appErr.Details + ")"
	}
	return message
}

// GetErrorStyle returns the status glyph and colour for err's severity
func (h *TUIErrorHandler) GetErrorStyle(err error) (glyph, color string) {
	switch GetAppError(err).Severity {
	case SeverityCritical:
		return "🔥", "#ff0000"
	case SeverityWarning:
		return "⚠️", "#feca57"
	case SeverityInfo:
		return "ℹ️", "#48cae4"
	default:
		return "❌", "#ff6b6b"
	}
}

// appendErrorLog writes one logfmt record per error
func appendErrorLog(logDir string, appErr *AppError) error {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}
	file, err := os.OpenFile(filepath.Join(logDir, ErrorLogName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	attrs := []any{
		"code", appErr.Code,
		"severity", appErr.Severity,
		"category", appErr.Category,
	}
	if appErr.Details != "" {
		attrs = append(attrs, "details", appErr.Details)
	}
	if appErr.Cause != nil {
		attrs = append(attrs, "cause", appErr.Cause.Error())
	}
	for key, value := range appErr.Context {
		attrs = append(attrs, key, value)
	}

	slog.New(slog.NewTextHandler(file, nil)).Error(appErr.Message, attrs...)
	return nil
}
