package tui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ajramos/evtui/internal/config"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// LogLevel represents the severity of a message
type LogLevel int

const (
	LogLevelInfo LogLevel = iota
	LogLevelWarning
	LogLevelError
	LogLevelSuccess
)

// statusClearDelay is how long a transient message stays in the status bar.
const statusClearDelay = 5 * time.Second

// ErrorHandler provides consistent error handling and user feedback
type ErrorHandler struct {
	mu         sync.RWMutex
	dispatch   func(func())
	statusView *tview.TextView
	logger     *log.Logger
	colors     func() config.StatusColors
	baseline   func() string
	muted      func(LogLevel) bool
	publish    func(msg string, level LogLevel)

	// Status message state
	currentStatus    string
	currentLevel     LogLevel
	persistentStatus string
	statusTimer      *time.Timer
	clearDelay       time.Duration
}

// NewErrorHandler creates a new error handler. A nil dispatch writes the
// status bar directly.
func NewErrorHandler(dispatch func(func()), statusView *tview.TextView, logger *log.Logger) *ErrorHandler {
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &ErrorHandler{
		dispatch:   dispatch,
		statusView: statusView,
		logger:     logger,
		clearDelay: statusClearDelay,
	}
}

// SetBaseline sets the text shown when no message is active.
func (eh *ErrorHandler) SetBaseline(fn func() string) {
	eh.mu.Lock()
	eh.baseline = fn
	eh.mu.Unlock()
}

// SetColors sets the theme lookup for message colors.
func (eh *ErrorHandler) SetColors(fn func() config.StatusColors) {
	eh.mu.Lock()
	eh.colors = fn
	eh.mu.Unlock()
}

// SetMuted installs a filter; messages of a muted level are only logged.
func (eh *ErrorHandler) SetMuted(fn func(LogLevel) bool) {
	eh.mu.Lock()
	eh.muted = fn
	eh.mu.Unlock()
}

// SetPublisher sets a hook told about every message that reaches the status bar.
func (eh *ErrorHandler) SetPublisher(fn func(msg string, level LogLevel)) {
	eh.mu.Lock()
	eh.publish = fn
	eh.mu.Unlock()
}

// HandleError handles an error and shows appropriate user feedback
func (eh *ErrorHandler) HandleError(ctx context.Context, err error, userMsg string) {
	if err == nil {
		return
	}

	if eh.logger != nil {
		eh.logger.Printf("ERROR: %v", err)
	}

	if userMsg == "" {
		userMsg = "An error occurred"
	}

	eh.ShowMessage(ctx, userMsg, LogLevelError)
}

// ShowMessage displays a message to the user
func (eh *ErrorHandler) ShowMessage(ctx context.Context, msg string, level LogLevel) {
	if strings.TrimSpace(msg) == "" {
		return
	}

	eh.mu.RLock()
	muted, publish := eh.muted, eh.publish
	eh.mu.RUnlock()

	if muted != nil && muted(level) {
		if eh.logger != nil {
			eh.logger.Printf("%s (muted): %s", eh.levelToString(level), msg)
		}
		return
	}

	formattedMsg := eh.formatMessage(msg, level)

	if eh.logger != nil {
		eh.logger.Printf("%s: %s", eh.levelToString(level), msg)
	}

	eh.dispatch(func() {
		eh.updateStatusMessage(formattedMsg, level)
	})
	if publish != nil {
		publish(msg, level)
	}
}

// ShowPersistentMessage shows a status message that stays until cleared
func (eh *ErrorHandler) ShowPersistentMessage(ctx context.Context, msg string, level LogLevel) {
	formattedMsg := eh.formatMessage(msg, level)
	eh.dispatch(func() {
		eh.updatePersistentStatus(formattedMsg)
	})
}

// ClearPersistentMessage clears the persistent status message
func (eh *ErrorHandler) ClearPersistentMessage() {
	eh.dispatch(func() {
		eh.updatePersistentStatus("")
	})
}

// Refresh redraws the status bar, e.g. after the baseline changed.
func (eh *ErrorHandler) Refresh() {
	eh.dispatch(func() {
		eh.mu.Lock()
		defer eh.mu.Unlock()
		eh.refreshStatusDisplay()
	})
}

// Status returns the text currently shown in the status bar.
func (eh *ErrorHandler) Status() string {
	eh.mu.RLock()
	defer eh.mu.RUnlock()
	return eh.displayText()
}

// formatMessage formats a message with appropriate icon
func (eh *ErrorHandler) formatMessage(msg string, level LogLevel) string {
	var icon string

	switch level {
	case LogLevelInfo:
		icon = "ℹ️"
	case LogLevelWarning:
		icon = "⚠️"
	case LogLevelError:
		icon = "❌"
	case LogLevelSuccess:
		icon = "✅"
	default:
		icon = "•"
	}

	return fmt.Sprintf("%s %s", icon, tview.Escape(msg))
}

// levelToString converts LogLevel to string
func (eh *ErrorHandler) levelToString(level LogLevel) string {
	switch level {
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarning:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	case LogLevelSuccess:
		return "SUCCESS"
	default:
		return "UNKNOWN"
	}
}

// levelToColor converts LogLevel to a theme color
func (eh *ErrorHandler) levelToColor(level LogLevel) tcell.Color {
	colors := config.DefaultColors().Status
	if eh.colors != nil {
		colors = eh.colors()
	}
	switch level {
	case LogLevelWarning:
		return colors.WarningColor.Color()
	case LogLevelError:
		return colors.ErrorColor.Color()
	case LogLevelSuccess:
		return colors.SuccessColor.Color()
	default:
		return colors.InfoColor.Color()
	}
}

// updateStatusMessage updates the status message with auto-clear
func (eh *ErrorHandler) updateStatusMessage(msg string, level LogLevel) {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	if eh.statusTimer != nil {
		eh.statusTimer.Stop()
	}

	eh.currentStatus = msg
	eh.currentLevel = level
	eh.refreshStatusDisplay()

	// Info messages stay while a progress message is pinned
	if level != LogLevelInfo || eh.persistentStatus == "" {
		currentMsg := msg
		eh.statusTimer = time.AfterFunc(eh.clearDelay, func() {
			eh.clearCurrentStatusSafely(currentMsg)
		})
	}
}

// clearCurrentStatusSafely clears the current message unless a newer one
// replaced it
func (eh *ErrorHandler) clearCurrentStatusSafely(expectedMsg string) {
	eh.dispatch(func() {
		eh.mu.Lock()
		defer eh.mu.Unlock()

		if eh.currentStatus == expectedMsg {
			eh.currentStatus = ""
			eh.refreshStatusDisplay()
		}
	})
}

// updatePersistentStatus updates the persistent status
func (eh *ErrorHandler) updatePersistentStatus(msg string) {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	eh.persistentStatus = msg
	eh.refreshStatusDisplay()
}

func (eh *ErrorHandler) displayText() string {
	switch {
	case eh.currentStatus != "":
		return eh.currentStatus
	case eh.persistentStatus != "":
		return eh.persistentStatus
	default:
		return eh.getBaselineStatus()
	}
}

// refreshStatusDisplay refreshes the status display
func (eh *ErrorHandler) refreshStatusDisplay() {
	if eh.statusView == nil {
		return
	}
	if eh.currentStatus != "" {
		eh.statusView.SetTextColor(eh.levelToColor(eh.currentLevel))
	} else {
		eh.statusView.SetTextColor(tview.Styles.PrimaryTextColor)
	}
	eh.statusView.SetText(eh.displayText())
}

// getBaselineStatus returns the baseline status text
func (eh *ErrorHandler) getBaselineStatus() string {
	if eh.baseline != nil {
		return eh.baseline()
	}
	return "evtui • Press ? for help • : for commands"
}

// Convenience methods for common operations

// ShowInfo shows an info message
func (eh *ErrorHandler) ShowInfo(ctx context.Context, msg string) {
	eh.ShowMessage(ctx, msg, LogLevelInfo)
}

// ShowWarning shows a warning message
func (eh *ErrorHandler) ShowWarning(ctx context.Context, msg string) {
	eh.ShowMessage(ctx, msg, LogLevelWarning)
}

// ShowError shows an error message
func (eh *ErrorHandler) ShowError(ctx context.Context, msg string) {
	eh.ShowMessage(ctx, msg, LogLevelError)
}

// ShowSuccess shows a success message
func (eh *ErrorHandler) ShowSuccess(ctx context.Context, msg string) {
	eh.ShowMessage(ctx, msg, LogLevelSuccess)
}

// ShowProgress pins a progress message
func (eh *ErrorHandler) ShowProgress(ctx context.Context, msg string) {
	eh.ShowPersistentMessage(ctx, msg, LogLevelInfo)
}

// ClearProgress clears any progress message
func (eh *ErrorHandler) ClearProgress() {
	eh.ClearPersistentMessage()
}
