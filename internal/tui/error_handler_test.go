package tui

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test ErrorHandler constructor
func TestNewErrorHandler(t *testing.T) {
	statusView := tview.NewTextView()
	logger := log.New(&bytes.Buffer{}, "", 0)

	eh := NewErrorHandler(nil, statusView, logger)

	require.NotNil(t, eh)
	assert.NotNil(t, eh.dispatch)
	assert.Equal(t, statusView, eh.statusView)
	assert.Equal(t, logger, eh.logger)
	assert.Equal(t, statusClearDelay, eh.clearDelay)
	assert.Empty(t, eh.currentStatus)
	assert.Empty(t, eh.persistentStatus)
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		userMsg string
		want    string
	}{
		{name: "nil_error_is_ignored", err: nil, userMsg: "ignored", want: ""},
		{name: "custom_message", err: errors.New("boom"), userMsg: "Upload failed", want: "❌ Upload failed"},
		{name: "default_message", err: errors.New("boom"), userMsg: "", want: "❌ An error occurred"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			eh := NewErrorHandler(nil, tview.NewTextView(), log.New(&logs, "", 0))
			eh.SetBaseline(func() string { return "" })

			eh.HandleError(context.Background(), tt.err, tt.userMsg)

			assert.Equal(t, tt.want, eh.Status())
			if tt.err != nil {
				assert.Contains(t, logs.String(), "ERROR: boom")
			}
		})
	}
}

func TestErrorHandler_ShowMessageLevels(t *testing.T) {
	tests := []struct {
		name string
		show func(eh *ErrorHandler)
		want string
	}{
		{name: "info", show: func(eh *ErrorHandler) { eh.ShowInfo(context.Background(), "hello") }, want: "ℹ️ hello"},
		{name: "warning", show: func(eh *ErrorHandler) { eh.ShowWarning(context.Background(), "careful") }, want: "⚠️ careful"},
		{name: "error", show: func(eh *ErrorHandler) { eh.ShowError(context.Background(), "broken") }, want: "❌ broken"},
		{name: "success", show: func(eh *ErrorHandler) { eh.ShowSuccess(context.Background(), "done") }, want: "✅ done"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			statusView := tview.NewTextView()
			eh := NewErrorHandler(nil, statusView, nil)

			tt.show(eh)

			assert.Equal(t, tt.want, eh.Status())
			assert.Equal(t, tt.want, strings.TrimSpace(statusView.GetText(false)))
		})
	}
}

func TestErrorHandler_BlankMessageIgnored(t *testing.T) {
	eh := NewErrorHandler(nil, tview.NewTextView(), nil)
	eh.SetBaseline(func() string { return "base" })

	eh.ShowError(context.Background(), "   ")

	assert.Equal(t, "base", eh.Status())
}

func TestErrorHandler_EscapesTags(t *testing.T) {
	eh := NewErrorHandler(nil, tview.NewTextView(), nil)

	eh.ShowInfo(context.Background(), "[red]not a color")

	assert.Equal(t, "ℹ️ "+tview.Escape("[red]not a color"), eh.Status())
}

func TestErrorHandler_BaselineAndRefresh(t *testing.T) {
	statusView := tview.NewTextView()
	eh := NewErrorHandler(nil, statusView, nil)
	assert.Contains(t, eh.Status(), "evtui")

	label := "first"
	eh.SetBaseline(func() string { return label })
	eh.Refresh()
	assert.Equal(t, "first", strings.TrimSpace(statusView.GetText(false)))

	label = "second"
	eh.Refresh()
	assert.Equal(t, "second", eh.Status())
	assert.Equal(t, "second", strings.TrimSpace(statusView.GetText(false)))
}

func TestErrorHandler_PersistentMessage(t *testing.T) {
	eh := NewErrorHandler(nil, tview.NewTextView(), nil)
	eh.SetBaseline(func() string { return "base" })
	ctx := context.Background()

	eh.ShowProgress(ctx, "Uploading 2 files")
	assert.Equal(t, "ℹ️ Uploading 2 files", eh.Status())

	// a transient message wins while it is shown
	eh.ShowError(ctx, "failed")
	assert.Equal(t, "❌ failed", eh.Status())

	eh.mu.Lock()
	eh.currentStatus = ""
	eh.mu.Unlock()
	assert.Equal(t, "ℹ️ Uploading 2 files", eh.Status())

	eh.ClearProgress()
	assert.Equal(t, "base", eh.Status())
}

func TestErrorHandler_TransientMessageClears(t *testing.T) {
	eh := NewErrorHandler(nil, tview.NewTextView(), nil)
	eh.SetBaseline(func() string { return "base" })
	eh.clearDelay = 10 * time.Millisecond

	eh.ShowSuccess(context.Background(), "saved")
	assert.Equal(t, "✅ saved", eh.Status())

	assert.Eventually(t, func() bool { return eh.Status() == "base" }, time.Second, 5*time.Millisecond)
}

func TestErrorHandler_NewerMessageSurvivesOldTimer(t *testing.T) {
	eh := NewErrorHandler(nil, tview.NewTextView(), nil)
	eh.SetBaseline(func() string { return "base" })

	// the first timer fires against a message that is no longer shown
	eh.clearCurrentStatusSafely("❌ old")
	eh.ShowWarning(context.Background(), "new")
	eh.clearCurrentStatusSafely("❌ old")

	assert.Equal(t, "⚠️ new", eh.Status())
}

func TestErrorHandler_MutedLevelsOnlyLogged(t *testing.T) {
	var logs bytes.Buffer
	eh := NewErrorHandler(nil, tview.NewTextView(), log.New(&logs, "", 0))
	eh.SetBaseline(func() string { return "base" })
	eh.SetMuted(func(l LogLevel) bool { return l == LogLevelInfo })

	eh.ShowInfo(context.Background(), "quiet")
	assert.Equal(t, "base", eh.Status())
	assert.Contains(t, logs.String(), "INFO (muted): quiet")

	eh.ShowError(context.Background(), "loud")
	assert.Equal(t, "❌ loud", eh.Status())
}

func TestErrorHandler_PublishesShownMessages(t *testing.T) {
	type shown struct {
		msg   string
		level LogLevel
	}
	var got []shown
	eh := NewErrorHandler(nil, tview.NewTextView(), nil)
	eh.SetMuted(func(l LogLevel) bool { return l == LogLevelSuccess })
	eh.SetPublisher(func(msg string, level LogLevel) { got = append(got, shown{msg, level}) })

	eh.ShowWarning(context.Background(), "careful")
	eh.ShowSuccess(context.Background(), "done")
	eh.ShowMessage(context.Background(), " ", LogLevelError)

	assert.Equal(t, []shown{{"careful", LogLevelWarning}}, got)
}
