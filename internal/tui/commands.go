package tui

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ajramos/evtui/internal/config"
	"github.com/ajramos/evtui/internal/nav"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// errUnknownCommand is returned for input the command bar cannot handle.
var errUnknownCommand = errors.New("unknown command")

// commandNames feeds Tab completion.
var commandNames = []string{
	"analytics", "back", "chat", "clear", "dashboard", "delete", "forward", "help",
	"new", "notify", "persona", "profiles", "quit", "refresh", "rm", "say", "select",
	"summary", "theme", "transcribe", "transcription", "tts", "upload",
}

// createCommandBar creates the command bar (k9s style). It stays collapsed
// until showCommandBar.
func (a *App) createCommandBar() *tview.InputField {
	input := tview.NewInputField().SetLabel(":").SetFieldWidth(0)
	input.SetBorder(false)
	input.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			cmd := input.GetText()
			a.hideCommandBar()
			a.executeCommand(cmd)
		case tcell.KeyEscape:
			a.hideCommandBar()
		}
	})
	input.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		switch ev.Key() {
		case tcell.KeyTab:
			cur := strings.TrimSpace(input.GetText())
			if s := a.generateCommandSuggestion(cur); s != "" && s != cur {
				input.SetText(s)
			}
			return nil
		case tcell.KeyUp:
			if a.cmdHistoryIndex > 0 {
				a.cmdHistoryIndex--
				input.SetText(a.cmdHistory[a.cmdHistoryIndex])
			}
			return nil
		case tcell.KeyDown:
			if a.cmdHistoryIndex < len(a.cmdHistory)-1 {
				a.cmdHistoryIndex++
				input.SetText(a.cmdHistory[a.cmdHistoryIndex])
			} else {
				a.cmdHistoryIndex = len(a.cmdHistory)
				input.SetText("")
			}
			return nil
		}
		return ev
	})
	return input
}

// showCommandBar expands the bar and enters command mode
func (a *App) showCommandBar() {
	a.cmdMode = true
	a.cmdHistoryIndex = len(a.cmdHistory)
	a.cmdBar.SetText("")
	a.main.ResizeItem(a.cmdBar, 1, 0)
	a.SetFocus(a.cmdBar)
}

// hideCommandBar collapses the bar and gives focus back to the page
func (a *App) hideCommandBar() {
	a.cmdMode = false
	a.cmdBar.SetText("")
	a.main.ResizeItem(a.cmdBar, 0, 0)
	a.SetFocus(a.body)
}

// executeCommand runs a command typed in the bar and reports failures in
// the status bar.
func (a *App) executeCommand(cmd string) {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return
	}
	a.addToHistory(cmd)
	if err := a.runCommand(cmd); err != nil {
		a.ReportError(a.ctx, err)
	}
}

func (a *App) addToHistory(cmd string) {
	if n := len(a.cmdHistory); n > 0 && a.cmdHistory[n-1] == cmd {
		return
	}
	a.cmdHistory = append(a.cmdHistory, cmd)
	if len(a.cmdHistory) > 50 {
		a.cmdHistory = a.cmdHistory[len(a.cmdHistory)-50:]
	}
}

// runCommand dispatches one command. Long running work is started in the
// background; only argument errors come back synchronously.
func (a *App) runCommand(cmd string) error {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return nil
	}
	name := strings.ToLower(parts[0])
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(cmd), parts[0]))

	switch name {
	case "quit", "q":
		a.Stop()
	case "help", "h", "?":
		a.showHelp()
	case "back", "b":
		a.goBack()
	case "forward", "f":
		a.goForward()
	case "refresh", "r":
		a.refreshPage()
	case "theme":
		if rest == "" {
			a.openThemePicker()
			return nil
		}
		if err := a.SetTheme(a.ctx, rest); err != nil {
			return err
		}
		a.errorHandler.ShowSuccess(a.ctx, "Theme: "+rest)
	case "tts":
		return a.setTTS(rest)
	case "notify", "notifications":
		return a.setNotify(rest)
	case "select", "use":
		if rest == "" {
			return fmt.Errorf("usage: select <id|name>")
		}
		a.selectProfile(rest)
	case "new":
		a.showProfileForm()
	case "delete":
		if rest == "" {
			return fmt.Errorf("usage: delete <id|name>")
		}
		a.deleteProfile(rest)
	case "upload", "add":
		if rest == "" {
			return fmt.Errorf("usage: upload <path> [path...]")
		}
		a.uploadFiles(rest)
	case "rm":
		if rest == "" {
			return fmt.Errorf("usage: rm <file id>")
		}
		a.deleteFile(rest)
	case "transcribe":
		if rest == "" {
			a.transcribeAll()
		} else {
			a.transcribeFile(rest)
		}
	case "say", "chat":
		if rest == "" {
			// bare "chat" opens the page
			if name == "chat" {
				a.Navigate(nav.PageChat)
				return nil
			}
			return fmt.Errorf("usage: say <message>")
		}
		a.sendMessage(rest)
	case "persona":
		a.buildPersona()
	case "summary":
		a.chatSummary()
	case "clear":
		a.clearChat()
	default:
		if n, err := strconv.Atoi(name); err == nil {
			if n < 1 || n > len(nav.Pages) {
				return fmt.Errorf("%w: %s", errUnknownCommand, name)
			}
			a.Navigate(nav.Pages[n-1])
			return nil
		}
		if _, ok := nav.ParsePage(name); !ok {
			return fmt.Errorf("%w: %s", errUnknownCommand, name)
		}
		a.Go("navigate", func() {
			out, err := a.navigator.Command(a.ctx, name)
			a.afterNavigation(out, err)
		})
	}
	return nil
}

func (a *App) setTTS(arg string) error {
	on, err := parseToggle(arg, a.Preferences().TTSEnabled)
	if err != nil {
		return fmt.Errorf("usage: tts on|off")
	}
	a.UpdatePreferences(a.ctx, func(p *config.Preferences) { p.TTSEnabled = on })
	if on {
		a.errorHandler.ShowInfo(a.ctx, "Voice replies on")
	} else {
		a.errorHandler.ShowInfo(a.ctx, "Voice replies off")
	}
	return nil
}

// setNotify toggles info and success messages. The "off" confirmation is
// shown before muting so the user still sees it.
func (a *App) setNotify(arg string) error {
	on, err := parseToggle(arg, a.Preferences().Notifications)
	if err != nil {
		return fmt.Errorf("usage: notify on|off")
	}
	if !on {
		a.errorHandler.ShowInfo(a.ctx, "Notifications off")
	}
	a.UpdatePreferences(a.ctx, func(p *config.Preferences) { p.Notifications = on })
	if on {
		a.errorHandler.ShowInfo(a.ctx, "Notifications on")
	}
	return nil
}

// parseToggle reads on/off; an empty argument flips current.
func parseToggle(arg string, current bool) (bool, error) {
	switch strings.ToLower(arg) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	case "":
		return !current, nil
	}
	return false, errUnknownCommand
}

// generateCommandSuggestion completes the first word of buffer when exactly
// one command starts with it.
func (a *App) generateCommandSuggestion(buffer string) string {
	if buffer == "" || strings.Contains(buffer, " ") {
		return ""
	}
	lower := strings.ToLower(buffer)
	var matches []string
	for _, c := range commandNames {
		if strings.HasPrefix(c, lower) {
			matches = append(matches, c)
		}
	}
	if len(matches) != 1 {
		return ""
	}
	return matches[0]
}

// availableThemes is used by the help screen.
func (a *App) availableThemes() string {
	names := a.themes.ListAvailableThemes()
	sort.Strings(names)
	return strings.Join(names, ", ")
}
