package tui

import (
	"fmt"
	"strings"

	"github.com/ajramos/evtui/internal/nav"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const helpPage = "help"

// bindKeys installs the global key handler.
func (a *App) bindKeys() {
	a.SetInputCapture(a.handleKey)
}

// keyMatches reports whether ev is the configured binding. Bindings are a
// single character ("q") or a tcell key name ("F1", "Ctrl+R").
func keyMatches(ev *tcell.EventKey, binding string) bool {
	if binding == "" {
		return false
	}
	if r := []rune(binding); len(r) == 1 {
		return ev.Key() == tcell.KeyRune && ev.Rune() == r[0]
	}
	return strings.EqualFold(ev.Name(), binding)
}

// handleKey routes global shortcuts first and then the keys of the page on
// screen. Dialogs and the command bar get every key untouched.
func (a *App) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	if a.cmdMode || a.modalOpen() {
		return ev
	}
	if ev.Key() == tcell.KeyCtrlC {
		a.Stop()
		return nil
	}

	switch {
	case keyMatches(ev, a.Keys.Quit):
		a.Stop()
		return nil
	case keyMatches(ev, a.Keys.CommandMode):
		a.showCommandBar()
		return nil
	case keyMatches(ev, a.Keys.Help):
		a.showHelp()
		return nil
	case keyMatches(ev, a.Keys.Back):
		a.goBack()
		return nil
	case keyMatches(ev, a.Keys.Forward):
		a.goForward()
		return nil
	case keyMatches(ev, a.Keys.Refresh):
		a.refreshPage()
		return nil
	}
	for _, p := range nav.Pages {
		if keyMatches(ev, a.pageKey(p)) {
			a.Navigate(p)
			return nil
		}
	}

	if ev.Key() != tcell.KeyRune && ev.Key() != tcell.KeyEnter {
		return ev
	}
	if a.handlePageKey(a.shownPage(), ev) {
		return nil
	}
	return ev
}

// handlePageKey runs the actions a page offers on single letters.
func (a *App) handlePageKey(page nav.Page, ev *tcell.EventKey) bool {
	r := ev.Rune()
	switch page {
	case nav.PageDashboard:
		switch r {
		case 'p':
			a.Navigate(nav.PageProfiles)
		case 'u':
			a.Navigate(nav.PageUpload)
		case 'c':
			a.Navigate(nav.PageChat)
		case 'a':
			a.Navigate(nav.PageAnalytics)
		default:
			return false
		}
	case nav.PageProfiles:
		switch {
		case r == 'n':
			a.showProfileForm()
		case r == 'd':
			a.promptInput("Delete profile", "Id or name: ", a.deleteProfile)
		case r == 's' || ev.Key() == tcell.KeyEnter:
			a.promptInput("Select profile", "Id or name: ", a.selectProfile)
		default:
			return false
		}
	case nav.PageUpload:
		switch r {
		case 'f':
			a.promptInput("Upload files", "Paths: ", a.uploadFiles)
		case 'x':
			a.promptInput("Delete file", "File id: ", a.deleteFile)
		case 't':
			a.promptInput("Transcribe file", "File id: ", a.transcribeFile)
		case 'T':
			a.transcribeAll()
		default:
			return false
		}
	case nav.PageTranscription:
		switch r {
		case 't':
			a.transcribeAll()
		case 'r':
			a.refreshPage()
		default:
			return false
		}
	case nav.PageChat:
		switch {
		case r == 'i' || ev.Key() == tcell.KeyEnter:
			a.promptInput("Message", "> ", a.sendMessage)
		case r == 'b':
			a.buildPersona()
		case r == 's':
			a.chatSummary()
		case r == 'x':
			a.clearChat()
		default:
			return false
		}
	case nav.PageAnalytics:
		if r != 'r' {
			return false
		}
		a.refreshPage()
	default:
		return false
	}
	return true
}

// pageKey is the binding that opens p.
func (a *App) pageKey(p nav.Page) string {
	switch p {
	case nav.PageDashboard:
		return a.Keys.Dashboard
	case nav.PageProfiles:
		return a.Keys.Profiles
	case nav.PageUpload:
		return a.Keys.Upload
	case nav.PageTranscription:
		return a.Keys.Transcription
	case nav.PageChat:
		return a.Keys.Chat
	case nav.PageAnalytics:
		return a.Keys.Analytics
	}
	return ""
}

// showHelp opens the shortcut reference.
func (a *App) showHelp() {
	tv := tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	tv.SetBorder(true).SetTitle(" Help ")
	tv.SetText(a.helpText())
	tv.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyEscape || keyMatches(ev, a.Keys.Help) || keyMatches(ev, a.Keys.Quit) {
			a.closeModal(helpPage)
			return nil
		}
		return ev
	})
	a.showModal(helpPage, tv, 72, 30)
}

func (a *App) helpText() string {
	var b strings.Builder
	b.WriteString("[::b]Global[::-]\n")
	fmt.Fprintf(&b, "  %-8s quit\n", a.Keys.Quit)
	fmt.Fprintf(&b, "  %-8s command bar\n", a.Keys.CommandMode)
	fmt.Fprintf(&b, "  %-8s back    %-8s forward\n", a.Keys.Back, a.Keys.Forward)
	fmt.Fprintf(&b, "  %-8s refresh the page\n", a.Keys.Refresh)
	for _, p := range nav.Pages {
		fmt.Fprintf(&b, "  %-8s %s\n", a.pageKey(p), menuLabel(p))
	}
	b.WriteString("\n[::b]Pages[::-]\n")
	b.WriteString("  Profiles       n new • s/enter select • d delete\n")
	b.WriteString("  Upload         f add files • t transcribe file • T transcribe all • x delete\n")
	b.WriteString("  Transcription  t transcribe all • r reload\n")
	b.WriteString("  Chat           i/enter message • b persona • s summary • x clear\n")
	b.WriteString("\n[::b]Commands[::-]\n")
	b.WriteString("  :select <id|name>   :new   :delete <id|name>\n")
	b.WriteString("  :upload <paths>     :rm <id>   :transcribe [id]\n")
	b.WriteString("  :say <message>      :persona   :summary   :clear\n")
	b.WriteString("  :theme [name]       :tts on|off   :notify on|off\n")
	b.WriteString("  :<page> or :<1-6>   :back   :forward   :refresh   :quit\n")
	if themes := a.availableThemes(); themes != "" {
		fmt.Fprintf(&b, "\nThemes: %s\n", tview.Escape(themes))
	}
	return b.String()
}
