package tui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

// createWelcomeView is the body shown before the first page finishes loading.
func (a *App) createWelcomeView() tview.Primitive {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetScrollable(true)
	tv.SetBorder(false)
	tv.SetText(a.buildWelcomeText())
	return tv
}

func (a *App) buildWelcomeText() string {
	var b strings.Builder
	b.WriteString("[yellow::b]evtui, your terminal for voice profiles[-::-]\n\n")
	b.WriteString("Upload recordings, transcribe them and chat with the persona they build.\n\n")
	if a.cfg != nil && a.cfg.API.BaseURL != "" {
		fmt.Fprintf(&b, "[green::b]Backend:[-::-] %s\n\n", tview.Escape(a.cfg.API.BaseURL))
	}
	b.WriteString("[white::b]Quick actions:[-::-]  " + a.getWelcomeShortcuts() + "\n\n")
	b.WriteString("Loading...\n")
	return b.String()
}

// getWelcomeShortcuts lists the main shortcuts with the configured keys,
// falling back to the defaults for unset bindings.
func (a *App) getWelcomeShortcuts() string {
	pick := func(key, fallback string) string {
		if key == "" {
			return fallback
		}
		return key
	}
	chips := []string{
		fmt.Sprintf("[%s Help]", pick(a.Keys.Help, "?")),
		fmt.Sprintf("[%s Profiles]", pick(a.Keys.Profiles, "2")),
		fmt.Sprintf("[%s Upload]", pick(a.Keys.Upload, "3")),
		fmt.Sprintf("[%s Commands]", pick(a.Keys.CommandMode, ":")),
		fmt.Sprintf("[%s Quit]", pick(a.Keys.Quit, "q")),
	}
	// chips are literal brackets, not color tags
	for i, c := range chips {
		chips[i] = tview.Escape(c)
	}
	return strings.Join(chips, "  ")
}
