package tui

import (
	"fmt"
	"strings"

	"github.com/ajramos/evtui/internal/api"
	"github.com/ajramos/evtui/internal/nav"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const mainPage = "main"

// initComponents builds the fixed chrome: header, page body, key hints,
// the command bar (collapsed) and the status bar.
func (a *App) initComponents() {
	a.header = tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	a.header.SetBorder(false)

	a.body = tview.NewFlex().SetDirection(tview.FlexRow)
	a.body.AddItem(a.createWelcomeView(), 0, 1, true)

	a.hint = tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	a.hint.SetTextColor(tcell.ColorGray)

	a.status = tview.NewTextView().SetDynamicColors(true).SetWrap(false)

	a.cmdBar = a.createCommandBar()

	a.main = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.header, 2, 0, false).
		AddItem(a.body, 0, 1, true).
		AddItem(a.hint, 1, 0, false).
		AddItem(a.cmdBar, 0, 0, false).
		AddItem(a.status, 1, 0, false)

	a.root = tview.NewPages().AddPage(mainPage, a.main, true, true)
}

// setBody replaces the page area. Focus moves to focus unless a dialog or
// the command bar holds it.
func (a *App) setBody(p tview.Primitive, focus tview.Primitive) {
	a.body.Clear()
	a.body.AddItem(p, 0, 1, true)
	if focus == nil {
		focus = p
	}
	if !a.cmdMode && !a.modalOpen() {
		a.SetFocus(focus)
	}
}

// messageView is a plain centered text used for loading and error screens.
func (a *App) messageView(text string) *tview.TextView {
	tv := tview.NewTextView().SetDynamicColors(true).SetWrap(true).SetTextAlign(tview.AlignCenter)
	tv.SetBorder(a.cfg.Layout.ShowBorders)
	colors := a.theme()
	tv.SetBackgroundColor(colors.Body.BgColor.Color())
	tv.SetTextColor(colors.Body.FgColor.Color())
	tv.SetBorderColor(colors.Frame.BorderColor.Color())
	tv.SetText("\n\n" + text)
	return tv
}

// refreshChrome redraws the header and the status bar baseline.
func (a *App) refreshChrome() {
	a.dispatch(func() {
		a.header.SetText(a.headerText())
		a.hint.SetText(a.hintText())
	})
	a.errorHandler.Refresh()
}

// headerText renders the page title, breadcrumbs, active profile and
// connectivity on the first line and the page menu on the second.
func (a *App) headerText() string {
	a.mu.RLock()
	meta := a.meta
	highlighted := a.highlighted
	st := a.state.clone()
	colors := a.colors
	a.mu.RUnlock()

	var b strings.Builder
	title := meta.Title
	if title == "" {
		title = "evtui"
	}
	fmt.Fprintf(&b, "[%s::b]%s[-::-]", colors.Header.TitleColor, tview.Escape(title))
	if a.cfg.Layout.ShowBreadcrumbs && len(meta.Breadcrumbs) > 0 {
		fmt.Fprintf(&b, "  [%s]%s[-]", colors.Header.BreadcrumbColor, tview.Escape(strings.Join(meta.Breadcrumbs, " › ")))
	}
	if name, ok := a.activeProfileName(st); ok {
		fmt.Fprintf(&b, "  • %s", tview.Escape(name))
	}
	if st.IsOnline {
		fmt.Fprintf(&b, "  [%s]● online[-]", colors.Header.ActiveColor)
	} else {
		fmt.Fprintf(&b, "  [%s]○ offline[-]", colors.Header.OfflineColor)
	}
	b.WriteString("\n")

	for i, p := range nav.Pages {
		if i > 0 {
			b.WriteString("  ")
		}
		label := fmt.Sprintf("%s %s", a.pageKey(p), menuLabel(p))
		if p == highlighted {
			fmt.Fprintf(&b, "[%s::b]%s[-::-]", colors.Header.ActiveColor, tview.Escape(label))
		} else {
			b.WriteString(tview.Escape(label))
		}
	}
	return b.String()
}

func (a *App) hintText() string {
	a.mu.RLock()
	hint := a.pageHint
	a.mu.RUnlock()
	if hint == "" {
		return ""
	}
	return tview.Escape(hint)
}

func (a *App) setPageHint(hint string) {
	a.mu.Lock()
	a.pageHint = hint
	a.mu.Unlock()
}

// activeProfileName looks the active profile up in the cached list, falling
// back to its id.
func (a *App) activeProfileName(st ApplicationState) (string, bool) {
	if st.ActiveProfile == nil {
		return "", false
	}
	id := *st.ActiveProfile
	if p, ok := a.deps.Profiles.Find(func(p api.Profile) bool { return p.ID == id }); ok {
		return p.Name, true
	}
	return fmt.Sprintf("profile #%d", id), true
}

// statusBaseline is the status bar text when no message is shown.
func (a *App) statusBaseline() string {
	base := fmt.Sprintf("evtui • %s help • %s commands • %s quit", a.Keys.Help, a.Keys.CommandMode, a.Keys.Quit)
	if a.State().IsLoading {
		return "Loading... • " + base
	}
	return base
}

func menuLabel(p nav.Page) string {
	s := string(p)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (a *App) modalOpen() bool {
	name, _ := a.root.GetFrontPage()
	return name != "" && name != mainPage
}

// showModal puts p above the page, centered in a width x height box.
func (a *App) showModal(name string, p tview.Primitive, width, height int) {
	box := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 0, true).
			AddItem(nil, 0, 1, false), width, 0, true).
		AddItem(nil, 0, 1, false)
	a.root.AddPage(name, box, true, true)
	a.SetFocus(p)
}

func (a *App) closeModal(name string) {
	if !a.root.HasPage(name) {
		return
	}
	a.root.RemovePage(name)
	if _, front := a.root.GetFrontPage(); front != nil {
		a.SetFocus(front)
	}
}
