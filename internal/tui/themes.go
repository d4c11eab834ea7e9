package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/ajramos/evtui/internal/bus"
	"github.com/ajramos/evtui/internal/config"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const themePickerPage = "themes"

// theme returns the active colors
func (a *App) theme() *config.ColorsConfig {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.colors
}

// applyTheme loads the named theme and restyles the chrome. Pages pick the
// new colors up on their next swap.
func (a *App) applyTheme(name string) error {
	colors, err := a.themes.Load(name)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.colors = colors
	a.mu.Unlock()

	a.dispatch(func() { a.styleChrome(colors) })
	a.bus.Emit(bus.ThemeChanged, name, colors)
	a.refreshChrome()
	a.logf("app: theme %s applied", name)
	return nil
}

// SetTheme applies a theme and remembers it in the preferences.
func (a *App) SetTheme(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if err := a.applyTheme(name); err != nil {
		return err
	}
	a.UpdatePreferences(ctx, func(p *config.Preferences) { p.Theme = name })
	return nil
}

func (a *App) styleChrome(c *config.ColorsConfig) {
	bg, fg := c.Body.BgColor.Color(), c.Body.FgColor.Color()
	tview.Styles.PrimitiveBackgroundColor = bg
	tview.Styles.PrimaryTextColor = fg
	tview.Styles.BorderColor = c.Frame.BorderColor.Color()
	tview.Styles.TitleColor = c.Frame.TitleColor.Color()

	a.main.SetBackgroundColor(bg)
	a.body.SetBackgroundColor(bg)
	a.header.SetBackgroundColor(bg)
	a.header.SetTextColor(fg)
	a.hint.SetBackgroundColor(bg)
	a.status.SetBackgroundColor(bg)
	a.status.SetTextColor(fg)
	a.cmdBar.SetBackgroundColor(bg)
	a.cmdBar.SetFieldBackgroundColor(bg)
	a.cmdBar.SetFieldTextColor(fg)
	a.cmdBar.SetLabelColor(c.Header.TitleColor.Color())
}

// openThemePicker lists the available themes; Enter applies the selection.
func (a *App) openThemePicker() {
	current := a.Preferences().Theme
	list := tview.NewList().ShowSecondaryText(false)
	list.SetBorder(true).SetTitle(" Themes ")
	for _, name := range a.themes.ListAvailableThemes() {
		themeName := name
		label := "○ " + name
		if name == current {
			label = "● " + name
		}
		list.AddItem(label, "", 0, func() {
			a.closeModal(themePickerPage)
			if err := a.SetTheme(a.ctx, themeName); err != nil {
				a.errorHandler.ShowError(a.ctx, fmt.Sprintf("Theme %s: %v", themeName, err))
				return
			}
			a.errorHandler.ShowSuccess(a.ctx, "Theme: "+themeName)
		})
	}
	list.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyEscape {
			a.closeModal(themePickerPage)
			return nil
		}
		return ev
	})
	a.showModal(themePickerPage, list, 30, list.GetItemCount()+2)
}
