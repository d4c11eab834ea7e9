package tui

import (
	"github.com/ajramos/evtui/internal/config"
	"github.com/rivo/tview"
)

// ConfigureInputFieldTheme applies the theme to prompt inputs.
func (a *App) ConfigureInputFieldTheme(field *tview.InputField) *tview.InputField {
	c := a.theme()
	field.SetFieldBackgroundColor(c.Frame.BorderColor.Color()).
		SetFieldTextColor(c.Body.FgColor.Color()).
		SetLabelColor(c.Header.TitleColor.Color()).
		SetPlaceholderTextColor(c.Header.BreadcrumbColor.Color())
	a.styleFrame(field.Box, c)
	return field
}

// ConfigureFormTheme applies the theme to dialogs built with tview.Form.
func (a *App) ConfigureFormTheme(form *tview.Form) *tview.Form {
	c := a.theme()
	form.SetFieldBackgroundColor(c.Frame.BorderColor.Color()).
		SetFieldTextColor(c.Body.FgColor.Color()).
		SetLabelColor(c.Header.TitleColor.Color()).
		SetButtonBackgroundColor(c.Frame.FocusColor.Color()).
		SetButtonTextColor(c.Body.FgColor.Color())
	a.styleFrame(form.Box, c)
	return form
}

func (a *App) styleFrame(box *tview.Box, c *config.ColorsConfig) {
	box.SetBackgroundColor(c.Body.BgColor.Color())
	box.SetBorderColor(c.Frame.FocusColor.Color())
	box.SetTitleColor(c.Frame.TitleColor.Color())
}
