package tui

import (
	"strings"

	"github.com/ajramos/evtui/internal/api"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	promptPage      = "prompt"
	profileFormPage = "profile-form"
)

// promptInput asks for one line of text. onSubmit runs on the event loop
// with the trimmed text; empty input cancels.
func (a *App) promptInput(title, label string, onSubmit func(text string)) {
	input := a.ConfigureInputFieldTheme(tview.NewInputField().SetLabel(label).SetFieldWidth(0))
	input.SetBorder(true).SetTitle(" " + title + " ")
	input.SetDoneFunc(func(key tcell.Key) {
		text := strings.TrimSpace(input.GetText())
		a.closeModal(promptPage)
		if key == tcell.KeyEnter && text != "" {
			onSubmit(text)
		}
	})
	a.showModal(promptPage, input, 70, 3)
}

// showProfileForm collects a new profile and creates it in the background.
func (a *App) showProfileForm() {
	form := tview.NewForm()
	form.AddInputField("Name", "", 40, nil, nil).
		AddInputField("Relationship", "", 40, nil, nil).
		AddTextArea("Description", "", 40, 3, 0, nil).
		AddCheckbox("Consent given", false, nil)
	form.AddButton("Save", func() {
		in := api.ProfileInput{
			Name:         form.GetFormItemByLabel("Name").(*tview.InputField).GetText(),
			Relationship: form.GetFormItemByLabel("Relationship").(*tview.InputField).GetText(),
			Description:  form.GetFormItemByLabel("Description").(*tview.TextArea).GetText(),
			ConsentGiven: form.GetFormItemByLabel("Consent given").(*tview.Checkbox).IsChecked(),
		}
		a.closeModal(profileFormPage)
		a.Go("profile-create", func() {
			_, _ = a.modules.Profiles.Create(a.navigator.Lifetime(), in)
		})
	})
	form.AddButton("Cancel", func() { a.closeModal(profileFormPage) })
	form.SetCancelFunc(func() { a.closeModal(profileFormPage) })
	a.ConfigureFormTheme(form).SetBorder(true).SetTitle(" New profile ")
	a.showModal(profileFormPage, form, 60, 15)
}
