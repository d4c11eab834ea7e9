package tui

import (
	"context"

	"github.com/rivo/tview"
)

const confirmPage = "confirm"

// modalConfirmer asks yes/no questions in a dialog. Confirm blocks until
// the user answers, so it must not run on the event loop.
type modalConfirmer struct {
	app *App
}

func (m *modalConfirmer) Confirm(ctx context.Context, question string) bool {
	a := m.app
	answer := make(chan bool, 1)
	a.dispatch(func() {
		modal := tview.NewModal().
			SetText(question).
			AddButtons([]string{"Yes", "No"}).
			SetDoneFunc(func(_ int, label string) {
				a.closeModal(confirmPage)
				select {
				case answer <- label == "Yes":
				default:
				}
			})
		a.root.AddPage(confirmPage, modal, true, true)
		a.SetFocus(modal)
	})

	select {
	case ok := <-answer:
		return ok
	case <-ctx.Done():
		a.dispatch(func() { a.closeModal(confirmPage) })
		return false
	}
}
