package tui

import (
	"context"
	"fmt"

	"github.com/ajramos/evtui/internal/nav"
	"github.com/ajramos/evtui/internal/view"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// stage implements nav.Stage on top of the page body.
type stage struct {
	app *App
}

func (s *stage) ShowLoading(page nav.Page) {
	a := s.app
	a.setShown("")
	a.SetState(StatePatch{IsLoading: ptr(true)})
	meta, _ := nav.MetaFor(page)
	a.dispatch(func() {
		a.setBody(a.messageView(fmt.Sprintf("Loading %s...", tview.Escape(meta.Title))), nil)
	})
}

// ShowError drops the page's regions and shows a generic error with a way
// back to the dashboard.
func (s *stage) ShowError(page nav.Page, err error) {
	a := s.app
	a.regions.Reset()
	a.setShown("")
	a.setPageHint(fmt.Sprintf("enter or %s dashboard", a.pageKey(nav.PageDashboard)))
	a.SetState(StatePatch{IsLoading: ptr(false)})

	meta, _ := nav.MetaFor(page)
	title := meta.Title
	if title == "" {
		title = string(page)
	}
	text := fmt.Sprintf("[%s::b]Could not open %s[-::-]\n\n%s\n\nPress Enter to return to the dashboard.",
		a.theme().Status.ErrorColor, tview.Escape(title), tview.Escape(err.Error()))
	a.dispatch(func() {
		tv := a.messageView(text)
		tv.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
			if ev.Key() == tcell.KeyEnter {
				a.Navigate(nav.PageDashboard)
				return nil
			}
			return ev
		})
		a.setBody(tv, nil)
	})
}

// Swap builds one text view per template region, mounts the regions in
// their placeholder state and puts the layout on screen.
func (s *stage) Swap(ctx context.Context, page nav.Page, tpl *nav.Template) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tpl == nil || len(tpl.Regions) == 0 {
		return fmt.Errorf("%w: no regions for %s", view.ErrRenderFailure, page)
	}
	a := s.app
	colors := a.theme()

	flex := tview.NewFlex().SetDirection(tview.FlexRow)
	if tpl.Layout == "columns" {
		flex.SetDirection(tview.FlexColumn)
	}
	flex.SetBackgroundColor(colors.Body.BgColor.Color())

	type mounted struct {
		region      *view.Region
		placeholder string
	}
	regions := make([]mounted, 0, len(tpl.Regions))
	var focus tview.Primitive
	for _, spec := range tpl.Regions {
		tv := tview.NewTextView().SetWrap(true).SetScrollable(true)
		tv.SetBackgroundColor(colors.Body.BgColor.Color())
		tv.SetTextColor(colors.Body.FgColor.Color())
		if a.cfg.Layout.ShowBorders {
			tv.SetBorder(true).
				SetBorderColor(colors.Frame.BorderColor.Color()).
				SetTitle(" " + spec.Title + " ").
				SetTitleColor(colors.Frame.TitleColor.Color())
		}
		if spec.Focus && focus == nil {
			focus = tv
			tv.SetBorderColor(colors.Frame.FocusColor.Color())
		}
		proportion := spec.Proportion
		if proportion <= 0 {
			proportion = 1
		}
		flex.AddItem(tv, 0, proportion, spec.Focus)

		placeholder := spec.Placeholder
		if placeholder == "" {
			placeholder = "Loading..."
		}
		regions = append(regions, mounted{
			region:      view.NewRegion(spec.Name, view.NewTextSurface(tv, a.dispatch)),
			placeholder: placeholder,
		})
	}

	a.regions.Reset()
	for _, m := range regions {
		a.regions.Mount(m.region)
		if err := m.region.SetLoading(m.placeholder); err != nil {
			return err
		}
	}
	a.setPageHint(tpl.Hint)
	a.dispatch(func() { a.setBody(flex, focus) })
	a.setShown(page)
	a.SetState(StatePatch{IsLoading: ptr(false)})
	return nil
}

func (s *stage) Highlight(page nav.Page, meta nav.Meta) {
	a := s.app
	a.mu.Lock()
	a.highlighted = page
	a.meta = meta
	a.mu.Unlock()
	a.refreshChrome()
}

func (a *App) setShown(page nav.Page) {
	a.mu.Lock()
	a.shown = page
	a.mu.Unlock()
}

// shownPage returns the page whose regions are on screen.
func (a *App) shownPage() nav.Page {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.shown
}
