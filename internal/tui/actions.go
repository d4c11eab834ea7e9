package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ajramos/evtui/internal/api"
	"github.com/ajramos/evtui/internal/nav"
	"github.com/ajramos/evtui/internal/services"
	"github.com/mitchellh/go-homedir"
)

// onPage runs fn in the background with the lifetime of page, navigating
// there first when another page is shown. fn is skipped when the navigation
// is dropped or fails.
func (a *App) onPage(page nav.Page, scope string, fn func(ctx context.Context)) {
	a.Go(scope, func() {
		if a.navigator.Current() != page || a.shownPage() != page {
			out, err := a.navigator.NavigateTo(a.ctx, page, true)
			if err != nil {
				a.ReportError(a.ctx, err)
				return
			}
			if out != nav.OutcomeCompleted && out != nav.OutcomeUnchanged {
				a.logf("app: %s skipped, navigation %s", scope, out)
				return
			}
		}
		fn(a.navigator.Lifetime())
	})
}

// goBack and goForward walk the history.
func (a *App) goBack() {
	a.Go("navigate", func() {
		out, err := a.navigator.Back(a.ctx)
		a.afterNavigation(out, err)
	})
}

func (a *App) goForward() {
	a.Go("navigate", func() {
		out, err := a.navigator.Forward(a.ctx)
		a.afterNavigation(out, err)
	})
}

// refreshPage reloads the module of the page on screen.
func (a *App) refreshPage() {
	page := a.shownPage()
	if page == "" {
		page = a.navigator.Current()
	}
	m, ok := a.modules.Map()[page]
	if !ok {
		return
	}
	a.Go("refresh", func() {
		ctx := a.navigator.Lifetime()
		var err error
		if r, ok := m.(nav.Refresher); ok {
			err = r.Refresh(ctx)
		} else {
			err = m.Initialize(ctx)
		}
		if err != nil {
			a.ReportError(ctx, err)
		}
	})
}

// resolveProfile turns an id or a (case-insensitive, possibly partial)
// name into a profile id using the cached list.
func (a *App) resolveProfile(input string) (int64, error) {
	input = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), "#"))
	if input == "" {
		return 0, fmt.Errorf("empty profile: %w", services.ErrInvalidInput)
	}
	if id, err := strconv.ParseInt(input, 10, 64); err == nil {
		return id, nil
	}
	lower := strings.ToLower(input)
	if p, ok := a.deps.Profiles.Find(func(p api.Profile) bool { return strings.ToLower(p.Name) == lower }); ok {
		return p.ID, nil
	}
	var matches []api.Profile
	for _, p := range a.deps.Profiles.Items() {
		if strings.HasPrefix(strings.ToLower(p.Name), lower) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0].ID, nil
	case 0:
		return 0, fmt.Errorf("profile %q: %w", input, services.ErrNotFound)
	default:
		return 0, fmt.Errorf("profile %q is ambiguous (%d matches): %w", input, len(matches), services.ErrInvalidInput)
	}
}

func (a *App) selectProfile(input string) {
	id, err := a.resolveProfile(input)
	if err != nil {
		a.ReportError(a.ctx, err)
		return
	}
	a.Go("profile-select", func() {
		_ = a.modules.Profiles.Select(a.ctx, id)
	})
}

func (a *App) deleteProfile(input string) {
	id, err := a.resolveProfile(input)
	if err != nil {
		a.ReportError(a.ctx, err)
		return
	}
	a.onPage(nav.PageProfiles, "profile-delete", func(ctx context.Context) {
		_, _ = a.modules.Profiles.Delete(ctx, id)
	})
}

// splitPaths accepts comma or whitespace separated paths.
func splitPaths(input string) []string {
	return strings.FieldsFunc(input, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
}

func expandHome(path string) string {
	if expanded, err := homedir.Expand(path); err == nil {
		return expanded
	}
	return path
}

func (a *App) uploadFiles(input string) {
	paths := splitPaths(input)
	for i, p := range paths {
		paths[i] = expandHome(p)
	}
	a.onPage(nav.PageUpload, "upload", func(ctx context.Context) {
		_, _ = a.modules.Upload.Upload(ctx, paths)
	})
}

func parseID(input string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(input), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%q is not an id: %w", input, services.ErrInvalidInput)
	}
	return id, nil
}

func (a *App) deleteFile(input string) {
	id, err := parseID(input)
	if err != nil {
		a.ReportError(a.ctx, err)
		return
	}
	a.onPage(nav.PageUpload, "file-delete", func(ctx context.Context) {
		_, _ = a.modules.Upload.DeleteFile(ctx, id)
	})
}

func (a *App) transcribeFile(input string) {
	id, err := parseID(input)
	if err != nil {
		a.ReportError(a.ctx, err)
		return
	}
	a.onPage(nav.PageUpload, "transcribe", func(ctx context.Context) {
		_, _ = a.modules.Upload.TranscribeFile(ctx, id)
	})
}

func (a *App) transcribeAll() {
	a.onPage(nav.PageTranscription, "transcribe-all", func(ctx context.Context) {
		_, _ = a.modules.Transcription.TranscribeAll(ctx)
	})
}

func (a *App) sendMessage(text string) {
	a.onPage(nav.PageChat, "chat-send", func(ctx context.Context) {
		if _, err := a.modules.Chat.Send(ctx, text); err != nil {
			a.ReportError(ctx, err)
		}
	})
}

func (a *App) buildPersona() {
	a.onPage(nav.PageChat, "chat-persona", func(ctx context.Context) {
		_ = a.modules.Chat.BuildPersona(ctx)
	})
}

func (a *App) chatSummary() {
	a.onPage(nav.PageChat, "chat-summary", func(ctx context.Context) {
		_ = a.modules.Chat.Summary(ctx)
	})
}

func (a *App) clearChat() {
	a.onPage(nav.PageChat, "chat-clear", func(ctx context.Context) {
		_, _ = a.modules.Chat.Clear(ctx)
	})
}
