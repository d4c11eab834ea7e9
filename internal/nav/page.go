package nav

import (
	"context"
	"strings"
)

// Page identifies a top-level section of the client
type Page string

const (
	PageDashboard     Page = "dashboard"
	PageProfiles      Page = "profiles"
	PageUpload        Page = "upload"
	PageTranscription Page = "transcription"
	PageChat          Page = "chat"
	PageAnalytics     Page = "analytics"
)

// Pages lists every known page in menu order.
var Pages = []Page{PageDashboard, PageProfiles, PageUpload, PageTranscription, PageChat, PageAnalytics}

// EagerPages are the templates fetched at startup.
var EagerPages = []Page{PageDashboard, PageProfiles, PageUpload, PageChat}

// Meta is the static header information of a page
type Meta struct {
	Title       string
	Breadcrumbs []string
}

var metaTable = map[Page]Meta{
	PageDashboard:     {Title: "Dashboard", Breadcrumbs: []string{"Home"}},
	PageProfiles:      {Title: "Memory Profiles", Breadcrumbs: []string{"Home", "Profiles"}},
	PageUpload:        {Title: "Upload Memories", Breadcrumbs: []string{"Home", "Upload"}},
	PageTranscription: {Title: "Transcriptions", Breadcrumbs: []string{"Home", "Upload", "Transcription"}},
	PageChat:          {Title: "Chat", Breadcrumbs: []string{"Home", "Chat"}},
	PageAnalytics:     {Title: "Analytics", Breadcrumbs: []string{"Home", "Analytics"}},
}

// MetaFor returns the header information of p.
func MetaFor(p Page) (Meta, bool) {
	m, ok := metaTable[p]
	return m, ok
}

// Known reports whether p is one of Pages.
func (p Page) Known() bool {
	_, ok := metaTable[p]
	return ok
}

func (p Page) String() string { return string(p) }

// ParsePage accepts "profiles", "#profiles", ":profiles" and "/profiles".
func ParsePage(s string) (Page, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimLeft(s, "#:/")
	p := Page(s)
	return p, p.Known()
}

// Module is the lifecycle of a page section. Initialize runs on the first
// visit; later visits call Refresh when the module implements Refresher, and
// Initialize again otherwise.
type Module interface {
	Initialize(ctx context.Context) error
}

// Refresher is implemented by modules that can reload without rebuilding.
type Refresher interface {
	Refresh(ctx context.Context) error
}
