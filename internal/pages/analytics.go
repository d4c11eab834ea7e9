package pages

import (
	"context"

	"github.com/ajramos/evtui/internal/api"
)

// Analytics page regions
const (
	RegionAnalyticsEmotions = "analytics-emotions"
	RegionAnalyticsWords    = "analytics-words"
)

// Analytics draws the visualization data of the active profile.
type Analytics struct {
	d *Deps
}

// NewAnalytics creates the analytics module.
func NewAnalytics(d *Deps) *Analytics {
	return &Analytics{d: d}
}

func (a *Analytics) Initialize(ctx context.Context) error {
	id, ok := a.d.activeProfile()
	if !ok {
		a.d.write(RegionAnalyticsEmotions, noProfileText)
		a.d.write(RegionAnalyticsWords, "")
		return nil
	}
	a.d.loading(RegionAnalyticsEmotions, "Analyzing...")
	a.d.loading(RegionAnalyticsWords, "")
	a.d.spawn(func() {
		v, err := a.d.Analytics.Visualization(ctx, id)
		if err != nil {
			a.d.logf("analytics: %v", err)
			a.d.write(RegionAnalyticsEmotions, "Analytics unavailable: "+api.UserMessage(err))
			a.d.write(RegionAnalyticsWords, "")
			return
		}
		a.d.write(RegionAnalyticsEmotions, formatEmotions(v.EmotionAnalysis))
		words := formatWords(v.WordAnalysis)
		if len(v.SummaryStats) > 0 {
			words += "\n\n" + formatKV("Summary", v.SummaryStats)
		}
		a.d.write(RegionAnalyticsWords, words)
	})
	return nil
}
