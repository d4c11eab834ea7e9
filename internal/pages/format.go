package pages

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ajramos/evtui/internal/api"
	"github.com/ajramos/evtui/internal/render"
	"github.com/ajramos/evtui/internal/tasks"
)

const (
	noProfileText = "Select a profile first (press 2)"
	barWidth      = 30
)

func formatProfiles(items []api.Profile, width int) string {
	lines := make([]string, 0, len(items))
	for _, p := range items {
		label := p.Name
		if p.Relationship != "" {
			label += " (" + p.Relationship + ")"
		}
		lines = append(lines, fmt.Sprintf("%4d  %s  %d files, %d chats",
			p.ID, render.FitWidth(render.Sanitize(label), width), p.FileCount, p.ConversationCount))
	}
	return strings.Join(lines, "\n")
}

func formatRecentProfiles(items []api.Profile, width int) string {
	sorted := append([]api.Profile(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt > sorted[j].CreatedAt })
	if len(sorted) > 5 {
		sorted = sorted[:5]
	}
	now := time.Now()
	lines := make([]string, 0, len(sorted))
	for _, p := range sorted {
		when := ""
		if ts, ok := render.ParseTimestamp(p.CreatedAt); ok {
			when = render.RelativeTime(ts, now)
		}
		lines = append(lines, render.FitWidth(render.Sanitize(p.Name), width)+"  "+when)
	}
	return strings.Join(lines, "\n")
}

func formatProfileDetail(p api.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", render.Sanitize(p.Name))
	if p.Relationship != "" {
		fmt.Fprintf(&b, "Relationship: %s\n", render.Sanitize(p.Relationship))
	}
	fmt.Fprintf(&b, "Files:        %d\n", p.FileCount)
	fmt.Fprintf(&b, "Chats:        %d\n", p.ConversationCount)
	if p.CreatedAt != "" {
		fmt.Fprintf(&b, "Created:      %s\n", p.CreatedAt)
	}
	if p.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", render.Wrap(render.Sanitize(p.Description), 60))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatStats(s *api.DashboardStats) string {
	return fmt.Sprintf("Profiles:       %d\nMemories:       %d files\nConversations:  %d\nAudio:          %.1f hours",
		s.ProfilesCount, s.FilesCount, s.ConversationsCount, s.MemoryHours)
}

func formatFiles(items []api.UploadedFile, width int) string {
	lines := make([]string, 0, len(items))
	for _, f := range items {
		state := "pending"
		if f.Processed {
			state = "transcribed"
		}
		lines = append(lines, fmt.Sprintf("%4d  %s  %-6s %9s  %s",
			f.ID, render.FitWidth(render.Sanitize(f.Filename), width), f.FileType, render.HumanSize(f.FileSize), state))
	}
	return strings.Join(lines, "\n")
}

func formatProgress(title string, u tasks.Update) string {
	msg := u.Message
	if msg == "" {
		msg = u.StepLabel
	}
	return fmt.Sprintf("%s: %s\n%s %3.0f%%\n%s",
		title, u.StepLabel, render.ProgressBar(u.Progress, barWidth), u.Progress, render.Sanitize(msg))
}

func formatTranscriptions(items []api.Transcription) string {
	if len(items) == 0 {
		return "No transcriptions yet. Press t to transcribe all files."
	}
	var b strings.Builder
	for i, t := range items {
		if i > 0 {
			b.WriteString("\n\n")
		}
		text := t.CleanedText
		if text == "" {
			text = t.OriginalText
		}
		fmt.Fprintf(&b, "File %d  (%.0f%% confidence, %s)\n%s",
			t.FileID, t.Confidence*100, t.TranscriptionMethod, render.Wrap(render.Sanitize(text), 80))
	}
	return b.String()
}

func formatChat(entries []api.ChatEntry, name string) string {
	if len(entries) == 0 {
		return "No messages yet. Say hello."
	}
	if name == "" {
		name = "Them"
	}
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "You: %s\n%s: %s", render.Sanitize(e.UserMessage), render.Sanitize(name), render.Wrap(render.Sanitize(e.AIResponse), 80))
	}
	return b.String()
}

// formatKV prints a loosely typed backend object with sorted keys.
func formatKV(title string, m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(title)
	for _, k := range keys {
		label := strings.ReplaceAll(k, "_", " ")
		fmt.Fprintf(&b, "\n%s: %s", label, render.Sanitize(fmt.Sprint(m[k])))
	}
	return b.String()
}

func formatEmotions(e api.EmotionAnalysis) string {
	if len(e.Distribution) == 0 {
		return "No emotion data yet"
	}
	type share struct {
		name string
		pct  float64
	}
	shares := make([]share, 0, len(e.Distribution))
	for name, pct := range e.Distribution {
		shares = append(shares, share{name, pct})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].pct != shares[j].pct {
			return shares[i].pct > shares[j].pct
		}
		return shares[i].name < shares[j].name
	})
	var b strings.Builder
	fmt.Fprintf(&b, "Primary: %s (%d emotions)\n", e.PrimaryEmotion, e.EmotionDiversity)
	for _, s := range shares {
		fmt.Fprintf(&b, "\n%s %s %5.1f%%", render.FitWidth(s.name, 10), render.ProgressBar(s.pct, 20), s.pct)
	}
	return b.String()
}

func formatWords(w api.WordAnalysis) string {
	type count struct {
		word string
		n    int
	}
	counts := make([]count, 0, len(w.WordFrequency))
	for word, n := range w.WordFrequency {
		counts = append(counts, count{word, n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].n != counts[j].n {
			return counts[i].n > counts[j].n
		}
		return counts[i].word < counts[j].word
	})
	if len(counts) > 10 {
		counts = counts[:10]
	}
	st := w.TextStatistics
	var b strings.Builder
	fmt.Fprintf(&b, "Words: %d (%d unique, diversity %.2f, avg length %.1f)\n",
		st.TotalWords, st.UniqueWords, st.VocabularyDiversity, st.AverageWordLength)
	for _, c := range counts {
		fmt.Fprintf(&b, "\n%s %d", render.FitWidth(render.Sanitize(c.word), 16), c.n)
	}
	return b.String()
}
