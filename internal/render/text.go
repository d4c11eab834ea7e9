package render

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/tview"
)

// Sanitize prepares server text for a terminal cell grid: zero-width runes
// and control characters are dropped, typographic punctuation is flattened
// and tview style tags are escaped.
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\u00A0', '\u202F':
			b.WriteRune(' ')
		case '\u200B', '\u200C', '\u200D', '\uFEFF', '\u2060', '\u00AD':
			// drop
		case '\u2013', '\u2014':
			b.WriteRune('-')
		case '\u2018', '\u2019':
			b.WriteRune('\'')
		case '\u201C', '\u201D':
			b.WriteRune('"')
		case '\u2026':
			b.WriteString("...")
		default:
			if unicode.IsControl(r) && r != '\n' && r != '\t' {
				continue
			}
			b.WriteRune(r)
		}
	}
	out := strings.ReplaceAll(b.String(), "\r", "")
	for strings.Contains(out, "\n\n\n") {
		out = strings.ReplaceAll(out, "\n\n\n", "\n\n")
	}
	return tview.Escape(out)
}

// Truncate cuts s to width display cells, ending with an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}

// FitWidth truncates and pads on the right to exactly width cells
func FitWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = runewidth.Truncate(s, width, "...")
	if pad := width - runewidth.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// RightFit truncates from the left and right-aligns to width
func RightFit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if over := runewidth.StringWidth(s) - width; over > 0 {
		s = runewidth.TruncateLeft(s, over, "")
	}
	if pad := width - runewidth.StringWidth(s); pad > 0 {
		s = strings.Repeat(" ", pad) + s
	}
	return s
}

// Wrap breaks text into lines of at most width cells, keeping existing line
// breaks and "> " quote prefixes. Words longer than a line are hard cut.
func Wrap(input string, width int) string {
	if width <= 0 {
		return input
	}
	lines := strings.Split(strings.ReplaceAll(input, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		prefix := ""
		rest := line
		for strings.HasPrefix(rest, "> ") {
			prefix += "> "
			rest = strings.TrimPrefix(rest, "> ")
		}
		words := strings.Fields(rest)
		if len(words) == 0 {
			out = append(out, strings.TrimRight(prefix, " "))
			continue
		}
		cur := prefix
		for _, w := range words {
			for runewidth.StringWidth(prefix)+runewidth.StringWidth(w) > width {
				if cur != prefix {
					out = append(out, cur)
					cur = prefix
				}
				room := width - runewidth.StringWidth(prefix)
				if room <= 0 {
					break
				}
				head := runewidth.Truncate(w, room, "")
				if head == "" {
					break
				}
				out = append(out, prefix+head)
				w = strings.TrimPrefix(w, head)
			}
			if w == "" {
				continue
			}
			switch {
			case cur == prefix:
				cur += w
			case runewidth.StringWidth(cur)+1+runewidth.StringWidth(w) <= width:
				cur += " " + w
			default:
				out = append(out, cur)
				cur = prefix + w
			}
		}
		if cur != prefix {
			out = append(out, cur)
		}
	}
	return strings.Join(out, "\n")
}

// ProgressBar draws pct (0-100) as a bar of width cells.
func ProgressBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / 100 * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// RelativeTime formats date relative to now: "now", "5m", "3h", "2d", "Jan 2".
func RelativeTime(date, now time.Time) string {
	diff := now.Sub(date)
	switch {
	case diff < time.Minute:
		return "now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(diff.Hours()/24))
	default:
		return date.Format("Jan 2")
	}
}

// ParseTimestamp reads the backend's ISO timestamps, with or without a zone.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// HumanSize formats a byte count.
func HumanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
