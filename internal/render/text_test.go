package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	in := "Hi there\u200b \u201cquoted\u201d \u2014 ok\u2026\x07\r\n\n\n\nend [red]"
	got := Sanitize(in)

	assert.Equal(t, "Hi there \"quoted\" - ok...\n\nend [red[]", got)
	assert.Equal(t, "", Sanitize(""))
}

func TestTruncateAndFit(t *testing.T) {
	assert.Equal(t, "Alice", Truncate("Alice", 10))
	assert.Equal(t, "Grandma...", Truncate("Grandma Rose", 10))
	assert.Equal(t, "anything", Truncate("anything", 0))

	assert.Equal(t, "Bob       ", FitWidth("Bob", 10))
	assert.Equal(t, "", FitWidth("Bob", 0))
	assert.Equal(t, "   42", RightFit("42", 5))
	assert.Equal(t, "2345", RightFit("12345", 4))
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{name: "fits", in: "hello world", width: 20, want: "hello world"},
		{name: "breaks_on_words", in: "hello world foo", width: 11, want: "hello world\nfoo"},
		{name: "keeps_newlines", in: "a\n\nb", width: 5, want: "a\n\nb"},
		{name: "quote_prefix", in: "> one two three", width: 9, want: "> one two\n> three"},
		{name: "hard_cut", in: "abcdefghij", width: 4, want: "abcd\nefgh\nij"},
		{name: "no_width", in: "a b", width: 0, want: "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Wrap(tt.in, tt.width))
		})
	}
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░", ProgressBar(50, 10))
	assert.Equal(t, "░░░░", ProgressBar(-3, 4))
	assert.Equal(t, "████", ProgressBar(250, 4))
	assert.Equal(t, "", ProgressBar(10, 0))
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "now", RelativeTime(now.Add(-10*time.Second), now))
	assert.Equal(t, "5m", RelativeTime(now.Add(-5*time.Minute), now))
	assert.Equal(t, "3h", RelativeTime(now.Add(-3*time.Hour), now))
	assert.Equal(t, "2d", RelativeTime(now.Add(-49*time.Hour), now))
	assert.Equal(t, "Feb 1", RelativeTime(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), now))
}

func TestParseTimestamp(t *testing.T) {
	ts, ok := ParseTimestamp("2025-03-10T11:30:00.123456")
	assert.True(t, ok)
	assert.Equal(t, 11, ts.Hour())

	_, ok = ParseTimestamp("2025-03-10T11:30:00Z")
	assert.True(t, ok)

	_, ok = ParseTimestamp("yesterday")
	assert.False(t, ok)
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "512 B", HumanSize(512))
	assert.Equal(t, "1.5 KB", HumanSize(1536))
	assert.Equal(t, "2.0 MB", HumanSize(2*1024*1024))
}
