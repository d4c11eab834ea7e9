package pages

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ajramos/evtui/internal/api"
	"github.com/ajramos/evtui/internal/services"
)

// Chat page regions
const (
	RegionChatMessages = "chat-messages"
	RegionChatPersona  = "chat-persona"
)

// HistoryLimit is the number of past exchanges loaded on entry.
const HistoryLimit = 50

// Chat talks to the active profile's persona.
type Chat struct {
	d *Deps

	mu      sync.Mutex
	entries []api.ChatEntry
}

// NewChat creates the chat module.
func NewChat(d *Deps) *Chat {
	return &Chat{d: d}
}

func (c *Chat) Initialize(ctx context.Context) error {
	id, ok := c.d.activeProfile()
	if !ok {
		c.setEntries(nil)
		c.d.write(RegionChatMessages, noProfileText)
		c.d.write(RegionChatPersona, "")
		return nil
	}
	c.d.loading(RegionChatMessages, "Loading conversation...")
	c.d.write(RegionChatPersona, "Press b to build the persona, s for a summary")
	c.d.spawn(func() {
		entries, err := c.d.Chat.History(ctx, id, HistoryLimit)
		if err != nil {
			c.d.logf("chat: history: %v", err)
			c.d.write(RegionChatMessages, "History unavailable: "+api.UserMessage(err))
			return
		}
		c.setEntries(entries)
		c.render(id)
	})
	return nil
}

func (c *Chat) Refresh(ctx context.Context) error {
	return c.Initialize(ctx)
}

// Entries returns the conversation on screen.
func (c *Chat) Entries() []api.ChatEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.ChatEntry(nil), c.entries...)
}

// Send posts a message and appends the reply. With text-to-speech enabled
// the reply is voiced in the background.
func (c *Chat) Send(ctx context.Context, message string) (*api.ChatReply, error) {
	id, err := c.d.requireProfile()
	if err != nil {
		return nil, c.d.report(ctx, err)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("empty message: %w", services.ErrInvalidInput)
	}
	reply, err := c.d.Chat.Send(ctx, id, message)
	if err != nil {
		return nil, c.d.report(ctx, err)
	}
	c.mu.Lock()
	c.entries = append(c.entries, api.ChatEntry{
		ProfileID:       id,
		UserMessage:     message,
		AIResponse:      reply.Response,
		EmotionDetected: reply.EmotionDetected,
		ResponseTime:    reply.ProcessingTime,
	})
	c.mu.Unlock()
	c.render(id)

	if c.d.prefs().TTSEnabled && reply.Response != "" {
		c.d.spawn(func() {
			res, err := c.d.Chat.Speak(ctx, id, reply.Response)
			if err != nil {
				c.d.logf("chat: speech: %v", err)
				return
			}
			c.d.notifyInfo(ctx, fmt.Sprintf("Voice reply ready (%s)", res.AudioPath))
		})
	}
	return reply, nil
}

// Clear deletes the conversation after confirmation.
func (c *Chat) Clear(ctx context.Context) (bool, error) {
	id, err := c.d.requireProfile()
	if err != nil {
		return false, c.d.report(ctx, err)
	}
	if !c.d.confirm(ctx, "Clear the whole conversation?") {
		return false, nil
	}
	n, err := c.d.Chat.ClearHistory(ctx, id)
	if err != nil {
		return false, c.d.report(ctx, err)
	}
	c.setEntries(nil)
	c.render(id)
	c.d.notifySuccess(ctx, fmt.Sprintf("Cleared %d message(s)", n))
	return true, nil
}

// BuildPersona asks the backend to rebuild the persona from the profile's
// memories.
func (c *Chat) BuildPersona(ctx context.Context) error {
	return c.side(ctx, "Building persona...", "Persona", c.d.Chat.BuildPersona)
}

// Summary shows the conversation summary.
func (c *Chat) Summary(ctx context.Context) error {
	return c.side(ctx, "Summarizing...", "Summary", c.d.Chat.Summary)
}

func (c *Chat) side(ctx context.Context, loading, title string, fetch func(context.Context, int64) (map[string]any, error)) error {
	id, err := c.d.requireProfile()
	if err != nil {
		return c.d.report(ctx, err)
	}
	c.d.loading(RegionChatPersona, loading)
	data, err := fetch(ctx, id)
	if err != nil {
		c.d.write(RegionChatPersona, title+" unavailable")
		return c.d.report(ctx, err)
	}
	c.d.write(RegionChatPersona, formatKV(title, data))
	return nil
}

func (c *Chat) setEntries(entries []api.ChatEntry) {
	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()
}

func (c *Chat) render(profileID int64) {
	name := ""
	if p, ok := c.d.Profiles.Find(func(p api.Profile) bool { return p.ID == profileID }); ok {
		name = p.Name
	}
	c.d.write(RegionChatMessages, formatChat(c.Entries(), name))
}
