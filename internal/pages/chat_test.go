package pages

import (
	"context"
	"errors"
	"testing"

	"github.com/ajramos/evtui/internal/api"
	"github.com/ajramos/evtui/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newChatFixture(t *testing.T) *fixture {
	f := newFixture(t, RegionChatMessages, RegionChatPersona)
	f.deps.Profiles.Replace(context.Background(), []api.Profile{{ID: 1, Name: "Alice"}})
	f.sel.SelectProfile(1)
	return f
}

func TestChat_InitializeLoadsHistory(t *testing.T) {
	f := newChatFixture(t)
	f.chat.On("History", mock.Anything, int64(1), HistoryLimit).Return([]api.ChatEntry{
		{UserMessage: "hi", AIResponse: "hello dear"},
	}, nil).Once()

	c := NewChat(f.deps)
	require.NoError(t, c.Initialize(context.Background()))

	assert.Equal(t, "You: hi\nAlice: hello dear", f.text(RegionChatMessages))
	assert.Len(t, c.Entries(), 1)
}

func TestChat_InitializeWithoutProfile(t *testing.T) {
	f := newFixture(t, RegionChatMessages, RegionChatPersona)

	require.NoError(t, NewChat(f.deps).Initialize(context.Background()))
	assert.Equal(t, noProfileText, f.text(RegionChatMessages))
}

func TestChat_Send(t *testing.T) {
	tests := []struct {
		name      string
		tts       bool
		wantNotes []string
	}{
		{name: "text_only"},
		{name: "with_speech", tts: true, wantNotes: []string{"info: Voice reply ready (/audio/1.mp3)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newChatFixture(t)
			f.prefs.TTSEnabled = tt.tts
			f.chat.On("Send", mock.Anything, int64(1), "how are you?").
				Return(&api.ChatReply{Response: "Fine, thank you", EmotionDetected: "joy"}, nil).Once()
			if tt.tts {
				f.chat.On("Speak", mock.Anything, int64(1), "Fine, thank you").
					Return(&api.SpeechResult{AudioID: 1, AudioPath: "/audio/1.mp3"}, nil).Once()
			}

			c := NewChat(f.deps)
			reply, err := c.Send(context.Background(), "  how are you?  ")
			require.NoError(t, err)
			assert.Equal(t, "joy", reply.EmotionDetected)

			entries := c.Entries()
			require.Len(t, entries, 1)
			assert.Equal(t, "how are you?", entries[0].UserMessage)
			assert.Contains(t, f.text(RegionChatMessages), "Alice: Fine, thank you")
			if tt.wantNotes == nil {
				assert.Empty(t, f.notes.all())
			} else {
				assert.Equal(t, tt.wantNotes, f.notes.all())
			}
		})
	}
}

func TestChat_SendRejectsEmptyMessage(t *testing.T) {
	f := newChatFixture(t)

	_, err := NewChat(f.deps).Send(context.Background(), "   ")
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestChat_SendFailureLeavesConversation(t *testing.T) {
	f := newChatFixture(t)
	f.chat.On("Send", mock.Anything, int64(1), "hi").Return(nil, errors.New("model offline")).Once()

	c := NewChat(f.deps)
	_, err := c.Send(context.Background(), "hi")
	assert.Error(t, err)
	assert.Empty(t, c.Entries())
	assert.Equal(t, []string{"error: model offline"}, f.notes.all())
}

func TestChat_Clear(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		f := newChatFixture(t)
		f.deps.Confirmer = answer(false)

		cleared, err := NewChat(f.deps).Clear(context.Background())
		require.NoError(t, err)
		assert.False(t, cleared)
	})
	t.Run("confirmed", func(t *testing.T) {
		f := newChatFixture(t)
		f.chat.On("ClearHistory", mock.Anything, int64(1)).Return(4, nil).Once()

		cleared, err := NewChat(f.deps).Clear(context.Background())
		require.NoError(t, err)
		assert.True(t, cleared)
		assert.Equal(t, "No messages yet. Say hello.", f.text(RegionChatMessages))
		assert.Contains(t, f.notes.all(), "success: Cleared 4 message(s)")
	})
}

func TestChat_BuildPersonaAndSummary(t *testing.T) {
	f := newChatFixture(t)
	f.chat.On("BuildPersona", mock.Anything, int64(1)).Return(map[string]any{"traits": "warm", "memories_used": 12}, nil).Once()
	f.chat.On("Summary", mock.Anything, int64(1)).Return(nil, errors.New("no conversations")).Once()

	c := NewChat(f.deps)
	require.NoError(t, c.BuildPersona(context.Background()))
	assert.Equal(t, "Persona\nmemories used: 12\ntraits: warm", f.text(RegionChatPersona))

	assert.Error(t, c.Summary(context.Background()))
	assert.Equal(t, "Summary unavailable", f.text(RegionChatPersona))
}
