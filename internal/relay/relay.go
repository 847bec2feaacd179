// Package relay assembles chat prompts and forwards them to the completion API.
//
// The relay is stateless: it builds the prompt as [system instruction] +
// rolling history + [new user turn] and returns the completion. Appending the
// exchange to the history is the caller's responsibility.
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/openai/openai-go"

	"github.com/dkovalev/coachbot/internal/genai"
	"github.com/dkovalev/coachbot/internal/models"
)

// DefaultSystemPrompt is the coaching persona sent ahead of every conversation.
const DefaultSystemPrompt = `You are a motivational coach providing encouragement and positive reinforcement.
You help users stay focused, overcome obstacles and keep a positive mindset.
Come up with motivational statements and share them to inspire users into action and lift their mood.
Communicate in a fun, energetic way and consistently emphasize your support.
Use the user's name where known to make the experience personal, suggest concrete actions
and exercises to build motivation, and include well-known motivational quotes and examples
from the lives of famous people for inspiration.`

// Relay forwards user messages to the completion API with conversation context.
type Relay struct {
	client           genai.ClientInterface
	systemPrompt     string
	systemPromptFile string
}

// Option configures the relay.
type Option func(*Relay)

// WithSystemPrompt replaces the default system instruction.
func WithSystemPrompt(prompt string) Option {
	return func(r *Relay) { r.systemPrompt = prompt }
}

// WithSystemPromptFile loads the system instruction from a file at
// construction time.
func WithSystemPromptFile(path string) Option {
	return func(r *Relay) { r.systemPromptFile = path }
}

// New creates a relay over the given completion client.
func New(client genai.ClientInterface, opts ...Option) (*Relay, error) {
	r := &Relay{
		client:       client,
		systemPrompt: DefaultSystemPrompt,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.systemPromptFile != "" {
		data, err := os.ReadFile(r.systemPromptFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read system prompt file %s: %w", r.systemPromptFile, err)
		}
		r.systemPrompt = string(data)
		slog.Debug("Relay loaded system prompt from file", "path", r.systemPromptFile, "length", len(r.systemPrompt))
	}
	return r, nil
}

// Complete relays one user turn to the completion API. History is replayed in
// its original order between the system instruction and the new message; it
// is never mutated here.
func (r *Relay) Complete(ctx context.Context, newMessage string, history []models.ChatMessage) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(r.systemPrompt))
	for _, msg := range history {
		switch msg.Role {
		case models.RoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))
		case models.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			slog.Warn("Relay skipping history message with unknown role", "role", msg.Role)
		}
	}
	messages = append(messages, openai.UserMessage(newMessage))

	slog.Debug("Relay forwarding message", "history_messages", len(history), "prompt_messages", len(messages))
	return r.client.GenerateWithMessages(ctx, messages)
}
