// Package models defines the core data types shared across coachbot components.
package models

import "time"

// Role values used in chat history messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single turn in a chat's rolling conversation history.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Record is a finalized onboarding result persisted to the record store.
// A record is only assembled once name, phone and address have all passed
// validation; partially collected data never reaches the store.
type Record struct {
	ChatID    string    `json:"chat_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// Button describes a single inline-keyboard button attached to a reply.
type Button struct {
	Label  string
	Action string
}
