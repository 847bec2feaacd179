// Package models defines dialog step and inbound event types to avoid
// circular imports between the dialog controller and the transports.
package models

// DialogStep identifies where a chat currently is in the order onboarding flow.
type DialogStep string

// Dialog step constants. The empty step means relay mode: messages are
// forwarded to the completion API instead of the onboarding flow.
const (
	StepNone       DialogStep = ""
	StepAskName    DialogStep = "ASK_NAME"
	StepAskPhone   DialogStep = "ASK_PHONE"
	StepAskAddress DialogStep = "ASK_ADDRESS"
	StepDone       DialogStep = "DONE"
)

// EventType classifies an inbound transport event.
type EventType string

// Inbound event constants.
const (
	EventText         EventType = "text"
	EventStartCommand EventType = "start_command"
	EventStartOrder   EventType = "start_order"
)

// ActionStartOrder is the callback action carried by the order button.
const ActionStartOrder = "start_order"

// InboundMessage is a transport-normalized inbound event.
type InboundMessage struct {
	ID     string // transport-unique identifier, used for deduplication
	ChatID int64
	Text   string
	Event  EventType
}
