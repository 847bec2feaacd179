// Package dialog routes inbound chat messages between the order onboarding
// flow and the LLM relay.
//
// Dispatch order for every inbound event: duplicate guard, session lookup,
// then either an onboarding step or the relay. Exactly one reply is sent per
// processed message; duplicates get none. Any failure past the duplicate
// guard is converted to a generic reply so the process keeps running.
package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dkovalev/coachbot/internal/dedup"
	"github.com/dkovalev/coachbot/internal/models"
	"github.com/dkovalev/coachbot/internal/session"
)

// User-facing reply texts.
const (
	replyGreeting     = "Hi! I'm your motivational coach. Send me a message and I'll cheer you on, or tap the button below to place an order."
	replyAskName      = "Let's get your order started. What is your full name (first and last)?"
	replyBadName      = "Please send your full name, at least a first and last name."
	replyAskPhone     = "Thanks! Now send your phone number."
	replyBadPhone     = "That doesn't look like a phone number. Digits, spaces, dashes and an optional leading + only, please."
	replyAskAddress   = "Great. What is your delivery address (street and number)?"
	replyBadAddress   = "Please send a fuller address, street and number at least."
	replyAlreadyDone  = "You have already provided your details. Tap \"Start order\" if you want to submit a new order."
	replyGenericError = "Something went wrong while processing your message. Please try again."

	buttonStartOrderLabel = "Start order"
)

// phonePattern accepts an optional leading plus followed by digits, spaces
// and hyphens.
var phonePattern = regexp.MustCompile(`^\+?[0-9\s\-]+$`)

// Messenger sends replies back through the chat transport.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendMessageWithButtons(ctx context.Context, chatID int64, text string, buttons []models.Button) error
}

// Completer produces an assistant reply for a user message given the chat's
// rolling history.
type Completer interface {
	Complete(ctx context.Context, newMessage string, history []models.ChatMessage) (string, error)
}

// RecordSink persists finalized onboarding records.
type RecordSink interface {
	AddRecord(r models.Record) error
}

// Controller multiplexes inbound messages between the onboarding state
// machine and the completion relay.
type Controller struct {
	sessions  *session.Manager
	guard     *dedup.Guard
	completer Completer
	sink      RecordSink
	messenger Messenger
}

// NewController creates a dialog controller with its collaborators.
func NewController(sessions *session.Manager, guard *dedup.Guard, completer Completer, sink RecordSink, messenger Messenger) *Controller {
	return &Controller{
		sessions:  sessions,
		guard:     guard,
		completer: completer,
		sink:      sink,
		messenger: messenger,
	}
}

// HandleMessage processes one inbound event end to end.
func (c *Controller) HandleMessage(ctx context.Context, msg models.InboundMessage) {
	if c.guard.Seen(msg.ID) {
		slog.Debug("Dialog dropping duplicate message", "id", msg.ID, "chatID", msg.ChatID)
		return
	}
	c.guard.Mark(msg.ID)

	sess := c.sessions.GetOrCreate(msg.ChatID)
	slog.Debug("Dialog dispatching message", "chatID", msg.ChatID, "event", string(msg.Event), "step", string(sess.Step))

	if err := c.dispatch(ctx, sess, msg); err != nil {
		slog.Error("Dialog dispatch failed", "error", err, "chatID", msg.ChatID, "step", string(sess.Step))
		if sendErr := c.messenger.SendMessage(ctx, msg.ChatID, replyGenericError); sendErr != nil {
			slog.Error("Dialog failed to send error reply", "error", sendErr, "chatID", msg.ChatID)
		}
	}
}

func (c *Controller) dispatch(ctx context.Context, sess *session.Session, msg models.InboundMessage) error {
	switch msg.Event {
	case models.EventStartCommand:
		return c.messenger.SendMessageWithButtons(ctx, msg.ChatID, replyGreeting, orderButtons())
	case models.EventStartOrder:
		// Restart works from any step, including DONE.
		sess.ResetPending()
		sess.Step = models.StepAskName
		slog.Info("Dialog onboarding started", "chatID", msg.ChatID)
		return c.messenger.SendMessage(ctx, msg.ChatID, replyAskName)
	}

	switch sess.Step {
	case models.StepNone:
		return c.relayMessage(ctx, sess, msg)

	case models.StepAskName:
		if !hasMinTokens(msg.Text, 2) {
			return c.messenger.SendMessage(ctx, msg.ChatID, replyBadName)
		}
		sess.Pending.Name = msg.Text
		sess.Step = models.StepAskPhone
		return c.messenger.SendMessage(ctx, msg.ChatID, replyAskPhone)

	case models.StepAskPhone:
		if !phonePattern.MatchString(msg.Text) {
			return c.messenger.SendMessage(ctx, msg.ChatID, replyBadPhone)
		}
		sess.Pending.Phone = msg.Text
		sess.Step = models.StepAskAddress
		return c.messenger.SendMessage(ctx, msg.ChatID, replyAskAddress)

	case models.StepAskAddress:
		if !hasMinTokens(msg.Text, 2) {
			return c.messenger.SendMessage(ctx, msg.ChatID, replyBadAddress)
		}
		sess.Pending.Address = msg.Text
		record := models.Record{
			ChatID:    strconv.FormatInt(msg.ChatID, 10),
			Name:      sess.Pending.Name,
			Phone:     sess.Pending.Phone,
			Address:   sess.Pending.Address,
			CreatedAt: time.Now(),
		}
		if err := c.sink.AddRecord(record); err != nil {
			// Step stays at ASK_ADDRESS so the user can resend the address
			// and retry the write. The record is lost otherwise.
			return fmt.Errorf("persist record: %w", err)
		}
		sess.Step = models.StepDone
		slog.Info("Dialog onboarding completed", "chatID", msg.ChatID)
		return c.messenger.SendMessage(ctx, msg.ChatID, orderSummary(record))

	case models.StepDone:
		return c.messenger.SendMessage(ctx, msg.ChatID, replyAlreadyDone)

	default:
		slog.Warn("Dialog resetting session with unknown step", "step", string(sess.Step), "chatID", msg.ChatID)
		sess.Step = models.StepNone
		return c.messenger.SendMessage(ctx, msg.ChatID, replyGenericError)
	}
}

// relayMessage forwards the message to the completion relay and, on success,
// appends both turns to the session history.
func (c *Controller) relayMessage(ctx context.Context, sess *session.Session, msg models.InboundMessage) error {
	reply, err := c.completer.Complete(ctx, msg.Text, sess.History)
	if err != nil {
		// History and step are untouched; the user can simply resend.
		return fmt.Errorf("completion relay: %w", err)
	}
	sess.AppendExchange(msg.Text, reply)
	return c.messenger.SendMessageWithButtons(ctx, msg.ChatID, reply, orderButtons())
}

func orderButtons() []models.Button {
	return []models.Button{{Label: buttonStartOrderLabel, Action: models.ActionStartOrder}}
}

func orderSummary(r models.Record) string {
	return fmt.Sprintf("All set, %s! We'll deliver to %s and reach you at %s.", r.Name, r.Address, r.Phone)
}

// hasMinTokens reports whether s contains at least n whitespace-separated tokens.
func hasMinTokens(s string, n int) bool {
	return len(strings.Fields(s)) >= n
}
