package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dkovalev/coachbot/internal/models"
)

func TestTranslateUpdateText(t *testing.T) {
	update := tgbotapi.Update{
		Message: &tgbotapi.Message{
			MessageID: 7,
			Chat:      &tgbotapi.Chat{ID: 42},
			Text:      "hello",
		},
	}

	msg, ok := TranslateUpdate(update)
	if !ok {
		t.Fatal("expected text update to translate")
	}
	if msg.Event != models.EventText || msg.ChatID != 42 || msg.Text != "hello" {
		t.Errorf("unexpected translation: %+v", msg)
	}
	if msg.ID != "msg:42:7" {
		t.Errorf("unexpected dedup identifier: %q", msg.ID)
	}
}

func TestTranslateUpdateStartCommand(t *testing.T) {
	update := tgbotapi.Update{
		Message: &tgbotapi.Message{
			MessageID: 1,
			Chat:      &tgbotapi.Chat{ID: 42},
			Text:      "/start",
			Entities: []tgbotapi.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: 6},
			},
		},
	}

	msg, ok := TranslateUpdate(update)
	if !ok {
		t.Fatal("expected /start to translate")
	}
	if msg.Event != models.EventStartCommand {
		t.Errorf("expected start command event, got %q", msg.Event)
	}
}

func TestTranslateUpdateUnknownCommandDropped(t *testing.T) {
	update := tgbotapi.Update{
		Message: &tgbotapi.Message{
			MessageID: 2,
			Chat:      &tgbotapi.Chat{ID: 42},
			Text:      "/help",
			Entities: []tgbotapi.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: 5},
			},
		},
	}

	if _, ok := TranslateUpdate(update); ok {
		t.Error("expected unknown command to be dropped")
	}
}

func TestTranslateUpdateStartOrderCallback(t *testing.T) {
	update := tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cq-123",
			Data:    models.ActionStartOrder,
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 42}},
		},
	}

	msg, ok := TranslateUpdate(update)
	if !ok {
		t.Fatal("expected start-order callback to translate")
	}
	if msg.Event != models.EventStartOrder || msg.ChatID != 42 {
		t.Errorf("unexpected translation: %+v", msg)
	}
	if msg.ID != "cb:cq-123" {
		t.Errorf("unexpected dedup identifier: %q", msg.ID)
	}
}

func TestTranslateUpdateForeignCallbackDropped(t *testing.T) {
	update := tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cq-124",
			Data:    "something_else",
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 42}},
		},
	}
	if _, ok := TranslateUpdate(update); ok {
		t.Error("expected foreign callback to be dropped")
	}
}

func TestTranslateUpdateNonTextDropped(t *testing.T) {
	// A photo-only message carries no text.
	update := tgbotapi.Update{
		Message: &tgbotapi.Message{
			MessageID: 3,
			Chat:      &tgbotapi.Chat{ID: 42},
		},
	}
	if _, ok := TranslateUpdate(update); ok {
		t.Error("expected non-text message to be dropped")
	}

	if _, ok := TranslateUpdate(tgbotapi.Update{}); ok {
		t.Error("expected empty update to be dropped")
	}
}

func TestNewBotRequiresToken(t *testing.T) {
	if _, err := NewBot(); err == nil {
		t.Error("expected error when token is missing")
	}
}
