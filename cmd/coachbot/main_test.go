package main

import (
	"path/filepath"
	"testing"

	"github.com/dkovalev/coachbot/internal/bot"
	"github.com/dkovalev/coachbot/internal/session"
)

// testFlags builds a Flags value directly; parseCommandLineFlags registers
// global flags and cannot run twice in one process.
func testFlags(cfg Config) Flags {
	historyLimit := cfg.HistoryLimit
	return Flags{
		botToken:     &cfg.BotToken,
		openaiKey:    &cfg.OpenAIKey,
		openaiURL:    &cfg.OpenAIURL,
		model:        &cfg.Model,
		temperature:  &cfg.Temperature,
		sampling:     &cfg.Sampling,
		stateDir:     &cfg.StateDir,
		dbDSN:        &cfg.DatabaseDSN,
		historyLimit: &historyLimit,
		promptFile:   &cfg.PromptFile,
		debug:        &cfg.Debug,
	}
}

func TestLoadEnvironmentConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"BOT_TOKEN", "OPENAI_API_KEY", "OPENAI_API_URL", "OPENAI_MODEL",
		"OPENAI_TEMPERATURE", "OPENAI_SAMPLING", "COACHBOT_STATE_DIR",
		"DATABASE_URL", "HISTORY_LIMIT", "SYSTEM_PROMPT_FILE", "DEBUG",
	} {
		t.Setenv(key, "")
	}

	config := loadEnvironmentConfig()

	if config.StateDir != bot.DefaultStateDir {
		t.Errorf("expected default state dir %q, got %q", bot.DefaultStateDir, config.StateDir)
	}
	want := filepath.Join(bot.DefaultStateDir, DefaultDBFileName)
	if config.DatabaseDSN != want {
		t.Errorf("expected default DSN %q, got %q", want, config.DatabaseDSN)
	}
	if config.HistoryLimit != session.DefaultHistoryLimit {
		t.Errorf("expected default history limit %d, got %d", session.DefaultHistoryLimit, config.HistoryLimit)
	}
	if config.Debug {
		t.Error("debug should default to false")
	}
}

func TestLoadEnvironmentConfigOverrides(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_API_URL", "https://llm.example.com/v1")
	t.Setenv("COACHBOT_STATE_DIR", "/tmp/coachbot-test")
	t.Setenv("DATABASE_URL", "postgres://coach@localhost/coachbot")
	t.Setenv("HISTORY_LIMIT", "-1")

	config := loadEnvironmentConfig()

	if config.BotToken != "123:abc" || config.OpenAIKey != "sk-test" {
		t.Error("credentials not picked up from environment")
	}
	if config.StateDir != "/tmp/coachbot-test" {
		t.Errorf("unexpected state dir: %q", config.StateDir)
	}
	if config.DatabaseDSN != "postgres://coach@localhost/coachbot" {
		t.Errorf("explicit DATABASE_URL must not be replaced, got %q", config.DatabaseDSN)
	}
	if config.HistoryLimit != -1 {
		t.Errorf("expected history limit -1, got %d", config.HistoryLimit)
	}
}

func TestMissingRequired(t *testing.T) {
	flags := testFlags(Config{
		BotToken:  "123:abc",
		OpenAIKey: "sk-test",
		OpenAIURL: "https://llm.example.com/v1",
	})
	if missing := missingRequired(flags); len(missing) != 0 {
		t.Errorf("expected nothing missing, got %v", missing)
	}

	flags = testFlags(Config{OpenAIKey: "sk-test"})
	missing := missingRequired(flags)
	if len(missing) != 2 {
		t.Fatalf("expected 2 missing settings, got %v", missing)
	}
	if missing[0] != "BOT_TOKEN" || missing[1] != "OPENAI_API_URL" {
		t.Errorf("unexpected missing list: %v", missing)
	}
}

func TestBuildStoreOptionsDetectsBackend(t *testing.T) {
	flags := testFlags(Config{DatabaseDSN: "postgres://coach@localhost/coachbot"})
	if opts := buildStoreOptions(flags); len(opts) != 1 {
		t.Errorf("expected 1 store option for Postgres DSN, got %d", len(opts))
	}

	flags = testFlags(Config{DatabaseDSN: "/var/lib/coachbot/coachbot.db"})
	if opts := buildStoreOptions(flags); len(opts) != 1 {
		t.Errorf("expected 1 store option for SQLite DSN, got %d", len(opts))
	}

	flags = testFlags(Config{})
	if opts := buildStoreOptions(flags); len(opts) != 0 {
		t.Errorf("expected no store options for empty DSN, got %d", len(opts))
	}
}

func TestBuildGenAIOptions(t *testing.T) {
	flags := testFlags(Config{
		OpenAIKey:   "sk-test",
		OpenAIURL:   "https://llm.example.com/v1",
		Sampling:    "creative",
		Model:       "gpt-4o-mini",
		Temperature: "0.2",
	})
	// key, url, sampling profile, model, temperature
	if opts := buildGenAIOptions(flags); len(opts) != 5 {
		t.Errorf("expected 5 genai options, got %d", len(opts))
	}

	flags = testFlags(Config{
		OpenAIKey:   "sk-test",
		OpenAIURL:   "https://llm.example.com/v1",
		Temperature: "warm",
	})
	// Invalid temperature is logged and skipped.
	if opts := buildGenAIOptions(flags); len(opts) != 2 {
		t.Errorf("expected 2 genai options with invalid temperature, got %d", len(opts))
	}
}

func TestBuildBotOptions(t *testing.T) {
	flags := testFlags(Config{StateDir: "/tmp/s", HistoryLimit: 10})
	if opts := buildBotOptions(flags); len(opts) != 2 {
		t.Errorf("expected 2 bot options, got %d", len(opts))
	}

	flags = testFlags(Config{StateDir: "/tmp/s", PromptFile: "/etc/coachbot/prompt.txt"})
	if opts := buildBotOptions(flags); len(opts) != 3 {
		t.Errorf("expected 3 bot options with prompt file, got %d", len(opts))
	}
}
