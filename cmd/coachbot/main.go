package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/dkovalev/coachbot/internal/bot"
	"github.com/dkovalev/coachbot/internal/genai"
	"github.com/dkovalev/coachbot/internal/session"
	"github.com/dkovalev/coachbot/internal/store"
	"github.com/dkovalev/coachbot/internal/telegram"
	"github.com/dkovalev/coachbot/internal/util"
)

// Default configuration constants.
const (
	// DefaultDBFileName is the default SQLite database filename.
	DefaultDBFileName = "coachbot.db"
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	if missing := missingRequired(flags); len(missing) > 0 {
		slog.Error("Required configuration missing", "missing", missing)
		os.Exit(1)
	}

	tgOpts := buildTelegramOptions(flags)
	storeOpts := buildStoreOptions(flags)
	genaiOpts := buildGenAIOptions(flags)
	botOpts := buildBotOptions(flags)

	slog.Info("Bootstrapping coachbot")
	if err := bot.Run(tgOpts, storeOpts, genaiOpts, botOpts...); err != nil {
		slog.Error("coachbot failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("coachbot exited successfully")
}

// Config holds environment configuration.
type Config struct {
	BotToken     string
	OpenAIKey    string
	OpenAIURL    string
	Model        string
	Temperature  string
	Sampling     string
	StateDir     string
	DatabaseDSN  string
	HistoryLimit int
	PromptFile   string
	Debug        bool
}

// Flags holds command line flag values.
type Flags struct {
	botToken     *string
	openaiKey    *string
	openaiURL    *string
	model        *string
	temperature  *string
	sampling     *string
	stateDir     *string
	dbDSN        *string
	historyLimit *int
	promptFile   *string
	debug        *bool
}

// initializeLogger sets up structured logging; DEBUG=true enables debug level.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and the .env file.
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		BotToken:     os.Getenv("BOT_TOKEN"),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIURL:    os.Getenv("OPENAI_API_URL"),
		Model:        os.Getenv("OPENAI_MODEL"),
		Temperature:  os.Getenv("OPENAI_TEMPERATURE"),
		Sampling:     os.Getenv("OPENAI_SAMPLING"),
		StateDir:     os.Getenv("COACHBOT_STATE_DIR"),
		DatabaseDSN:  os.Getenv("DATABASE_URL"),
		HistoryLimit: util.ParseIntEnv("HISTORY_LIMIT", session.DefaultHistoryLimit),
		PromptFile:   os.Getenv("SYSTEM_PROMPT_FILE"),
		Debug:        util.ParseBoolEnv("DEBUG", false),
	}

	if config.StateDir == "" {
		config.StateDir = bot.DefaultStateDir
		slog.Debug("No COACHBOT_STATE_DIR set, using default", "state_dir", config.StateDir)
	}
	if config.DatabaseDSN == "" {
		config.DatabaseDSN = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseDSN)
	}

	slog.Debug("environment variables loaded",
		"BOT_TOKEN_SET", config.BotToken != "",
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"OPENAI_API_URL", config.OpenAIURL,
		"OPENAI_MODEL", config.Model,
		"OPENAI_SAMPLING", config.Sampling,
		"COACHBOT_STATE_DIR", config.StateDir,
		"DATABASE_DSN_SET", config.DatabaseDSN != "",
		"HISTORY_LIMIT", config.HistoryLimit)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults.
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		botToken:     flag.String("bot-token", config.BotToken, "Telegram bot token (overrides $BOT_TOKEN)"),
		openaiKey:    flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		openaiURL:    flag.String("openai-api-url", config.OpenAIURL, "OpenAI API base URL (overrides $OPENAI_API_URL)"),
		model:        flag.String("model", config.Model, "completion model (overrides $OPENAI_MODEL)"),
		temperature:  flag.String("temperature", config.Temperature, "sampling temperature (overrides $OPENAI_TEMPERATURE)"),
		sampling:     flag.String("sampling", config.Sampling, "sampling profile: deterministic or creative (overrides $OPENAI_SAMPLING)"),
		stateDir:     flag.String("state-dir", config.StateDir, "state directory for coachbot data (overrides $COACHBOT_STATE_DIR)"),
		dbDSN:        flag.String("db-dsn", config.DatabaseDSN, "database DSN, SQLite path or postgres:// URL (overrides $DATABASE_URL)"),
		historyLimit: flag.Int("history-limit", config.HistoryLimit, "per-chat history cap in messages, -1 unbounded, 0 none (overrides $HISTORY_LIMIT)"),
		promptFile:   flag.String("system-prompt-file", config.PromptFile, "file overriding the built-in system prompt (overrides $SYSTEM_PROMPT_FILE)"),
		debug:        flag.Bool("debug", config.Debug, "enable transport debug logging (overrides $DEBUG)"),
	}

	flag.Parse()

	// Follow a moved state directory with the derived default DSN.
	if *flags.dbDSN == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated database DSN for overridden state directory", "db_dsn", *flags.dbDSN)
	}

	return flags
}

// missingRequired lists required settings that are absent.
func missingRequired(flags Flags) []string {
	var missing []string
	if *flags.botToken == "" {
		missing = append(missing, "BOT_TOKEN")
	}
	if *flags.openaiKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if *flags.openaiURL == "" {
		missing = append(missing, "OPENAI_API_URL")
	}
	return missing
}

// buildTelegramOptions constructs Telegram transport options.
func buildTelegramOptions(flags Flags) []telegram.Option {
	tgOpts := []telegram.Option{telegram.WithToken(*flags.botToken)}
	if *flags.debug {
		tgOpts = append(tgOpts, telegram.WithDebug(true))
	}
	return tgOpts
}

// buildStoreOptions constructs record store options.
func buildStoreOptions(flags Flags) []store.Option {
	var storeOpts []store.Option
	if *flags.dbDSN != "" {
		if store.DetectDSNType(*flags.dbDSN) == "postgres" {
			storeOpts = append(storeOpts, store.WithPostgresDSN(*flags.dbDSN))
		} else {
			storeOpts = append(storeOpts, store.WithSQLiteDSN(*flags.dbDSN))
		}
	}
	return storeOpts
}

// buildGenAIOptions constructs completion client options. The sampling
// profile is applied first so explicit model/temperature overrides win.
func buildGenAIOptions(flags Flags) []genai.Option {
	genaiOpts := []genai.Option{
		genai.WithAPIKey(*flags.openaiKey),
		genai.WithBaseURL(*flags.openaiURL),
	}
	if *flags.sampling != "" {
		genaiOpts = append(genaiOpts, genai.WithSamplingProfile(*flags.sampling))
	}
	if *flags.model != "" {
		genaiOpts = append(genaiOpts, genai.WithModel(*flags.model))
	}
	if *flags.temperature != "" {
		if t, err := strconv.ParseFloat(*flags.temperature, 64); err == nil {
			genaiOpts = append(genaiOpts, genai.WithTemperature(t))
		} else {
			slog.Warn("Invalid temperature value, ignoring", "value", *flags.temperature)
		}
	}
	return genaiOpts
}

// buildBotOptions constructs bot runtime options.
func buildBotOptions(flags Flags) []bot.Option {
	botOpts := []bot.Option{
		bot.WithStateDir(*flags.stateDir),
		bot.WithHistoryLimit(*flags.historyLimit),
	}
	if *flags.promptFile != "" {
		botOpts = append(botOpts, bot.WithSystemPromptFile(*flags.promptFile))
	}
	return botOpts
}
