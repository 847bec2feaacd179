// Package bot wires coachbot's components together and runs the dispatch loop.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dkovalev/coachbot/internal/dedup"
	"github.com/dkovalev/coachbot/internal/dialog"
	"github.com/dkovalev/coachbot/internal/genai"
	"github.com/dkovalev/coachbot/internal/lockfile"
	"github.com/dkovalev/coachbot/internal/relay"
	"github.com/dkovalev/coachbot/internal/session"
	"github.com/dkovalev/coachbot/internal/store"
	"github.com/dkovalev/coachbot/internal/telegram"
)

// DefaultStateDir is the default directory for coachbot state data.
const DefaultStateDir = "/var/lib/coachbot"

// Opts holds configuration assembled from Options.
type Opts struct {
	StateDir         string
	HistoryLimit     int
	SystemPromptFile string
}

// Option configures the bot runtime.
type Option func(*Opts)

// WithStateDir sets the state directory used for the lock file and default database.
func WithStateDir(dir string) Option {
	return func(o *Opts) { o.StateDir = dir }
}

// WithHistoryLimit sets the per-chat history cap in messages.
func WithHistoryLimit(n int) Option {
	return func(o *Opts) { o.HistoryLimit = n }
}

// WithSystemPromptFile overrides the built-in system instruction with a file.
func WithSystemPromptFile(path string) Option {
	return func(o *Opts) { o.SystemPromptFile = path }
}

// Run builds all components from the provided options and processes inbound
// messages until the process receives SIGINT or SIGTERM.
//
// Messages are dispatched one at a time from a single goroutine. Session
// step transitions and record store writes rely on that serialization.
func Run(tgOpts []telegram.Option, storeOpts []store.Option, genaiOpts []genai.Option, opts ...Option) error {
	cfg := Opts{
		StateDir:     DefaultStateDir,
		HistoryLimit: session.DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	lock, err := lockfile.Acquire(cfg.StateDir)
	if err != nil {
		return fmt.Errorf("acquire state lock: %w", err)
	}
	defer lock.Release()

	st, err := store.New(storeOpts...)
	if err != nil {
		return fmt.Errorf("initialize record store: %w", err)
	}
	defer st.Close()

	gen, err := genai.NewClient(genaiOpts...)
	if err != nil {
		return fmt.Errorf("initialize completion client: %w", err)
	}

	var relayOpts []relay.Option
	if cfg.SystemPromptFile != "" {
		relayOpts = append(relayOpts, relay.WithSystemPromptFile(cfg.SystemPromptFile))
	}
	rel, err := relay.New(gen, relayOpts...)
	if err != nil {
		return fmt.Errorf("initialize completion relay: %w", err)
	}

	sessions := session.NewManager(session.WithHistoryLimit(cfg.HistoryLimit))
	guard := dedup.NewGuard()

	tg, err := telegram.NewBot(tgOpts...)
	if err != nil {
		return fmt.Errorf("initialize telegram transport: %w", err)
	}

	controller := dialog.NewController(sessions, guard, rel, st, tg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tg.Start(ctx)
	slog.Info("coachbot running", "state_dir", cfg.StateDir, "history_limit", cfg.HistoryLimit)

	for msg := range tg.Inbound() {
		controller.HandleMessage(ctx, msg)
	}

	slog.Info("coachbot shutting down")
	return nil
}
