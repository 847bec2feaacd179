// Package dedup guards against reprocessing redelivered transport messages.
//
// The guard is a best-effort in-process filter: it has no persistence, so a
// restart forgets previously seen identifiers. Entries expire after a
// configurable window to keep the set bounded over long uptimes.
package dedup

import (
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
)

// Defaults for the deduplication window.
const (
	DefaultWindow        = 24 * time.Hour
	DefaultSweepInterval = time.Hour
)

// Opts holds configuration assembled from Options.
type Opts struct {
	Window        time.Duration
	SweepInterval time.Duration
}

// Option configures the guard.
type Option func(*Opts)

// WithWindow sets how long a message identifier is remembered.
func WithWindow(d time.Duration) Option {
	return func(o *Opts) { o.Window = d }
}

// WithSweepInterval sets how often expired identifiers are purged.
func WithSweepInterval(d time.Duration) Option {
	return func(o *Opts) { o.SweepInterval = d }
}

// Guard remembers recently handled message identifiers.
type Guard struct {
	cache *cache.Cache
}

// NewGuard creates a duplicate-message guard with the provided options.
func NewGuard(opts ...Option) *Guard {
	cfg := Opts{Window: DefaultWindow, SweepInterval: DefaultSweepInterval}
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("Dedup guard created", "window", cfg.Window)
	return &Guard{cache: cache.New(cfg.Window, cfg.SweepInterval)}
}

// Seen reports whether the identifier was already marked within the window.
func (g *Guard) Seen(id string) bool {
	_, ok := g.cache.Get(id)
	return ok
}

// Mark records the identifier as handled.
func (g *Guard) Mark(id string) {
	g.cache.SetDefault(id, struct{}{})
}

// Len reports the number of remembered identifiers, expired entries included
// until the next sweep.
func (g *Guard) Len() int {
	return g.cache.ItemCount()
}
