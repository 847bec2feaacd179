// Package session tracks per-chat conversation state for coachbot.
//
// Sessions hold the rolling chat history, the current onboarding step and the
// partially collected order fields. They are created lazily on first contact
// and evicted after an idle TTL so long uptimes do not accumulate state for
// chats that went quiet.
package session

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/dkovalev/coachbot/internal/models"
)

// Defaults for session retention and history capping.
const (
	DefaultTTL           = 12 * time.Hour
	DefaultSweepInterval = 30 * time.Minute
	// DefaultHistoryLimit caps the rolling history at 20 exchanges. Without a
	// cap the prompt eventually exceeds the upstream input limit.
	DefaultHistoryLimit = 40
)

// PendingRecord holds onboarding fields collected so far.
type PendingRecord struct {
	Name    string
	Phone   string
	Address string
}

// Session is the mutable per-chat state. The bot dispatches messages from a
// single goroutine, so sessions carry no internal locking.
type Session struct {
	ChatID  int64
	History []models.ChatMessage
	Step    models.DialogStep
	Pending PendingRecord

	historyLimit int
}

// AppendExchange records a completed user/assistant exchange, trimming the
// history to the configured limit so the newest messages are kept.
func (s *Session) AppendExchange(userText, assistantText string) {
	if s.historyLimit == 0 {
		return
	}
	now := time.Now()
	s.History = append(s.History,
		models.ChatMessage{Role: models.RoleUser, Content: userText, Timestamp: now},
		models.ChatMessage{Role: models.RoleAssistant, Content: assistantText, Timestamp: now},
	)
	if s.historyLimit > 0 && len(s.History) > s.historyLimit {
		s.History = s.History[len(s.History)-s.historyLimit:]
	}
}

// ResetPending clears any collected onboarding fields.
func (s *Session) ResetPending() {
	s.Pending = PendingRecord{}
}

// Opts holds configuration assembled from Options.
type Opts struct {
	TTL           time.Duration
	SweepInterval time.Duration
	HistoryLimit  int
}

// Option configures the session manager.
type Option func(*Opts)

// WithTTL sets the idle eviction TTL for sessions.
func WithTTL(d time.Duration) Option {
	return func(o *Opts) { o.TTL = d }
}

// WithSweepInterval sets how often expired sessions are purged.
func WithSweepInterval(d time.Duration) Option {
	return func(o *Opts) { o.SweepInterval = d }
}

// WithHistoryLimit sets the per-chat history cap in messages.
// Negative means unbounded; zero disables history entirely.
func WithHistoryLimit(n int) Option {
	return func(o *Opts) { o.HistoryLimit = n }
}

// Manager hands out sessions keyed by chat identifier.
type Manager struct {
	cache        *cache.Cache
	historyLimit int
}

// NewManager creates a session manager with the provided options.
func NewManager(opts ...Option) *Manager {
	cfg := Opts{
		TTL:           DefaultTTL,
		SweepInterval: DefaultSweepInterval,
		HistoryLimit:  DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("Session manager created", "ttl", cfg.TTL, "history_limit", cfg.HistoryLimit)
	return &Manager{
		cache:        cache.New(cfg.TTL, cfg.SweepInterval),
		historyLimit: cfg.HistoryLimit,
	}
}

// GetOrCreate returns the session for chatID, creating it on first contact.
// Each access refreshes the idle timer.
func (m *Manager) GetOrCreate(chatID int64) *Session {
	key := strconv.FormatInt(chatID, 10)
	if v, ok := m.cache.Get(key); ok {
		sess := v.(*Session)
		m.cache.SetDefault(key, sess)
		return sess
	}
	sess := &Session{ChatID: chatID, historyLimit: m.historyLimit}
	m.cache.SetDefault(key, sess)
	slog.Debug("Session created", "chatID", chatID)
	return sess
}

// Len reports the number of live sessions, expired entries included until the
// next sweep.
func (m *Manager) Len() int {
	return m.cache.ItemCount()
}
