package dedupe

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang-market-alert/internal/entity"
)

// Decision is the outcome of presenting a key to the Gate.
type Decision string

const (
	Accepted            Decision = "accepted"
	SuppressedDuplicate Decision = "duplicate"
	SuppressedRateLimit Decision = "rate_limited"
)

// Config controls the dedupe and rate windows.
type Config struct {
	DedupeWindow time.Duration `mapstructure:"dedupe_window"`
	RateWindow   time.Duration `mapstructure:"rate_window"`
	MaxPerWindow int           `mapstructure:"max_per_window"`
}

// DefaultConfig suppresses repeats for 24h and allows 10 alerts per hour.
func DefaultConfig() Config {
	return Config{DedupeWindow: 24 * time.Hour, RateWindow: time.Hour, MaxPerWindow: 10}
}

// Validate checks that every window and the cap are positive.
func (c Config) Validate() error {
	if c.DedupeWindow <= 0 || c.RateWindow <= 0 {
		return errors.New("dedupe and rate windows must be positive")
	}
	if c.MaxPerWindow <= 0 {
		return errors.New("max alerts per window must be positive")
	}
	return nil
}

// Retention is how long records must be kept to answer both questions.
func (c Config) Retention() time.Duration {
	if c.RateWindow > c.DedupeWindow {
		return c.RateWindow
	}
	return c.DedupeWindow
}

// Store persists SentRecords between runs.
type Store interface {
	// Load returns every stored record.
	Load(ctx context.Context) ([]entity.SentRecord, error)
	// Append stores rec and drops records sent before cutoff.
	Append(ctx context.Context, rec entity.SentRecord, cutoff time.Time) error
}

// Key identifies an alert by its normalized title and its sorted symbol set.
func Key(title string, symbols []string) string {
	syms := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			syms = append(syms, s)
		}
	}
	sort.Strings(syms)

	normalized := strings.Join(strings.Fields(strings.ToLower(title)), " ")
	sum := sha1.Sum([]byte(normalized + "|" + strings.Join(syms, ",")))
	return hex.EncodeToString(sum[:])
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// Locker is implemented by stores shared between processes. Admit holds the lock
// while it reads the records, decides and appends.
type Locker interface {
	Lock(ctx context.Context) (unlock func(), err error)
}

// Gate suppresses alerts already sent inside the dedupe window and caps the number
// of alerts inside the rate window. Every decision re-reads the store so records
// written by other runs are seen. It is safe for concurrent use.
type Gate struct {
	mu      sync.Mutex
	store   Store
	cfg     Config
	now     func() time.Time
	records []entity.SentRecord
	latest  map[string]time.Time
	// unsaved holds accepted records whose append failed.
	unsaved []entity.SentRecord
}

// NewGate creates a gate backed by store.
func NewGate(store Store, cfg Config, opts ...Option) (*Gate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Gate{
		store:  store,
		cfg:    cfg,
		now:    time.Now,
		latest: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Load reads the persisted records.
func (g *Gate) Load(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.refreshLocked(ctx, g.now())
}

func (g *Gate) refreshLocked(ctx context.Context, now time.Time) error {
	records, err := g.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load sent records: %w", err)
	}
	cutoff := now.Add(-g.cfg.Retention())
	unsaved := g.unsaved[:0]
	for _, r := range g.unsaved {
		if !r.SentAt.Before(cutoff) {
			unsaved = append(unsaved, r)
		}
	}
	g.unsaved = unsaved
	records = append(records, g.unsaved...)

	sort.SliceStable(records, func(i, j int) bool { return records[i].SentAt.Before(records[j].SentAt) })
	g.records = records
	g.latest = make(map[string]time.Time, len(records))
	for _, r := range records {
		if ts, ok := g.latest[r.DedupeKey]; !ok || r.SentAt.After(ts) {
			g.latest[r.DedupeKey] = r.SentAt
		}
	}
	g.evict(now)
	return nil
}

// Admit decides whether an alert with key may be sent. An accepted key is recorded
// and persisted; if persisting fails the decision stays Accepted and the error is returned.
func (g *Gate) Admit(ctx context.Context, key string) (Decision, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if locker, ok := g.store.(Locker); ok {
		unlock, err := locker.Lock(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to lock sent records: %w", err)
		}
		defer unlock()
	}

	now := g.now()
	if err := g.refreshLocked(ctx, now); err != nil {
		return "", err
	}
	decision := g.decide(key, now, nil)
	if decision != Accepted {
		return decision, nil
	}

	rec := entity.SentRecord{DedupeKey: key, SentAt: now}
	g.records = append(g.records, rec)
	g.latest[key] = now

	if err := g.store.Append(ctx, rec, now.Add(-g.cfg.Retention())); err != nil {
		g.unsaved = append(g.unsaved, rec)
		return Accepted, fmt.Errorf("failed to persist sent record: %w", err)
	}
	return Accepted, nil
}

// Plan starts a dry run: its Admit decides like Gate.Admit and remembers accepted
// keys in the plan only, so a run that sends nothing reports what a real run would.
func (g *Gate) Plan() *Plan {
	return &Plan{gate: g}
}

// Len returns the number of retained records.
func (g *Gate) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.records)
}

// decide applies the dedupe and rate rules to the stored records plus planned ones.
func (g *Gate) decide(key string, now time.Time, planned []entity.SentRecord) Decision {
	if ts, ok := g.latest[key]; ok && now.Sub(ts) < g.cfg.DedupeWindow {
		return SuppressedDuplicate
	}
	for _, r := range planned {
		if r.DedupeKey == key && now.Sub(r.SentAt) < g.cfg.DedupeWindow {
			return SuppressedDuplicate
		}
	}

	cutoff := now.Add(-g.cfg.RateWindow)
	recent := 0
	for i := len(g.records) - 1; i >= 0 && g.records[i].SentAt.After(cutoff); i-- {
		recent++
	}
	for _, r := range planned {
		if r.SentAt.After(cutoff) {
			recent++
		}
	}
	if recent >= g.cfg.MaxPerWindow {
		return SuppressedRateLimit
	}
	return Accepted
}

func (g *Gate) evict(now time.Time) {
	cutoff := now.Add(-g.cfg.Retention())
	drop := 0
	for drop < len(g.records) && g.records[drop].SentAt.Before(cutoff) {
		old := g.records[drop]
		if ts, ok := g.latest[old.DedupeKey]; ok && ts.Equal(old.SentAt) {
			delete(g.latest, old.DedupeKey)
		}
		drop++
	}
	if drop > 0 {
		g.records = append([]entity.SentRecord(nil), g.records[drop:]...)
	}
}

// Plan is a dry run over a Gate. It is not safe for concurrent use.
type Plan struct {
	gate    *Gate
	planned []entity.SentRecord
}

// Admit decides as Gate.Admit would given the keys this plan already accepted.
func (p *Plan) Admit(ctx context.Context, key string) (Decision, error) {
	g := p.gate
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if err := g.refreshLocked(ctx, now); err != nil {
		return "", err
	}
	decision := g.decide(key, now, p.planned)
	if decision == Accepted {
		p.planned = append(p.planned, entity.SentRecord{DedupeKey: key, SentAt: now})
	}
	return decision, nil
}
