package dedupe_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"golang-market-alert/internal/dedupe"
	"golang-market-alert/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	records   []entity.SentRecord
	appendErr error
}

func (m *memoryStore) Load(context.Context) ([]entity.SentRecord, error) {
	return append([]entity.SentRecord(nil), m.records...), nil
}

func (m *memoryStore) Append(_ context.Context, rec entity.SentRecord, cutoff time.Time) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	kept := m.records[:0]
	for _, r := range m.records {
		if !r.SentAt.Before(cutoff) {
			kept = append(kept, r)
		}
	}
	m.records = append(kept, rec)
	return nil
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time          { return c.now }
func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newGate(t *testing.T, store dedupe.Store, cfg dedupe.Config) (*dedupe.Gate, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	g, err := dedupe.NewGate(store, cfg, dedupe.WithClock(c.Now))
	require.NoError(t, err)
	return g, c
}

func TestKey(t *testing.T) {
	a := dedupe.Key("Apple beats   estimates", []string{"MSFT", "aapl"})
	b := dedupe.Key("apple beats estimates", []string{"AAPL", "MSFT"})
	assert.Equal(t, a, b)
	assert.Len(t, a, 40)

	assert.NotEqual(t, a, dedupe.Key("Apple beats estimates", []string{"AAPL"}))
	assert.NotEqual(t, a, dedupe.Key("Apple misses estimates", []string{"AAPL", "MSFT"}))
}

func TestGateSuppressesDuplicateInsideWindow(t *testing.T) {
	ctx := context.Background()
	g, c := newGate(t, &memoryStore{}, dedupe.DefaultConfig())
	key := dedupe.Key("Fed cuts rates", []string{"SPY"})

	d, err := g.Admit(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, dedupe.Accepted, d)

	c.Advance(23 * time.Hour)
	d, err = g.Admit(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, dedupe.SuppressedDuplicate, d)

	c.Advance(time.Hour)
	d, err = g.Admit(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, dedupe.Accepted, d)
}

func TestGateRateLimit(t *testing.T) {
	ctx := context.Background()
	g, c := newGate(t, &memoryStore{}, dedupe.DefaultConfig())

	for i := 0; i < 10; i++ {
		d, err := g.Admit(ctx, fmt.Sprintf("key-%d", i))
		require.NoError(t, err)
		require.Equal(t, dedupe.Accepted, d, "alert %d", i)
		c.Advance(time.Minute)
	}

	d, err := g.Admit(ctx, "key-10")
	require.NoError(t, err)
	assert.Equal(t, dedupe.SuppressedRateLimit, d)

	// the first record leaves the rate window after one hour
	c.Advance(51 * time.Minute)
	d, err = g.Admit(ctx, "key-10")
	require.NoError(t, err)
	assert.Equal(t, dedupe.Accepted, d)
}

func TestGateDuplicateTakesPrecedence(t *testing.T) {
	ctx := context.Background()
	cfg := dedupe.Config{DedupeWindow: time.Hour, RateWindow: time.Hour, MaxPerWindow: 1}
	g, _ := newGate(t, &memoryStore{}, cfg)

	_, err := g.Admit(ctx, "a")
	require.NoError(t, err)

	d, err := g.Admit(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, dedupe.SuppressedDuplicate, d)

	d, err = g.Admit(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, dedupe.SuppressedRateLimit, d)
}

func TestPlanDoesNotRecord(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	g, _ := newGate(t, store, dedupe.DefaultConfig())

	d, err := g.Plan().Admit(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, dedupe.Accepted, d)
	assert.Equal(t, 0, g.Len())
	assert.Empty(t, store.records)
}

func TestGateEvictsOldRecords(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	g, c := newGate(t, store, dedupe.DefaultConfig())

	_, err := g.Admit(ctx, "old")
	require.NoError(t, err)
	c.Advance(25 * time.Hour)
	_, err = g.Admit(ctx, "new")
	require.NoError(t, err)

	assert.Equal(t, 1, g.Len())
	require.Len(t, store.records, 1)
	assert.Equal(t, "new", store.records[0].DedupeKey)
}

func TestGateLoadsPersistedRecords(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sent.json")

	first, c := newGate(t, dedupe.NewFileStore(path), dedupe.DefaultConfig())
	_, err := first.Admit(ctx, "persisted")
	require.NoError(t, err)

	second, err := dedupe.NewGate(dedupe.NewFileStore(path), dedupe.DefaultConfig(), dedupe.WithClock(func() time.Time {
		return c.Now().Add(time.Hour)
	}))
	require.NoError(t, err)

	d, err := second.Admit(ctx, "persisted")
	require.NoError(t, err)
	assert.Equal(t, dedupe.SuppressedDuplicate, d)
}

func TestGateSeesRecordsWrittenByOtherGates(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sent.json")
	cfg := dedupe.Config{DedupeWindow: 24 * time.Hour, RateWindow: time.Hour, MaxPerWindow: 2}

	service, c := newGate(t, dedupe.NewFileStore(path), cfg)
	require.NoError(t, service.Load(ctx))

	cli, err := dedupe.NewGate(dedupe.NewFileStore(path), cfg, dedupe.WithClock(c.Now))
	require.NoError(t, err)
	d, err := cli.Admit(ctx, "fed-cut")
	require.NoError(t, err)
	require.Equal(t, dedupe.Accepted, d)

	c.Advance(time.Minute)
	d, err = service.Admit(ctx, "fed-cut")
	require.NoError(t, err)
	assert.Equal(t, dedupe.SuppressedDuplicate, d)

	d, err = service.Admit(ctx, "earnings")
	require.NoError(t, err)
	assert.Equal(t, dedupe.Accepted, d)

	// the rate window now holds one alert from each gate
	d, err = cli.Admit(ctx, "merger")
	require.NoError(t, err)
	assert.Equal(t, dedupe.SuppressedRateLimit, d)
}

func TestPlanFollowsAdmitRules(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	cfg := dedupe.Config{DedupeWindow: 24 * time.Hour, RateWindow: time.Hour, MaxPerWindow: 2}
	g, _ := newGate(t, store, cfg)

	_, err := g.Admit(ctx, "sent-earlier")
	require.NoError(t, err)

	plan := g.Plan()
	d, err := plan.Admit(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, dedupe.Accepted, d)

	d, err = plan.Admit(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, dedupe.SuppressedDuplicate, d)

	d, err = plan.Admit(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, dedupe.SuppressedRateLimit, d)

	d, err = plan.Admit(ctx, "sent-earlier")
	require.NoError(t, err)
	assert.Equal(t, dedupe.SuppressedDuplicate, d)

	require.Len(t, store.records, 1)
	assert.Equal(t, 1, g.Len())

	d, err = g.Plan().Admit(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, dedupe.Accepted, d)
}

func TestGatePersistFailureKeepsDecision(t *testing.T) {
	store := &memoryStore{appendErr: errors.New("disk full")}
	g, _ := newGate(t, store, dedupe.DefaultConfig())

	d, err := g.Admit(context.Background(), "a")
	require.Error(t, err)
	assert.Equal(t, dedupe.Accepted, d)

	d, err = g.Admit(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, dedupe.SuppressedDuplicate, d)
}

func TestGateProperties(t *testing.T) {
	ctx := context.Background()
	cfg := dedupe.Config{DedupeWindow: 3 * time.Hour, RateWindow: time.Hour, MaxPerWindow: 4}
	g, c := newGate(t, &memoryStore{}, cfg)
	rng := rand.New(rand.NewSource(99))

	type sent struct {
		key string
		at  time.Time
	}
	var accepted []sent

	for i := 0; i < 2000; i++ {
		c.Advance(time.Duration(rng.Intn(20)) * time.Minute)
		key := fmt.Sprintf("k%d", rng.Intn(15))

		d, err := g.Admit(ctx, key)
		require.NoError(t, err)
		if d != dedupe.Accepted {
			continue
		}

		now := c.Now()
		inRate := 0
		for _, s := range accepted {
			if now.Sub(s.at) < cfg.RateWindow {
				inRate++
			}
			if s.key == key {
				assert.GreaterOrEqual(t, now.Sub(s.at), cfg.DedupeWindow, "duplicate %s accepted", key)
			}
		}
		assert.Less(t, inRate, cfg.MaxPerWindow, "rate cap exceeded at step %d", i)
		accepted = append(accepted, sent{key: key, at: now})
	}
	assert.NotEmpty(t, accepted)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, dedupe.DefaultConfig().Validate())
	require.Error(t, dedupe.Config{RateWindow: time.Hour, MaxPerWindow: 1}.Validate())
	require.Error(t, dedupe.Config{DedupeWindow: time.Hour, RateWindow: time.Hour}.Validate())

	_, err := dedupe.NewGate(&memoryStore{}, dedupe.Config{})
	require.Error(t, err)
}
