package aggregator

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/aristath/watchdeck/internal/domain"
	"github.com/aristath/watchdeck/internal/events"
	"github.com/aristath/watchdeck/internal/store"
)

func newTestScheduler(t *testing.T) (*Scheduler, *store.Store, *events.Bus) {
	t.Helper()
	log := zerolog.New(nil).Level(zerolog.Disabled)
	bus := events.NewBus(log)
	st := store.New(nil, bus, log)
	return NewScheduler(st, bus, log), st, bus
}

// TestCronSpecFor tests the interval-to-schedule mapping, including the
// daily fallback for unknown values.
func TestCronSpecFor(t *testing.T) {
	assert.Equal(t, "0 9 * * *", CronSpecFor(domain.IntervalDaily))
	assert.Equal(t, "0 9 * * MON", CronSpecFor(domain.IntervalWeekly))
	assert.Equal(t, "0 9 1 * *", CronSpecFor(domain.IntervalMonthly))
	assert.Equal(t, "0 9 * * *", CronSpecFor(domain.AggregatorInterval("bogus")))
}

// TestBuildDigest tests digest synthesis with and without sources and AI.
func TestBuildDigest(t *testing.T) {
	s, _, _ := newTestScheduler(t)

	prefs := domain.DefaultPreferences()
	n := s.BuildDigest(prefs)
	assert.Equal(t, domain.MarketStockID, n.StockID)
	assert.Equal(t, "News Digest", n.Title)
	assert.Equal(t, "Your market digest is ready.", n.Message)
	assert.Empty(t, n.AISummary)
	assert.Equal(t, domain.SentimentNeutral, n.Sentiment)
	assert.False(t, n.Read)
	assert.NotEmpty(t, n.ID)

	prefs.NewsSources = []string{"Reuters", "Bloomberg"}
	prefs.AIEnabled = true
	n = s.BuildDigest(prefs)
	assert.Equal(t, "Top stories from Reuters, Bloomberg.", n.Message)
	assert.Contains(t, n.AISummary, "2 selected sources")
}

// TestBuildDigest_UniqueIDs tests that consecutive digests never collide.
func TestBuildDigest_UniqueIDs(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	prefs := domain.DefaultPreferences()
	assert.NotEqual(t, s.BuildDigest(prefs).ID, s.BuildDigest(prefs).ID)
}

// TestRunDigest_GatedByPreference tests that the digest only reaches the
// feed while the aggregator preference is on.
func TestRunDigest_GatedByPreference(t *testing.T) {
	s, st, _ := newTestScheduler(t)

	s.runDigest()
	assert.Empty(t, st.Notifications(), "disabled aggregator delivers nothing")

	enabled := true
	st.UpdatePreferences(store.PreferencesUpdate{Aggregator: &enabled})
	s.runDigest()

	feed := st.Notifications()
	assert.Len(t, feed, 1)
	assert.Equal(t, "News Digest", feed[0].Title)
}

// TestReschedule_OnPreferenceChange tests that changing the interval
// replaces the cron entry, and that a no-op change keeps the same entry.
func TestReschedule_OnPreferenceChange(t *testing.T) {
	s, st, _ := newTestScheduler(t)
	s.Start()
	defer s.Stop()

	s.mu.Lock()
	firstEntry := s.entryID
	firstSpec := s.current
	s.mu.Unlock()
	assert.Equal(t, "0 9 * * *", firstSpec)

	weekly := domain.IntervalWeekly
	st.UpdatePreferences(store.PreferencesUpdate{AggregatorInterval: &weekly})

	s.mu.Lock()
	secondEntry := s.entryID
	secondSpec := s.current
	s.mu.Unlock()
	assert.Equal(t, "0 9 * * MON", secondSpec)
	assert.NotEqual(t, firstEntry, secondEntry)
	assert.Len(t, s.cron.Entries(), 1, "cancel-and-replace leaves exactly one schedule")

	// Unrelated preference change: same spec, same entry
	mute := true
	st.UpdatePreferences(store.PreferencesUpdate{GlobalMute: &mute})

	s.mu.Lock()
	thirdEntry := s.entryID
	s.mu.Unlock()
	assert.Equal(t, secondEntry, thirdEntry)
}
