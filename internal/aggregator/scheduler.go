// Package aggregator runs the news digest schedule. When the aggregator
// preference is enabled, a digest notification built from the selected news
// sources is inserted into the feed on the configured interval
// (daily/weekly/monthly). Preference changes reschedule the job
// (cancel-and-replace, never two live schedules).
package aggregator

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/aristath/watchdeck/internal/domain"
	"github.com/aristath/watchdeck/internal/events"
	"github.com/aristath/watchdeck/internal/store"
)

// CronSpecFor maps an aggregator interval to its cron schedule.
// Digests fire at 09:00 local time.
func CronSpecFor(interval domain.AggregatorInterval) string {
	switch interval {
	case domain.IntervalWeekly:
		return "0 9 * * MON"
	case domain.IntervalMonthly:
		return "0 9 1 * *"
	default:
		return "0 9 * * *"
	}
}

// Scheduler owns the digest cron job.
type Scheduler struct {
	store *store.Store
	bus   *events.Bus
	log   zerolog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
	current string // Active cron spec, to skip no-op reschedules
}

// NewScheduler creates a digest scheduler. Call Start to arm it.
func NewScheduler(st *store.Store, bus *events.Bus, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		store: st,
		bus:   bus,
		log:   log.With().Str("component", "aggregator").Logger(),
		cron:  cron.New(),
	}
}

// Start arms the schedule and re-arms it whenever preferences change.
func (s *Scheduler) Start() {
	s.Reschedule()
	s.cron.Start()
	if s.bus != nil {
		s.bus.Subscribe(events.PreferencesChanged, func(*events.Event) {
			s.Reschedule()
		})
	}
}

// Stop halts the cron runner. Pending digest runs complete.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// Reschedule replaces the digest entry with one matching the current
// interval preference. Cheap when the interval didn't change.
func (s *Scheduler) Reschedule() {
	spec := CronSpecFor(s.store.Preferences().AggregatorInterval)

	s.mu.Lock()
	defer s.mu.Unlock()

	if spec == s.current {
		return
	}

	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
	}

	entryID, err := s.cron.AddFunc(spec, s.runDigest)
	if err != nil {
		s.log.Error().Err(err).Str("spec", spec).Msg("Failed to schedule digest")
		return
	}

	s.entryID = entryID
	s.current = spec
	s.log.Info().Str("spec", spec).Msg("Digest schedule updated")
}

// runDigest builds and inserts the digest notification. The aggregator
// preference gates delivery at fire time, not at scheduling time, so
// toggling it never needs a reschedule.
func (s *Scheduler) runDigest() {
	prefs := s.store.Preferences()
	if !prefs.Aggregator {
		return
	}

	s.store.AddNotification(s.BuildDigest(prefs))
	s.log.Info().Int("sources", len(prefs.NewsSources)).Msg("Digest delivered")
}

// BuildDigest synthesizes the market-wide digest notification.
func (s *Scheduler) BuildDigest(prefs domain.Preferences) domain.Notification {
	message := "Your market digest is ready."
	if len(prefs.NewsSources) > 0 {
		message = fmt.Sprintf("Top stories from %s.", strings.Join(prefs.NewsSources, ", "))
	}

	var aiSummary string
	if prefs.AIEnabled {
		aiSummary = fmt.Sprintf("Digest generated from %d selected sources covering today's market movers.",
			len(prefs.NewsSources))
	}

	return domain.Notification{
		ID:        uuid.New().String(),
		StockID:   domain.MarketStockID,
		StockName: "Market",
		Title:     "News Digest",
		Message:   message,
		AISummary: aiSummary,
		Timestamp: time.Now().UTC(),
		Sentiment: domain.SentimentNeutral,
		Read:      false,
	}
}
