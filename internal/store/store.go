// Package store implements the domain store: the single source of truth for
// alerts, notifications, groups and preferences. All mutations funnel through
// named operations; views subscribe to change events instead of holding
// copies of state.
//
// Every lookup-by-id operation degrades to a no-op when the id doesn't
// resolve. Operations report the outcome as a boolean so callers (and tests)
// can log or assert, but there is no error channel - the store trusts its
// callers and never validates input.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/watchdeck/internal/domain"
	"github.com/aristath/watchdeck/internal/events"
	"github.com/aristath/watchdeck/internal/refdata"
)

// MaxNotifications caps the notification feed. The feed is a "recent only"
// view: inserting beyond the cap silently evicts the oldest entry.
const MaxNotifications = 3

// Saver persists the durable slice of store state (alerts, groups,
// preferences). Notifications are session-only and never reach the saver.
type Saver interface {
	Save(alerts []domain.Alert, groups []domain.StockGroup, prefs domain.Preferences) error
}

// AlertUpdate carries a partial alert update. Nil fields are left untouched.
type AlertUpdate struct {
	StockID    *string                `json:"stock_id,omitempty"`
	Type       *domain.AlertType      `json:"type,omitempty"`
	Threshold  *float64               `json:"threshold,omitempty"`
	Condition  *domain.AlertCondition `json:"condition,omitempty"`
	Group      *string                `json:"group,omitempty"`
	GroupColor *string                `json:"group_color,omitempty"`
	AIEnabled  *bool                  `json:"ai_enabled,omitempty"`
	Enabled    *bool                  `json:"enabled,omitempty"`
}

// PreferencesUpdate carries a partial preferences update (shallow merge).
type PreferencesUpdate struct {
	QuietHours         *domain.QuietHours         `json:"quiet_hours,omitempty"`
	GlobalMute         *bool                      `json:"global_mute,omitempty"`
	AIEnabled          *bool                      `json:"ai_enabled,omitempty"`
	LocationBased      *bool                      `json:"location_based,omitempty"`
	Aggregator         *bool                      `json:"aggregator,omitempty"`
	NewsSources        *[]string                  `json:"news_sources,omitempty"`
	AggregatorInterval *domain.AggregatorInterval `json:"aggregator_interval,omitempty"`
}

// Store owns all mutable application state. It is constructed once at
// process start and injected into every consumer.
type Store struct {
	mu            sync.RWMutex
	alerts        []domain.Alert
	notifications []domain.Notification
	groups        []domain.StockGroup
	preferences   domain.Preferences

	saver     Saver
	persistMu sync.Mutex // Serializes Save calls so an older snapshot never lands last
	bus       *events.Bus
	log       zerolog.Logger
}

// New creates an empty store with default preferences.
// The saver may be nil (tests); the bus may be nil as well.
func New(saver Saver, bus *events.Bus, log zerolog.Logger) *Store {
	return &Store{
		alerts:        []domain.Alert{},
		notifications: []domain.Notification{},
		groups:        []domain.StockGroup{},
		preferences:   domain.DefaultPreferences(),
		saver:         saver,
		bus:           bus,
		log:           log.With().Str("component", "store").Logger(),
	}
}

// Hydrate replaces the persisted slices with previously stored state.
// Called once at startup, before any subscribers are attached; it does not
// persist or emit. The notification feed always starts empty.
func (s *Store) Hydrate(alerts []domain.Alert, groups []domain.StockGroup, prefs domain.Preferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append([]domain.Alert{}, alerts...)
	s.groups = append([]domain.StockGroup{}, groups...)
	s.preferences = prefs
}

// Alerts returns a copy of the alert collection.
func (s *Store) Alerts() []domain.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Alert{}, s.alerts...)
}

// Notifications returns a copy of the notification feed, newest first.
func (s *Store) Notifications() []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Notification{}, s.notifications...)
}

// Groups returns a copy of the group collection.
func (s *Store) Groups() []domain.StockGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := make([]domain.StockGroup, len(s.groups))
	for i, g := range s.groups {
		groups[i] = g
		groups[i].StockIDs = append([]string{}, g.StockIDs...)
	}
	return groups
}

// Preferences returns the current preferences record.
func (s *Store) Preferences() domain.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefs := s.preferences
	prefs.NewsSources = append([]string{}, s.preferences.NewsSources...)
	return prefs
}

// AddAlert appends an alert to the collection. The store does not enforce
// id uniqueness beyond what the caller supplies.
func (s *Store) AddAlert(alert domain.Alert) bool {
	s.mu.Lock()
	s.alerts = append(s.alerts, alert)
	s.mu.Unlock()

	s.persist()
	s.emit(events.AlertsChanged, map[string]interface{}{"alert_id": alert.ID, "action": "added"})
	return true
}

// UpdateAlert shallow-merges the given fields into the matching alert.
// No-op when the id doesn't resolve.
func (s *Store) UpdateAlert(id string, update AlertUpdate) bool {
	s.mu.Lock()
	found := false
	for i := range s.alerts {
		if s.alerts[i].ID != id {
			continue
		}
		applyAlertUpdate(&s.alerts[i], update)
		found = true
		break
	}
	s.mu.Unlock()

	if !found {
		return false
	}
	s.persist()
	s.emit(events.AlertsChanged, map[string]interface{}{"alert_id": id, "action": "updated"})
	return true
}

// DeleteAlert removes the matching alert. It does not cascade to groups or
// notifications. No-op when the id doesn't resolve.
func (s *Store) DeleteAlert(id string) bool {
	s.mu.Lock()
	found := false
	for i := range s.alerts {
		if s.alerts[i].ID == id {
			s.alerts = append(s.alerts[:i], s.alerts[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return false
	}
	s.persist()
	s.emit(events.AlertsChanged, map[string]interface{}{"alert_id": id, "action": "deleted"})
	return true
}

// AddNotification prepends a notification to the feed and truncates the tail
// beyond MaxNotifications. The feed is ordered strictly by insertion
// (newest first), not by timestamp comparison. Evicted entries are gone for
// good.
func (s *Store) AddNotification(n domain.Notification) bool {
	var evicted *domain.Notification

	s.mu.Lock()
	s.notifications = append([]domain.Notification{n}, s.notifications...)
	if len(s.notifications) > MaxNotifications {
		last := s.notifications[len(s.notifications)-1]
		evicted = &last
		s.notifications = s.notifications[:MaxNotifications]
	}
	s.mu.Unlock()

	s.emit(events.NotificationAdded, map[string]interface{}{"notification_id": n.ID})
	if evicted != nil {
		s.emit(events.NotificationDismissed, map[string]interface{}{
			"notification_id": evicted.ID,
			"reason":          "evicted",
		})
	}
	return true
}

// DismissNotification removes a notification by id regardless of position.
// Idempotent: dismissing an already-dismissed id is a no-op.
func (s *Store) DismissNotification(id string) bool {
	s.mu.Lock()
	found := false
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return false
	}
	s.emit(events.NotificationDismissed, map[string]interface{}{
		"notification_id": id,
		"reason":          "dismissed",
	})
	return true
}

// MarkAsRead sets the read flag on the matching notification.
// No-op when the id doesn't resolve.
func (s *Store) MarkAsRead(id string) bool {
	s.mu.Lock()
	found := false
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Read = true
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return false
	}
	s.emit(events.NotificationRead, map[string]interface{}{"notification_id": id})
	return true
}

// AddGroup appends a group to the collection.
func (s *Store) AddGroup(group domain.StockGroup) bool {
	s.mu.Lock()
	s.groups = append(s.groups, group)
	s.mu.Unlock()

	s.persist()
	s.emit(events.GroupsChanged, map[string]interface{}{"group_id": group.ID, "action": "added"})
	return true
}

// DeleteGroup removes the matching group. Alerts referencing the group are
// left with a dangling reference; renderers fall back to a default color.
func (s *Store) DeleteGroup(id string) bool {
	s.mu.Lock()
	found := false
	for i := range s.groups {
		if s.groups[i].ID == id {
			s.groups = append(s.groups[:i], s.groups[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return false
	}
	s.persist()
	s.emit(events.GroupsChanged, map[string]interface{}{"group_id": id, "action": "deleted"})
	return true
}

// AddStockToGroup appends a stock id to the group's member list unless
// already present. Order-preserving, idempotent. No-op when either id is
// empty or the group doesn't resolve.
func (s *Store) AddStockToGroup(groupID, stockID string) bool {
	if groupID == "" || stockID == "" {
		return false
	}

	s.mu.Lock()
	changed := false
	for i := range s.groups {
		if s.groups[i].ID != groupID {
			continue
		}
		if !s.groups[i].Contains(stockID) {
			s.groups[i].StockIDs = append(s.groups[i].StockIDs, stockID)
			changed = true
		}
		break
	}
	s.mu.Unlock()

	if !changed {
		return false
	}
	s.persist()
	s.emit(events.GroupsChanged, map[string]interface{}{"group_id": groupID, "action": "member_added"})
	return true
}

// UpdatePreferences shallow-merges the given fields into the preferences
// record.
func (s *Store) UpdatePreferences(update PreferencesUpdate) bool {
	s.mu.Lock()
	if update.QuietHours != nil {
		s.preferences.QuietHours = *update.QuietHours
	}
	if update.GlobalMute != nil {
		s.preferences.GlobalMute = *update.GlobalMute
	}
	if update.AIEnabled != nil {
		s.preferences.AIEnabled = *update.AIEnabled
	}
	if update.LocationBased != nil {
		s.preferences.LocationBased = *update.LocationBased
	}
	if update.Aggregator != nil {
		s.preferences.Aggregator = *update.Aggregator
	}
	if update.NewsSources != nil {
		s.preferences.NewsSources = append([]string{}, (*update.NewsSources)...)
	}
	if update.AggregatorInterval != nil {
		s.preferences.AggregatorInterval = *update.AggregatorInterval
	}
	s.mu.Unlock()

	s.persist()
	s.emit(events.PreferencesChanged, nil)
	return true
}

// ResetAll clears alerts and groups and restores default preferences.
// The notification feed is left untouched: the feed is
// session-only display state, not configuration.
func (s *Store) ResetAll() {
	s.mu.Lock()
	s.alerts = []domain.Alert{}
	s.groups = []domain.StockGroup{}
	s.preferences = domain.DefaultPreferences()
	s.mu.Unlock()

	s.persist()
	s.emit(events.StateReset, nil)
	s.emit(events.PreferencesChanged, nil)
}

// TestAlert synthesizes a notification from an existing alert and inserts it
// into the feed. When a canned sample is registered under the alert id, the
// sample is used as the base instead of the synthesized fallback; either way
// the result gets a fresh id, a fresh timestamp and read=false.
// No-op when the alert id doesn't resolve.
func (s *Store) TestAlert(alertID string) bool {
	s.mu.RLock()
	var alert *domain.Alert
	for i := range s.alerts {
		if s.alerts[i].ID == alertID {
			a := s.alerts[i]
			alert = &a
			break
		}
	}
	var groupMeta *domain.StockGroup
	if alert != nil {
		for i := range s.groups {
			if s.groups[i].ID == alert.Group {
				g := s.groups[i]
				groupMeta = &g
				break
			}
		}
	}
	s.mu.RUnlock()

	if alert == nil {
		return false
	}

	now := time.Now().UTC()
	notification := synthesizeNotification(alert, groupMeta, now)

	if sample, ok := refdata.SampleNotifications[alertID]; ok {
		notification = sample
	}

	notification.ID = fmt.Sprintf("%s-%d", alertID, now.UnixMilli())
	notification.Timestamp = now
	notification.Read = false

	s.log.Debug().
		Str("alert_id", alertID).
		Str("notification_id", notification.ID).
		Msg("Test alert fired")

	return s.AddNotification(notification)
}

// synthesizeNotification builds the fallback notification for a test-fired
// alert. Title and sentiment derive from the alert type; the sentiment
// mapping is a fixed demo simplification, not inference.
func synthesizeNotification(alert *domain.Alert, groupMeta *domain.StockGroup, now time.Time) domain.Notification {
	stockName := refdata.StockName(alert.StockID)

	var title string
	var sentiment domain.Sentiment
	switch alert.Type {
	case domain.AlertTypeNews:
		title = "News Alert"
		sentiment = domain.SentimentNegative
	case domain.AlertTypeVolume:
		title = "Volume Alert Triggered"
		sentiment = domain.SentimentNeutral
	default:
		title = "Price Alert Triggered"
		sentiment = domain.SentimentPositive
	}

	groupName := "Alerts"
	groupColor := alert.GroupColor
	if groupMeta != nil {
		groupName = groupMeta.Name
		groupColor = groupMeta.Color
	} else if alert.Group != "" {
		groupName = alert.Group
	}

	var aiSummary string
	if alert.AIEnabled {
		aiSummary = fmt.Sprintf("%s update generated for quick testing.", stockName)
	}

	return domain.Notification{
		ID:         fmt.Sprintf("generated-%s", alert.StockID),
		StockID:    alert.StockID,
		StockName:  stockName,
		Title:      title,
		Message:    "",
		AISummary:  aiSummary,
		Timestamp:  now,
		Sentiment:  sentiment,
		Group:      groupName,
		GroupColor: groupColor,
		Read:       false,
	}
}

// applyAlertUpdate merges non-nil update fields into the alert.
func applyAlertUpdate(alert *domain.Alert, update AlertUpdate) {
	if update.StockID != nil {
		alert.StockID = *update.StockID
	}
	if update.Type != nil {
		alert.Type = *update.Type
	}
	if update.Threshold != nil {
		alert.Threshold = update.Threshold
	}
	if update.Condition != nil {
		alert.Condition = update.Condition
	}
	if update.Group != nil {
		alert.Group = *update.Group
	}
	if update.GroupColor != nil {
		alert.GroupColor = *update.GroupColor
	}
	if update.AIEnabled != nil {
		alert.AIEnabled = *update.AIEnabled
	}
	if update.Enabled != nil {
		alert.Enabled = *update.Enabled
	}
}

// persist writes the durable slices through the saver. Persistence failures
// are logged, never surfaced: store operations are infallible by contract.
// Calls serialize under persistMu and snapshot the state only once the lock
// is held, so the last Save to run always carries the newest state.
func (s *Store) persist() {
	if s.saver == nil {
		return
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if err := s.saver.Save(s.Alerts(), s.Groups(), s.Preferences()); err != nil {
		s.log.Error().Err(err).Msg("Failed to persist store state")
	}
}

// emit publishes a change event when a bus is attached.
func (s *Store) emit(eventType events.EventType, data map[string]interface{}) {
	if s.bus == nil {
		return
	}
	s.bus.Emit(eventType, "store", data)
}
