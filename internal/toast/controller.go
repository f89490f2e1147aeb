// Package toast implements the notification lifecycle controller: it watches
// the feed for new arrivals and surfaces the newest notification as a
// transient toast.
//
// Per-toast state machine: pending (surface timer armed) -> active ->
// cleared (explicit dismiss, escalation to detail view, or auto-dismiss).
// There is exactly one active timer handle per transient state; a new
// trigger cancels and replaces whatever was pending. Surface timers and
// auto-dismiss timers carry separate generation counters so that clearing
// the active toast cannot swallow a surface already scheduled for a newer
// notification.
package toast

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/watchdeck/internal/domain"
	"github.com/aristath/watchdeck/internal/events"
	"github.com/aristath/watchdeck/internal/sound"
	"github.com/aristath/watchdeck/internal/store"
)

const (
	// DefaultSurfaceDelay lets layout settle before the toast appears.
	DefaultSurfaceDelay = 100 * time.Millisecond
	// DefaultAutoDismiss clears a toast nobody interacted with.
	DefaultAutoDismiss = 30 * time.Second
)

// Config holds controller timing configuration. Zero values use defaults.
type Config struct {
	SurfaceDelay time.Duration
	AutoDismiss  time.Duration
}

// Controller coordinates toast surfacing on top of the store.
type Controller struct {
	mu sync.Mutex

	store  *store.Store
	player *sound.Player // May be nil (no audio environment)
	bus    *events.Bus
	log    zerolog.Logger

	surfaceDelay time.Duration
	autoDismiss  time.Duration

	active          *domain.Notification // Currently displayed toast
	detail          *domain.Notification // Notification escalated to detail view
	lastSurfacedID  string
	surfaceGen      uint64 // Invalidates pending surface timers; bumped on reschedule and stop
	generation      uint64 // Invalidates auto-dismiss timers; bumped when the active toast changes
	surfaceTimer    *time.Timer
	autoDismissTime *time.Timer
}

// NewController creates a toast controller. Call Start to attach it to the bus.
func NewController(st *store.Store, player *sound.Player, bus *events.Bus, cfg Config, log zerolog.Logger) *Controller {
	if cfg.SurfaceDelay == 0 {
		cfg.SurfaceDelay = DefaultSurfaceDelay
	}
	if cfg.AutoDismiss == 0 {
		cfg.AutoDismiss = DefaultAutoDismiss
	}
	return &Controller{
		store:        st,
		player:       player,
		bus:          bus,
		log:          log.With().Str("component", "toast").Logger(),
		surfaceDelay: cfg.SurfaceDelay,
		autoDismiss:  cfg.AutoDismiss,
	}
}

// Start subscribes the controller to feed changes.
func (c *Controller) Start() {
	c.bus.Subscribe(events.NotificationAdded, func(*events.Event) {
		c.onFeedChanged()
	})
}

// Stop cancels any pending timers. Safe to call more than once.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.surfaceGen++
	c.generation++
	c.stopTimersLocked()
}

// Active returns the currently displayed toast, or nil.
func (c *Controller) Active() *domain.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return nil
	}
	n := *c.active
	return &n
}

// Detail returns the notification escalated to the detail view, or nil.
func (c *Controller) Detail() *domain.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detail == nil {
		return nil
	}
	n := *c.detail
	return &n
}

// Dismiss clears the active toast without touching the feed.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	if c.active == nil {
		c.mu.Unlock()
		return
	}
	id := c.active.ID
	c.clearActiveLocked()
	c.mu.Unlock()

	c.emit(events.ToastCleared, map[string]interface{}{"notification_id": id, "reason": "dismissed"})
}

// ReadMore escalates the active toast into the detail view and clears the
// toast. It does NOT mark the notification read - that is a separate
// explicit action taken inside the detail view.
func (c *Controller) ReadMore() *domain.Notification {
	c.mu.Lock()
	if c.active == nil {
		c.mu.Unlock()
		return nil
	}
	n := *c.active
	c.detail = &n
	c.clearActiveLocked()
	c.mu.Unlock()

	c.emit(events.ToastCleared, map[string]interface{}{"notification_id": n.ID, "reason": "escalated"})
	return &n
}

// CloseDetail clears the detail view slot.
func (c *Controller) CloseDetail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detail = nil
}

// onFeedChanged compares the newest feed entry against the last-surfaced id
// and schedules surfacing when a genuinely new notification arrived.
func (c *Controller) onFeedChanged() {
	feed := c.store.Notifications()
	if len(feed) == 0 {
		return
	}
	newest := feed[0]

	c.mu.Lock()
	defer c.mu.Unlock()

	if newest.ID == c.lastSurfacedID {
		return
	}

	// Cancel-and-replace: a newer arrival supersedes a pending surface.
	c.surfaceGen++
	gen := c.surfaceGen
	if c.surfaceTimer != nil {
		c.surfaceTimer.Stop()
	}
	c.surfaceTimer = time.AfterFunc(c.surfaceDelay, func() {
		c.surface(newest, gen)
	})
}

// surface makes the notification the active toast and arms the auto-dismiss
// timer. Stale surface generations are dropped.
func (c *Controller) surface(n domain.Notification, gen uint64) {
	c.mu.Lock()
	if gen != c.surfaceGen {
		c.mu.Unlock()
		return
	}

	c.generation++
	c.active = &n
	c.lastSurfacedID = n.ID
	if c.autoDismissTime != nil {
		c.autoDismissTime.Stop()
	}
	dismissGen := c.generation
	c.autoDismissTime = time.AfterFunc(c.autoDismiss, func() {
		c.autoDismissFired(n.ID, dismissGen)
	})
	c.mu.Unlock()

	c.log.Debug().Str("notification_id", n.ID).Msg("Toast surfaced")
	c.emit(events.ToastSurfaced, map[string]interface{}{"notification_id": n.ID})

	if c.player != nil && !c.muted() {
		c.player.Play(sound.CategoryFor(n))
	}
}

// autoDismissFired clears the toast when its timer expires, unless the
// state already moved on.
func (c *Controller) autoDismissFired(id string, gen uint64) {
	c.mu.Lock()
	if gen != c.generation || c.active == nil || c.active.ID != id {
		c.mu.Unlock()
		return
	}
	c.clearActiveLocked()
	c.mu.Unlock()

	c.emit(events.ToastCleared, map[string]interface{}{"notification_id": id, "reason": "timeout"})
}

// clearActiveLocked drops the active toast and its timer. Caller holds mu.
func (c *Controller) clearActiveLocked() {
	c.active = nil
	c.generation++
	if c.autoDismissTime != nil {
		c.autoDismissTime.Stop()
		c.autoDismissTime = nil
	}
}

func (c *Controller) stopTimersLocked() {
	if c.surfaceTimer != nil {
		c.surfaceTimer.Stop()
		c.surfaceTimer = nil
	}
	if c.autoDismissTime != nil {
		c.autoDismissTime.Stop()
		c.autoDismissTime = nil
	}
}

// muted reports whether sound cues are currently suppressed by preferences.
func (c *Controller) muted() bool {
	prefs := c.store.Preferences()
	if prefs.GlobalMute {
		return true
	}
	if prefs.QuietHours.Enabled {
		return WithinWindow(time.Now(), prefs.QuietHours.Start, prefs.QuietHours.End)
	}
	return false
}

func (c *Controller) emit(eventType events.EventType, data map[string]interface{}) {
	if c.bus == nil {
		return
	}
	c.bus.Emit(eventType, "toast", data)
}

// WithinWindow reports whether the time of day of now falls inside the
// [start, end) window. Windows may cross midnight (start > end).
// Malformed bounds disable the window.
func WithinWindow(now time.Time, start, end string) bool {
	startMin, okStart := parseTimeOfDay(start)
	endMin, okEnd := parseTimeOfDay(end)
	if !okStart || !okEnd {
		return false
	}

	nowMin := now.Hour()*60 + now.Minute()

	if startMin == endMin {
		return false
	}
	if startMin < endMin {
		return nowMin >= startMin && nowMin < endMin
	}
	// Crosses midnight
	return nowMin >= startMin || nowMin < endMin
}

// parseTimeOfDay parses "HH:MM" into minutes since midnight.
func parseTimeOfDay(s string) (int, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}
