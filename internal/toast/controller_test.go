package toast

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/watchdeck/internal/domain"
	"github.com/aristath/watchdeck/internal/events"
	"github.com/aristath/watchdeck/internal/store"
)

// testTimings keeps the timer-driven tests fast while preserving the
// ordering between surface delay and auto-dismiss.
var testTimings = Config{
	SurfaceDelay: 10 * time.Millisecond,
	AutoDismiss:  80 * time.Millisecond,
}

type clearedRecorder struct {
	mu      sync.Mutex
	reasons []string
}

func (r *clearedRecorder) record(e *events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, e.Data["reason"].(string))
}

func (r *clearedRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.reasons...)
}

func newTestController(t *testing.T, cfg Config) (*Controller, *store.Store, *events.Bus) {
	t.Helper()
	log := zerolog.New(nil).Level(zerolog.Disabled)
	bus := events.NewBus(log)
	st := store.New(nil, bus, log)
	ctrl := NewController(st, nil, bus, cfg, log)
	ctrl.Start()
	t.Cleanup(ctrl.Stop)
	return ctrl, st, bus
}

func pushNotification(st *store.Store, id string) {
	st.AddNotification(domain.Notification{
		ID:        id,
		StockID:   "NVDA",
		StockName: "NVIDIA Corporation",
		Title:     "Price Alert Triggered",
		Timestamp: time.Now().UTC(),
		Sentiment: domain.SentimentPositive,
	})
}

// waitForActive polls until the controller surfaces a toast or the deadline
// passes.
func waitForActive(t *testing.T, ctrl *Controller, deadline time.Duration) *domain.Notification {
	t.Helper()
	stop := time.Now().Add(deadline)
	for time.Now().Before(stop) {
		if n := ctrl.Active(); n != nil {
			return n
		}
		time.Sleep(2 * time.Millisecond)
	}
	return nil
}

// TestSurfaceAfterDelay tests that a new notification becomes the active
// toast only after the surface delay.
func TestSurfaceAfterDelay(t *testing.T) {
	ctrl, st, _ := newTestController(t, testTimings)

	pushNotification(st, "n1")
	assert.Nil(t, ctrl.Active(), "not surfaced before the delay")

	n := waitForActive(t, ctrl, time.Second)
	require.NotNil(t, n)
	assert.Equal(t, "n1", n.ID)
}

// TestAutoDismiss tests that an untouched toast clears itself with reason
// "timeout".
func TestAutoDismiss(t *testing.T) {
	ctrl, st, bus := newTestController(t, testTimings)
	rec := &clearedRecorder{}
	bus.Subscribe(events.ToastCleared, rec.record)

	pushNotification(st, "n1")
	require.NotNil(t, waitForActive(t, ctrl, time.Second))

	stop := time.Now().Add(time.Second)
	for ctrl.Active() != nil && time.Now().Before(stop) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Nil(t, ctrl.Active())
	assert.Equal(t, []string{"timeout"}, rec.all())
}

// TestDismiss tests the explicit dismiss path: toast cleared, no detail
// escalation, feed untouched.
func TestDismiss(t *testing.T) {
	ctrl, st, bus := newTestController(t, testTimings)
	rec := &clearedRecorder{}
	bus.Subscribe(events.ToastCleared, rec.record)

	pushNotification(st, "n1")
	require.NotNil(t, waitForActive(t, ctrl, time.Second))

	ctrl.Dismiss()

	assert.Nil(t, ctrl.Active())
	assert.Nil(t, ctrl.Detail())
	assert.Len(t, st.Notifications(), 1, "dismissing the toast never touches the feed")
	assert.Equal(t, []string{"dismissed"}, rec.all())
}

// TestDismiss_NoActiveToast tests that dismissing with nothing active is a
// no-op.
func TestDismiss_NoActiveToast(t *testing.T) {
	ctrl, _, bus := newTestController(t, testTimings)
	rec := &clearedRecorder{}
	bus.Subscribe(events.ToastCleared, rec.record)

	ctrl.Dismiss()
	assert.Empty(t, rec.all())
}

// TestReadMore tests escalation to the detail view: the toast clears, the
// detail slot fills, and the notification stays unread.
func TestReadMore(t *testing.T) {
	ctrl, st, _ := newTestController(t, testTimings)

	pushNotification(st, "n1")
	require.NotNil(t, waitForActive(t, ctrl, time.Second))

	n := ctrl.ReadMore()
	require.NotNil(t, n)
	assert.Equal(t, "n1", n.ID)
	assert.Nil(t, ctrl.Active())

	detail := ctrl.Detail()
	require.NotNil(t, detail)
	assert.Equal(t, "n1", detail.ID)

	assert.False(t, st.Notifications()[0].Read, "read-more does not mark the notification read")

	ctrl.CloseDetail()
	assert.Nil(t, ctrl.Detail())
}

// TestNewArrivalSupersedesPending tests cancel-and-replace: a second
// notification arriving during the first one's surface delay wins, and the
// first is never surfaced.
func TestNewArrivalSupersedesPending(t *testing.T) {
	ctrl, st, bus := newTestController(t, Config{
		SurfaceDelay: 40 * time.Millisecond,
		AutoDismiss:  500 * time.Millisecond,
	})

	var surfaced []string
	var mu sync.Mutex
	bus.Subscribe(events.ToastSurfaced, func(e *events.Event) {
		mu.Lock()
		surfaced = append(surfaced, e.Data["notification_id"].(string))
		mu.Unlock()
	})

	pushNotification(st, "n1")
	time.Sleep(10 * time.Millisecond) // Inside n1's surface delay
	pushNotification(st, "n2")

	n := waitForActive(t, ctrl, time.Second)
	require.NotNil(t, n)
	assert.Equal(t, "n2", n.ID)

	time.Sleep(60 * time.Millisecond) // Past where n1's timer would have fired
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"n2"}, surfaced)
}

// TestDismissDuringPendingSurface tests that dismissing the active toast
// while a newer notification is waiting out its surface delay does not
// cancel that pending surface.
func TestDismissDuringPendingSurface(t *testing.T) {
	ctrl, st, _ := newTestController(t, Config{
		SurfaceDelay: 50 * time.Millisecond,
		AutoDismiss:  500 * time.Millisecond,
	})

	pushNotification(st, "n1")
	require.NotNil(t, waitForActive(t, ctrl, time.Second))

	pushNotification(st, "n2")
	ctrl.Dismiss() // Inside n2's surface delay

	n := waitForActive(t, ctrl, time.Second)
	require.NotNil(t, n, "the pending notification must still surface")
	assert.Equal(t, "n2", n.ID)
}

// TestReadMoreDuringPendingSurface tests the escalation variant: read-more
// on the active toast must not swallow a newer pending surface either.
func TestReadMoreDuringPendingSurface(t *testing.T) {
	ctrl, st, _ := newTestController(t, Config{
		SurfaceDelay: 50 * time.Millisecond,
		AutoDismiss:  500 * time.Millisecond,
	})

	pushNotification(st, "n1")
	require.NotNil(t, waitForActive(t, ctrl, time.Second))

	pushNotification(st, "n2")
	escalated := ctrl.ReadMore()
	require.NotNil(t, escalated)
	assert.Equal(t, "n1", escalated.ID)

	n := waitForActive(t, ctrl, time.Second)
	require.NotNil(t, n)
	assert.Equal(t, "n2", n.ID)
}

// TestSameNotificationNotResurfaced tests that feed changes which do not
// produce a new newest entry never re-trigger the toast.
func TestSameNotificationNotResurfaced(t *testing.T) {
	ctrl, st, _ := newTestController(t, testTimings)

	pushNotification(st, "n1")
	require.NotNil(t, waitForActive(t, ctrl, time.Second))

	ctrl.Dismiss()
	require.Nil(t, ctrl.Active())

	// Mark-as-read emits NotificationRead, not NotificationAdded, so the
	// controller must stay quiet even if it were listening too broadly.
	st.MarkAsRead("n1")
	time.Sleep(30 * time.Millisecond)
	assert.Nil(t, ctrl.Active())
}

// TestWithinWindow covers same-day windows, midnight crossing and
// malformed bounds.
func TestWithinWindow(t *testing.T) {
	at := func(hh, mm int) time.Time {
		return time.Date(2025, 6, 1, hh, mm, 0, 0, time.UTC)
	}

	testCases := []struct {
		name   string
		now    time.Time
		start  string
		end    string
		expect bool
	}{
		{"inside same-day window", at(12, 0), "09:00", "17:00", true},
		{"before same-day window", at(8, 59), "09:00", "17:00", false},
		{"at window start", at(9, 0), "09:00", "17:00", true},
		{"at window end is outside", at(17, 0), "09:00", "17:00", false},
		{"midnight crossing, late evening", at(23, 30), "19:00", "07:00", true},
		{"midnight crossing, early morning", at(6, 59), "19:00", "07:00", true},
		{"midnight crossing, daytime", at(12, 0), "19:00", "07:00", false},
		{"at crossing end is outside", at(7, 0), "19:00", "07:00", false},
		{"degenerate equal bounds", at(12, 0), "12:00", "12:00", false},
		{"malformed start", at(12, 0), "noon", "17:00", false},
		{"malformed end", at(12, 0), "09:00", "25:00", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, WithinWindow(tc.now, tc.start, tc.end))
		})
	}
}
