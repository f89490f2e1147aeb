package testing

import (
	"fmt"
	"time"

	"github.com/aristath/watchdeck/internal/domain"
)

// NewAlertFixtures returns a set of test alerts covering all three alert
// types, including one disabled alert.
func NewAlertFixtures() []domain.Alert {
	threshold := 150.0
	condition := domain.ConditionAbove
	created := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return []domain.Alert{
		{
			ID:         "alert-price",
			StockID:    "NVDA",
			Type:       domain.AlertTypePrice,
			Threshold:  &threshold,
			Condition:  &condition,
			Group:      "group-tech",
			GroupColor: "#3B82F6",
			AIEnabled:  true,
			Enabled:    true,
			CreatedAt:  created,
		},
		{
			ID:        "alert-news",
			StockID:   "TSLA",
			Type:      domain.AlertTypeNews,
			AIEnabled: false,
			Enabled:   true,
			CreatedAt: created.Add(time.Minute),
		},
		{
			ID:        "alert-volume",
			StockID:   "AAPL",
			Type:      domain.AlertTypeVolume,
			AIEnabled: false,
			Enabled:   false,
			CreatedAt: created.Add(2 * time.Minute),
		},
	}
}

// NewNotificationFixtures returns test notifications, oldest first.
func NewNotificationFixtures(count int) []domain.Notification {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	out := make([]domain.Notification, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, domain.Notification{
			ID:        fmt.Sprintf("notif-%d", i+1),
			StockID:   "NVDA",
			StockName: "NVIDIA",
			Title:     "Price Alert Triggered",
			Message:   "NVIDIA moved past your threshold.",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Sentiment: domain.SentimentPositive,
		})
	}
	return out
}

// NewGroupFixtures returns test stock groups.
func NewGroupFixtures() []domain.StockGroup {
	return []domain.StockGroup{
		{
			ID:       "group-tech",
			Name:     "Tech Watchlist",
			Color:    "#3B82F6",
			StockIDs: []string{"NVDA", "AAPL"},
		},
		{
			ID:       "group-ev",
			Name:     "EV Plays",
			Color:    "#10B981",
			StockIDs: []string{"TSLA"},
		},
	}
}
