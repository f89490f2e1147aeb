// Package sound plays short notification cues through the system audio
// player. Playback is best-effort: failures (missing player binary, blocked
// audio device) are logged and never propagated.
package sound

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/watchdeck/internal/domain"
)

// MaxDuration caps every cue. Long files are cut off, not rejected.
const MaxDuration = 2 * time.Second

// Category identifies a sound cue scenario.
type Category string

const (
	CategoryNvda    Category = "nvda"
	CategoryTsla    Category = "tsla"
	CategoryAapl    Category = "aapl"
	CategoryNews    Category = "news"
	CategoryWarning Category = "warning"
)

// soundFiles maps each category to its audio file (relative to the sounds dir).
var soundFiles = map[Category]string{
	CategoryNvda:    "mixkit-clinking-coins-1993.wav",
	CategoryTsla:    "mixkit-emergency-alert-alarm-1007.wav",
	CategoryAapl:    "mixkit-dry-pop-up-notification-alert-2356.wav",
	CategoryNews:    "mixkit-paper-slide-1530.wav",
	CategoryWarning: "mixkit-emergency-alert-alarm-1007.wav",
}

// CategoryFor picks the cue category for a notification.
// Stock-specific cues win; market-wide and unknown stocks fall back to the
// sentiment-based cues.
func CategoryFor(n domain.Notification) Category {
	switch strings.ToLower(n.StockID) {
	case "nvda":
		return CategoryNvda
	case "tsla":
		return CategoryTsla
	case "aapl":
		return CategoryAapl
	}
	if n.Sentiment == domain.SentimentNegative {
		return CategoryWarning
	}
	return CategoryNews
}

// Player plays notification sound cues.
type Player struct {
	soundsDir string
	command   string // Player binary, e.g. "aplay"
	log       zerolog.Logger
}

// NewPlayer creates a sound player reading cue files from soundsDir.
func NewPlayer(soundsDir string, log zerolog.Logger) *Player {
	return &Player{
		soundsDir: soundsDir,
		command:   "aplay",
		log:       log.With().Str("component", "sound").Logger(),
	}
}

// Play plays the cue for the given category, capped at MaxDuration.
// Unknown categories and playback failures are logged and swallowed.
func (p *Player) Play(category Category) {
	file, ok := soundFiles[category]
	if !ok {
		p.log.Warn().Str("category", string(category)).Msg("Unknown sound category")
		return
	}

	path := filepath.Join(p.soundsDir, file)

	// Cut playback off at MaxDuration; killing the player mid-file is fine.
	ctx, cancel := context.WithTimeout(context.Background(), MaxDuration)

	cmd := exec.CommandContext(ctx, p.command, path)
	if err := cmd.Start(); err != nil {
		cancel()
		p.log.Warn().Err(err).Str("category", string(category)).Msg("Could not play sound")
		return
	}

	go func() {
		defer cancel()
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			p.log.Warn().Err(err).Str("category", string(category)).Msg("Sound playback failed")
		}
	}()
}
