package components

import (
	"fmt"
	"time"

	"github.com/mmcdole/marquee/internal/tui/styles"
)

// TrailerPreview stands in for the video element of the detail overlay.
// It tracks which trailer is playing, since when, and whether it is
// muted. It satisfies overlay.Surface.
type TrailerPreview struct {
	now func() time.Time

	key       string
	startedAt time.Time
	startPos  time.Duration
	muted     bool
	playing   bool
}

// NewTrailerPreview creates a stopped preview. A nil now uses time.Now.
func NewTrailerPreview(now func() time.Time) *TrailerPreview {
	if now == nil {
		now = time.Now
	}
	return &TrailerPreview{now: now}
}

// Start plays key from position at
func (t *TrailerPreview) Start(key string, at time.Duration, muted bool) {
	t.key = key
	t.startPos = at
	t.startedAt = t.now()
	t.muted = muted
	t.playing = key != ""
}

// Stop halts playback and forgets the trailer
func (t *TrailerPreview) Stop() {
	t.key = ""
	t.playing = false
	t.startPos = 0
}

// Key returns the playing trailer, empty when stopped
func (t *TrailerPreview) Key() string {
	return t.key
}

// Playing reports whether a trailer is active
func (t *TrailerPreview) Playing() bool {
	return t.playing
}

// Position returns the elapsed play position
func (t *TrailerPreview) Position() (time.Duration, bool) {
	if !t.playing {
		return 0, false
	}
	return t.startPos + t.now().Sub(t.startedAt), true
}

// SetMuted applies the overlay's mute state
func (t *TrailerPreview) SetMuted(muted bool) {
	t.muted = muted
}

// Muted returns the current mute state
func (t *TrailerPreview) Muted() bool {
	return t.muted
}

// View renders a one-line status of the preview
func (t *TrailerPreview) View(width int) string {
	if !t.playing {
		return styles.DimStyle.Render(styles.Truncate("▣ Artwork", width))
	}
	pos, _ := t.Position()
	sound := "♪"
	if t.muted {
		sound = "muted"
	}
	line := fmt.Sprintf("▶ Trailer %s  %s  %s", t.key, formatClock(pos), sound)
	return styles.AccentStyle.Render(styles.Truncate(line, width))
}

// formatClock formats a duration as H:MM:SS or MM:SS
func formatClock(d time.Duration) string {
	totalSeconds := int64(d.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
