package polldetail

import (
	"sync"
	"time"
)

const (
	// DismissDelay is how long the card stays up after the pointer leaves
	// both the name and the card.
	DismissDelay = 300 * time.Millisecond

	cardWidth    = 270
	cardMargin   = 10
	anchorOffset = 10
)

// Timer is a pending callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs f after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Profile is the user shown on the card.
type Profile struct {
	Handle string
	UserDp string
}

// Point is a position in page coordinates.
type Point struct {
	Top  float64
	Left float64
}

// HoverCard is the profile card shown while the pointer is over a user name
// or over the card itself. A single timer dismisses it once the pointer has
// left both regions; entering either region cancels that timer.
type HoverCard struct {
	mu      sync.Mutex
	sched   Scheduler
	timer   Timer
	gen     uint64
	profile *Profile
	anchor  Point
	inCard  bool
}

// NewHoverCard returns a hidden card. A nil scheduler uses real timers.
func NewHoverCard(s Scheduler) *HoverCard {
	if s == nil {
		s = realScheduler{}
	}
	return &HoverCard{sched: s}
}

// EnterName shows the card for p anchored below a name at anchor.
func (h *HoverCard) EnterName(p Profile, anchor Point) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.profile = &p
	h.anchor = anchor
	h.cancelLocked()
}

// LeaveName schedules dismissal unless the pointer moved into the card.
func (h *HoverCard) LeaveName() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.inCard {
		return
	}
	h.scheduleLocked()
}

// EnterCard keeps the card up.
func (h *HoverCard) EnterCard() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.inCard = true
	h.cancelLocked()
}

// LeaveCard schedules dismissal.
func (h *HoverCard) LeaveCard() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.inCard = false
	h.scheduleLocked()
}

// Visible returns the profile on display.
func (h *HoverCard) Visible() (Profile, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.profile == nil {
		return Profile{}, false
	}
	return *h.profile, true
}

// Position places the card below the anchor, kept inside a viewport of the
// given width.
func (h *HoverCard) Position(viewportWidth float64) Point {
	h.mu.Lock()
	defer h.mu.Unlock()
	left := min(h.anchor.Left, viewportWidth-cardWidth)
	return Point{
		Top:  h.anchor.Top + anchorOffset,
		Left: max(cardMargin, left),
	}
}

// Close cancels any pending dismissal.
func (h *HoverCard) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cancelLocked()
}

func (h *HoverCard) scheduleLocked() {
	h.cancelLocked()
	gen := h.gen
	h.timer = h.sched.AfterFunc(DismissDelay, func() { h.dismiss(gen) })
}

// cancelLocked stops the pending timer. Bumping gen also voids a callback
// that already fired but has not taken the lock yet.
func (h *HoverCard) cancelLocked() {
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.gen++
}

func (h *HoverCard) dismiss(gen uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if gen != h.gen {
		return
	}
	h.profile = nil
	h.timer = nil
}
