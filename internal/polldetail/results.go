package polldetail

import (
	"fmt"
	"math"
	"time"

	"pollshare/internal/models"
)

// ResultsVisible reports whether percentages may be shown: the poll has
// ended, its author allowed early results, or the viewer has voted.
func ResultsVisible(p *models.Poll, hasVoted bool, now time.Time) bool {
	if p == nil {
		return false
	}
	return p.Expired(now) || p.ShowVotesBeforeExpire || hasVoted
}

// Percentage is votes as a rounded share of total, or 0 when nobody voted.
func Percentage(votes, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(votes) / float64(total) * 100))
}

// TimeRemaining is "Ended" once expiresAt has passed, otherwise the
// hours left rounded up, e.g. "5h remaining".
func TimeRemaining(expiresAt, now time.Time) string {
	if expiresAt.Before(now) {
		return "Ended"
	}
	return fmt.Sprintf("%dh remaining", int(math.Ceil(expiresAt.Sub(now).Hours())))
}

// FormatRelative renders the age of t: "now", "12m", "3h", "5d", or the date
// once a week has passed.
func FormatRelative(t, now time.Time) string {
	if t.IsZero() {
		return "now"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d/(24*time.Hour)))
	default:
		return t.Format("1/2/2006")
	}
}

// OptionResult is one option as rendered.
type OptionResult struct {
	Text       string
	Votes      int
	Percentage int
	Selected   bool
}

// ShowResults applies ResultsVisible to the view's poll.
func (v *View) ShowResults(now time.Time) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return ResultsVisible(v.confirmed, v.hasVoted, now)
}

// Percentage is the share of votes against the local total.
func (v *View) Percentage(votes int) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Percentage(votes, v.totalVotes)
}

// TimeRemaining formats the time left on the view's poll.
func (v *View) TimeRemaining(now time.Time) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.confirmed == nil {
		return ""
	}
	return TimeRemaining(v.confirmed.ExpiresAt, now)
}

// Results lists the options. Percentages stay 0 while results are hidden.
func (v *View) Results(now time.Time) []OptionResult {
	v.mu.Lock()
	defer v.mu.Unlock()

	visible := ResultsVisible(v.confirmed, v.hasVoted, now)
	out := make([]OptionResult, len(v.options))
	for i, opt := range v.options {
		out[i] = OptionResult{
			Text:     opt.Text,
			Votes:    opt.Votes,
			Selected: i == v.selected,
		}
		if visible {
			out[i].Percentage = Percentage(opt.Votes, v.totalVotes)
		}
	}
	return out
}
