package auction

import (
	"fmt"
	"time"
)

// EndedLabel is what clients render once an auction window has closed.
const EndedLabel = "Ended"

// Countdown carries the remaining window duration plus its display form.
type Countdown struct {
	Remaining time.Duration `json:"-"`
	Display   string        `json:"display"`
	Ended     bool          `json:"ended"`
}

// CountdownUntil computes the time remaining from now until deadline.
// Negative durations clamp to zero and report the window as ended.
func CountdownUntil(now, deadline time.Time) Countdown {
	remaining := deadline.Sub(now)
	if remaining <= 0 {
		return Countdown{Remaining: 0, Display: EndedLabel, Ended: true}
	}
	return Countdown{
		Remaining: remaining,
		Display:   formatRemaining(remaining),
		Ended:     false,
	}
}

// formatRemaining renders the two coarsest non-zero units so the label stays
// short: "2d 4h", "2h 15m", "45m". Sub-minute windows render as "<1m".
func formatRemaining(d time.Duration) string {
	days := int(d / (24 * time.Hour))
	hours := int(d % (24 * time.Hour) / time.Hour)
	minutes := int(d % time.Hour / time.Minute)

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return "<1m"
	}
}
