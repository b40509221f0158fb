package billing

import (
	"time"

	models "github.com/fatflowers/pledge/internal/models"
)

// IsDue reports whether sub should be charged at now. A subscription that has never
// been charged is due immediately; otherwise the elapsed time since the last charge
// must reach the interval's period. Unknown intervals and clocks that moved backwards
// are never due.
func IsDue(sub *models.Subscription, now time.Time) bool {
	if sub == nil || !sub.Active {
		return false
	}
	if sub.LastChargedAt == nil {
		return true
	}
	period, ok := sub.Interval.Period()
	if !ok {
		return false
	}
	elapsed := now.Sub(*sub.LastChargedAt)
	if elapsed < 0 {
		return false
	}
	return elapsed >= period
}
