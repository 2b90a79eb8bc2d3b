package service

import (
	"fmt"
	"time"

	"rentmimi/internal/models"
)

// AdvanceClock adds minutes to an HH:MM wall-clock value with minute and
// hour rollover, wrapping modulo 24h. The booking date is not carried over
// a midnight wrap.
func AdvanceClock(clock string, minutes int) (string, error) {
	t, err := time.Parse(models.TimeLayout, clock)
	if err != nil {
		return "", fmt.Errorf("parse time %q: %w", clock, err)
	}

	total := t.Hour()*60 + t.Minute() + minutes
	total %= 24 * 60
	if total < 0 {
		total += 24 * 60
	}

	return fmt.Sprintf("%02d:%02d", total/60, total%60), nil
}
