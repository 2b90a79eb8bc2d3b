package models

import "time"

const (
	StatusPending         = "pending"
	StatusAwaitingPayment = "awaiting_payment"
	StatusApproved        = "approved"
	StatusRejected        = "rejected"
	StatusCompleted       = "completed"
)

const (
	PayoutNone      = "none"
	PayoutPending   = "pending"
	PayoutCompleted = "completed"
)

const (
	GradeBronze   = "BRONZE"
	GradeSilver   = "SILVER"
	GradeGold     = "GOLD"
	GradePlatinum = "PLATINUM"
)

const (
	PlanFresh    = "FRESH"
	PlanSpecial  = "SPECIAL"
	PlanPremium  = "PREMIUM"
	PlanTheBlack = "THE_BLACK"
)

// PlanHourlyRates is the client-facing rate card, won per hour.
var PlanHourlyRates = map[string]int64{
	PlanFresh:    50000,
	PlanSpecial:  60000,
	PlanPremium:  70000,
	PlanTheBlack: 150000,
}

// GradeHourlyRates is the partner payout rate card, won per hour. It is a
// separate table from PlanHourlyRates on purpose: clients and partners are
// billed/paid off different cards.
var GradeHourlyRates = map[string]int64{
	GradeBronze:   30000,
	GradeSilver:   40000,
	GradeGold:     50000,
	GradePlatinum: 60000,
}

// ClientOptionSurcharges are flat add-on prices charged to the client,
// independent of duration.
var ClientOptionSurcharges = OptionSurcharges{
	InstantPhotos: 30000,
	HandHolding:   50000,
	Pool:          50000,
	Outfit:        50000,
	Drive:         50000,
}

// PayoutOptionSurcharges are the flat add-on amounts that enter the partner
// payout base. The two option tables currently coincide in value but are
// kept distinct: they belong to different rate cards.
var PayoutOptionSurcharges = OptionSurcharges{
	InstantPhotos: 30000,
	HandHolding:   50000,
	Pool:          50000,
	Outfit:        50000,
	Drive:         50000,
}

// OptionSurcharges mirrors BookingOptions with a flat price per option.
type OptionSurcharges struct {
	InstantPhotos int64
	HandHolding   int64
	Pool          int64
	Outfit        int64
	Drive         int64
}

// Sum adds the surcharges of every selected option.
func (s OptionSurcharges) Sum(opts BookingOptions) int64 {
	var total int64
	if opts.InstantPhotos {
		total += s.InstantPhotos
	}
	if opts.HandHolding {
		total += s.HandHolding
	}
	if opts.Pool {
		total += s.Pool
	}
	if opts.Outfit {
		total += s.Outfit
	}
	if opts.Drive {
		total += s.Drive
	}
	return total
}

const (
	// TransportFee is the fixed amount added to every payout base.
	TransportFee int64 = 10000

	// TakeRatePermille is the partner's share of the payout base in
	// thousandths (0.967). Integer math keeps floor(base*rate) exact.
	TakeRatePermille int64 = 967
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// weekdayNames maps time.Weekday to the short Korean day names the partner
// roster stores in available_days.
var weekdayNames = [7]string{"일", "월", "화", "수", "목", "금", "토"}

// WeekdayName returns the roster's day-of-week name for a date.
func WeekdayName(t time.Time) string {
	return weekdayNames[int(t.Weekday())]
}
