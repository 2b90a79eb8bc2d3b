package service

import "rentmimi/internal/models"

// PayoutForGrade computes the partner's take:
//
//	floor((gradeRate*hours + transportFee + option surcharges) * takeRate)
//
// The take rate is applied in integer per-mille arithmetic so the floor is
// exact. Unknown grade resolves to 0; the result is never negative.
func PayoutForGrade(grade string, durationHours int, opts models.BookingOptions) int64 {
	rate, ok := models.GradeHourlyRates[grade]
	if !ok {
		return 0
	}
	if durationHours < 0 {
		durationHours = 0
	}

	base := rate*int64(durationHours) + models.TransportFee + models.PayoutOptionSurcharges.Sum(opts)
	payout := base * models.TakeRatePermille / 1000
	if payout < 0 {
		return 0
	}
	return payout
}

// PayoutFor resolves the partner's current grade from their application and
// computes the payout off the booking's creation-time option set. A booking
// with no resolvable application pays 0; that is a display state, not an
// error.
func PayoutFor(booking models.Booking, app *models.PartnerApplication) int64 {
	if app == nil {
		return 0
	}
	grade := app.Form.Grade
	if grade == "" {
		grade = models.GradeBronze
	}
	return PayoutForGrade(grade, booking.DurationHours, booking.Options)
}
