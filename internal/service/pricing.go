package service

import (
	"rentmimi/internal/database"
	"rentmimi/internal/models"
)

// Price computes the client-facing total: plan hourly rate times duration
// plus the flat surcharge of every selected option. Surcharges do not scale
// with duration. Pure function.
func Price(plan string, durationHours int, opts models.BookingOptions) (int64, error) {
	if durationHours < 1 {
		return 0, database.ErrInvalidDuration
	}
	rate, ok := models.PlanHourlyRates[plan]
	if !ok {
		return 0, database.ErrUnknownPlan
	}
	return rate*int64(durationHours) + models.ClientOptionSurcharges.Sum(opts), nil
}

// ExtensionCost prices extra hours on an existing booking: hours times the
// plan rate, options untouched (they were already paid flat at creation).
func ExtensionCost(plan string, extraHours int) (int64, error) {
	if extraHours < 1 {
		return 0, database.ErrInvalidDuration
	}
	rate, ok := models.PlanHourlyRates[plan]
	if !ok {
		return 0, database.ErrUnknownPlan
	}
	return rate * int64(extraHours), nil
}
