package service

import (
	"testing"

	"rentmimi/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestPayoutForGrade(t *testing.T) {
	t.Run("GoldTwoHoursWithPool", func(t *testing.T) {
		// (50000*2 + 10000 + 50000) * 0.967 = 160000 * 0.967 = 154720
		payout := PayoutForGrade(models.GradeGold, 2, models.BookingOptions{Pool: true})
		assert.Equal(t, int64(154720), payout)
	})

	t.Run("FloorIsExact", func(t *testing.T) {
		// base 210000: 210000 * 967 / 1000 = 203070, no float drift
		payout := PayoutForGrade(models.GradeGold, 3, models.BookingOptions{Pool: true})
		assert.Equal(t, int64(203070), payout)
	})

	t.Run("BronzeOneHourNoOptions", func(t *testing.T) {
		// (30000 + 10000) * 0.967 = 38680
		payout := PayoutForGrade(models.GradeBronze, 1, models.BookingOptions{})
		assert.Equal(t, int64(38680), payout)
	})

	t.Run("TransportFeeAlwaysIncluded", func(t *testing.T) {
		zero := PayoutForGrade(models.GradePlatinum, 0, models.BookingOptions{})
		assert.Equal(t, models.TransportFee*models.TakeRatePermille/1000, zero)
	})

	t.Run("UnknownGrade", func(t *testing.T) {
		assert.Equal(t, int64(0), PayoutForGrade("DIAMOND", 2, models.BookingOptions{}))
	})

	t.Run("NegativeHoursClamped", func(t *testing.T) {
		payout := PayoutForGrade(models.GradeSilver, -3, models.BookingOptions{})
		assert.Equal(t, models.TransportFee*models.TakeRatePermille/1000, payout)
	})
}

func TestPayoutFor(t *testing.T) {
	booking := models.Booking{DurationHours: 2, Options: models.BookingOptions{Pool: true}}

	t.Run("NilApplicationPaysZero", func(t *testing.T) {
		assert.Equal(t, int64(0), PayoutFor(booking, nil))
	})

	t.Run("EmptyGradeDefaultsToBronze", func(t *testing.T) {
		app := &models.PartnerApplication{}
		expected := PayoutForGrade(models.GradeBronze, 2, booking.Options)
		assert.Equal(t, expected, PayoutFor(booking, app))
	})

	t.Run("UsesApplicationGrade", func(t *testing.T) {
		app := &models.PartnerApplication{Form: models.PartnerForm{Grade: models.GradeGold}}
		assert.Equal(t, int64(154720), PayoutFor(booking, app))
	})
}
