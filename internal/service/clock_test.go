package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceClock(t *testing.T) {
	cases := []struct {
		name    string
		clock   string
		minutes int
		want    string
	}{
		{"MinuteRollover", "14:00", 70, "15:10"},
		{"MidnightWrap", "23:50", 20, "00:10"},
		{"NoChange", "09:30", 0, "09:30"},
		{"ExactHour", "10:15", 45, "11:00"},
		{"NegativeDelay", "00:10", -20, "23:50"},
		{"FullDayWrap", "08:00", 24 * 60, "08:00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := AdvanceClock(tc.clock, tc.minutes)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("InvalidClock", func(t *testing.T) {
		_, err := AdvanceClock("25:99", 10)
		assert.Error(t, err)
	})
}
