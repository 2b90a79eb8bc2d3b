package service

import (
	"testing"
	"time"

	"rentmimi/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appWith(form models.PartnerForm) models.PartnerApplication {
	form.AvailableForBooking = true
	return models.PartnerApplication{Form: form}
}

func TestAvailableOn(t *testing.T) {
	// 2026-09-07 is a Monday
	monday, err := time.Parse(models.DateLayout, "2026-09-07")
	require.NoError(t, err)

	t.Run("MatchesWeekday", func(t *testing.T) {
		app := appWith(models.PartnerForm{AvailableDays: []string{"월", "수"}})
		assert.True(t, AvailableOn(app, monday))
	})

	t.Run("MatchesDateOverride", func(t *testing.T) {
		app := appWith(models.PartnerForm{AvailableDates: []string{"2026-09-07"}})
		assert.True(t, AvailableOn(app, monday))
	})

	t.Run("EitherSideOfTheOrSuffices", func(t *testing.T) {
		app := appWith(models.PartnerForm{
			AvailableDays:  []string{"토"},
			AvailableDates: []string{"2026-09-07"},
		})
		assert.True(t, AvailableOn(app, monday))
	})

	t.Run("NoMatch", func(t *testing.T) {
		app := appWith(models.PartnerForm{
			AvailableDays:  []string{"토", "일"},
			AvailableDates: []string{"2026-09-08"},
		})
		assert.False(t, AvailableOn(app, monday))
	})

	t.Run("EmptyFormNeverAvailable", func(t *testing.T) {
		assert.False(t, AvailableOn(appWith(models.PartnerForm{}), monday))
	})
}

func TestFilterAvailable(t *testing.T) {
	monday, _ := time.Parse(models.DateLayout, "2026-09-07")

	open := appWith(models.PartnerForm{Name: "a", AvailableDays: []string{"월"}})
	closed := models.PartnerApplication{Form: models.PartnerForm{
		Name:          "b",
		AvailableDays: []string{"월"},
	}}
	offDay := appWith(models.PartnerForm{Name: "c", AvailableDays: []string{"금"}})

	got := FilterAvailable([]models.PartnerApplication{open, closed, offDay}, monday)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Form.Name)
}

func TestHaversine(t *testing.T) {
	t.Run("ZeroDistance", func(t *testing.T) {
		assert.InDelta(t, 0, Haversine(37.5665, 126.9780, 37.5665, 126.9780), 1e-9)
	})

	t.Run("SeoulToBusan", func(t *testing.T) {
		d := Haversine(37.5665, 126.9780, 35.1796, 129.0756)
		assert.InDelta(t, 325, d, 5)
	})
}

func TestSortByDistance(t *testing.T) {
	far := appWith(models.PartnerForm{Name: "busan", Latitude: 35.1796, Longitude: 129.0756})
	near := appWith(models.PartnerForm{Name: "seoul", Latitude: 37.57, Longitude: 126.98})
	noCoords := appWith(models.PartnerForm{Name: "unknown"})

	apps := []models.PartnerApplication{noCoords, far, near}
	SortByDistance(apps, 37.5665, 126.9780)

	assert.Equal(t, "seoul", apps[0].Form.Name)
	assert.Equal(t, "busan", apps[1].Form.Name)
	assert.Equal(t, "unknown", apps[2].Form.Name)
}
