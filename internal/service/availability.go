package service

import (
	"math"
	"sort"
	"time"

	"rentmimi/internal/models"
)

// AvailableOn reports whether the partner is bookable on the date: the
// date's weekday appears in the weekly day list OR the date string appears
// verbatim in the explicit override list. Logical OR, no exceptions.
func AvailableOn(app models.PartnerApplication, date time.Time) bool {
	day := models.WeekdayName(date)
	for _, d := range app.Form.AvailableDays {
		if d == day {
			return true
		}
	}
	dateStr := date.Format(models.DateLayout)
	for _, d := range app.Form.AvailableDates {
		if d == dateStr {
			return true
		}
	}
	return false
}

// FilterAvailable keeps the applications open for booking and available on
// the date.
func FilterAvailable(apps []models.PartnerApplication, date time.Time) []models.PartnerApplication {
	out := make([]models.PartnerApplication, 0, len(apps))
	for _, app := range apps {
		if app.Form.AvailableForBooking && AvailableOn(app, date) {
			out = append(out, app)
		}
	}
	return out
}

const earthRadiusKm = 6371

// Haversine returns the great-circle distance between two lat/lon pairs in
// kilometers.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	rLat1 := toRad(lat1)
	rLat2 := toRad(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(rLat1)*math.Cos(rLat2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// SortByDistance orders applications nearest-first from the given point.
// Applications without coordinates sort last. The sort is stable so equal
// distances keep roster order.
func SortByDistance(apps []models.PartnerApplication, lat, lon float64) {
	distance := func(app models.PartnerApplication) float64 {
		if app.Form.Latitude == 0 && app.Form.Longitude == 0 {
			return math.Inf(1)
		}
		return Haversine(lat, lon, app.Form.Latitude, app.Form.Longitude)
	}
	sort.SliceStable(apps, func(i, j int) bool {
		return distance(apps[i]) < distance(apps[j])
	})
}
