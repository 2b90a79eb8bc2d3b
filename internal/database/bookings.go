package database

import (
	"context"
	"time"

	"rentmimi/internal/models"
)

// Bookings returns a copy of the bookings collection.
func (d *DB) Bookings(ctx context.Context) ([]models.Booking, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.Booking, len(d.bookings))
	copy(out, d.bookings)
	return out, nil
}

func (d *DB) BookingByID(ctx context.Context, id string) (*models.Booking, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.bookings {
		if d.bookings[i].ID == id {
			b := d.bookings[i]
			return &b, nil
		}
	}
	return nil, ErrBookingNotFound
}

// UpsertBooking replaces the booking with the same ID, or appends it, then
// persists the whole collection.
func (d *DB) UpsertBooking(ctx context.Context, booking *models.Booking) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	booking.UpdatedAt = now
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}

	replaced := false
	for i := range d.bookings {
		if d.bookings[i].ID == booking.ID {
			d.bookings[i] = *booking
			replaced = true
			break
		}
	}
	if !replaced {
		d.bookings = append(d.bookings, *booking)
	}

	return d.saveCollectionLocked(ctx, CollectionBookings, d.bookings)
}

// BookingsByClient returns the client's bookings, newest first.
func (d *DB) BookingsByClient(ctx context.Context, phone string) ([]models.Booking, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []models.Booking
	for i := len(d.bookings) - 1; i >= 0; i-- {
		if d.bookings[i].ClientPhone == phone {
			out = append(out, d.bookings[i])
		}
	}
	return out, nil
}

// BookingsByMimi returns bookings assigned to a partner, newest first.
func (d *DB) BookingsByMimi(ctx context.Context, phone string) ([]models.Booking, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []models.Booking
	for i := len(d.bookings) - 1; i >= 0; i-- {
		if d.bookings[i].MimiPhone == phone {
			out = append(out, d.bookings[i])
		}
	}
	return out, nil
}
