package models

import "time"

// BookingOptions is the fixed set of add-on options. Options are chosen at
// submission and never change afterwards; pricing and payout both read the
// creation-time set.
type BookingOptions struct {
	InstantPhotos bool `json:"instant_photos"`
	HandHolding   bool `json:"hand_holding"`
	Pool          bool `json:"pool"`
	Outfit        bool `json:"outfit"`
	Drive         bool `json:"drive"`
}

type Review struct {
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
	IsFeatured bool   `json:"is_featured,omitempty"`
}

type OutfitInfo struct {
	Description string `json:"description"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// OutfitExchange holds the per-party outfit descriptions for a booking.
type OutfitExchange struct {
	Client *OutfitInfo `json:"client,omitempty"`
	Mimi   *OutfitInfo `json:"mimi,omitempty"`
}

type ChatMessage struct {
	Sender Party     `json:"sender"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// Booking is the central transactional entity. Client and partner identity
// are denormalized snapshots taken at creation/assignment time so a booking
// row stays readable without joins against the user collection.
type Booking struct {
	ID            string           `json:"id"`
	ClientPhone   string           `json:"client_phone"`
	ClientName    string           `json:"client_name"`
	MimiPhone     string           `json:"mimi_phone,omitempty"`
	MimiName      string           `json:"mimi_name,omitempty"`
	Date          string           `json:"date"` // YYYY-MM-DD
	Time          string           `json:"time"` // HH:MM
	DurationHours int              `json:"duration_hours"`
	Plan          string           `json:"plan"`
	Location      string           `json:"location"`
	Details       string           `json:"details,omitempty"`
	Options       BookingOptions   `json:"options"`
	TotalCost     int64            `json:"total_cost"`
	Status        string           `json:"status"`
	PayoutStatus  string           `json:"payout_status"`
	Review        *Review          `json:"review,omitempty"`
	MimiReview    *Review          `json:"mimi_review,omitempty"`
	Outfit        *OutfitExchange  `json:"outfit,omitempty"`
	Adjustment    *MeetingAdjustment `json:"meeting_adjustment,omitempty"`
	Chat          []ChatMessage    `json:"secure_chat,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// HasPartner reports whether a partner has been assigned.
func (b *Booking) HasPartner() bool {
	return b.MimiPhone != ""
}
