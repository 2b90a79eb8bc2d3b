package models

// PayoutLine is one row of the pending-payout ledger: a completed booking
// joined with its partner's application and the computed amount.
type PayoutLine struct {
	Booking       Booking `json:"booking"`
	ApplicationID string  `json:"application_id"`
	MimiName      string  `json:"mimi_name"`
	Grade         string  `json:"grade"`
	Amount        int64   `json:"amount"`
}
