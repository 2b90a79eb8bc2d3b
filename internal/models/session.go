package models

import "time"

// Session caches the resolved acting user between API calls. The identity
// flow itself (phone OTP) lives outside this service; the session repository
// only keeps the already-authenticated user snapshot warm.
type Session struct {
	Phone      string    `json:"phone"`
	Nickname   string    `json:"nickname"`
	ActiveRole Role      `json:"active_role,omitempty"`
	SeenAt     time.Time `json:"seen_at"`
}
