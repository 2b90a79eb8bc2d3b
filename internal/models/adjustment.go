package models

import "time"

type Party string

const (
	PartyClient Party = "client"
	PartyMimi   Party = "mimi"
)

// Counterparty returns the other side of a two-party exchange.
func (p Party) Counterparty() Party {
	if p == PartyClient {
		return PartyMimi
	}
	return PartyClient
}

type AdjustmentType string

const (
	AdjustmentTime     AdjustmentType = "time"
	AdjustmentLocation AdjustmentType = "location"
)

const (
	AdjustmentPending  = "pending"
	AdjustmentAccepted = "accepted"
	AdjustmentRejected = "rejected"
)

// MeetingAdjustment is a two-party negotiation attached to an approved
// booking. Exactly one of DelayMinutes/NewLocation carries the request
// payload, selected by Type.
type MeetingAdjustment struct {
	Requester    Party          `json:"requester"`
	Type         AdjustmentType `json:"type"`
	DelayMinutes int            `json:"delay_minutes,omitempty"`
	NewLocation  string         `json:"new_location,omitempty"`
	Reason       string         `json:"reason,omitempty"`
	Status       string         `json:"status"`
	RequestedAt  time.Time      `json:"requested_at"`
}

func NewTimeAdjustment(requester Party, delayMinutes int, reason string) MeetingAdjustment {
	return MeetingAdjustment{
		Requester:    requester,
		Type:         AdjustmentTime,
		DelayMinutes: delayMinutes,
		Reason:       reason,
		Status:       AdjustmentPending,
		RequestedAt:  time.Now(),
	}
}

func NewLocationAdjustment(requester Party, newLocation, reason string) MeetingAdjustment {
	return MeetingAdjustment{
		Requester:   requester,
		Type:        AdjustmentLocation,
		NewLocation: newLocation,
		Reason:      reason,
		Status:      AdjustmentPending,
		RequestedAt: time.Now(),
	}
}
