package database

import "errors"

var (
	// ErrInvalidTransition is returned for a status change the state
	// machine does not allow from the booking's current status.
	ErrInvalidTransition = errors.New("invalid booking status transition")

	// ErrPartnerNotAssigned blocks approval of a booking that has no
	// partner yet; admin must run assignment first.
	ErrPartnerNotAssigned = errors.New("no partner assigned to booking")

	// ErrActorNotAllowed is returned when the acting user holds none of
	// the roles the transition accepts.
	ErrActorNotAllowed = errors.New("actor is not allowed to perform this action")

	// ErrNotCompleted guards review submission and payout updates.
	ErrNotCompleted = errors.New("booking is not completed")

	// ErrNotApproved guards sub-protocols that only run on an approved
	// booking (meeting adjustment, secure chat, outfit exchange).
	ErrNotApproved = errors.New("booking is not approved")

	// ErrAdjustmentPending rejects a new adjustment request while one is
	// still unresolved.
	ErrAdjustmentPending = errors.New("an adjustment request is already pending")

	// ErrNoAdjustment is returned when responding to a booking without a
	// pending adjustment request.
	ErrNoAdjustment = errors.New("no pending adjustment request")

	// ErrInvalidDuration rejects non-positive booking durations.
	ErrInvalidDuration = errors.New("duration must be at least one hour")

	// ErrInvalidSchedule rejects malformed booking date/time values.
	ErrInvalidSchedule = errors.New("invalid booking date or time")

	// ErrMimiUnavailable rejects booking a mimi on a date outside her
	// explicit available-dates list.
	ErrMimiUnavailable = errors.New("mimi is not available on the requested date")

	// ErrInvalidAdjustment rejects an adjustment request whose payload
	// does not match its type.
	ErrInvalidAdjustment = errors.New("invalid adjustment request")

	// ErrUnknownPlan rejects plan keys absent from the rate card.
	ErrUnknownPlan = errors.New("unknown plan")

	// ErrEmptyContent rejects blank story or chat text.
	ErrEmptyContent = errors.New("content must not be empty")

	ErrBookingNotFound     = errors.New("booking not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrApplicationNotFound = errors.New("partner application not found")
)
