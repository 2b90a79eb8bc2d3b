package service

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"rentmimi/internal/database"
	"rentmimi/internal/domain"
	"rentmimi/internal/events"
	"rentmimi/internal/metrics"
	"rentmimi/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BookingSvc drives the booking lifecycle:
//
//	pending -> awaiting_payment -> approved -> completed
//	pending -> rejected
//
// rejected and completed are terminal. Every mutation persists the whole
// bookings collection through the store before an event is published, so a
// failed write never leaves half-applied state visible to consumers.
type BookingSvc struct {
	store    domain.Store
	eventBus domain.EventPublisher
	worker   domain.SyncWorker
	logger   *zerolog.Logger
	randFn   func(n int) int
}

func NewBookingService(store domain.Store, eventBus domain.EventPublisher, worker domain.SyncWorker, logger *zerolog.Logger) *BookingSvc {
	return &BookingSvc{
		store:    store,
		eventBus: eventBus,
		worker:   worker,
		logger:   logger,
		randFn:   rand.Intn,
	}
}

// CreateBooking validates the request, prices it and stores it as pending.
// The computed total is fixed at creation time together with the option
// set; neither is recomputed later.
func (s *BookingSvc) CreateBooking(ctx context.Context, actor models.User, req models.Booking) (*models.Booking, error) {
	if _, err := time.Parse(models.DateLayout, req.Date); err != nil {
		return nil, database.ErrInvalidSchedule
	}
	if _, err := time.Parse(models.TimeLayout, req.Time); err != nil {
		return nil, database.ErrInvalidSchedule
	}

	// A mimi who published an explicit date list only takes direct
	// requests on those dates. Weekday availability does not narrow this;
	// an unknown phone degrades to an unassigned booking.
	if req.MimiPhone != "" {
		if app, appErr := s.store.ApplicationByPhone(ctx, req.MimiPhone); appErr == nil && len(app.Form.AvailableDates) > 0 {
			listed := false
			for _, d := range app.Form.AvailableDates {
				if d == req.Date {
					listed = true
					break
				}
			}
			if !listed {
				return nil, database.ErrMimiUnavailable
			}
		}
	}

	total, err := Price(req.Plan, req.DurationHours, req.Options)
	if err != nil {
		return nil, err
	}

	booking := models.Booking{
		ID:            uuid.NewString(),
		ClientPhone:   actor.Phone,
		ClientName:    actor.Nickname,
		MimiPhone:     req.MimiPhone,
		MimiName:      req.MimiName,
		Date:          req.Date,
		Time:          req.Time,
		DurationHours: req.DurationHours,
		Plan:          req.Plan,
		Location:      req.Location,
		Details:       req.Details,
		Options:       req.Options,
		TotalCost:     total,
		Status:        models.StatusPending,
		PayoutStatus:  models.PayoutNone,
	}

	if err := s.store.UpsertBooking(ctx, &booking); err != nil {
		return nil, err
	}

	s.publishEvent(events.EventBookingCreated, booking, actor)
	s.enqueueUpsert(ctx, booking)

	return &booking, nil
}

// Approve moves pending -> awaiting_payment. Admin or the assigned partner
// may trigger it, and only once a partner is assigned; the client pays
// out-of-band afterwards.
func (s *BookingSvc) Approve(ctx context.Context, actor models.User, bookingID string) error {
	booking, err := s.store.BookingByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Status != models.StatusPending {
		return database.ErrInvalidTransition
	}
	if !booking.HasPartner() {
		return database.ErrPartnerNotAssigned
	}
	if !actor.HasRole(models.RoleAdmin) && actor.Phone != booking.MimiPhone {
		return database.ErrActorNotAllowed
	}

	booking.Status = models.StatusAwaitingPayment
	if err := s.store.UpsertBooking(ctx, booking); err != nil {
		return err
	}

	s.publishEvent(events.EventBookingApproved, *booking, actor)
	s.enqueueStatus(ctx, booking.ID, booking.Status)
	return nil
}

// Decline moves pending -> rejected; only the assigned partner declines.
// Terminal.
func (s *BookingSvc) Decline(ctx context.Context, actor models.User, bookingID string) error {
	booking, err := s.store.BookingByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Status != models.StatusPending {
		return database.ErrInvalidTransition
	}
	if actor.Phone != booking.MimiPhone || !actor.HasRole(models.RolePartner) {
		return database.ErrActorNotAllowed
	}

	booking.Status = models.StatusRejected
	if err := s.store.UpsertBooking(ctx, booking); err != nil {
		return err
	}

	s.publishEvent(events.EventBookingRejected, *booking, actor)
	s.enqueueStatus(ctx, booking.ID, booking.Status)
	return nil
}

// ConfirmPayment moves awaiting_payment -> approved once an admin has
// reconciled the bank transfer by hand. There is no automated payment
// verification anywhere in the system.
func (s *BookingSvc) ConfirmPayment(ctx context.Context, actor models.User, bookingID string) error {
	if !actor.HasRole(models.RoleAdmin) {
		return database.ErrActorNotAllowed
	}

	booking, err := s.store.BookingByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Status != models.StatusAwaitingPayment {
		return database.ErrInvalidTransition
	}

	booking.Status = models.StatusApproved
	if err := s.store.UpsertBooking(ctx, booking); err != nil {
		return err
	}

	s.publishEvent(events.EventPaymentConfirmed, *booking, actor)
	s.enqueueStatus(ctx, booking.ID, booking.Status)
	return nil
}

// Complete moves approved -> completed and flips payout status to pending.
// A booking that somehow reached this point without a partner gets one
// drawn uniformly at random from the partner-role users so the payout
// ledger never carries an orphaned row.
func (s *BookingSvc) Complete(ctx context.Context, actor models.User, bookingID string) error {
	if !actor.HasRole(models.RoleAdmin) {
		return database.ErrActorNotAllowed
	}

	booking, err := s.store.BookingByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Status != models.StatusApproved {
		return database.ErrInvalidTransition
	}

	booking.Status = models.StatusCompleted
	booking.PayoutStatus = models.PayoutPending

	if !booking.HasPartner() {
		partners, err := s.store.UsersByRole(ctx, models.RolePartner)
		if err != nil {
			return err
		}
		if len(partners) > 0 {
			pick := partners[s.randFn(len(partners))]
			booking.MimiPhone = pick.Phone
			booking.MimiName = pick.Nickname
			s.logger.Warn().Str("booking_id", booking.ID).Str("mimi_phone", pick.Phone).
				Msg("completed booking had no partner; auto-assigned at random")
		} else {
			s.logger.Warn().Str("booking_id", booking.ID).
				Msg("completed booking has no partner and none could be auto-assigned")
		}
	}

	if err := s.store.UpsertBooking(ctx, booking); err != nil {
		return err
	}

	s.publishEvent(events.EventBookingCompleted, *booking, actor)
	s.publishPayoutReady(ctx, *booking, actor)
	s.enqueueStatus(ctx, booking.ID, booking.Status)
	return nil
}

// AssignPartner puts an application's applicant onto the booking. Only
// applications flagged available for booking qualify. An unknown
// application id is a no-op: assignment is a recoverable display state.
func (s *BookingSvc) AssignPartner(ctx context.Context, actor models.User, bookingID, applicationID string) error {
	if !actor.HasRole(models.RoleAdmin) {
		return database.ErrActorNotAllowed
	}

	booking, err := s.store.BookingByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Status == models.StatusRejected || booking.Status == models.StatusCompleted {
		return database.ErrInvalidTransition
	}

	app, err := s.store.ApplicationByID(ctx, applicationID)
	if err != nil {
		s.logger.Warn().Str("booking_id", bookingID).Str("application_id", applicationID).
			Msg("assignment skipped: application not found")
		return nil
	}
	if !app.Form.AvailableForBooking {
		return database.ErrActorNotAllowed
	}

	booking.MimiPhone = app.Applicant.Phone
	booking.MimiName = app.Applicant.Nickname
	if err := s.store.UpsertBooking(ctx, booking); err != nil {
		return err
	}

	s.publishEvent(events.EventPartnerAssigned, *booking, actor)
	s.enqueueUpsert(ctx, *booking)
	return nil
}

// CompletePayout marks a pending payout as paid. Payout status is only
// meaningful on a completed booking.
func (s *BookingSvc) CompletePayout(ctx context.Context, actor models.User, bookingID string) error {
	if !actor.HasRole(models.RoleAdmin) {
		return database.ErrActorNotAllowed
	}

	booking, err := s.store.BookingByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Status != models.StatusCompleted {
		return database.ErrNotCompleted
	}
	if booking.PayoutStatus != models.PayoutPending {
		return database.ErrInvalidTransition
	}

	booking.PayoutStatus = models.PayoutCompleted
	if err := s.store.UpsertBooking(ctx, booking); err != nil {
		return err
	}

	if app, appErr := s.store.ApplicationByPhone(ctx, booking.MimiPhone); appErr == nil {
		metrics.AddPayout(PayoutFor(*booking, app))
	}

	s.publishEvent(events.EventPayoutCompleted, *booking, actor)
	return nil
}

// AddClientReview stores the client's review on a completed booking.
// Resubmission overwrites; there is never more than one client review.
func (s *BookingSvc) AddClientReview(ctx context.Context, actor models.User, bookingID string, review models.Review) error {
	booking, err := s.store.BookingByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if actor.Phone != booking.ClientPhone {
		return database.ErrActorNotAllowed
	}
	if booking.Status != models.StatusCompleted {
		return database.ErrNotCompleted
	}

	review.IsFeatured = false
	booking.Review = &review
	return s.store.UpsertBooking(ctx, booking)
}

// AddMimiReview stores the partner's review of the client, same rules.
func (s *BookingSvc) AddMimiReview(ctx context.Context, actor models.User, bookingID string, review models.Review) error {
	booking, err := s.store.BookingByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if actor.Phone != booking.MimiPhone {
		return database.ErrActorNotAllowed
	}
	if booking.Status != models.StatusCompleted {
		return database.ErrNotCompleted
	}

	booking.MimiReview = &review
	return s.store.UpsertBooking(ctx, booking)
}

// Extend adds hours to an approved booking at the plan's hourly rate.
// Options are priced once at creation and do not scale with the extension.
func (s *BookingSvc) Extend(ctx context.Context, actor models.User, bookingID string, extraHours int) error {
	booking, err := s.store.BookingByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if actor.Phone != booking.ClientPhone {
		return database.ErrActorNotAllowed
	}
	if booking.Status != models.StatusApproved {
		return database.ErrInvalidTransition
	}

	cost, err := ExtensionCost(booking.Plan, extraHours)
	if err != nil {
		return err
	}

	booking.DurationHours += extraHours
	booking.TotalCost += cost
	if err := s.store.UpsertBooking(ctx, booking); err != nil {
		return err
	}

	s.enqueueUpsert(ctx, *booking)
	return nil
}

// RequestAdjustment raises a time or location change request on an approved
// booking. Only one unresolved request may exist at a time.
func (s *BookingSvc) RequestAdjustment(ctx context.Context, actor models.User, bookingID string, adj models.MeetingAdjustment) error {
	booking, err := s.store.BookingByID(ctx, bookingID)
	if err != nil {
		return err
	}

	party, err := s.partyOf(actor, booking)
	if err != nil {
		return err
	}
	if booking.Status != models.StatusApproved {
		return database.ErrNotApproved
	}
	if booking.Adjustment != nil && booking.Adjustment.Status == models.AdjustmentPending {
		return database.ErrAdjustmentPending
	}

	switch adj.Type {
	case models.AdjustmentTime:
		if adj.DelayMinutes <= 0 {
			return database.ErrInvalidAdjustment
		}
	case models.AdjustmentLocation:
		if adj.NewLocation == "" {
			return database.ErrInvalidAdjustment
		}
	default:
		return database.ErrInvalidAdjustment
	}

	adj.Requester = party
	adj.Status = models.AdjustmentPending
	adj.RequestedAt = time.Now()
	booking.Adjustment = &adj

	if err := s.store.UpsertBooking(ctx, booking); err != nil {
		return err
	}

	s.publishEvent(events.EventAdjustmentRequested, *booking, actor)
	return nil
}

// RespondAdjustment lets the counterparty accept or reject the pending
// request. Accepting a time request advances the stored meeting time by the
// offset; accepting a location request replaces the location. A rejected
// request mutates nothing but stays on the booking for display.
func (s *BookingSvc) RespondAdjustment(ctx context.Context, actor models.User, bookingID string, accepted bool) error {
	booking, err := s.store.BookingByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Adjustment == nil || booking.Adjustment.Status != models.AdjustmentPending {
		return database.ErrNoAdjustment
	}

	party, err := s.partyOf(actor, booking)
	if err != nil {
		return err
	}
	if party != booking.Adjustment.Requester.Counterparty() {
		return database.ErrActorNotAllowed
	}

	if accepted {
		switch booking.Adjustment.Type {
		case models.AdjustmentTime:
			newTime, err := AdvanceClock(booking.Time, booking.Adjustment.DelayMinutes)
			if err != nil {
				return err
			}
			booking.Time = newTime
		case models.AdjustmentLocation:
			booking.Location = booking.Adjustment.NewLocation
		}
		booking.Adjustment.Status = models.AdjustmentAccepted
	} else {
		booking.Adjustment.Status = models.AdjustmentRejected
	}

	if err := s.store.UpsertBooking(ctx, booking); err != nil {
		return err
	}

	s.publishEvent(events.EventAdjustmentResolved, *booking, actor)
	s.enqueueUpsert(ctx, *booking)
	return nil
}

// SubmitOutfitInfo records one party's outfit description on an approved
// booking.
func (s *BookingSvc) SubmitOutfitInfo(ctx context.Context, actor models.User, bookingID string, info models.OutfitInfo) error {
	booking, err := s.store.BookingByID(ctx, bookingID)
	if err != nil {
		return err
	}

	party, err := s.partyOf(actor, booking)
	if err != nil {
		return err
	}
	if booking.Status != models.StatusApproved {
		return database.ErrNotApproved
	}

	if booking.Outfit == nil {
		booking.Outfit = &models.OutfitExchange{}
	}
	if party == models.PartyClient {
		booking.Outfit.Client = &info
	} else {
		booking.Outfit.Mimi = &info
	}

	return s.store.UpsertBooking(ctx, booking)
}

// AppendChatMessage adds a message to the booking's secure chat log. The
// log is append-only.
func (s *BookingSvc) AppendChatMessage(ctx context.Context, actor models.User, bookingID, text string) error {
	booking, err := s.store.BookingByID(ctx, bookingID)
	if err != nil {
		return err
	}

	party, err := s.partyOf(actor, booking)
	if err != nil {
		return err
	}
	if booking.Status != models.StatusApproved {
		return database.ErrNotApproved
	}
	if strings.TrimSpace(text) == "" {
		return database.ErrEmptyContent
	}

	booking.Chat = append(booking.Chat, models.ChatMessage{
		Sender: party,
		Text:   text,
		SentAt: time.Now(),
	})
	return s.store.UpsertBooking(ctx, booking)
}

func (s *BookingSvc) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.store.BookingByID(ctx, id)
}

// BookingsFor returns everything an admin can see, or the union of the
// actor's own bookings and the ones assigned to them.
func (s *BookingSvc) BookingsFor(ctx context.Context, actor models.User) ([]models.Booking, error) {
	if actor.HasRole(models.RoleAdmin) {
		return s.store.Bookings(ctx)
	}

	own, err := s.store.BookingsByClient(ctx, actor.Phone)
	if err != nil {
		return nil, err
	}
	if !actor.HasRole(models.RolePartner) {
		return own, nil
	}

	assigned, err := s.store.BookingsByMimi(ctx, actor.Phone)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(own))
	for _, b := range own {
		seen[b.ID] = true
	}
	for _, b := range assigned {
		if !seen[b.ID] {
			own = append(own, b)
		}
	}
	return own, nil
}

// PendingPayouts builds the ledger of completed bookings whose payout has
// not been paid yet, joined with each partner's application for the grade.
func (s *BookingSvc) PendingPayouts(ctx context.Context) ([]models.PayoutLine, error) {
	bookings, err := s.store.Bookings(ctx)
	if err != nil {
		return nil, err
	}

	var lines []models.PayoutLine
	for _, b := range bookings {
		if b.Status != models.StatusCompleted || b.PayoutStatus != models.PayoutPending || !b.HasPartner() {
			continue
		}

		line := models.PayoutLine{Booking: b, MimiName: b.MimiName}
		app, err := s.store.ApplicationByPhone(ctx, b.MimiPhone)
		if err == nil {
			line.ApplicationID = app.ID
			line.Grade = app.Form.Grade
			line.MimiName = app.DisplayName()
			line.Amount = PayoutFor(b, app)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *BookingSvc) partyOf(actor models.User, booking *models.Booking) (models.Party, error) {
	switch actor.Phone {
	case booking.ClientPhone:
		return models.PartyClient, nil
	case booking.MimiPhone:
		if booking.MimiPhone != "" {
			return models.PartyMimi, nil
		}
	}
	return "", database.ErrActorNotAllowed
}

func (s *BookingSvc) publishEvent(eventType string, booking models.Booking, actor models.User) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		ClientPhone: booking.ClientPhone,
		ClientName:  booking.ClientName,
		MimiPhone:   booking.MimiPhone,
		MimiName:    booking.MimiName,
		Status:      booking.Status,
		Date:        booking.Date,
		Time:        booking.Time,
		TotalCost:   booking.TotalCost,
		ChangedBy:   actor.Phone,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingSvc) publishPayoutReady(ctx context.Context, booking models.Booking, actor models.User) {
	if s.eventBus == nil {
		return
	}

	var amount int64
	if app, err := s.store.ApplicationByPhone(ctx, booking.MimiPhone); err == nil {
		amount = PayoutFor(booking, app)
	}

	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		ClientPhone: booking.ClientPhone,
		ClientName:  booking.ClientName,
		MimiPhone:   booking.MimiPhone,
		MimiName:    booking.MimiName,
		Status:      booking.Status,
		Date:        booking.Date,
		Time:        booking.Time,
		TotalCost:   booking.TotalCost,
		Payout:      amount,
		ChangedBy:   actor.Phone,
	}

	if err := s.eventBus.PublishJSON(events.EventPayoutReady, payload); err != nil {
		s.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("publish payout_ready error")
	}

	if s.worker != nil && booking.HasPartner() {
		if err := s.worker.EnqueuePayout(ctx, &booking, amount); err != nil {
			s.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("payout sheet enqueue error")
		}
	}
}

func (s *BookingSvc) enqueueUpsert(ctx context.Context, booking models.Booking) {
	if s.worker == nil {
		return
	}
	if err := s.worker.EnqueueUpsert(ctx, &booking); err != nil {
		s.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("sheets enqueue error")
	}
}

func (s *BookingSvc) enqueueStatus(ctx context.Context, bookingID, status string) {
	if s.worker == nil {
		return
	}
	if err := s.worker.EnqueueStatus(ctx, bookingID, status); err != nil {
		s.logger.Error().Err(err).Str("booking_id", bookingID).Str("status", status).Msg("sheets enqueue error")
	}
}
