package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rentmimi/internal/database"
	"rentmimi/internal/metrics"
	"rentmimi/internal/models"
	"rentmimi/internal/service"
)

func (s *HTTPServer) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Phone    string `json:"phone"`
		Nickname string `json:"nickname"`
		Region   string `json:"region"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := s.users.Signup(r.Context(), body.Phone, body.Nickname, body.Region)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		bookings, err := s.bookings.BookingsFor(r.Context(), s.actor(r))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})

	case http.MethodPost:
		var req models.Booking
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		if msg := s.checkBookingLimits(req.Date, req.DurationHours); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		booking, err := s.bookings.CreateBooking(r.Context(), s.actor(r), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		metrics.IncTransition(booking.Status)
		writeJSON(w, http.StatusCreated, booking)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// checkBookingLimits enforces the configured submission bounds. A zero
// limit disables its check. Returns an empty string when the request fits.
func (s *HTTPServer) checkBookingLimits(date string, durationHours int) string {
	if max := s.booking.MaxDurationHours; max > 0 && durationHours > max {
		return fmt.Sprintf("duration may not exceed %d hours", max)
	}
	if days := s.booking.MaxBookingDays; days > 0 {
		if parsed, err := time.Parse(models.DateLayout, date); err == nil {
			if parsed.After(time.Now().AddDate(0, 0, days)) {
				return fmt.Sprintf("date may not be more than %d days ahead", days)
			}
		}
	}
	return ""
}

// handleBookingSubroutes dispatches /api/v1/bookings/{id}[/action].
func (s *HTTPServer) handleBookingSubroutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/bookings/")
	parts := strings.SplitN(strings.Trim(rest, "/"), "/", 3)
	id := strings.TrimSpace(parts[0])
	if id == "" {
		writeError(w, http.StatusBadRequest, "booking id is required")
		return
	}

	action := ""
	if len(parts) > 1 {
		action = parts[1]
		if len(parts) > 2 {
			action += "/" + parts[2]
		}
	}

	if action == "" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		booking, err := s.bookings.GetBooking(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	actor := s.actor(r)
	ctx := r.Context()

	var err error
	switch action {
	case "approve":
		err = s.bookings.Approve(ctx, actor, id)
		s.countTransition(err, models.StatusAwaitingPayment)
	case "decline":
		err = s.bookings.Decline(ctx, actor, id)
		s.countTransition(err, models.StatusRejected)
	case "confirm-payment":
		err = s.bookings.ConfirmPayment(ctx, actor, id)
		s.countTransition(err, models.StatusApproved)
	case "complete":
		err = s.bookings.Complete(ctx, actor, id)
		s.countTransition(err, models.StatusCompleted)
	case "assign":
		var body struct {
			ApplicationID string `json:"application_id"`
		}
		if decodeErr := decodeBody(r, &body); decodeErr != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		err = s.bookings.AssignPartner(ctx, actor, id, body.ApplicationID)
	case "payout":
		err = s.bookings.CompletePayout(ctx, actor, id)
	case "extend":
		var body struct {
			ExtraHours int `json:"extra_hours"`
		}
		if decodeErr := decodeBody(r, &body); decodeErr != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if max := s.booking.MaxDurationHours; max > 0 {
			if current, getErr := s.bookings.GetBooking(ctx, id); getErr == nil && current.DurationHours+body.ExtraHours > max {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("duration may not exceed %d hours", max))
				return
			}
		}
		err = s.bookings.Extend(ctx, actor, id, body.ExtraHours)
	case "review":
		var review models.Review
		if decodeErr := decodeBody(r, &review); decodeErr != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		err = s.bookings.AddClientReview(ctx, actor, id, review)
	case "mimi-review":
		var review models.Review
		if decodeErr := decodeBody(r, &review); decodeErr != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		err = s.bookings.AddMimiReview(ctx, actor, id, review)
	case "adjustment":
		s.handleAdjustmentRequest(w, r, actor, id)
		return
	case "adjustment/respond":
		var body struct {
			Accepted bool `json:"accepted"`
		}
		if decodeErr := decodeBody(r, &body); decodeErr != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		err = s.bookings.RespondAdjustment(ctx, actor, id, body.Accepted)
	case "outfit":
		var info models.OutfitInfo
		if decodeErr := decodeBody(r, &info); decodeErr != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		err = s.bookings.SubmitOutfitInfo(ctx, actor, id, info)
	case "chat":
		var body struct {
			Text string `json:"text"`
		}
		if decodeErr := decodeBody(r, &body); decodeErr != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		err = s.bookings.AppendChatMessage(ctx, actor, id, body.Text)
	default:
		writeError(w, http.StatusNotFound, "unknown action")
		return
	}

	if err != nil {
		writeServiceError(w, err)
		return
	}

	booking, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleAdjustmentRequest(w http.ResponseWriter, r *http.Request, actor models.User, id string) {
	var body struct {
		Type         string `json:"type"`
		DelayMinutes int    `json:"delay_minutes"`
		NewLocation  string `json:"new_location"`
		Reason       string `json:"reason"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// The requester party is resolved by the service from actor and
	// booking; only the payload is taken from the request.
	adj := models.MeetingAdjustment{
		Type:         models.AdjustmentType(body.Type),
		DelayMinutes: body.DelayMinutes,
		NewLocation:  body.NewLocation,
		Reason:       body.Reason,
	}

	if err := s.bookings.RequestAdjustment(r.Context(), actor, id, adj); err != nil {
		writeServiceError(w, err)
		return
	}

	booking, err := s.bookings.GetBooking(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handlePartners(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handlePartnerList(w, r)

	case http.MethodPost:
		var form models.PartnerForm
		if err := decodeBody(r, &form); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		app, err := s.partners.SubmitApplication(r.Context(), s.actor(r), form)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, app)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handlePartnerList returns applications, optionally filtered by an
// availability date and sorted by distance from lat/lon.
func (s *HTTPServer) handlePartnerList(w http.ResponseWriter, r *http.Request) {
	var (
		apps []models.PartnerApplication
		err  error
	)

	if dateStr := strings.TrimSpace(r.URL.Query().Get("date")); dateStr != "" {
		date, parseErr := time.Parse(models.DateLayout, dateStr)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
		apps, err = s.partners.AvailableOn(r.Context(), date)
	} else {
		apps, err = s.partners.Applications(r.Context())
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	latStr := strings.TrimSpace(r.URL.Query().Get("lat"))
	lonStr := strings.TrimSpace(r.URL.Query().Get("lon"))
	if latStr != "" && lonStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lon, lonErr := strconv.ParseFloat(lonStr, 64)
		if latErr != nil || lonErr != nil {
			writeError(w, http.StatusBadRequest, "invalid lat/lon")
			return
		}
		service.SortByDistance(apps, lat, lon)
	}

	writeJSON(w, http.StatusOK, map[string]any{"partners": apps})
}

// handlePartnerSubroutes dispatches /api/v1/partners/{id}/{action}.
func (s *HTTPServer) handlePartnerSubroutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/partners/")
	parts := strings.SplitN(strings.Trim(rest, "/"), "/", 2)
	id := strings.TrimSpace(parts[0])
	if id == "" || len(parts) < 2 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	actor := s.actor(r)
	ctx := r.Context()

	var err error
	switch parts[1] {
	case "availability":
		var body struct {
			Available bool `json:"available"`
		}
		if decodeErr := decodeBody(r, &body); decodeErr != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		err = s.partners.SetAvailability(ctx, actor, id, body.Available)
	case "dates":
		var body struct {
			Dates []string `json:"dates"`
		}
		if decodeErr := decodeBody(r, &body); decodeErr != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		err = s.partners.SetAvailableDates(ctx, actor, id, body.Dates)
	case "grade":
		var body struct {
			Grade string `json:"grade"`
		}
		if decodeErr := decodeBody(r, &body); decodeErr != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		err = s.partners.SetGrade(ctx, actor, id, body.Grade)
	case "recommended":
		var body struct {
			Recommended bool `json:"recommended"`
		}
		if decodeErr := decodeBody(r, &body); decodeErr != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		err = s.partners.SetRecommended(ctx, actor, id, body.Recommended)
	case "profile":
		var profile models.PublicProfile
		if decodeErr := decodeBody(r, &profile); decodeErr != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		err = s.partners.SetPublicProfile(ctx, actor, id, &profile)
	default:
		writeError(w, http.StatusNotFound, "unknown action")
		return
	}

	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handlePendingPayouts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	actor := s.actor(r)
	if !actor.HasRole(models.RoleAdmin) {
		writeError(w, http.StatusForbidden, "admin role required")
		return
	}

	lines, err := s.bookings.PendingPayouts(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var total int64
	for _, line := range lines {
		total += line.Amount
	}
	writeJSON(w, http.StatusOK, map[string]any{"payouts": lines, "total": total})
}

func (s *HTTPServer) handlePayoutExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	actor := s.actor(r)
	if !actor.HasRole(models.RoleAdmin) {
		writeError(w, http.StatusForbidden, "admin role required")
		return
	}

	lines, err := s.bookings.PendingPayouts(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	path, err := s.exporter.PayoutLedger(lines)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"file": path})
}

func (s *HTTPServer) handleStories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		stories, err := s.stories.Stories(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"stories": stories})

	case http.MethodPost:
		var body struct {
			Content string `json:"content"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		story, err := s.stories.PostStory(r.Context(), s.actor(r), body.Content)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, story)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) countTransition(err error, status string) {
	if err == nil {
		metrics.IncTransition(status)
	}
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	return decoder.Decode(dst)
}

// writeServiceError maps service sentinels onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrBookingNotFound),
		errors.Is(err, database.ErrUserNotFound),
		errors.Is(err, database.ErrApplicationNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrActorNotAllowed):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, database.ErrInvalidTransition),
		errors.Is(err, database.ErrPartnerNotAssigned),
		errors.Is(err, database.ErrNotCompleted),
		errors.Is(err, database.ErrNotApproved),
		errors.Is(err, database.ErrAdjustmentPending),
		errors.Is(err, database.ErrNoAdjustment):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrInvalidDuration),
		errors.Is(err, database.ErrInvalidSchedule),
		errors.Is(err, database.ErrInvalidAdjustment),
		errors.Is(err, database.ErrMimiUnavailable),
		errors.Is(err, database.ErrUnknownPlan),
		errors.Is(err, database.ErrEmptyContent):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
