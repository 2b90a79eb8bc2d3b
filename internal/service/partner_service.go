package service

import (
	"context"
	"time"

	"rentmimi/internal/database"
	"rentmimi/internal/domain"
	"rentmimi/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type PartnerSvc struct {
	store  domain.Store
	logger *zerolog.Logger
}

func NewPartnerService(store domain.Store, logger *zerolog.Logger) *PartnerSvc {
	return &PartnerSvc{store: store, logger: logger}
}

// SubmitApplication files the applicant's form and grants them the partner
// role. New applications start at BRONZE and available for booking unless
// the form says otherwise.
func (s *PartnerSvc) SubmitApplication(ctx context.Context, actor models.User, form models.PartnerForm) (*models.PartnerApplication, error) {
	if form.Grade == "" {
		form.Grade = models.GradeBronze
	}
	form.AvailableForBooking = true

	app := models.PartnerApplication{
		ID:        uuid.NewString(),
		Applicant: actor,
		Form:      form,
	}
	if err := s.store.UpsertApplication(ctx, &app); err != nil {
		return nil, err
	}

	actor.GrantRole(models.RolePartner)
	if err := s.store.UpsertUser(ctx, &actor); err != nil {
		return nil, err
	}

	return &app, nil
}

// SetAvailability toggles the booking-availability flag. Partners manage
// their own application; admin may manage any.
func (s *PartnerSvc) SetAvailability(ctx context.Context, actor models.User, applicationID string, available bool) error {
	app, err := s.authorizedApplication(ctx, actor, applicationID)
	if err != nil {
		return err
	}

	app.Form.AvailableForBooking = available
	return s.store.UpsertApplication(ctx, app)
}

// SetAvailableDates replaces the explicit date-override list.
func (s *PartnerSvc) SetAvailableDates(ctx context.Context, actor models.User, applicationID string, dates []string) error {
	app, err := s.authorizedApplication(ctx, actor, applicationID)
	if err != nil {
		return err
	}

	for _, d := range dates {
		if _, err := time.Parse(models.DateLayout, d); err != nil {
			return database.ErrInvalidSchedule
		}
	}

	app.Form.AvailableDates = dates
	return s.store.UpsertApplication(ctx, app)
}

// SetGrade is admin-only; the grade drives the payout rate card.
func (s *PartnerSvc) SetGrade(ctx context.Context, actor models.User, applicationID, grade string) error {
	if !actor.HasRole(models.RoleAdmin) {
		return database.ErrActorNotAllowed
	}
	if _, ok := models.GradeHourlyRates[grade]; !ok {
		return database.ErrInvalidTransition
	}

	app, err := s.store.ApplicationByID(ctx, applicationID)
	if err != nil {
		return err
	}

	app.Form.Grade = grade
	return s.store.UpsertApplication(ctx, app)
}

// SetRecommended is admin-only.
func (s *PartnerSvc) SetRecommended(ctx context.Context, actor models.User, applicationID string, recommended bool) error {
	if !actor.HasRole(models.RoleAdmin) {
		return database.ErrActorNotAllowed
	}

	app, err := s.store.ApplicationByID(ctx, applicationID)
	if err != nil {
		return err
	}

	app.IsRecommended = recommended
	return s.store.UpsertApplication(ctx, app)
}

// SetPublicProfile replaces (or clears) the curated listing card.
func (s *PartnerSvc) SetPublicProfile(ctx context.Context, actor models.User, applicationID string, profile *models.PublicProfile) error {
	if !actor.HasRole(models.RoleAdmin) {
		return database.ErrActorNotAllowed
	}

	app, err := s.store.ApplicationByID(ctx, applicationID)
	if err != nil {
		return err
	}

	app.PublicProfile = profile
	return s.store.UpsertApplication(ctx, app)
}

func (s *PartnerSvc) Applications(ctx context.Context) ([]models.PartnerApplication, error) {
	return s.store.Applications(ctx)
}

// AvailableOn filters the roster down to partners bookable on the date.
func (s *PartnerSvc) AvailableOn(ctx context.Context, date time.Time) ([]models.PartnerApplication, error) {
	apps, err := s.store.Applications(ctx)
	if err != nil {
		return nil, err
	}
	return FilterAvailable(apps, date), nil
}

func (s *PartnerSvc) authorizedApplication(ctx context.Context, actor models.User, applicationID string) (*models.PartnerApplication, error) {
	app, err := s.store.ApplicationByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !actor.HasRole(models.RoleAdmin) && actor.Phone != app.Applicant.Phone {
		return nil, database.ErrActorNotAllowed
	}
	return app, nil
}
