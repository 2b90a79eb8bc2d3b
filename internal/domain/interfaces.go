package domain

import (
	"context"
	"time"

	"rentmimi/internal/models"
)

// Store is the persistence boundary for the four top-level collections.
// Every mutator persists its whole collection before returning.
type Store interface {
	Users(ctx context.Context) ([]models.User, error)
	UserByPhone(ctx context.Context, phone string) (*models.User, error)
	UsersByRole(ctx context.Context, role models.Role) ([]models.User, error)
	UpsertUser(ctx context.Context, user *models.User) error

	Bookings(ctx context.Context) ([]models.Booking, error)
	BookingByID(ctx context.Context, id string) (*models.Booking, error)
	BookingsByClient(ctx context.Context, phone string) ([]models.Booking, error)
	BookingsByMimi(ctx context.Context, phone string) ([]models.Booking, error)
	UpsertBooking(ctx context.Context, booking *models.Booking) error

	Applications(ctx context.Context) ([]models.PartnerApplication, error)
	ApplicationByID(ctx context.Context, id string) (*models.PartnerApplication, error)
	ApplicationByPhone(ctx context.Context, phone string) (*models.PartnerApplication, error)
	UpsertApplication(ctx context.Context, app *models.PartnerApplication) error

	Stories(ctx context.Context) ([]models.MimiStory, error)
	InsertStory(ctx context.Context, story *models.MimiStory) error

	SaveAll(ctx context.Context) error
}

// SessionRepository keeps acting-user snapshots and mutation rate limits.
type SessionRepository interface {
	GetSession(ctx context.Context, phone string) (*models.Session, error)
	SetSession(ctx context.Context, session *models.Session) error
	ClearSession(ctx context.Context, phone string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// SheetsWriter mirrors booking and payout rows into a spreadsheet.
type SheetsWriter interface {
	UpsertBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, bookingID, status string) error
	AppendPayout(ctx context.Context, booking *models.Booking, amount int64) error
}

// SyncWorker queues sheet mirror updates so booking mutations never block
// on the network.
type SyncWorker interface {
	EnqueueUpsert(ctx context.Context, booking *models.Booking) error
	EnqueueStatus(ctx context.Context, bookingID, status string) error
	EnqueuePayout(ctx context.Context, booking *models.Booking, amount int64) error
}

// BookingService is the booking lifecycle surface the API consumes.
type BookingService interface {
	CreateBooking(ctx context.Context, actor models.User, req models.Booking) (*models.Booking, error)
	Approve(ctx context.Context, actor models.User, bookingID string) error
	Decline(ctx context.Context, actor models.User, bookingID string) error
	ConfirmPayment(ctx context.Context, actor models.User, bookingID string) error
	Complete(ctx context.Context, actor models.User, bookingID string) error
	AssignPartner(ctx context.Context, actor models.User, bookingID, applicationID string) error
	CompletePayout(ctx context.Context, actor models.User, bookingID string) error
	Extend(ctx context.Context, actor models.User, bookingID string, extraHours int) error
	AddClientReview(ctx context.Context, actor models.User, bookingID string, review models.Review) error
	AddMimiReview(ctx context.Context, actor models.User, bookingID string, review models.Review) error
	RequestAdjustment(ctx context.Context, actor models.User, bookingID string, adj models.MeetingAdjustment) error
	RespondAdjustment(ctx context.Context, actor models.User, bookingID string, accepted bool) error
	SubmitOutfitInfo(ctx context.Context, actor models.User, bookingID string, info models.OutfitInfo) error
	AppendChatMessage(ctx context.Context, actor models.User, bookingID, text string) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	BookingsFor(ctx context.Context, actor models.User) ([]models.Booking, error)
	PendingPayouts(ctx context.Context) ([]models.PayoutLine, error)
}

type PartnerService interface {
	SubmitApplication(ctx context.Context, actor models.User, form models.PartnerForm) (*models.PartnerApplication, error)
	SetAvailability(ctx context.Context, actor models.User, applicationID string, available bool) error
	SetAvailableDates(ctx context.Context, actor models.User, applicationID string, dates []string) error
	SetGrade(ctx context.Context, actor models.User, applicationID, grade string) error
	SetRecommended(ctx context.Context, actor models.User, applicationID string, recommended bool) error
	SetPublicProfile(ctx context.Context, actor models.User, applicationID string, profile *models.PublicProfile) error
	Applications(ctx context.Context) ([]models.PartnerApplication, error)
	AvailableOn(ctx context.Context, date time.Time) ([]models.PartnerApplication, error)
}

type UserService interface {
	Signup(ctx context.Context, phone, nickname, region string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	IsAdmin(phone string) bool
}

type StoryService interface {
	PostStory(ctx context.Context, actor models.User, content string) (*models.MimiStory, error)
	Stories(ctx context.Context) ([]models.MimiStory, error)
}
