package service

import (
	"context"
	"testing"

	"rentmimi/internal/database"
	"rentmimi/internal/events"
	"rentmimi/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin   = models.User{Phone: "010-0000-0000", Nickname: "운영자", Roles: []models.Role{models.RoleAdmin}}
	client  = models.User{Phone: "010-1111-1111", Nickname: "지훈", Roles: []models.Role{models.RoleClient}}
	partner = models.User{Phone: "010-2222-2222", Nickname: "미미", Roles: []models.Role{models.RoleClient, models.RolePartner}}
)

func newTestService(t *testing.T) (*BookingSvc, *database.DB) {
	t.Helper()
	logger := zerolog.Nop()

	db, err := database.Open(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, u := range []models.User{admin, client, partner} {
		user := u
		require.NoError(t, db.UpsertUser(ctx, &user))
	}

	svc := NewBookingService(db, events.NewEventBus(), nil, &logger)
	return svc, db
}

func seedApplication(t *testing.T, db *database.DB, grade string) *models.PartnerApplication {
	t.Helper()
	app := models.PartnerApplication{
		ID:        uuid.NewString(),
		Applicant: partner,
		Form: models.PartnerForm{
			Name:                partner.Nickname,
			Grade:               grade,
			AvailableForBooking: true,
		},
	}
	require.NoError(t, db.UpsertApplication(context.Background(), &app))
	return &app
}

func createPending(t *testing.T, svc *BookingSvc) *models.Booking {
	t.Helper()
	booking, err := svc.CreateBooking(context.Background(), client, models.Booking{
		Date:          "2026-09-07",
		Time:          "14:00",
		DurationHours: 2,
		Plan:          models.PlanPremium,
		Location:      "강남역",
		Options:       models.BookingOptions{HandHolding: true},
	})
	require.NoError(t, err)
	return booking
}

func TestCreateBooking(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("PricesAndStoresPending", func(t *testing.T) {
		booking := createPending(t, svc)

		assert.Equal(t, models.StatusPending, booking.Status)
		assert.Equal(t, models.PayoutNone, booking.PayoutStatus)
		assert.Equal(t, int64(190000), booking.TotalCost)
		assert.Equal(t, client.Phone, booking.ClientPhone)
		assert.NotEmpty(t, booking.ID)

		got, err := svc.GetBooking(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, booking.TotalCost, got.TotalCost)
	})

	t.Run("RejectsBadDate", func(t *testing.T) {
		_, err := svc.CreateBooking(ctx, client, models.Booking{
			Date: "tomorrow", Time: "14:00", DurationHours: 1, Plan: models.PlanFresh,
		})
		assert.ErrorIs(t, err, database.ErrInvalidSchedule)
	})

	t.Run("RejectsBadTime", func(t *testing.T) {
		_, err := svc.CreateBooking(ctx, client, models.Booking{
			Date: "2026-09-07", Time: "2pm", DurationHours: 1, Plan: models.PlanFresh,
		})
		assert.ErrorIs(t, err, database.ErrInvalidSchedule)
	})

	t.Run("RejectsUnknownPlan", func(t *testing.T) {
		_, err := svc.CreateBooking(ctx, client, models.Booking{
			Date: "2026-09-07", Time: "14:00", DurationHours: 1, Plan: "DELUXE",
		})
		assert.ErrorIs(t, err, database.ErrUnknownPlan)
	})
}

func TestCreateBookingExplicitDates(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	app := models.PartnerApplication{
		ID:        uuid.NewString(),
		Applicant: partner,
		Form: models.PartnerForm{
			Name:                partner.Nickname,
			Grade:               models.GradeGold,
			AvailableDates:      []string{"2026-09-20"},
			AvailableForBooking: true,
		},
	}
	require.NoError(t, db.UpsertApplication(ctx, &app))

	request := func(date string) models.Booking {
		return models.Booking{
			MimiPhone:     partner.Phone,
			MimiName:      partner.Nickname,
			Date:          date,
			Time:          "14:00",
			DurationHours: 1,
			Plan:          models.PlanFresh,
		}
	}

	t.Run("RejectsDateOffTheList", func(t *testing.T) {
		_, err := svc.CreateBooking(ctx, client, request("2026-09-07"))
		assert.ErrorIs(t, err, database.ErrMimiUnavailable)
	})

	t.Run("AcceptsListedDate", func(t *testing.T) {
		booking, err := svc.CreateBooking(ctx, client, request("2026-09-20"))
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, booking.Status)
	})

	t.Run("EmptyListDoesNotGate", func(t *testing.T) {
		app.Form.AvailableDates = nil
		require.NoError(t, db.UpsertApplication(ctx, &app))

		_, err := svc.CreateBooking(ctx, client, request("2026-09-07"))
		assert.NoError(t, err)
	})
}

func TestBookingLifecycle(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	app := seedApplication(t, db, models.GradeGold)

	booking := createPending(t, svc)

	t.Run("ApproveRequiresPartner", func(t *testing.T) {
		err := svc.Approve(ctx, admin, booking.ID)
		assert.ErrorIs(t, err, database.ErrPartnerNotAssigned)
	})

	t.Run("AssignPartner", func(t *testing.T) {
		require.NoError(t, svc.AssignPartner(ctx, admin, booking.ID, app.ID))

		got, err := svc.GetBooking(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, partner.Phone, got.MimiPhone)
	})

	t.Run("AssignRequiresAdmin", func(t *testing.T) {
		err := svc.AssignPartner(ctx, client, booking.ID, app.ID)
		assert.ErrorIs(t, err, database.ErrActorNotAllowed)
	})

	t.Run("UnknownApplicationIsNoOp", func(t *testing.T) {
		require.NoError(t, svc.AssignPartner(ctx, admin, booking.ID, "missing"))

		got, _ := svc.GetBooking(ctx, booking.ID)
		assert.Equal(t, partner.Phone, got.MimiPhone)
	})

	t.Run("Approve", func(t *testing.T) {
		require.NoError(t, svc.Approve(ctx, admin, booking.ID))

		got, _ := svc.GetBooking(ctx, booking.ID)
		assert.Equal(t, models.StatusAwaitingPayment, got.Status)
	})

	t.Run("ApproveTwiceFails", func(t *testing.T) {
		err := svc.Approve(ctx, admin, booking.ID)
		assert.ErrorIs(t, err, database.ErrInvalidTransition)
	})

	t.Run("ConfirmPaymentRequiresAdmin", func(t *testing.T) {
		err := svc.ConfirmPayment(ctx, client, booking.ID)
		assert.ErrorIs(t, err, database.ErrActorNotAllowed)
	})

	t.Run("ConfirmPayment", func(t *testing.T) {
		require.NoError(t, svc.ConfirmPayment(ctx, admin, booking.ID))

		got, _ := svc.GetBooking(ctx, booking.ID)
		assert.Equal(t, models.StatusApproved, got.Status)
	})

	t.Run("CompleteFlipsPayoutPending", func(t *testing.T) {
		require.NoError(t, svc.Complete(ctx, admin, booking.ID))

		got, _ := svc.GetBooking(ctx, booking.ID)
		assert.Equal(t, models.StatusCompleted, got.Status)
		assert.Equal(t, models.PayoutPending, got.PayoutStatus)
	})

	t.Run("PendingPayoutsCarriesGradeAmount", func(t *testing.T) {
		lines, err := svc.PendingPayouts(ctx)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, models.GradeGold, lines[0].Grade)
		// (50000*2 + 10000 + 50000) * 0.967
		assert.Equal(t, int64(154720), lines[0].Amount)
	})

	t.Run("CompletePayout", func(t *testing.T) {
		require.NoError(t, svc.CompletePayout(ctx, admin, booking.ID))

		got, _ := svc.GetBooking(ctx, booking.ID)
		assert.Equal(t, models.PayoutCompleted, got.PayoutStatus)

		lines, err := svc.PendingPayouts(ctx)
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("CompletePayoutTwiceFails", func(t *testing.T) {
		err := svc.CompletePayout(ctx, admin, booking.ID)
		assert.ErrorIs(t, err, database.ErrInvalidTransition)
	})

	t.Run("Reviews", func(t *testing.T) {
		require.NoError(t, svc.AddClientReview(ctx, client, booking.ID, models.Review{Rating: 5, Comment: "좋았어요", IsFeatured: true}))
		require.NoError(t, svc.AddMimiReview(ctx, partner, booking.ID, models.Review{Rating: 4}))

		got, _ := svc.GetBooking(ctx, booking.ID)
		require.NotNil(t, got.Review)
		// clients cannot self-feature their review
		assert.False(t, got.Review.IsFeatured)
		require.NotNil(t, got.MimiReview)
		assert.Equal(t, 4, got.MimiReview.Rating)
	})

	t.Run("ReviewActorMustMatchSide", func(t *testing.T) {
		err := svc.AddClientReview(ctx, partner, booking.ID, models.Review{Rating: 1})
		assert.ErrorIs(t, err, database.ErrActorNotAllowed)
	})
}

func TestDecline(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	app := seedApplication(t, db, models.GradeBronze)

	booking := createPending(t, svc)
	require.NoError(t, svc.AssignPartner(ctx, admin, booking.ID, app.ID))

	t.Run("OnlyAssignedPartnerDeclines", func(t *testing.T) {
		err := svc.Decline(ctx, client, booking.ID)
		assert.ErrorIs(t, err, database.ErrActorNotAllowed)
	})

	t.Run("DeclineIsTerminal", func(t *testing.T) {
		require.NoError(t, svc.Decline(ctx, partner, booking.ID))

		got, _ := svc.GetBooking(ctx, booking.ID)
		assert.Equal(t, models.StatusRejected, got.Status)

		err := svc.AssignPartner(ctx, admin, booking.ID, app.ID)
		assert.ErrorIs(t, err, database.ErrInvalidTransition)
	})
}

func TestCompleteAutoAssignsPartner(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	// an approved booking that never got a partner
	booking := models.Booking{
		ID:          uuid.NewString(),
		ClientPhone: client.Phone,
		Date:        "2026-09-07",
		Time:        "14:00",
		Plan:        models.PlanFresh,
		Status:      models.StatusApproved,
	}
	require.NoError(t, db.UpsertBooking(ctx, &booking))

	svc.randFn = func(n int) int { return 0 }

	require.NoError(t, svc.Complete(ctx, admin, booking.ID))

	got, err := svc.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, partner.Phone, got.MimiPhone)
	assert.Equal(t, models.PayoutPending, got.PayoutStatus)
}

func TestExtend(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	app := seedApplication(t, db, models.GradeGold)

	booking := createPending(t, svc)
	require.NoError(t, svc.AssignPartner(ctx, admin, booking.ID, app.ID))

	t.Run("RequiresApprovedStatus", func(t *testing.T) {
		err := svc.Extend(ctx, client, booking.ID, 1)
		assert.ErrorIs(t, err, database.ErrInvalidTransition)
	})

	require.NoError(t, svc.Approve(ctx, admin, booking.ID))
	require.NoError(t, svc.ConfirmPayment(ctx, admin, booking.ID))

	t.Run("OnlyTheClientExtends", func(t *testing.T) {
		err := svc.Extend(ctx, partner, booking.ID, 1)
		assert.ErrorIs(t, err, database.ErrActorNotAllowed)
	})

	t.Run("AddsHoursAtPlanRate", func(t *testing.T) {
		require.NoError(t, svc.Extend(ctx, client, booking.ID, 1))

		got, err := svc.GetBooking(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.DurationHours)
		assert.Equal(t, int64(260000), got.TotalCost)
	})

	t.Run("RejectsNonPositiveHours", func(t *testing.T) {
		err := svc.Extend(ctx, client, booking.ID, 0)
		assert.Error(t, err)
	})
}

func TestMeetingAdjustment(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	app := seedApplication(t, db, models.GradeSilver)

	approved := func(t *testing.T) *models.Booking {
		booking := createPending(t, svc)
		require.NoError(t, svc.AssignPartner(ctx, admin, booking.ID, app.ID))
		require.NoError(t, svc.Approve(ctx, admin, booking.ID))
		require.NoError(t, svc.ConfirmPayment(ctx, admin, booking.ID))
		got, err := svc.GetBooking(ctx, booking.ID)
		require.NoError(t, err)
		return got
	}

	t.Run("AcceptedTimeRequestMovesClock", func(t *testing.T) {
		booking := approved(t)

		err := svc.RequestAdjustment(ctx, client, booking.ID, models.MeetingAdjustment{
			Type: models.AdjustmentTime, DelayMinutes: 70, Reason: "차가 막혀요",
		})
		require.NoError(t, err)

		require.NoError(t, svc.RespondAdjustment(ctx, partner, booking.ID, true))

		got, _ := svc.GetBooking(ctx, booking.ID)
		assert.Equal(t, "15:10", got.Time)
		assert.Equal(t, models.AdjustmentAccepted, got.Adjustment.Status)
	})

	t.Run("RejectedRequestMutatesNothing", func(t *testing.T) {
		booking := approved(t)

		err := svc.RequestAdjustment(ctx, partner, booking.ID, models.MeetingAdjustment{
			Type: models.AdjustmentLocation, NewLocation: "홍대입구",
		})
		require.NoError(t, err)

		require.NoError(t, svc.RespondAdjustment(ctx, client, booking.ID, false))

		got, _ := svc.GetBooking(ctx, booking.ID)
		assert.Equal(t, "강남역", got.Location)
		assert.Equal(t, models.AdjustmentRejected, got.Adjustment.Status)
	})

	t.Run("SecondRequestWhilePendingFails", func(t *testing.T) {
		booking := approved(t)

		require.NoError(t, svc.RequestAdjustment(ctx, client, booking.ID, models.MeetingAdjustment{
			Type: models.AdjustmentTime, DelayMinutes: 10,
		}))

		err := svc.RequestAdjustment(ctx, partner, booking.ID, models.MeetingAdjustment{
			Type: models.AdjustmentTime, DelayMinutes: 30,
		})
		assert.ErrorIs(t, err, database.ErrAdjustmentPending)
	})

	t.Run("RequesterCannotRespond", func(t *testing.T) {
		booking := approved(t)

		require.NoError(t, svc.RequestAdjustment(ctx, client, booking.ID, models.MeetingAdjustment{
			Type: models.AdjustmentTime, DelayMinutes: 10,
		}))

		err := svc.RespondAdjustment(ctx, client, booking.ID, true)
		assert.ErrorIs(t, err, database.ErrActorNotAllowed)
	})

	t.Run("InvalidPayloads", func(t *testing.T) {
		booking := approved(t)

		err := svc.RequestAdjustment(ctx, client, booking.ID, models.MeetingAdjustment{
			Type: models.AdjustmentTime, DelayMinutes: 0,
		})
		assert.ErrorIs(t, err, database.ErrInvalidAdjustment)

		err = svc.RequestAdjustment(ctx, client, booking.ID, models.MeetingAdjustment{
			Type: models.AdjustmentLocation,
		})
		assert.ErrorIs(t, err, database.ErrInvalidAdjustment)
	})

	t.Run("RequiresApprovedBooking", func(t *testing.T) {
		booking := createPending(t, svc)

		err := svc.RequestAdjustment(ctx, client, booking.ID, models.MeetingAdjustment{
			Type: models.AdjustmentTime, DelayMinutes: 10,
		})
		assert.ErrorIs(t, err, database.ErrNotApproved)
	})
}

func TestChatAndOutfit(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	app := seedApplication(t, db, models.GradeBronze)

	booking := createPending(t, svc)
	require.NoError(t, svc.AssignPartner(ctx, admin, booking.ID, app.ID))

	t.Run("ChatRequiresApproved", func(t *testing.T) {
		err := svc.AppendChatMessage(ctx, client, booking.ID, "안녕하세요")
		assert.ErrorIs(t, err, database.ErrNotApproved)
	})

	require.NoError(t, svc.Approve(ctx, admin, booking.ID))
	require.NoError(t, svc.ConfirmPayment(ctx, admin, booking.ID))

	t.Run("ChatIsAppendOnly", func(t *testing.T) {
		require.NoError(t, svc.AppendChatMessage(ctx, client, booking.ID, "안녕하세요"))
		require.NoError(t, svc.AppendChatMessage(ctx, partner, booking.ID, "네 안녕하세요"))

		got, _ := svc.GetBooking(ctx, booking.ID)
		require.Len(t, got.Chat, 2)
		assert.Equal(t, models.PartyClient, got.Chat[0].Sender)
		assert.Equal(t, models.PartyMimi, got.Chat[1].Sender)
	})

	t.Run("ChatRejectsOutsiders", func(t *testing.T) {
		outsider := models.User{Phone: "010-9999-9999"}
		err := svc.AppendChatMessage(ctx, outsider, booking.ID, "hi")
		assert.ErrorIs(t, err, database.ErrActorNotAllowed)
	})

	t.Run("ChatRejectsBlankText", func(t *testing.T) {
		err := svc.AppendChatMessage(ctx, client, booking.ID, "   ")
		assert.ErrorIs(t, err, database.ErrEmptyContent)
	})

	t.Run("OutfitKeepsBothSides", func(t *testing.T) {
		require.NoError(t, svc.SubmitOutfitInfo(ctx, client, booking.ID, models.OutfitInfo{Description: "검은 코트"}))
		require.NoError(t, svc.SubmitOutfitInfo(ctx, partner, booking.ID, models.OutfitInfo{Description: "흰 원피스"}))

		got, _ := svc.GetBooking(ctx, booking.ID)
		require.NotNil(t, got.Outfit)
		assert.Equal(t, "검은 코트", got.Outfit.Client.Description)
		assert.Equal(t, "흰 원피스", got.Outfit.Mimi.Description)
	})
}

func TestBookingsFor(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	app := seedApplication(t, db, models.GradeBronze)

	mine := createPending(t, svc)
	require.NoError(t, svc.AssignPartner(ctx, admin, mine.ID, app.ID))

	_, err := svc.CreateBooking(ctx, admin, models.Booking{
		Date: "2026-09-08", Time: "10:00", DurationHours: 1, Plan: models.PlanFresh,
	})
	require.NoError(t, err)

	t.Run("AdminSeesEverything", func(t *testing.T) {
		all, err := svc.BookingsFor(ctx, admin)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("ClientSeesOwnOnly", func(t *testing.T) {
		own, err := svc.BookingsFor(ctx, client)
		require.NoError(t, err)
		require.Len(t, own, 1)
		assert.Equal(t, mine.ID, own[0].ID)
	})

	t.Run("PartnerSeesAssigned", func(t *testing.T) {
		assigned, err := svc.BookingsFor(ctx, partner)
		require.NoError(t, err)
		require.Len(t, assigned, 1)
		assert.Equal(t, mine.ID, assigned[0].ID)
	})
}
