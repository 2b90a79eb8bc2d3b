package notify

import (
	"encoding/json"
	"fmt"

	"rentmimi/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramSender is the subset of the bot API the notifier needs.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier forwards booking lifecycle events to the operator chat.
type Notifier struct {
	bot    TelegramSender
	chatID int64
	logger *zerolog.Logger
}

func New(bot TelegramSender, chatID int64, logger *zerolog.Logger) *Notifier {
	return &Notifier{bot: bot, chatID: chatID, logger: logger}
}

// NewBot builds the underlying bot client from a token.
func NewBot(token string, debug bool) (*tgbotapi.BotAPI, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	botAPI.Debug = debug
	return botAPI, nil
}

// Subscribe registers handlers on the event bus for the events operators
// care about. Send failures are logged, never propagated: notification is
// best effort and must not fail a booking mutation.
func (n *Notifier) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingCreated, n.onBookingEvent("새 예약이 접수되었습니다"))
	bus.Subscribe(events.EventBookingCompleted, n.onBookingEvent("예약이 완료되었습니다"))
	bus.Subscribe(events.EventPayoutReady, n.onPayoutReady())
	bus.Subscribe(events.EventAdjustmentRequested, n.onBookingEvent("약속 변경 요청이 있습니다"))
}

func (n *Notifier) onBookingEvent(title string) events.EventHandler {
	return func(event *events.Event) error {
		var payload events.BookingEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			n.logger.Error().Err(err).Msg("Failed to decode booking event")
			return err
		}

		text := fmt.Sprintf("%s\n\n예약: %s\n고객: %s (%s)\n일시: %s %s\n금액: %d원",
			title, payload.BookingID, payload.ClientName, payload.ClientPhone,
			payload.Date, payload.Time, payload.TotalCost)
		n.send(text)
		return nil
	}
}

func (n *Notifier) onPayoutReady() events.EventHandler {
	return func(event *events.Event) error {
		var payload events.BookingEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			n.logger.Error().Err(err).Msg("Failed to decode payout event")
			return err
		}

		text := fmt.Sprintf("정산 대기\n\n예약: %s\n미미: %s (%s)\n정산액: %d원",
			payload.BookingID, payload.MimiName, payload.MimiPhone, payload.Payout)
		n.send(text)
		return nil
	}
}

func (n *Notifier) send(text string) {
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).Msg("Failed to send telegram notification")
	}
}
