package bot

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pbandeira/agendabot/config"
	"github.com/pbandeira/agendabot/internal/service"
)

// Bot is the Telegram front end: it delivers reminder notifications and
// answers agenda/shopping queries. All scheduling logic lives in the
// services.
type Bot struct {
	api           *tgbotapi.BotAPI
	cfg           *config.Config
	appointments  *service.AppointmentService
	medicines     *service.MedicineService
	shopping      *service.ShoppingService
	notifications *service.NotificationService
	calendar      *service.CalendarService
}

func New(
	cfg *config.Config,
	appointmentSvc *service.AppointmentService,
	medicineSvc *service.MedicineService,
	shoppingSvc *service.ShoppingService,
	notificationSvc *service.NotificationService,
	calendarSvc *service.CalendarService,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("Authorized as @%s", api.Self.UserName)

	b := &Bot{
		api:           api,
		cfg:           cfg,
		appointments:  appointmentSvc,
		medicines:     medicineSvc,
		shopping:      shoppingSvc,
		notifications: notificationSvc,
		calendar:      calendarSvc,
	}
	b.setCommands()
	return b, nil
}

func (b *Bot) setCommands() {
	commands := []tgbotapi.BotCommand{
		{Command: "today", Description: "📅 Today's agenda"},
		{Command: "tomorrow", Description: "🗓 Tomorrow's agenda"},
		{Command: "week", Description: "📆 This week"},
		{Command: "meds", Description: "💊 Medicine reminders"},
		{Command: "shop", Description: "🛒 Shopping list"},
		{Command: "pending", Description: "🔔 Pending notifications"},
		{Command: "export", Description: "📤 Export month as ICS"},
		{Command: "help", Description: "❓ Commands"},
	}

	cfg := tgbotapi.NewSetMyCommands(commands...)
	if _, err := b.api.Request(cfg); err != nil {
		log.Printf("Failed to set commands: %v", err)
	}
}

// Start consumes updates via long polling until the context is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			if update.Message != nil {
				b.handleMessage(update.Message)
			}
		}
	}
}

func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendDocument(chatID int64, name string, data []byte) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	_, err := b.api.Send(doc)
	return err
}
