package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/pbandeira/agendabot/config"
	"github.com/pbandeira/agendabot/internal/domain"
	"github.com/pbandeira/agendabot/internal/service"
)

type MessageSender interface {
	SendMessage(chatID int64, text string) error
}

// Scheduler drives the notification poll: once immediately on start, then
// every minute. Idempotence lives in the notification service's dedup keys,
// so an overlapping or repeated tick can never double-deliver.
type Scheduler struct {
	cron          *cron.Cron
	cfg           *config.Config
	notifications *service.NotificationService
	sender        MessageSender
}

func New(cfg *config.Config, notificationSvc *service.NotificationService) *Scheduler {
	c := cron.New(cron.WithLocation(cfg.Timezone))

	return &Scheduler{
		cron:          c,
		cfg:           cfg,
		notifications: notificationSvc,
	}
}

func (s *Scheduler) SetSender(sender MessageSender) {
	s.sender = sender
}

func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc("* * * * *", s.checkReminders); err != nil {
		return fmt.Errorf("add reminder check: %w", err)
	}

	s.cron.Start()
	log.Printf("Scheduler started (TZ: %s)", s.cfg.Timezone)

	// First check runs right away instead of waiting for the next minute.
	s.checkReminders()

	<-ctx.Done()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Scheduler stopped")
}

func (s *Scheduler) checkReminders() {
	fired, err := s.notifications.CheckReminders()
	if err != nil {
		log.Printf("Error checking reminders: %v", err)
		return
	}
	if len(fired) == 0 {
		return
	}

	log.Printf("Fired %d notification(s)", len(fired))
	if s.sender == nil {
		return
	}

	// One delivery per poll, no matter how many notifications fired.
	if err := s.sender.SendMessage(s.cfg.OwnerTelegramID, formatBatch(fired)); err != nil {
		log.Printf("Error delivering notifications: %v", err)
	}
}

func formatBatch(fired []*domain.Notification) string {
	var sb strings.Builder
	sb.WriteString("🔔 <b>Reminders</b>\n")
	for _, n := range fired {
		sb.WriteString(fmt.Sprintf("\n<b>%s</b>\n%s\n", n.Title, n.Message))
	}
	return sb.String()
}
