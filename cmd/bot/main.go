package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pbandeira/agendabot/config"
	"github.com/pbandeira/agendabot/internal/bot"
	"github.com/pbandeira/agendabot/internal/clients/caldav"
	"github.com/pbandeira/agendabot/internal/scheduler"
	"github.com/pbandeira/agendabot/internal/service"
	"github.com/pbandeira/agendabot/internal/storage"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := storage.New(cfg.DatabasePath, cfg.Timezone)
	if err != nil {
		log.Fatalf("Failed to init storage: %v", err)
	}
	defer store.Close()

	appointmentSvc := service.NewAppointmentService(store, store)
	medicineSvc := service.NewMedicineService(store, store)
	shoppingSvc := service.NewShoppingService(store)
	notificationSvc := service.NewNotificationService(
		store, store, store,
		service.SystemClock{Location: cfg.Timezone},
		cfg.ReminderTime,
	)

	caldavClient := caldav.NewClient(cfg.CalDAVURL, cfg.CalDAVUsername, cfg.CalDAVPassword)
	if cfg.CalDAVCalendar != "" {
		caldavClient.SetCalendarPath(cfg.CalDAVCalendar)
	}
	calendarSvc := service.NewCalendarService(appointmentSvc, caldavClient)

	tgBot, err := bot.New(cfg, appointmentSvc, medicineSvc, shoppingSvc, notificationSvc, calendarSvc)
	if err != nil {
		log.Fatalf("Failed to init bot: %v", err)
	}

	sched := scheduler.New(cfg, notificationSvc)
	sched.SetSender(tgBot)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := sched.Start(ctx); err != nil {
			log.Printf("Scheduler error: %v", err)
		}
	}()

	go func() {
		if err := tgBot.Start(ctx); err != nil {
			log.Printf("Bot error: %v", err)
		}
	}()

	log.Println("agendabot started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	cancel()
	sched.Stop()
}
