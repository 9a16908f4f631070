package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken   string
	OwnerTelegramID int64
	DatabasePath    string
	Timezone        *time.Location
	ReminderTime    string // HH:MM, when pre-day appointment reminders fire
	CalDAVURL       string
	CalDAVUsername  string
	CalDAVPassword  string
	CalDAVCalendar  string
}

func Load() (*Config, error) {
	// Optional .env for local runs; real deployments set the environment.
	_ = godotenv.Load()

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	ownerID, err := strconv.ParseInt(os.Getenv("OWNER_TELEGRAM_ID"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("OWNER_TELEGRAM_ID is required and must be a number")
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./data/agendabot.db"
	}

	tzName := os.Getenv("TIMEZONE")
	if tzName == "" {
		tzName = "America/Sao_Paulo"
	}
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	reminderTime := os.Getenv("REMINDER_TIME")
	if reminderTime == "" {
		reminderTime = "09:00"
	}

	return &Config{
		TelegramToken:   token,
		OwnerTelegramID: ownerID,
		DatabasePath:    dbPath,
		Timezone:        tz,
		ReminderTime:    reminderTime,
		CalDAVURL:       os.Getenv("CALDAV_URL"),
		CalDAVUsername:  os.Getenv("CALDAV_USERNAME"),
		CalDAVPassword:  os.Getenv("CALDAV_PASSWORD"),
		CalDAVCalendar:  os.Getenv("CALDAV_CALENDAR"),
	}, nil
}

func (c *Config) IsAllowedUser(telegramID int64) bool {
	return telegramID == c.OwnerTelegramID
}
