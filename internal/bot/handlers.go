package bot

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pbandeira/agendabot/internal/recurrence"
)

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if !b.cfg.IsAllowedUser(msg.From.ID) {
		b.reply(chatID, "⛔ Access denied")
		return
	}

	if !msg.IsCommand() {
		return
	}

	now := time.Now().In(b.cfg.Timezone)

	switch msg.Command() {
	case "start", "help":
		b.reply(chatID, helpText)
	case "today":
		b.sendAgenda(chatID, now, recurrence.ViewDay, "Today")
	case "tomorrow":
		b.sendAgenda(chatID, recurrence.AddDays(now, 1), recurrence.ViewDay, "Tomorrow")
	case "week":
		b.sendAgenda(chatID, now, recurrence.ViewWeek, "This week")
	case "meds":
		b.sendMedicineList(chatID)
	case "shop":
		b.sendShoppingList(chatID)
	case "shopadd":
		b.addShoppingItem(chatID, msg.CommandArguments())
	case "shopdone":
		b.toggleShoppingItem(chatID, msg.CommandArguments())
	case "shopclear":
		b.clearShoppingList(chatID)
	case "pending":
		b.sendPendingNotifications(chatID)
	case "ack":
		b.acknowledgeAll(chatID)
	case "export":
		b.exportMonth(chatID, now)
	default:
		b.reply(chatID, "Unknown command, see /help")
	}
}

const helpText = `<b>agendabot</b>

/today — today's agenda
/tomorrow — tomorrow's agenda
/week — this week's agenda
/meds — medicine reminders
/shop — shopping list
/shopadd &lt;text&gt; — add shopping item
/shopdone &lt;n&gt; — toggle item n
/shopclear — drop completed items
/pending — pending notifications
/ack — mark all notifications viewed
/export — export this month as ICS`

func (b *Bot) sendAgenda(chatID int64, anchor time.Time, mode recurrence.ViewMode, label string) {
	occurrences, err := b.appointments.Agenda(anchor, mode)
	if err != nil {
		log.Printf("Error building agenda: %v", err)
		b.reply(chatID, "Failed to load agenda")
		return
	}

	if len(occurrences) == 0 {
		b.reply(chatID, fmt.Sprintf("📅 <b>%s</b>\n\nNothing scheduled", label))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 <b>%s</b>\n", label))
	lastDate := ""
	for _, occ := range occurrences {
		date := occ.Date.Format("Mon 02.01")
		if mode != recurrence.ViewDay && date != lastDate {
			sb.WriteString(fmt.Sprintf("\n<b>%s</b>\n", date))
			lastDate = date
		}
		icon := "•"
		if occ.IsMedicine() {
			icon = "💊"
		}
		sb.WriteString(fmt.Sprintf("%s %s %s\n", icon, occ.StartTime, occ.Title))
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) sendMedicineList(chatID int64) {
	reminders, err := b.medicines.List()
	if err != nil {
		log.Printf("Error listing medicine reminders: %v", err)
		b.reply(chatID, "Failed to load medicine reminders")
		return
	}

	if len(reminders) == 0 {
		b.reply(chatID, "💊 No medicine reminders")
		return
	}

	var sb strings.Builder
	sb.WriteString("💊 <b>Medicine reminders</b>\n\n")
	for _, rem := range reminders {
		until := "continuous"
		if rem.EndDate != nil {
			until = "until " + rem.EndDate.Format("02.01.2006")
		}
		sb.WriteString(fmt.Sprintf("• %s (%s) at %s — %s\n",
			rem.Name, rem.Dosage, strings.Join(rem.Times, ", "), until))
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) sendShoppingList(chatID int64) {
	items, err := b.shopping.List()
	if err != nil {
		log.Printf("Error listing shopping items: %v", err)
		b.reply(chatID, "Failed to load shopping list")
		return
	}

	if len(items) == 0 {
		b.reply(chatID, "🛒 Shopping list is empty")
		return
	}

	var sb strings.Builder
	sb.WriteString("🛒 <b>Shopping list</b>\n\n")
	for i, item := range items {
		mark := "☐"
		if item.Completed {
			mark = "☑"
		}
		sb.WriteString(fmt.Sprintf("%d. %s %s\n", i+1, mark, item.Text))
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) addShoppingItem(chatID int64, text string) {
	if _, err := b.shopping.Add(text); err != nil {
		b.reply(chatID, "Usage: /shopadd <text>")
		return
	}
	b.sendShoppingList(chatID)
}

func (b *Bot) toggleShoppingItem(chatID int64, arg string) {
	idx, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		b.reply(chatID, "Usage: /shopdone <number>")
		return
	}

	items, err := b.shopping.List()
	if err != nil || idx < 1 || idx > len(items) {
		b.reply(chatID, "No such item")
		return
	}

	if err := b.shopping.Toggle(items[idx-1].ID); err != nil {
		log.Printf("Error toggling shopping item: %v", err)
		b.reply(chatID, "Failed to update item")
		return
	}
	b.sendShoppingList(chatID)
}

func (b *Bot) clearShoppingList(chatID int64) {
	if err := b.shopping.ClearCompleted(); err != nil {
		log.Printf("Error clearing shopping list: %v", err)
		b.reply(chatID, "Failed to clear list")
		return
	}
	b.sendShoppingList(chatID)
}

func (b *Bot) sendPendingNotifications(chatID int64) {
	pending, err := b.notifications.Unviewed()
	if err != nil {
		log.Printf("Error listing notifications: %v", err)
		b.reply(chatID, "Failed to load notifications")
		return
	}

	if len(pending) == 0 {
		b.reply(chatID, "🔔 Nothing pending")
		return
	}

	var sb strings.Builder
	sb.WriteString("🔔 <b>Pending</b>\n\n")
	for _, n := range pending {
		sb.WriteString(fmt.Sprintf("• %s (%s)\n", n.Title, n.TriggerAt.Format("02.01 15:04")))
	}
	sb.WriteString("\n/ack — mark all viewed")
	b.reply(chatID, sb.String())
}

func (b *Bot) acknowledgeAll(chatID int64) {
	if err := b.notifications.MarkAllViewed(); err != nil {
		log.Printf("Error marking notifications viewed: %v", err)
		b.reply(chatID, "Failed to update notifications")
		return
	}
	b.reply(chatID, "✅ All notifications marked viewed")
}

func (b *Bot) exportMonth(chatID int64, now time.Time) {
	data, err := b.calendar.ExportRange(now, recurrence.ViewMonth)
	if err != nil {
		log.Printf("Error exporting calendar: %v", err)
		b.reply(chatID, "Failed to export calendar")
		return
	}

	name := fmt.Sprintf("agenda-%s.ics", now.Format("2006-01"))
	if err := b.sendDocument(chatID, name, data); err != nil {
		log.Printf("Error sending export: %v", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if err := b.SendMessage(chatID, text); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}
