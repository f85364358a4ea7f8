package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xaenox/huddle-bot/internal/models"
	"github.com/xaenox/huddle-bot/internal/workspace"
)

// escapeMarkdown escapes special characters for MarkdownV2
func escapeMarkdown(text string) string {
	specialChars := []string{"\\", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!"}
	escaped := text
	for _, char := range specialChars {
		escaped = strings.ReplaceAll(escaped, char, "\\"+char)
	}
	return escaped
}

func initials(name string) string {
	var out []rune
	for _, part := range strings.Fields(name) {
		out = append(out, []rune(strings.ToUpper(part))[0])
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "??"
	}
	return string(out)
}

// renderMessage formats a message and its detections.
func renderMessage(msg *models.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s* _%s_\n", escapeMarkdown(msg.Sender), escapeMarkdown(msg.CreatedAt.Format("15:04")))
	b.WriteString(escapeMarkdown(msg.Content))

	if msg.IsProcessing {
		b.WriteString("\n\n_Analyzing…_")
		return b.String()
	}

	in := msg.Intelligence
	if in == nil {
		return b.String()
	}
	if msg.Detected(models.KindTask) {
		b.WriteString("\n\n📋 *Task:* " + escapeMarkdown(in.Task.Title))
		if in.Task.DueDate != "" {
			b.WriteString("\n   due " + escapeMarkdown(in.Task.DueDate))
		}
		if in.Task.Assignee != "" {
			b.WriteString("\n   for " + escapeMarkdown(in.Task.Assignee))
		}
	}
	if msg.Detected(models.KindFollowUp) {
		b.WriteString("\n\n❓ *Follow\\-up:* " + escapeMarkdown(in.FollowUp.Question))
		if in.FollowUp.SuggestedReply != "" {
			b.WriteString("\n   suggested reply: _" + escapeMarkdown(in.FollowUp.SuggestedReply) + "_")
		}
	}
	if msg.Detected(models.KindDecision) {
		b.WriteString("\n\n🔖 *Decision:* " + escapeMarkdown(in.Decision.Summary))
		if in.Decision.MadeBy != "" {
			b.WriteString("\n   by " + escapeMarkdown(in.Decision.MadeBy))
		}
	}
	if msg.Detected(models.KindMeeting) {
		b.WriteString("\n\n📅 *Meeting:* " + escapeMarkdown(in.Meeting.Topic))
		if in.Meeting.Time != "" {
			b.WriteString("\n   " + escapeMarkdown(in.Meeting.Time))
		}
		if in.Meeting.Participants != "" {
			b.WriteString("\n   with " + escapeMarkdown(in.Meeting.Participants))
		}
	}
	return b.String()
}

// messageKeyboard offers one action per detected kind. Kinds already added
// show a confirmation that does nothing when pressed.
func messageKeyboard(msg *models.Message, card workspace.CardState) (tgbotapi.InlineKeyboardMarkup, bool) {
	var rows [][]tgbotapi.InlineKeyboardButton

	button := func(kind models.Kind, label, done string, action callbackAction) {
		if !msg.Detected(kind) {
			return
		}
		if msg.Added(kind) {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✓ "+done, encodeCallback(actionNoop, msg.ID))))
			return
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, encodeCallback(action, msg.ID))))
	}

	button(models.KindTask, "Add to tasks", "Added to tasks", actionAddTask)
	button(models.KindFollowUp, "Track follow-up", "Tracking follow-up", actionTrackFollowUp)
	if msg.Detected(models.KindFollowUp) && msg.Intelligence.FollowUp.SuggestedReply != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Use suggested reply", encodeCallback(actionUseReply, msg.ID))))
	}
	button(models.KindDecision, "Log decision", "Decision logged", actionLogDecision)
	button(models.KindMeeting, "Save meeting", "Meeting saved", actionSaveMeeting)

	if msg.Detected(models.KindMeeting) {
		label := "Show agenda"
		if card.AgendaExpanded {
			label = "Hide agenda"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, encodeCallback(actionToggleAgenda, msg.ID))))
		if msg.MeetingAdded {
			label := "Add notes"
			if card.NotesExpanded {
				label = "Close notes"
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(label, encodeCallback(actionToggleNotes, msg.ID))))
		}
	}

	if len(rows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}

// renderAgenda shows the agenda being edited on the meeting card.
func renderAgenda(msgID string, card workspace.CardState) string {
	return fmt.Sprintf("*Agenda* for `%s`\n%s\n\nEdit with %s",
		escapeMarkdown(msgID), escapeMarkdown(card.EditedAgenda), escapeMarkdown("/agenda "+msgID+" <text>"))
}

func renderTasks(tasks []*models.Task) (string, tgbotapi.InlineKeyboardMarkup) {
	if len(tasks) == 0 {
		return "No tasks yet\\.", tgbotapi.InlineKeyboardMarkup{}
	}

	var b strings.Builder
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(tasks))
	b.WriteString("*Tasks*\n")
	for i, t := range tasks {
		box := "☐"
		if t.Completed {
			box = "☑"
		}
		fmt.Fprintf(&b, "%d\\. %s %s", i+1, box, escapeMarkdown(t.Title))
		if t.DueDate != "" {
			fmt.Fprintf(&b, " \\(due %s\\)", escapeMarkdown(t.DueDate))
		}
		if t.Assignee != "" {
			fmt.Fprintf(&b, " → %s", escapeMarkdown(t.Assignee))
		}
		b.WriteString("\n")
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d %s", i+1, toggleLabel(t.Completed, "Reopen", "Done")), encodeCallback(actionToggleTask, t.ID)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d Delete", i+1), encodeCallback(actionDeleteTask, t.ID)),
		))
	}
	return b.String(), tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func renderFollowUps(fus []*models.FollowUp) (string, tgbotapi.InlineKeyboardMarkup) {
	if len(fus) == 0 {
		return "No follow\\-ups yet\\.", tgbotapi.InlineKeyboardMarkup{}
	}

	var b strings.Builder
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(fus))
	b.WriteString("*Follow\\-ups*\n")
	for i, f := range fus {
		mark := "•"
		if f.Resolved {
			mark = "✓"
		}
		fmt.Fprintf(&b, "%d\\. %s %s", i+1, mark, escapeMarkdown(f.Question))
		if f.DirectedAt != "" {
			fmt.Fprintf(&b, " \\(to %s\\)", escapeMarkdown(f.DirectedAt))
		}
		fmt.Fprintf(&b, " from %s\n", escapeMarkdown(f.FromSender))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d %s", i+1, toggleLabel(f.Resolved, "Reopen", "Resolve")), encodeCallback(actionResolveFollowUp, f.ID)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d Delete", i+1), encodeCallback(actionDeleteFollowUp, f.ID)),
		))
	}
	return b.String(), tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func renderDecisions(decisions []*models.Decision, query string) (string, tgbotapi.InlineKeyboardMarkup) {
	if len(decisions) == 0 {
		if strings.TrimSpace(query) != "" {
			return fmt.Sprintf("No decisions match \"%s\"\\.", escapeMarkdown(query)), tgbotapi.InlineKeyboardMarkup{}
		}
		return "No decisions logged yet\\.", tgbotapi.InlineKeyboardMarkup{}
	}

	var b strings.Builder
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(decisions))
	b.WriteString("*Decisions*\n")
	for i, d := range decisions {
		channel := d.Channel
		if ch, ok := models.FindChannel(d.Channel); ok {
			channel = ch.DisplayName()
		}
		fmt.Fprintf(&b, "%d\\. %s\n   by %s in %s\n", i+1,
			escapeMarkdown(d.Summary), escapeMarkdown(d.MadeBy), escapeMarkdown(channel))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d Delete", i+1), encodeCallback(actionDeleteDecision, d.ID)),
		))
	}
	return b.String(), tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func renderMeetings(meetings []*models.Meeting) string {
	if len(meetings) == 0 {
		return "No meetings saved yet\\."
	}

	var b strings.Builder
	b.WriteString("*Meetings*\n")
	for i, m := range meetings {
		fmt.Fprintf(&b, "%d\\. %s", i+1, escapeMarkdown(m.Topic))
		if m.Time != "" {
			fmt.Fprintf(&b, " \\- %s", escapeMarkdown(m.Time))
		}
		b.WriteString("\n")
		if m.NotesAdded {
			fmt.Fprintf(&b, "   notes: _%s_\n", escapeMarkdown(m.Notes))
		}
	}
	return b.String()
}

func renderChannels(channels []models.Channel, active string) string {
	var b strings.Builder
	b.WriteString("*Channels*\n")
	for _, c := range channels {
		marker := "  "
		if c.ID == active {
			marker = "▸ "
		}
		fmt.Fprintf(&b, "%s%s `%s`\n", marker, escapeMarkdown(c.DisplayName()), escapeMarkdown(c.ID))
	}
	b.WriteString("\nSwitch with " + escapeMarkdown("/channel <id>"))
	return b.String()
}

func renderCounts(c workspace.Counts) string {
	return fmt.Sprintf("%d open tasks · %d open follow\\-ups · %d decisions · %d meetings",
		c.IncompleteTasks, c.UnresolvedFollowUps, c.Decisions, c.Meetings)
}

func toggleLabel(on bool, whenOn, whenOff string) string {
	if on {
		return whenOn
	}
	return whenOff
}
