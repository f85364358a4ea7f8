package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xaenox/huddle-bot/internal/models"
	"github.com/xaenox/huddle-bot/internal/storage"
	"github.com/xaenox/huddle-bot/internal/workspace"
	"go.uber.org/zap"
)

const historySize = 5

// telegramAPI is the part of tgbotapi.BotAPI the handlers use.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	client *tgbotapi.BotAPI
	api    telegramAPI
	ws     *workspace.Workspace
	logger *zap.Logger
}

func New(token string, ws *workspace.Workspace, logger *zap.Logger) (*Bot, error) {
	client, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := newBot(client, ws, logger)
	b.client = client
	return b, nil
}

func newBot(api telegramAPI, ws *workspace.Workspace, logger *zap.Logger) *Bot {
	return &Bot{api: api, ws: ws, logger: logger}
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.client.GetUpdatesChan(u)
	b.logger.Info("Bot started", zap.String("username", b.client.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.client.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	content := message.Text
	if message.Caption != "" {
		content = message.Caption
	}
	if strings.TrimSpace(content) == "" {
		return
	}

	b.send(ctx, message, func(sender, avatar string) (*models.Message, error) {
		return b.ws.Send(ctx, workspace.SendInput{Text: content, Sender: sender, Avatar: avatar})
	})
}

// send posts a placeholder while the message is classified and replaces it
// with the resolved message.
func (b *Bot) send(ctx context.Context, message *tgbotapi.Message, do func(sender, avatar string) (*models.Message, error)) {
	sender, avatar := senderOf(message.From)

	placeholder := tgbotapi.NewMessage(message.Chat.ID, "_Analyzing…_")
	placeholder.ParseMode = tgbotapi.ModeMarkdownV2
	placeholder.ReplyToMessageID = message.MessageID
	sent, err := b.api.Send(placeholder)
	if err != nil {
		b.logger.Error("Failed to send placeholder",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		return
	}

	msg, err := do(sender, avatar)
	if err != nil {
		b.discard(message.Chat.ID, sent.MessageID)
		switch {
		case errors.Is(err, workspace.ErrSendInFlight):
			b.logger.Debug("Send rejected while another is in flight",
				zap.Int64("chat_id", message.Chat.ID))
		case errors.Is(err, workspace.ErrEmptyMessage):
			b.sendMessage(message.Chat.ID, "Nothing to send.")
		default:
			b.logger.Error("Failed to send message",
				zap.Error(err),
				zap.Int64("chat_id", message.Chat.ID))
			b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't post your message. Please try again.")
		}
		return
	}

	b.editCard(message.Chat.ID, sent.MessageID, msg)
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	args := strings.TrimSpace(message.CommandArguments())

	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "channels":
		b.sendMarkdown(message.Chat.ID, renderChannels(b.ws.Channels(), b.ws.ActiveChannel().ID), nil)
	case "channel":
		b.handleChannel(message, args)
	case "history":
		b.handleHistory(ctx, message)
	case "tasks":
		b.handleTasks(ctx, message.Chat.ID, 0)
	case "followups":
		b.handleFollowUps(ctx, message.Chat.ID, 0)
	case "decisions":
		b.handleDecisions(ctx, message.Chat.ID, 0, args)
	case "meetings":
		b.handleMeetings(ctx, message)
	case "counts":
		b.handleCounts(ctx, message)
	case "agenda":
		b.handleAgenda(ctx, message, args)
	case "notes":
		b.handleNotes(ctx, message, args)
	case "draft":
		b.handleDraft(message, args)
	case "send":
		b.send(ctx, message, func(sender, avatar string) (*models.Message, error) {
			return b.ws.SendDraft(ctx, sender, avatar)
		})
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	welcome := `Welcome to Huddle! 💬
Post messages as if this were a team channel. Each one is analyzed for tasks, follow-ups, decisions and meetings, and you can save what is detected with one tap.

Use /help to see all available commands.`

	b.sendMessage(message.Chat.ID, welcome)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `Available commands:
/channels - List channels
/channel <id> - Switch the active channel
/history - Recent messages in the active channel
/tasks - Your task list
/followups - Follow-ups you are tracking
/decisions [query] - Decision log, optionally filtered
/meetings - Saved meetings
/counts - Open tasks, follow-ups, decisions and meetings
/agenda <message id> <text> - Edit a meeting agenda before saving
/notes <message id> <text> - Attach notes to a saved meeting
/draft [text] - Show or set the draft
/send - Post the draft`

	b.sendMessage(message.Chat.ID, help)
}

func (b *Bot) handleChannel(message *tgbotapi.Message, id string) {
	if id == "" {
		b.sendMessage(message.Chat.ID, "Usage: /channel <id>")
		return
	}
	ch, err := b.ws.SwitchChannel(id)
	if err != nil {
		b.sendMessage(message.Chat.ID, fmt.Sprintf("Unknown channel %q. Use /channels to list them.", id))
		return
	}
	b.sendMessage(message.Chat.ID, "Now posting in "+ch.DisplayName())
}

func (b *Bot) handleHistory(ctx context.Context, message *tgbotapi.Message) {
	channel := b.ws.ActiveChannel()
	messages, err := b.ws.ChannelMessages(ctx, channel.ID)
	if err != nil {
		b.logger.Error("Failed to get channel messages",
			zap.Error(err),
			zap.String("channel", channel.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't retrieve the message history.")
		return
	}

	if len(messages) == 0 {
		b.sendMessage(message.Chat.ID, channel.DisplayName()+" has no messages yet.")
		return
	}

	if len(messages) > historySize {
		messages = messages[len(messages)-historySize:]
	}
	for _, msg := range messages {
		b.sendCard(message.Chat.ID, msg)
	}
}

func (b *Bot) handleTasks(ctx context.Context, chatID int64, editID int) {
	tasks, err := b.ws.Tasks(ctx)
	if err != nil {
		b.logger.Error("Failed to list tasks", zap.Error(err))
		b.sendErrorMessage(chatID, "Sorry, I couldn't load your tasks.")
		return
	}
	text, markup := renderTasks(tasks)
	b.showList(chatID, editID, text, markup)
}

func (b *Bot) handleFollowUps(ctx context.Context, chatID int64, editID int) {
	fus, err := b.ws.FollowUps(ctx)
	if err != nil {
		b.logger.Error("Failed to list follow-ups", zap.Error(err))
		b.sendErrorMessage(chatID, "Sorry, I couldn't load your follow-ups.")
		return
	}
	text, markup := renderFollowUps(fus)
	b.showList(chatID, editID, text, markup)
}

func (b *Bot) handleDecisions(ctx context.Context, chatID int64, editID int, query string) {
	decisions, err := b.ws.Decisions(ctx, query)
	if err != nil {
		b.logger.Error("Failed to list decisions", zap.Error(err))
		b.sendErrorMessage(chatID, "Sorry, I couldn't load the decision log.")
		return
	}
	text, markup := renderDecisions(decisions, query)
	b.showList(chatID, editID, text, markup)
}

func (b *Bot) handleMeetings(ctx context.Context, message *tgbotapi.Message) {
	meetings, err := b.ws.Meetings(ctx)
	if err != nil {
		b.logger.Error("Failed to list meetings", zap.Error(err))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't load your meetings.")
		return
	}
	b.sendMarkdown(message.Chat.ID, renderMeetings(meetings), nil)
}

func (b *Bot) handleCounts(ctx context.Context, message *tgbotapi.Message) {
	counts, err := b.ws.Counts(ctx)
	if err != nil {
		b.logger.Error("Failed to count collections", zap.Error(err))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't load the counts.")
		return
	}
	b.sendMarkdown(message.Chat.ID, renderCounts(counts), nil)
}

func (b *Bot) handleAgenda(ctx context.Context, message *tgbotapi.Message, args string) {
	msgID, agenda, ok := strings.Cut(args, " ")
	agenda = strings.TrimSpace(agenda)
	if !ok || agenda == "" {
		b.sendMessage(message.Chat.ID, "Usage: /agenda <message id> <text>")
		return
	}

	msg, ok := b.meetingMessage(ctx, message.Chat.ID, msgID)
	if !ok {
		return
	}
	if msg.MeetingAdded {
		b.sendMessage(message.Chat.ID, "That meeting is already saved.")
		return
	}

	expanded := true
	if _, err := b.ws.UpdateCard(ctx, msg.ID, workspace.CardPatch{AgendaExpanded: &expanded, EditedAgenda: &agenda}); err != nil {
		b.logger.Error("Failed to update card", zap.Error(err), zap.String("message_id", msg.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't update the agenda.")
		return
	}
	b.sendMessage(message.Chat.ID, "Agenda updated. Tap Save meeting to keep it.")
}

func (b *Bot) handleNotes(ctx context.Context, message *tgbotapi.Message, args string) {
	msgID, notes, ok := strings.Cut(args, " ")
	notes = strings.TrimSpace(notes)
	if !ok || notes == "" {
		b.sendMessage(message.Chat.ID, "Usage: /notes <message id> <text>")
		return
	}

	msg, ok := b.meetingMessage(ctx, message.Chat.ID, msgID)
	if !ok {
		return
	}

	if _, err := b.ws.UpdateCard(ctx, msg.ID, workspace.CardPatch{Notes: &notes}); err != nil {
		b.logger.Error("Failed to update card", zap.Error(err), zap.String("message_id", msg.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't save the notes.")
		return
	}
	n, err := b.ws.SaveMeetingNotes(ctx, msg.ID)
	if err != nil {
		b.logger.Error("Failed to save meeting notes",
			zap.Error(err),
			zap.String("message_id", msg.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't save the notes.")
		return
	}
	if n == 0 {
		b.sendMessage(message.Chat.ID, "Save the meeting first, then add notes.")
		return
	}
	b.sendMessage(message.Chat.ID, "Notes saved.")
}

// meetingMessage loads a message with a meeting detection, replying to the
// chat when there is none.
func (b *Bot) meetingMessage(ctx context.Context, chatID int64, msgID string) (*models.Message, bool) {
	msg, err := b.ws.Message(ctx, msgID)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && !msg.Detected(models.KindMeeting)) {
		b.sendMessage(chatID, fmt.Sprintf("No meeting found on message %q.", msgID))
		return nil, false
	}
	if err != nil {
		b.logger.Error("Failed to get message", zap.Error(err), zap.String("message_id", msgID))
		b.sendErrorMessage(chatID, "Sorry, something went wrong.")
		return nil, false
	}
	return msg, true
}

func (b *Bot) handleDraft(message *tgbotapi.Message, args string) {
	if args != "" {
		b.ws.Composer().Set(args)
	}
	draft := b.ws.Composer().Snapshot().Draft
	if draft == "" {
		b.sendMessage(message.Chat.ID, "The draft is empty. Set it with /draft <text>.")
		return
	}
	b.sendMessage(message.Chat.ID, "Draft: "+draft+"\n\n/send to post it.")
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	action, id, err := decodeCallback(query.Data)
	if err != nil {
		b.logger.Warn("Ignoring callback", zap.Error(err))
		b.answer(query.ID, "")
		return
	}

	var chatID int64
	var editID int
	if query.Message != nil {
		chatID = query.Message.Chat.ID
		editID = query.Message.MessageID
	}

	switch action {
	case actionNoop:
		b.answer(query.ID, "")
	case actionAddTask, actionTrackFollowUp, actionLogDecision, actionSaveMeeting:
		b.promote(ctx, query, action, id)
	case actionUseReply:
		reply, ok, err := b.ws.SuggestedReply(ctx, id)
		if err != nil || !ok || reply == "" {
			b.answer(query.ID, "No suggested reply")
			return
		}
		b.ws.UseSuggestedReply(reply)
		b.answer(query.ID, "Reply copied to the draft. /send to post it.")
	case actionToggleAgenda:
		b.toggleAgenda(ctx, query, id)
	case actionToggleNotes:
		b.toggleNotes(ctx, query, id)
	case actionToggleTask:
		_, err = b.ws.ToggleTask(ctx, id)
		b.afterListAction(query, err)
		b.handleTasks(ctx, chatID, editID)
	case actionDeleteTask:
		err = b.ws.DeleteTask(ctx, id)
		b.afterListAction(query, err)
		b.handleTasks(ctx, chatID, editID)
	case actionResolveFollowUp:
		_, err = b.ws.ResolveFollowUp(ctx, id)
		b.afterListAction(query, err)
		b.handleFollowUps(ctx, chatID, editID)
	case actionDeleteFollowUp:
		err = b.ws.DeleteFollowUp(ctx, id)
		b.afterListAction(query, err)
		b.handleFollowUps(ctx, chatID, editID)
	case actionDeleteDecision:
		err = b.ws.DeleteDecision(ctx, id)
		b.afterListAction(query, err)
		b.handleDecisions(ctx, chatID, editID, "")
	}
}

func (b *Bot) promote(ctx context.Context, query *tgbotapi.CallbackQuery, action callbackAction, msgID string) {
	var added bool
	var err error

	switch action {
	case actionAddTask:
		var t *models.Task
		t, err = b.ws.AddTask(ctx, msgID)
		added = t != nil
	case actionTrackFollowUp:
		var f *models.FollowUp
		f, err = b.ws.TrackFollowUp(ctx, msgID)
		added = f != nil
	case actionLogDecision:
		var d *models.Decision
		d, err = b.ws.LogDecision(ctx, msgID)
		added = d != nil
	case actionSaveMeeting:
		var agenda string
		if st, ok := b.ws.Cards().Lookup(msgID); ok {
			agenda = st.EditedAgenda
		}
		var m *models.Meeting
		m, err = b.ws.SaveMeeting(ctx, msgID, agenda)
		added = m != nil
	}

	if err != nil {
		b.logger.Error("Failed to promote detection",
			zap.Error(err),
			zap.String("message_id", msgID),
			zap.String("action", string(action)))
		b.answer(query.ID, "Something went wrong")
		return
	}

	if added {
		b.answer(query.ID, "Saved")
	} else {
		b.answer(query.ID, "Already saved")
	}
	b.refreshCard(ctx, query, msgID)
}

func (b *Bot) toggleAgenda(ctx context.Context, query *tgbotapi.CallbackQuery, msgID string) {
	msg, err := b.ws.Message(ctx, msgID)
	if err != nil || !msg.Detected(models.KindMeeting) {
		b.answer(query.ID, "")
		return
	}

	st, err := b.ws.Card(ctx, msgID)
	if err == nil {
		expanded := !st.AgendaExpanded
		st, err = b.ws.UpdateCard(ctx, msgID, workspace.CardPatch{AgendaExpanded: &expanded})
	}
	if err != nil {
		b.logger.Error("Failed to update card", zap.Error(err), zap.String("message_id", msgID))
		b.answer(query.ID, "Something went wrong")
		return
	}

	b.answer(query.ID, "")
	b.refreshCard(ctx, query, msgID)
	if st.AgendaExpanded && query.Message != nil {
		b.sendMarkdown(query.Message.Chat.ID, renderAgenda(msgID, st), nil)
	}
}

func (b *Bot) toggleNotes(ctx context.Context, query *tgbotapi.CallbackQuery, msgID string) {
	st, err := b.ws.Card(ctx, msgID)
	if err == nil {
		expanded := !st.NotesExpanded
		st, err = b.ws.UpdateCard(ctx, msgID, workspace.CardPatch{NotesExpanded: &expanded})
	}
	if err != nil {
		b.answer(query.ID, "")
		return
	}

	if st.NotesExpanded {
		b.answer(query.ID, "Send /notes "+msgID+" <text>")
	} else {
		b.answer(query.ID, "")
	}
	b.refreshCard(ctx, query, msgID)
}

func (b *Bot) afterListAction(query *tgbotapi.CallbackQuery, err error) {
	if err != nil {
		b.logger.Error("Failed to update list", zap.Error(err), zap.String("data", query.Data))
		b.answer(query.ID, "Something went wrong")
		return
	}
	b.answer(query.ID, "")
}

// refreshCard re-renders the message card the callback came from.
func (b *Bot) refreshCard(ctx context.Context, query *tgbotapi.CallbackQuery, msgID string) {
	if query.Message == nil {
		return
	}
	msg, err := b.ws.Message(ctx, msgID)
	if err != nil {
		b.logger.Error("Failed to reload message", zap.Error(err), zap.String("message_id", msgID))
		return
	}
	b.editCard(query.Message.Chat.ID, query.Message.MessageID, msg)
}

func (b *Bot) cardState(msg *models.Message) workspace.CardState {
	var agenda string
	if msg.Detected(models.KindMeeting) {
		agenda = msg.Intelligence.Meeting.SuggestedAgenda
	}
	return b.ws.Cards().Get(msg.ID, agenda)
}

func (b *Bot) sendCard(chatID int64, msg *models.Message) {
	var markup any
	if kb, ok := messageKeyboard(msg, b.cardState(msg)); ok {
		markup = kb
	}
	b.sendMarkdown(chatID, renderMessage(msg), markup)
}

func (b *Bot) editCard(chatID int64, messageID int, msg *models.Message) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, renderMessage(msg))
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	if kb, ok := messageKeyboard(msg, b.cardState(msg)); ok {
		edit.ReplyMarkup = &kb
	}
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Error("Failed to edit message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
			zap.String("message_id", msg.ID))
	}
}

// showList edits the list in place when editID is set, otherwise sends it.
func (b *Bot) showList(chatID int64, editID int, text string, markup tgbotapi.InlineKeyboardMarkup) {
	if editID == 0 {
		var rm any
		if len(markup.InlineKeyboard) > 0 {
			rm = markup
		}
		b.sendMarkdown(chatID, text, rm)
		return
	}

	edit := tgbotapi.NewEditMessageText(chatID, editID, text)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	if len(markup.InlineKeyboard) > 0 {
		edit.ReplyMarkup = &markup
	}
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Error("Failed to edit list", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) answer(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.logger.Warn("Failed to answer callback", zap.Error(err))
	}
}

func (b *Bot) discard(chatID int64, messageID int) {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.logger.Warn("Failed to delete placeholder", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendMarkdown(chatID int64, text string, markup any) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.ReplyMarkup = markup
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "⚠️ "+text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

// senderOf derives the chat identity from the Telegram user.
func senderOf(u *tgbotapi.User) (string, string) {
	if u == nil {
		return "", ""
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.UserName
	}
	if name == "" {
		return "", ""
	}
	return name, initials(name)
}
