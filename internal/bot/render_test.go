package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/huddle-bot/internal/models"
	"github.com/xaenox/huddle-bot/internal/workspace"
)

func seedMessage(t *testing.T, id string) *models.Message {
	t.Helper()
	for _, msg := range models.SeedMessages(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)) {
		if msg.ID == id {
			return msg
		}
	}
	t.Fatalf("no seed message %q", id)
	return nil
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `v1\.2 \(beta\)\!`, escapeMarkdown("v1.2 (beta)!"))
	assert.Equal(t, `a\\b`, escapeMarkdown(`a\b`))
	assert.Equal(t, "plain", escapeMarkdown("plain"))
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "ST", initials("Sarah Turner Chen"))
	assert.Equal(t, "M", initials("mike"))
	assert.Equal(t, "??", initials("  "))
}

func TestCallbackData(t *testing.T) {
	action, id, err := decodeCallback(encodeCallback(actionAddTask, "abc-123"))
	require.NoError(t, err)
	assert.Equal(t, actionAddTask, action)
	assert.Equal(t, "abc-123", id)

	for _, data := range []string{"", "task", "task:", "bogus:1"} {
		_, _, err := decodeCallback(data)
		assert.Error(t, err, data)
	}
}

func TestRenderMessage(t *testing.T) {
	text := renderMessage(seedMessage(t, "7"))
	assert.Contains(t, text, "*Alex Turner*")
	assert.Contains(t, text, "*Task:* Migrate the database schema")
	assert.Contains(t, text, "for Mike")
	assert.Contains(t, text, "*Follow\\-up:*")
	assert.NotContains(t, text, "Decision")

	processing := &models.Message{ID: "x", Sender: "You", Content: "hello", IsProcessing: true}
	assert.Contains(t, renderMessage(processing), "Analyzing")
}

func buttons(t *testing.T, msg *models.Message, card workspace.CardState) [][2]string {
	t.Helper()
	kb, ok := messageKeyboard(msg, card)
	require.True(t, ok)

	var out [][2]string
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			require.NotNil(t, btn.CallbackData)
			out = append(out, [2]string{btn.Text, *btn.CallbackData})
		}
	}
	return out
}

func TestMessageKeyboard(t *testing.T) {
	msg := seedMessage(t, "7")
	assert.Equal(t, [][2]string{
		{"Add to tasks", "task:7"},
		{"Track follow-up", "followup:7"},
		{"Use suggested reply", "reply:7"},
	}, buttons(t, msg, workspace.CardState{}))

	msg.TaskAdded = true
	got := buttons(t, msg, workspace.CardState{})
	assert.Equal(t, [2]string{"✓ Added to tasks", "noop:7"}, got[0])
}

func TestMeetingKeyboard(t *testing.T) {
	msg := seedMessage(t, "5")
	assert.Equal(t, [][2]string{
		{"Save meeting", "meeting:5"},
		{"Show agenda", "agenda:5"},
	}, buttons(t, msg, workspace.CardState{}))

	msg.MeetingAdded = true
	assert.Equal(t, [][2]string{
		{"✓ Meeting saved", "noop:5"},
		{"Hide agenda", "agenda:5"},
		{"Close notes", "notes:5"},
	}, buttons(t, msg, workspace.CardState{AgendaExpanded: true, NotesExpanded: true}))
}

func TestMessageWithoutDetectionsHasNoKeyboard(t *testing.T) {
	_, ok := messageKeyboard(seedMessage(t, "1"), workspace.CardState{})
	assert.False(t, ok)
}

func TestRenderLists(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	tasks := []*models.Task{
		{ID: "a", Title: "Write docs", DueDate: "Friday", CreatedAt: now},
		{ID: "b", Title: "Ship it", Completed: true, CreatedAt: now},
	}
	text, kb := renderTasks(tasks)
	assert.Contains(t, text, "1\\. ☐ Write docs \\(due Friday\\)")
	assert.Contains(t, text, "2\\. ☑ Ship it")
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Equal(t, "tasktoggle:a", *kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "2 Reopen", kb.InlineKeyboard[1][0].Text)

	text, kb = renderDecisions(nil, "redis")
	assert.Equal(t, `No decisions match "redis"\.`, text)
	assert.Empty(t, kb.InlineKeyboard)

	text, _ = renderDecisions([]*models.Decision{{ID: "d", Summary: "Use Go", MadeBy: "Sam", Channel: "dm-alex"}}, "")
	assert.Contains(t, text, "Use Go")
	assert.Contains(t, text, "in Alex Turner")

	assert.Contains(t, renderMeetings([]*models.Meeting{{Topic: "Retro", NotesAdded: true, Notes: "went well"}}), "notes: _went well_")
	assert.Contains(t, renderChannels(models.Channels(), "design"), "▸ \\# design")
	assert.Equal(t, "1 open tasks · 0 open follow\\-ups · 2 decisions · 0 meetings",
		renderCounts(workspace.Counts{IncompleteTasks: 1, Decisions: 2}))
}

// assertMarkdownV2 fails when a reserved character is left unescaped outside
// a code span or when an emphasis marker is unbalanced.
func assertMarkdownV2(t *testing.T, text string) {
	t.Helper()
	const reserved = "[]()>#+-=|{}.!"
	markers := map[byte]int{}
	inCode := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\\':
			i++
		case c == '`':
			inCode = !inCode
		case inCode:
		case strings.IndexByte(reserved, c) >= 0:
			t.Errorf("unescaped %q at offset %d in %q", c, i, text)
			return
		case c == '*' || c == '_' || c == '~':
			markers[c]++
		}
	}
	assert.False(t, inCode, "unterminated code span in %q", text)
	for m, n := range markers {
		assert.Zero(t, n%2, "unbalanced %q in %q", m, text)
	}
}

func TestRenderedTextIsValidMarkdownV2(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	for _, msg := range models.SeedMessages(now) {
		assertMarkdownV2(t, renderMessage(msg))
	}
	assertMarkdownV2(t, renderMessage(&models.Message{
		Sender: "A.B (ops)", Content: "Deploy v1.2 > v1.1? #release [x] {y} a+b=c!", CreatedAt: now, IsProcessing: true,
	}))

	assertMarkdownV2(t, renderChannels(models.Channels(), "general"))
	assertMarkdownV2(t, renderAgenda("5", workspace.CardState{EditedAgenda: "1. Review (draft)\n2. Next steps!"}))
	assertMarkdownV2(t, renderCounts(workspace.Counts{IncompleteTasks: 3}))

	text, _ := renderTasks([]*models.Task{{ID: "a", Title: "Fix #12 (auth)", DueDate: "Fri.", Assignee: "m-r", CreatedAt: now}})
	assertMarkdownV2(t, text)
	text, _ = renderTasks(nil)
	assertMarkdownV2(t, text)

	text, _ = renderFollowUps([]*models.FollowUp{{ID: "f", Question: "Ready?", DirectedAt: "Mike", FromSender: "Sarah"}})
	assertMarkdownV2(t, text)
	text, _ = renderFollowUps(nil)
	assertMarkdownV2(t, text)

	text, _ = renderDecisions([]*models.Decision{{ID: "d", Summary: "Use Go 1.24", MadeBy: "Sam", Channel: "general"}}, "")
	assertMarkdownV2(t, text)
	text, _ = renderDecisions(nil, "v2.0")
	assertMarkdownV2(t, text)
	text, _ = renderDecisions(nil, "")
	assertMarkdownV2(t, text)

	assertMarkdownV2(t, renderMeetings([]*models.Meeting{{Topic: "Q3 - plan", Time: "Tue 3pm", NotesAdded: true, Notes: "ok!"}}))
	assertMarkdownV2(t, renderMeetings(nil))
}
