package classifier

import (
	"context"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classifyWithKeywords(t *testing.T, text string) Result {
	t.Helper()
	resp, err := NewKeywordClassifier().Classify(context.Background(), text, "agent")
	require.NoError(t, err)
	return Interpret(resp, nil)
}

func TestKeywordClassifierTask(t *testing.T) {
	res := classifyWithKeywords(t, "We need to finish X by Friday")
	require.Equal(t, OutcomeDetected, res.Outcome)
	require.NotNil(t, res.Intelligence.Task)
	assert.Equal(t, "Finish X", res.Intelligence.Task.Title)
	assert.Equal(t, "Friday", res.Intelligence.Task.DueDate)
	assert.Nil(t, res.Intelligence.Meeting)
}

func TestKeywordClassifierTaskWithFollowUp(t *testing.T) {
	res := classifyWithKeywords(t, "We need to migrate the database schema before Friday. @Mike can you handle this?")
	require.Equal(t, OutcomeDetected, res.Outcome)

	require.NotNil(t, res.Intelligence.Task)
	assert.Equal(t, "Migrate the database schema", res.Intelligence.Task.Title)
	assert.Equal(t, "Mike", res.Intelligence.Task.Assignee)

	require.NotNil(t, res.Intelligence.FollowUp)
	assert.Equal(t, "Can you handle this?", res.Intelligence.FollowUp.Question)
	assert.Equal(t, "Mike", res.Intelligence.FollowUp.DirectedAt)
	assert.NotEmpty(t, res.Intelligence.FollowUp.SuggestedReply)
}

func TestKeywordClassifierDecision(t *testing.T) {
	res := classifyWithKeywords(t, "After discussing the options, we decided to go with PostgreSQL for the new service.")
	require.Equal(t, OutcomeDetected, res.Outcome)
	require.NotNil(t, res.Intelligence.Decision)
	assert.Contains(t, res.Intelligence.Decision.Summary, "PostgreSQL")
}

func TestKeywordClassifierMeeting(t *testing.T) {
	res := classifyWithKeywords(t, "Let's sync tomorrow at 2pm to discuss the sprint priorities. @Alex @Mike")
	require.Equal(t, OutcomeDetected, res.Outcome)
	require.NotNil(t, res.Intelligence.Meeting)
	assert.Equal(t, "Sprint priorities", res.Intelligence.Meeting.Topic)
	assert.Equal(t, "Tomorrow at 2pm", res.Intelligence.Meeting.Time)
	assert.Equal(t, "Alex, Mike", res.Intelligence.Meeting.Participants)
	assert.NotEmpty(t, res.Intelligence.Meeting.SuggestedAgenda)
}

func TestKeywordClassifierPlainMessage(t *testing.T) {
	res := classifyWithKeywords(t, "Hey team! Hope everyone had a great weekend.")
	assert.Equal(t, OutcomeNoDetection, res.Outcome)
	assert.Nil(t, res.Intelligence)
}

func TestKeywordClassifierHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewKeywordClassifier().Classify(ctx, "We need to ship", "agent")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKeywordClassifierKeepsNonASCIITitles(t *testing.T) {
	res := classifyWithKeywords(t, "We need to écrire the docs by Friday.")
	require.Equal(t, OutcomeDetected, res.Outcome)
	require.NotNil(t, res.Intelligence.Task)
	assert.Equal(t, "Écrire the docs", res.Intelligence.Task.Title)
	assert.Equal(t, "Friday", res.Intelligence.Task.DueDate)
}

func TestCapitalize(t *testing.T) {
	for in, want := range map[string]string{
		"":          "",
		"  friday ": "Friday",
		"écrire":    "Écrire",
		"1pm":       "1pm",
	} {
		got := capitalize(in)
		assert.True(t, utf8.ValidString(got), in)
		assert.Equal(t, want, got, in)
	}
}
