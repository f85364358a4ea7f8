package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/huddle-bot/internal/classifier"
	"github.com/xaenox/huddle-bot/internal/models"
	"github.com/xaenox/huddle-bot/internal/storage"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type gatewayFunc func(ctx context.Context, text, agentID string) (*classifier.Response, error)

func (f gatewayFunc) Classify(ctx context.Context, text, agentID string) (*classifier.Response, error) {
	return f(ctx, text, agentID)
}

func respondWith(result string) gatewayFunc {
	return func(ctx context.Context, text, agentID string) (*classifier.Response, error) {
		return &classifier.Response{
			Success:  true,
			Response: &classifier.AgentResponse{Result: json.RawMessage(result)},
		}, nil
	}
}

type fixture struct {
	ws    *Workspace
	store *storage.MemoryStorage
	clock time.Time
}

// newFixture builds a workspace with sequential ids and a clock that advances
// one minute per call.
func newFixture(t *testing.T, gw classifier.Gateway, cfg Config) *fixture {
	t.Helper()

	f := &fixture{store: storage.NewMemoryStorage(), clock: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	var mu sync.Mutex
	seq := 0
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		f.clock = f.clock.Add(time.Minute)
		return f.clock
	}
	ids := func() string {
		mu.Lock()
		defer mu.Unlock()
		seq++
		return fmt.Sprintf("id-%d", seq)
	}

	if cfg.AgentID == "" {
		cfg.AgentID = "agent-test"
	}
	f.ws = New(f.store, gw, cfg, zaptest.NewLogger(t), WithClock(clock), WithIDGenerator(ids))
	return f
}

func TestSendDetectsTaskAndPromotesOnce(t *testing.T) {
	var calls int
	var gotAgent string
	gw := gatewayFunc(func(ctx context.Context, text, agentID string) (*classifier.Response, error) {
		calls++
		gotAgent = agentID
		return respondWith(`{"task":{"detected":true,"title":"finish X","dueDate":"Friday"}}`)(ctx, text, agentID)
	})
	f := newFixture(t, gw, Config{AgentID: "agent-42"})
	ctx := context.Background()

	msg, err := f.ws.Send(ctx, SendInput{Text: "  We need to finish X by Friday  "})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "agent-42", gotAgent)
	assert.Equal(t, "We need to finish X by Friday", msg.Content)
	assert.Equal(t, "general", msg.Channel)
	assert.Equal(t, "You", msg.Sender)
	assert.Equal(t, "YO", msg.Avatar)
	assert.False(t, msg.IsProcessing)
	require.True(t, msg.Detected(models.KindTask))
	assert.Nil(t, msg.Intelligence.FollowUp)

	task, err := f.ws.AddTask(ctx, msg.ID)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "finish X", task.Title)
	assert.Equal(t, "Friday", task.DueDate)
	assert.Equal(t, "", task.Assignee)
	assert.Equal(t, msg.ID, task.FromMessageID)
	assert.False(t, task.Completed)

	again, err := f.ws.AddTask(ctx, msg.ID)
	require.NoError(t, err)
	assert.Nil(t, again)

	tasks, err := f.ws.Tasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	stored, err := f.ws.Message(ctx, msg.ID)
	require.NoError(t, err)
	assert.True(t, stored.TaskAdded)
	assert.True(t, stored.AddedConsistent())
}

func TestSendFailuresDegradeToPlainMessage(t *testing.T) {
	cases := map[string]gatewayFunc{
		"transport error": func(ctx context.Context, text, agentID string) (*classifier.Response, error) {
			return nil, errors.New("connection reset")
		},
		"panic": func(ctx context.Context, text, agentID string) (*classifier.Response, error) {
			panic("agent exploded")
		},
		"unsuccessful": func(ctx context.Context, text, agentID string) (*classifier.Response, error) {
			return &classifier.Response{Success: false}, nil
		},
		"undecodable text": respondWith(`"definitely {not json"`),
		"nothing detected": respondWith(`{"task":{"detected":false,"title":"x"}}`),
	}

	for name, gw := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, gw, Config{})
			ctx := context.Background()

			msg, err := f.ws.Send(ctx, SendInput{Text: "hello there"})
			require.NoError(t, err)
			assert.False(t, msg.IsProcessing)
			assert.Nil(t, msg.Intelligence)
			assert.False(t, f.ws.Sending())

			for _, kind := range models.Kinds {
				assert.False(t, msg.Detected(kind))
			}
			task, err := f.ws.AddTask(ctx, msg.ID)
			require.NoError(t, err)
			assert.Nil(t, task)

			counts, err := f.ws.Counts(ctx)
			require.NoError(t, err)
			assert.Equal(t, Counts{}, counts)
		})
	}
}

func TestSendValidatesInput(t *testing.T) {
	f := newFixture(t, respondWith(`{}`), Config{})
	ctx := context.Background()

	_, err := f.ws.Send(ctx, SendInput{Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = f.ws.Send(ctx, SendInput{Text: "hi", Channel: "nowhere"})
	assert.ErrorIs(t, err, ErrUnknownChannel)

	msgs, err := f.store.ListMessages(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestSendGateRejectsSecondSend(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	gw := gatewayFunc(func(ctx context.Context, text, agentID string) (*classifier.Response, error) {
		close(entered)
		<-release
		return &classifier.Response{Success: true}, nil
	})
	f := newFixture(t, gw, Config{})
	ctx := context.Background()

	type outcome struct {
		msg *models.Message
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		msg, err := f.ws.Send(ctx, SendInput{Text: "first", Channel: "design"})
		done <- outcome{msg, err}
	}()

	<-entered
	assert.True(t, f.ws.Sending())

	pending, err := f.ws.ChannelMessages(ctx, "design")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.True(t, pending[0].IsProcessing)

	_, err = f.ws.Send(ctx, SendInput{Text: "second", Channel: "design"})
	assert.ErrorIs(t, err, ErrSendInFlight)

	close(release)
	first := <-done
	require.NoError(t, first.err)
	assert.False(t, first.msg.IsProcessing)
	assert.False(t, f.ws.Sending())

	all, err := f.ws.ChannelMessages(ctx, "design")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSendTimeoutReleasesGate(t *testing.T) {
	gw := gatewayFunc(func(ctx context.Context, text, agentID string) (*classifier.Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	f := newFixture(t, gw, Config{Timeout: 20 * time.Millisecond})
	ctx := context.Background()

	msg, err := f.ws.Send(ctx, SendInput{Text: "anyone there?"})
	require.NoError(t, err)
	assert.False(t, msg.IsProcessing)
	assert.Nil(t, msg.Intelligence)
	assert.False(t, f.ws.Sending())

	_, err = f.ws.Send(ctx, SendInput{Text: "still here"})
	require.NoError(t, err)
}

func TestSendResolvesWhenCallerCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gw := gatewayFunc(func(gctx context.Context, text, agentID string) (*classifier.Response, error) {
		cancel()
		<-gctx.Done()
		return nil, gctx.Err()
	})
	f := newFixture(t, gw, Config{})

	msg, err := f.ws.Send(ctx, SendInput{Text: "bye"})
	require.NoError(t, err)
	assert.False(t, msg.IsProcessing)
}

func TestSendUsesActiveChannelAndIdentity(t *testing.T) {
	f := newFixture(t, respondWith(`{}`), Config{Sender: "Dana Scully", Avatar: "DS"})
	ctx := context.Background()

	ch, err := f.ws.SwitchChannel("dm-mike")
	require.NoError(t, err)
	assert.Equal(t, "Mike Ross", ch.DisplayName())
	assert.Equal(t, "dm-mike", f.ws.ActiveChannel().ID)

	_, err = f.ws.SwitchChannel("bogus")
	assert.ErrorIs(t, err, ErrUnknownChannel)
	assert.Equal(t, "dm-mike", f.ws.ActiveChannel().ID)

	msg, err := f.ws.Send(ctx, SendInput{Text: "hey"})
	require.NoError(t, err)
	assert.Equal(t, "dm-mike", msg.Channel)
	assert.Equal(t, "Dana Scully", msg.Sender)

	msg, err = f.ws.Send(ctx, SendInput{Text: "hey", Sender: "Fox Mulder", Avatar: "FM"})
	require.NoError(t, err)
	assert.Equal(t, "Fox Mulder", msg.Sender)
	assert.Equal(t, "FM", msg.Avatar)
}

func TestSendDraftClearsComposer(t *testing.T) {
	f := newFixture(t, respondWith(`{}`), Config{})
	ctx := context.Background()

	_, err := f.ws.SendDraft(ctx, "", "")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	f.ws.UseSuggestedReply("Sure, on it.")
	state := f.ws.Composer().Snapshot()
	assert.Equal(t, "Sure, on it.", state.Draft)
	assert.True(t, state.Focused)

	msg, err := f.ws.SendDraft(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, "Sure, on it.", msg.Content)
	assert.Equal(t, ComposerState{}, f.ws.Composer().Snapshot())
}

func TestSeedAndChannelMessages(t *testing.T) {
	f := newFixture(t, respondWith(`{}`), Config{})
	ctx := context.Background()

	require.NoError(t, f.ws.Seed(ctx, models.SeedMessages(f.clock)))

	general, err := f.ws.ChannelMessages(ctx, "general")
	require.NoError(t, err)
	require.Len(t, general, 5)
	for i, id := range []string{"1", "2", "3", "4", "5"} {
		assert.Equal(t, id, general[i].ID)
	}

	_, err = f.ws.ChannelMessages(ctx, "nope")
	assert.ErrorIs(t, err, ErrUnknownChannel)

	_, err = f.ws.Message(ctx, "404")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
