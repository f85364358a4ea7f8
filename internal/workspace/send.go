package workspace

import (
	"context"
	"fmt"
	"strings"

	"github.com/xaenox/huddle-bot/internal/classifier"
	"github.com/xaenox/huddle-bot/internal/models"
	"github.com/xaenox/huddle-bot/internal/storage"
	"go.uber.org/zap"
)

type SendInput struct {
	// Channel defaults to the active channel.
	Channel string
	Text    string
	// Sender and Avatar default to the configured local identity.
	Sender string
	Avatar string
}

// Sending reports whether a message is currently being classified.
func (w *Workspace) Sending() bool {
	return w.sending.Load()
}

// Send appends the message in processing state, classifies it and returns the
// resolved message. Classification problems never surface as errors: the
// message just ends up without intelligence.
func (w *Workspace) Send(ctx context.Context, in SendInput) (*models.Message, error) {
	return w.send(ctx, in, nil)
}

// SendDraft sends the composer draft. The draft is cleared once the send gate
// is taken, so a rejected send leaves it in place.
func (w *Workspace) SendDraft(ctx context.Context, sender, avatar string) (*models.Message, error) {
	draft := w.composer.Snapshot().Draft
	return w.send(ctx, SendInput{Text: draft, Sender: sender, Avatar: avatar}, w.composer.Clear)
}

func (w *Workspace) send(ctx context.Context, in SendInput, onAccepted func()) (*models.Message, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	channel := in.Channel
	if channel == "" {
		channel = w.ActiveChannel().ID
	}
	if _, ok := models.FindChannel(channel); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, channel)
	}

	if !w.sending.CompareAndSwap(false, true) {
		return nil, ErrSendInFlight
	}
	defer w.sending.Store(false)

	if onAccepted != nil {
		onAccepted()
	}

	msg := &models.Message{
		ID:           w.newID(),
		Sender:       firstNonEmpty(in.Sender, w.cfg.Sender),
		Avatar:       firstNonEmpty(in.Avatar, w.cfg.Avatar),
		Content:      text,
		CreatedAt:    w.now(),
		Channel:      channel,
		IsProcessing: true,
	}
	if err := w.store.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("appending message: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, w.cfg.Timeout)
	result := classifier.Run(callCtx, w.gateway, text, w.cfg.AgentID)
	cancel()

	w.logOutcome(msg, result)

	processing := false
	patch := storage.MessagePatch{IsProcessing: &processing}
	if result.Outcome == classifier.OutcomeDetected {
		patch.Intelligence = result.Intelligence
	}

	// The message must leave the processing state even if ctx was cancelled.
	resolveCtx := context.WithoutCancel(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.store.UpdateMessage(resolveCtx, msg.ID, patch); err != nil {
		return nil, fmt.Errorf("resolving message: %w", err)
	}
	resolved, err := w.store.GetMessage(resolveCtx, msg.ID)
	if err != nil {
		return nil, fmt.Errorf("reloading message: %w", err)
	}
	return resolved, nil
}

func (w *Workspace) logOutcome(msg *models.Message, result classifier.Result) {
	fields := []zap.Field{
		zap.String("message_id", msg.ID),
		zap.String("channel", msg.Channel),
		zap.String("outcome", string(result.Outcome)),
	}

	switch result.Outcome {
	case classifier.OutcomeDetected, classifier.OutcomeNoDetection:
		w.logger.Info("Message classified", fields...)
	default:
		w.logger.Warn("Classification failed, keeping plain message", append(fields, zap.Error(result.Err))...)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
