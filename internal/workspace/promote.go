package workspace

import (
	"context"
	"errors"
	"fmt"

	"github.com/xaenox/huddle-bot/internal/models"
	"github.com/xaenox/huddle-bot/internal/storage"
	"go.uber.org/zap"
)

// promotable loads the message and checks that kind was detected and not yet
// added. A nil message with a nil error means the promotion is a no-op.
// Callers hold w.mu.
func (w *Workspace) promotable(ctx context.Context, msgID string, kind models.Kind) (*models.Message, error) {
	msg, err := w.store.GetMessage(ctx, msgID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !msg.Detected(kind) || msg.Added(kind) {
		w.logger.Debug("Ignoring promotion",
			zap.String("message_id", msgID),
			zap.String("kind", string(kind)),
			zap.Bool("added", msg.Added(kind)))
		return nil, nil
	}
	return msg, nil
}

// commit flags the message as promoted before running save. A failed save
// clears the flag again.
func (w *Workspace) commit(ctx context.Context, msgID string, kind models.Kind, save func() error) error {
	if err := w.store.UpdateMessage(ctx, msgID, storage.AddedPatch(kind)); err != nil {
		return fmt.Errorf("flagging message %s: %w", msgID, err)
	}
	if err := save(); err != nil {
		if rerr := w.store.UpdateMessage(ctx, msgID, storage.ClearedPatch(kind)); rerr != nil {
			w.logger.Error("Failed to clear promotion flag",
				zap.Error(rerr),
				zap.String("message_id", msgID),
				zap.String("kind", string(kind)))
		}
		return err
	}
	w.logger.Info("Detection promoted",
		zap.String("message_id", msgID),
		zap.String("kind", string(kind)))
	return nil
}

// AddTask turns the message's task detection into a task. It returns nil
// without error when there is nothing to add.
func (w *Workspace) AddTask(ctx context.Context, msgID string) (*models.Task, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	msg, err := w.promotable(ctx, msgID, models.KindTask)
	if msg == nil || err != nil {
		return nil, err
	}

	det := msg.Intelligence.Task
	task := &models.Task{
		ID:            w.newID(),
		Title:         det.Title,
		DueDate:       det.DueDate,
		Assignee:      det.Assignee,
		FromMessageID: msg.ID,
		Channel:       msg.Channel,
		CreatedAt:     w.now(),
	}
	err = w.commit(ctx, msg.ID, models.KindTask, func() error {
		if err := w.store.SaveTask(ctx, task); err != nil {
			return fmt.Errorf("saving task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (w *Workspace) TrackFollowUp(ctx context.Context, msgID string) (*models.FollowUp, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	msg, err := w.promotable(ctx, msgID, models.KindFollowUp)
	if msg == nil || err != nil {
		return nil, err
	}

	det := msg.Intelligence.FollowUp
	fu := &models.FollowUp{
		ID:             w.newID(),
		Question:       det.Question,
		DirectedAt:     det.DirectedAt,
		SuggestedReply: det.SuggestedReply,
		FromSender:     msg.Sender,
		FromMessageID:  msg.ID,
		Channel:        msg.Channel,
		CreatedAt:      w.now(),
	}
	err = w.commit(ctx, msg.ID, models.KindFollowUp, func() error {
		if err := w.store.SaveFollowUp(ctx, fu); err != nil {
			return fmt.Errorf("saving follow-up: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fu, nil
}

func (w *Workspace) LogDecision(ctx context.Context, msgID string) (*models.Decision, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	msg, err := w.promotable(ctx, msgID, models.KindDecision)
	if msg == nil || err != nil {
		return nil, err
	}

	det := msg.Intelligence.Decision
	d := &models.Decision{
		ID:            w.newID(),
		Summary:       det.Summary,
		MadeBy:        det.MadeBy,
		Context:       det.Context,
		FromMessageID: msg.ID,
		Channel:       msg.Channel,
		CreatedAt:     w.now(),
	}
	err = w.commit(ctx, msg.ID, models.KindDecision, func() error {
		if err := w.store.SaveDecision(ctx, d); err != nil {
			return fmt.Errorf("saving decision: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// SaveMeeting stores the meeting detection. A non-empty editedAgenda replaces
// the suggested agenda. The card's agenda editor is collapsed afterwards.
func (w *Workspace) SaveMeeting(ctx context.Context, msgID, editedAgenda string) (*models.Meeting, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	msg, err := w.promotable(ctx, msgID, models.KindMeeting)
	if msg == nil || err != nil {
		return nil, err
	}

	det := msg.Intelligence.Meeting
	m := &models.Meeting{
		ID:              w.newID(),
		Topic:           det.Topic,
		Time:            det.Time,
		Participants:    det.Participants,
		SuggestedAgenda: firstNonEmpty(editedAgenda, det.SuggestedAgenda),
		FromMessageID:   msg.ID,
		Channel:         msg.Channel,
		CreatedAt:       w.now(),
	}
	err = w.commit(ctx, msg.ID, models.KindMeeting, func() error {
		if err := w.store.SaveMeeting(ctx, m); err != nil {
			return fmt.Errorf("saving meeting: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	collapsed := false
	w.cards.Update(msg.ID, CardPatch{AgendaExpanded: &collapsed})
	return m, nil
}

// UseSuggestedReply copies reply into the composer and focuses it.
func (w *Workspace) UseSuggestedReply(reply string) {
	w.composer.Focus(reply)
}

// SuggestedReply returns the reply suggested for the message's follow-up.
func (w *Workspace) SuggestedReply(ctx context.Context, msgID string) (string, bool, error) {
	msg, err := w.store.GetMessage(ctx, msgID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if !msg.Detected(models.KindFollowUp) {
		return "", false, nil
	}
	return msg.Intelligence.FollowUp.SuggestedReply, true, nil
}
