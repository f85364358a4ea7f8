package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xaenox/huddle-bot/internal/models"
	"github.com/xaenox/huddle-bot/internal/storage"
	"go.uber.org/zap"
)

// ToggleTask flips the completed flag. Unknown ids return nil.
func (w *Workspace) ToggleTask(ctx context.Context, id string) (*models.Task, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	task, err := w.store.GetTask(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	task.Completed = !task.Completed
	if err := w.store.SaveTask(ctx, task); err != nil {
		return nil, fmt.Errorf("saving task: %w", err)
	}
	return task, nil
}

// DeleteTask removes the task. The originating message keeps its added flag.
func (w *Workspace) DeleteTask(ctx context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.DeleteTask(ctx, id)
}

// ResolveFollowUp flips the resolved flag. Unknown ids return nil.
func (w *Workspace) ResolveFollowUp(ctx context.Context, id string) (*models.FollowUp, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	fu, err := w.store.GetFollowUp(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	fu.Resolved = !fu.Resolved
	if err := w.store.SaveFollowUp(ctx, fu); err != nil {
		return nil, fmt.Errorf("saving follow-up: %w", err)
	}
	return fu, nil
}

func (w *Workspace) DeleteFollowUp(ctx context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.DeleteFollowUp(ctx, id)
}

func (w *Workspace) DeleteDecision(ctx context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.DeleteDecision(ctx, id)
}

// SaveMeetingNotes copies the card's notes into every meeting created from
// msgID. Only one such meeting can exist while the added flag gates
// SaveMeeting. Blank notes are ignored. It returns the number of meetings
// updated.
func (w *Workspace) SaveMeetingNotes(ctx context.Context, msgID string) (int, error) {
	st, ok := w.cards.Lookup(msgID)
	if !ok || strings.TrimSpace(st.Notes) == "" {
		return 0, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	meetings, err := w.store.ListMeetings(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, m := range meetings {
		if m.FromMessageID != msgID {
			continue
		}
		m.Notes = st.Notes
		m.NotesAdded = true
		if err := w.store.SaveMeeting(ctx, m); err != nil {
			return updated, fmt.Errorf("saving meeting notes: %w", err)
		}
		updated++
	}

	collapsed := false
	w.cards.Update(msgID, CardPatch{NotesExpanded: &collapsed})

	w.logger.Info("Meeting notes saved",
		zap.String("message_id", msgID),
		zap.Int("meetings", updated))
	return updated, nil
}
