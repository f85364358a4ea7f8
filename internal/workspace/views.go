package workspace

import (
	"context"
	"slices"
	"strings"

	"github.com/xaenox/huddle-bot/internal/models"
)

// SortTasks orders open tasks before completed ones, newest first within
// each group. The input is not modified.
func SortTasks(tasks []*models.Task) []*models.Task {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, func(a, b *models.Task) int {
		if a.Completed != b.Completed {
			if a.Completed {
				return 1
			}
			return -1
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// SortFollowUps is SortTasks for follow-ups, keyed on Resolved.
func SortFollowUps(fus []*models.FollowUp) []*models.FollowUp {
	out := slices.Clone(fus)
	slices.SortStableFunc(out, func(a, b *models.FollowUp) int {
		if a.Resolved != b.Resolved {
			if a.Resolved {
				return 1
			}
			return -1
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// FilterDecisions keeps decisions whose summary, author or context contains
// query, ignoring case, newest first. A blank query keeps everything.
func FilterDecisions(decisions []*models.Decision, query string) []*models.Decision {
	out := make([]*models.Decision, 0, len(decisions))
	q := strings.ToLower(query)
	blank := strings.TrimSpace(query) == ""

	for _, d := range decisions {
		if blank ||
			strings.Contains(strings.ToLower(d.Summary), q) ||
			strings.Contains(strings.ToLower(d.MadeBy), q) ||
			strings.Contains(strings.ToLower(d.Context), q) {
			out = append(out, d)
		}
	}

	slices.SortStableFunc(out, func(a, b *models.Decision) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

type Counts struct {
	IncompleteTasks     int `json:"incomplete_tasks"`
	UnresolvedFollowUps int `json:"unresolved_follow_ups"`
	Decisions           int `json:"decisions"`
	Meetings            int `json:"meetings"`
}

func (w *Workspace) Tasks(ctx context.Context) ([]*models.Task, error) {
	tasks, err := w.store.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	return SortTasks(tasks), nil
}

func (w *Workspace) FollowUps(ctx context.Context) ([]*models.FollowUp, error) {
	fus, err := w.store.ListFollowUps(ctx)
	if err != nil {
		return nil, err
	}
	return SortFollowUps(fus), nil
}

func (w *Workspace) Decisions(ctx context.Context, query string) ([]*models.Decision, error) {
	decisions, err := w.store.ListDecisions(ctx)
	if err != nil {
		return nil, err
	}
	return FilterDecisions(decisions, query), nil
}

// Meetings lists saved meetings in the order they were saved.
func (w *Workspace) Meetings(ctx context.Context) ([]*models.Meeting, error) {
	return w.store.ListMeetings(ctx)
}

func (w *Workspace) MeetingsForMessage(ctx context.Context, msgID string) ([]*models.Meeting, error) {
	meetings, err := w.store.ListMeetings(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(meetings, func(m *models.Meeting) bool {
		return m.FromMessageID != msgID
	}), nil
}

func (w *Workspace) Counts(ctx context.Context) (Counts, error) {
	var c Counts

	tasks, err := w.store.ListTasks(ctx)
	if err != nil {
		return c, err
	}
	for _, t := range tasks {
		if !t.Completed {
			c.IncompleteTasks++
		}
	}

	fus, err := w.store.ListFollowUps(ctx)
	if err != nil {
		return c, err
	}
	for _, f := range fus {
		if !f.Resolved {
			c.UnresolvedFollowUps++
		}
	}

	decisions, err := w.store.ListDecisions(ctx)
	if err != nil {
		return c, err
	}
	c.Decisions = len(decisions)

	meetings, err := w.store.ListMeetings(ctx)
	if err != nil {
		return c, err
	}
	c.Meetings = len(meetings)
	return c, nil
}
