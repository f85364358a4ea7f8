package storage

import (
	"context"
	"errors"

	"github.com/xaenox/huddle-bot/internal/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

type Storage interface {
	MessageStorage
	TaskStorage
	FollowUpStorage
	DecisionStorage
	MeetingStorage
	Close() error
}

// MessageStorage is append-only apart from targeted patches.
type MessageStorage interface {
	// AppendMessage fails with ErrAlreadyExists when the id is taken.
	AppendMessage(ctx context.Context, msg *models.Message) error
	GetMessage(ctx context.Context, id string) (*models.Message, error)
	// UpdateMessage applies patch to the message with id. A missing id is a no-op.
	UpdateMessage(ctx context.Context, id string, patch MessagePatch) error
	// ListMessages returns messages in insertion order; an empty channel lists all.
	ListMessages(ctx context.Context, channel string) ([]*models.Message, error)
}

type TaskStorage interface {
	SaveTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context) ([]*models.Task, error)
}

type FollowUpStorage interface {
	SaveFollowUp(ctx context.Context, fu *models.FollowUp) error
	GetFollowUp(ctx context.Context, id string) (*models.FollowUp, error)
	DeleteFollowUp(ctx context.Context, id string) error
	ListFollowUps(ctx context.Context) ([]*models.FollowUp, error)
}

type DecisionStorage interface {
	SaveDecision(ctx context.Context, d *models.Decision) error
	DeleteDecision(ctx context.Context, id string) error
	ListDecisions(ctx context.Context) ([]*models.Decision, error)
}

type MeetingStorage interface {
	SaveMeeting(ctx context.Context, m *models.Meeting) error
	ListMeetings(ctx context.Context) ([]*models.Meeting, error)
}

// MessagePatch is a partial message update; nil fields are left alone.
type MessagePatch struct {
	IsProcessing  *bool
	Intelligence  *models.Intelligence
	TaskAdded     *bool
	FollowUpAdded *bool
	DecisionAdded *bool
	MeetingAdded  *bool
}

// Apply writes the set fields of p into msg.
func (p MessagePatch) Apply(msg *models.Message) {
	if p.IsProcessing != nil {
		msg.IsProcessing = *p.IsProcessing
	}
	if p.Intelligence != nil {
		msg.Intelligence = p.Intelligence
	}
	if p.TaskAdded != nil {
		msg.TaskAdded = *p.TaskAdded
	}
	if p.FollowUpAdded != nil {
		msg.FollowUpAdded = *p.FollowUpAdded
	}
	if p.DecisionAdded != nil {
		msg.DecisionAdded = *p.DecisionAdded
	}
	if p.MeetingAdded != nil {
		msg.MeetingAdded = *p.MeetingAdded
	}
}

// AddedPatch sets the added flag for kind.
func AddedPatch(kind models.Kind) MessagePatch {
	return addedPatch(kind, true)
}

// ClearedPatch resets the added flag for kind.
func ClearedPatch(kind models.Kind) MessagePatch {
	return addedPatch(kind, false)
}

func addedPatch(kind models.Kind, added bool) MessagePatch {
	switch kind {
	case models.KindTask:
		return MessagePatch{TaskAdded: &added}
	case models.KindFollowUp:
		return MessagePatch{FollowUpAdded: &added}
	case models.KindDecision:
		return MessagePatch{DecisionAdded: &added}
	case models.KindMeeting:
		return MessagePatch{MeetingAdded: &added}
	}
	return MessagePatch{}
}
