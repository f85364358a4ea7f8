package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/xaenox/huddle-bot/internal/models"
)

// ordered keeps values by id in insertion order. Callers hold the storage lock.
type ordered[T any] struct {
	ids   []string
	items map[string]*T
}

func newOrdered[T any]() *ordered[T] {
	return &ordered[T]{items: make(map[string]*T)}
}

func (o *ordered[T]) put(id string, v T) {
	if _, exists := o.items[id]; !exists {
		o.ids = append(o.ids, id)
	}
	o.items[id] = &v
}

func (o *ordered[T]) get(id string) (T, bool) {
	v, ok := o.items[id]
	if !ok {
		var zero T
		return zero, false
	}
	return *v, true
}

func (o *ordered[T]) remove(id string) {
	if _, ok := o.items[id]; !ok {
		return
	}
	delete(o.items, id)
	for i, existing := range o.ids {
		if existing == id {
			o.ids = append(o.ids[:i], o.ids[i+1:]...)
			break
		}
	}
}

func (o *ordered[T]) list(keep func(*T) bool) []*T {
	out := make([]*T, 0, len(o.ids))
	for _, id := range o.ids {
		v := *o.items[id]
		if keep == nil || keep(&v) {
			out = append(out, &v)
		}
	}
	return out
}

type MemoryStorage struct {
	mu        sync.RWMutex
	messages  *ordered[models.Message]
	tasks     *ordered[models.Task]
	followUps *ordered[models.FollowUp]
	decisions *ordered[models.Decision]
	meetings  *ordered[models.Meeting]
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		messages:  newOrdered[models.Message](),
		tasks:     newOrdered[models.Task](),
		followUps: newOrdered[models.FollowUp](),
		decisions: newOrdered[models.Decision](),
		meetings:  newOrdered[models.Meeting](),
	}
}

// Message methods
func (s *MemoryStorage) AppendMessage(ctx context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.messages.get(msg.ID); exists {
		return fmt.Errorf("message %s: %w", msg.ID, ErrAlreadyExists)
	}
	s.messages.put(msg.ID, *msg)
	return nil
}

func (s *MemoryStorage) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if msg, ok := s.messages.get(id); ok {
		return &msg, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) UpdateMessage(ctx context.Context, id string, patch MessagePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg, ok := s.messages.items[id]; ok {
		patch.Apply(msg)
	}
	return nil
}

func (s *MemoryStorage) ListMessages(ctx context.Context, channel string) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.messages.list(func(m *models.Message) bool {
		return channel == "" || m.Channel == channel
	}), nil
}

// Task methods
func (s *MemoryStorage) SaveTask(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks.put(task.ID, *task)
	return nil
}

func (s *MemoryStorage) GetTask(ctx context.Context, id string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if task, ok := s.tasks.get(id); ok {
		return &task, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks.remove(id)
	return nil
}

func (s *MemoryStorage) ListTasks(ctx context.Context) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.tasks.list(nil), nil
}

// Follow-up methods
func (s *MemoryStorage) SaveFollowUp(ctx context.Context, fu *models.FollowUp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.followUps.put(fu.ID, *fu)
	return nil
}

func (s *MemoryStorage) GetFollowUp(ctx context.Context, id string) (*models.FollowUp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if fu, ok := s.followUps.get(id); ok {
		return &fu, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) DeleteFollowUp(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.followUps.remove(id)
	return nil
}

func (s *MemoryStorage) ListFollowUps(ctx context.Context) ([]*models.FollowUp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.followUps.list(nil), nil
}

// Decision methods
func (s *MemoryStorage) SaveDecision(ctx context.Context, d *models.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.decisions.put(d.ID, *d)
	return nil
}

func (s *MemoryStorage) DeleteDecision(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.decisions.remove(id)
	return nil
}

func (s *MemoryStorage) ListDecisions(ctx context.Context) ([]*models.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.decisions.list(nil), nil
}

// Meeting methods
func (s *MemoryStorage) SaveMeeting(ctx context.Context, m *models.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.meetings.put(m.ID, *m)
	return nil
}

func (s *MemoryStorage) ListMeetings(ctx context.Context) ([]*models.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.meetings.list(nil), nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
