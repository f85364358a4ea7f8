// Package workspace holds the chat workspace state: the message log, the
// send-and-classify flow, the lists promoted from detections and the
// per-message card state used by the views.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/xaenox/huddle-bot/internal/classifier"
	"github.com/xaenox/huddle-bot/internal/models"
	"github.com/xaenox/huddle-bot/internal/storage"
	"go.uber.org/zap"
)

var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrSendInFlight   = errors.New("another message is still being classified")
	ErrUnknownChannel = errors.New("unknown channel")
)

const (
	DefaultTimeout = 30 * time.Second
	DefaultSender  = "You"
	DefaultAvatar  = "YO"
	DefaultChannel = "general"
)

type Config struct {
	AgentID        string
	Timeout        time.Duration
	Sender         string
	Avatar         string
	DefaultChannel string
}

type Option func(*Workspace)

// WithClock replaces time.Now for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(w *Workspace) { w.now = now }
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(newID func() string) Option {
	return func(w *Workspace) { w.newID = newID }
}

type Workspace struct {
	store   storage.Storage
	gateway classifier.Gateway
	cfg     Config
	logger  *zap.Logger

	now   func() time.Time
	newID func() string

	// sending is the composer-wide gate: one classification at a time.
	sending atomic.Bool

	// mu serialises check-then-set mutations of messages and collections.
	mu sync.Mutex

	cards    *CardStates
	composer *Composer

	channelMu sync.RWMutex
	active    string
}

func New(store storage.Storage, gw classifier.Gateway, cfg Config, logger *zap.Logger, opts ...Option) *Workspace {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Sender == "" {
		cfg.Sender = DefaultSender
	}
	if cfg.Avatar == "" {
		cfg.Avatar = DefaultAvatar
	}
	if _, ok := models.FindChannel(cfg.DefaultChannel); !ok {
		cfg.DefaultChannel = DefaultChannel
	}

	w := &Workspace{
		store:    store,
		gateway:  gw,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
		cards:    NewCardStates(),
		composer: &Composer{},
		active:   cfg.DefaultChannel,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Seed appends preloaded messages, e.g. models.SeedMessages.
func (w *Workspace) Seed(ctx context.Context, msgs []*models.Message) error {
	for _, msg := range msgs {
		if err := w.store.AppendMessage(ctx, msg); err != nil {
			return fmt.Errorf("seeding message %s: %w", msg.ID, err)
		}
	}
	w.logger.Info("Seeded workspace", zap.Int("messages", len(msgs)))
	return nil
}

func (w *Workspace) Cards() *CardStates {
	return w.cards
}

func (w *Workspace) Composer() *Composer {
	return w.composer
}

func (w *Workspace) Channels() []models.Channel {
	return models.Channels()
}

func (w *Workspace) ActiveChannel() models.Channel {
	w.channelMu.RLock()
	defer w.channelMu.RUnlock()

	ch, _ := models.FindChannel(w.active)
	return ch
}

func (w *Workspace) SwitchChannel(id string) (models.Channel, error) {
	ch, ok := models.FindChannel(id)
	if !ok {
		return models.Channel{}, fmt.Errorf("%w: %q", ErrUnknownChannel, id)
	}

	w.channelMu.Lock()
	w.active = ch.ID
	w.channelMu.Unlock()
	return ch, nil
}

// Message returns the message with id, or storage.ErrNotFound.
func (w *Workspace) Message(ctx context.Context, id string) (*models.Message, error) {
	return w.store.GetMessage(ctx, id)
}

// ChannelMessages lists a channel's messages in insertion order.
func (w *Workspace) ChannelMessages(ctx context.Context, channel string) ([]*models.Message, error) {
	if _, ok := models.FindChannel(channel); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, channel)
	}
	return w.store.ListMessages(ctx, channel)
}
