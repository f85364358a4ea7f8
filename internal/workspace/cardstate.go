package workspace

import (
	"context"
	"sync"

	"github.com/xaenox/huddle-bot/internal/models"
)

// CardState is view-only state of a message's meeting card. It is kept apart
// from the saved meeting so edits can be dropped until they are saved.
type CardState struct {
	AgendaExpanded bool   `json:"agenda_expanded"`
	NotesExpanded  bool   `json:"notes_expanded"`
	EditedAgenda   string `json:"edited_agenda"`
	Notes          string `json:"notes"`
}

// CardPatch is a partial CardState; nil fields are left alone.
type CardPatch struct {
	AgendaExpanded *bool   `json:"agenda_expanded,omitempty"`
	NotesExpanded  *bool   `json:"notes_expanded,omitempty"`
	EditedAgenda   *string `json:"edited_agenda,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

// CardStates maps message ids to card state. Entries live for the whole
// session.
type CardStates struct {
	mu     sync.RWMutex
	states map[string]CardState
}

func NewCardStates() *CardStates {
	return &CardStates{states: make(map[string]CardState)}
}

// Get returns the stored state, or a default whose edited agenda is
// defaultAgenda. The default is not stored.
func (c *CardStates) Get(msgID, defaultAgenda string) CardState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if st, ok := c.states[msgID]; ok {
		return st
	}
	return CardState{EditedAgenda: defaultAgenda}
}

// Lookup returns the stored state only.
func (c *CardStates) Lookup(msgID string) (CardState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st, ok := c.states[msgID]
	return st, ok
}

// Update merges patch into the state for msgID, starting from an empty state.
func (c *CardStates) Update(msgID string, patch CardPatch) CardState {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.states[msgID]
	if patch.AgendaExpanded != nil {
		st.AgendaExpanded = *patch.AgendaExpanded
	}
	if patch.NotesExpanded != nil {
		st.NotesExpanded = *patch.NotesExpanded
	}
	if patch.EditedAgenda != nil {
		st.EditedAgenda = *patch.EditedAgenda
	}
	if patch.Notes != nil {
		st.Notes = *patch.Notes
	}
	c.states[msgID] = st
	return st
}

func (c *CardStates) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.states)
}

func suggestedAgenda(msg *models.Message) string {
	if msg.Detected(models.KindMeeting) {
		return msg.Intelligence.Meeting.SuggestedAgenda
	}
	return ""
}

// Card returns the message's card state. The edited agenda defaults to the
// detected meeting's suggested agenda.
func (w *Workspace) Card(ctx context.Context, msgID string) (CardState, error) {
	msg, err := w.store.GetMessage(ctx, msgID)
	if err != nil {
		return CardState{}, err
	}
	return w.cards.Get(msg.ID, suggestedAgenda(msg)), nil
}

// UpdateCard merges patch into the message's card state. The first update
// stores the suggested agenda unless patch replaces it.
func (w *Workspace) UpdateCard(ctx context.Context, msgID string, patch CardPatch) (CardState, error) {
	msg, err := w.store.GetMessage(ctx, msgID)
	if err != nil {
		return CardState{}, err
	}
	if _, ok := w.cards.Lookup(msg.ID); !ok && patch.EditedAgenda == nil {
		agenda := suggestedAgenda(msg)
		patch.EditedAgenda = &agenda
	}
	return w.cards.Update(msg.ID, patch), nil
}
