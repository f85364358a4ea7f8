package workspace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/huddle-bot/internal/storage"
)

func TestCardStatesDefaultOnRead(t *testing.T) {
	cards := NewCardStates()

	st := cards.Get("m1", "1. Intro")
	assert.Equal(t, CardState{EditedAgenda: "1. Intro"}, st)
	assert.Zero(t, cards.Len(), "default is not stored")

	_, ok := cards.Lookup("m1")
	assert.False(t, ok)
}

func TestCardStatesUpdateMerges(t *testing.T) {
	cards := NewCardStates()

	open := true
	st := cards.Update("m1", CardPatch{AgendaExpanded: &open})
	assert.Equal(t, CardState{AgendaExpanded: true}, st, "starts from an empty state")

	agenda := "1. Blockers"
	st = cards.Update("m1", CardPatch{EditedAgenda: &agenda})
	assert.True(t, st.AgendaExpanded)
	assert.Equal(t, "1. Blockers", st.EditedAgenda)

	assert.Equal(t, st, cards.Get("m1", "ignored default"))
	assert.Equal(t, 1, cards.Len())

	notes := "done"
	cards.Update("m2", CardPatch{Notes: &notes})
	assert.Equal(t, 2, cards.Len())
}

func TestWorkspaceCardKeepsSuggestedAgenda(t *testing.T) {
	f := seededFixture(t)
	ctx := context.Background()

	st, err := f.ws.Card(ctx, "5")
	require.NoError(t, err)
	assert.Contains(t, st.EditedAgenda, "Review completed items")
	assert.Zero(t, f.ws.Cards().Len())

	open := true
	st, err = f.ws.UpdateCard(ctx, "5", CardPatch{NotesExpanded: &open})
	require.NoError(t, err)
	assert.True(t, st.NotesExpanded)
	assert.Contains(t, st.EditedAgenda, "Review completed items", "first update stores the default")

	agenda := ""
	st, err = f.ws.UpdateCard(ctx, "5", CardPatch{EditedAgenda: &agenda})
	require.NoError(t, err)
	assert.Empty(t, st.EditedAgenda)

	st, err = f.ws.Card(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, CardState{}, st)

	_, err = f.ws.UpdateCard(ctx, "missing", CardPatch{})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
