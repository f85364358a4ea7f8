package httpapi

import (
	"net/http"

	"github.com/kataras/iris/v12"
	"github.com/xaenox/huddle-bot/internal/workspace"
)

type sendMessageInput struct {
	Text   string `json:"text" validate:"required"`
	Sender string `json:"sender" validate:"max=64"`
	Avatar string `json:"avatar" validate:"max=4"`
}

type saveMeetingInput struct {
	Agenda *string `json:"agenda"`
}

type saveNotesInput struct {
	Notes *string `json:"notes"`
}

// GET /api/channels
func (h *handler) listChannels(ctx iris.Context) {
	ctx.JSON(iris.Map{
		"data":   h.ws.Channels(),
		"active": h.ws.ActiveChannel().ID,
	})
}

// GET /api/channels/{channel}/messages
func (h *handler) listMessages(ctx iris.Context) {
	msgs, err := h.ws.ChannelMessages(ctx.Request().Context(), ctx.Params().Get("channel"))
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"data": msgs})
}

// POST /api/channels/{channel}/messages
func (h *handler) sendMessage(ctx iris.Context) {
	var input sendMessageInput
	if err := ctx.ReadJSON(&input); err != nil {
		invalidPayload(ctx, err)
		return
	}

	msg, err := h.ws.Send(ctx.Request().Context(), workspace.SendInput{
		Channel: ctx.Params().Get("channel"),
		Text:    input.Text,
		Sender:  input.Sender,
		Avatar:  input.Avatar,
	})
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(iris.Map{"data": msg})
}

// GET /api/messages/{id}
func (h *handler) getMessage(ctx iris.Context) {
	msg, err := h.ws.Message(ctx.Request().Context(), ctx.Params().Get("id"))
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"data": msg})
}

// The promotion handlers answer 200 whether or not anything was added: a
// repeated click is not an error.

// POST /api/messages/{id}/task
func (h *handler) addTask(ctx iris.Context) {
	task, err := h.ws.AddTask(ctx.Request().Context(), ctx.Params().Get("id"))
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"added": task != nil, "task": task})
}

// POST /api/messages/{id}/followup
func (h *handler) trackFollowUp(ctx iris.Context) {
	fu, err := h.ws.TrackFollowUp(ctx.Request().Context(), ctx.Params().Get("id"))
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"added": fu != nil, "follow_up": fu})
}

// POST /api/messages/{id}/decision
func (h *handler) logDecision(ctx iris.Context) {
	d, err := h.ws.LogDecision(ctx.Request().Context(), ctx.Params().Get("id"))
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"added": d != nil, "decision": d})
}

// POST /api/messages/{id}/meeting
//
// Without an agenda in the body the card's edited agenda is used, if any.
func (h *handler) saveMeeting(ctx iris.Context) {
	var input saveMeetingInput
	if err := readOptionalJSON(ctx, &input); err != nil {
		invalidPayload(ctx, err)
		return
	}

	id := ctx.Params().Get("id")
	var agenda string
	if input.Agenda != nil {
		agenda = *input.Agenda
	} else if st, ok := h.ws.Cards().Lookup(id); ok {
		agenda = st.EditedAgenda
	}

	m, err := h.ws.SaveMeeting(ctx.Request().Context(), id, agenda)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"added": m != nil, "meeting": m})
}

// POST /api/messages/{id}/reply
func (h *handler) useReply(ctx iris.Context) {
	reply, ok, err := h.ws.SuggestedReply(ctx.Request().Context(), ctx.Params().Get("id"))
	if err != nil {
		h.fail(ctx, err)
		return
	}
	if !ok || reply == "" {
		JSONError(ctx, http.StatusNotFound, "no_suggested_reply", "message has no suggested reply")
		return
	}
	h.ws.UseSuggestedReply(reply)
	ctx.JSON(iris.Map{"data": h.ws.Composer().Snapshot()})
}

// GET /api/messages/{id}/card
func (h *handler) getCard(ctx iris.Context) {
	st, err := h.ws.Card(ctx.Request().Context(), ctx.Params().Get("id"))
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"data": st})
}

// PATCH /api/messages/{id}/card
func (h *handler) updateCard(ctx iris.Context) {
	var patch workspace.CardPatch
	if err := ctx.ReadJSON(&patch); err != nil {
		invalidPayload(ctx, err)
		return
	}

	st, err := h.ws.UpdateCard(ctx.Request().Context(), ctx.Params().Get("id"), patch)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"data": st})
}

// POST /api/messages/{id}/notes
//
// Notes in the body are stored on the card first.
func (h *handler) saveNotes(ctx iris.Context) {
	var input saveNotesInput
	if err := readOptionalJSON(ctx, &input); err != nil {
		invalidPayload(ctx, err)
		return
	}

	id := ctx.Params().Get("id")
	if input.Notes != nil {
		if _, err := h.ws.UpdateCard(ctx.Request().Context(), id, workspace.CardPatch{Notes: input.Notes}); err != nil {
			h.fail(ctx, err)
			return
		}
	}

	n, err := h.ws.SaveMeetingNotes(ctx.Request().Context(), id)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"updated": n})
}
