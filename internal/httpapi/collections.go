package httpapi

import (
	"net/http"

	"github.com/kataras/iris/v12"
)

type setComposerInput struct {
	Draft string `json:"draft"`
}

type sendDraftInput struct {
	Sender string `json:"sender" validate:"max=64"`
	Avatar string `json:"avatar" validate:"max=4"`
}

func (h *handler) listTasks(ctx iris.Context) {
	tasks, err := h.ws.Tasks(ctx.Request().Context())
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"data": tasks})
}

func (h *handler) toggleTask(ctx iris.Context) {
	task, err := h.ws.ToggleTask(ctx.Request().Context(), ctx.Params().Get("id"))
	if err != nil {
		h.fail(ctx, err)
		return
	}
	if task == nil {
		JSONError(ctx, http.StatusNotFound, "not_found", "task not found")
		return
	}
	ctx.JSON(iris.Map{"data": task})
}

func (h *handler) deleteTask(ctx iris.Context) {
	if err := h.ws.DeleteTask(ctx.Request().Context(), ctx.Params().Get("id")); err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.StatusCode(http.StatusNoContent)
}

func (h *handler) listFollowUps(ctx iris.Context) {
	fus, err := h.ws.FollowUps(ctx.Request().Context())
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"data": fus})
}

func (h *handler) resolveFollowUp(ctx iris.Context) {
	fu, err := h.ws.ResolveFollowUp(ctx.Request().Context(), ctx.Params().Get("id"))
	if err != nil {
		h.fail(ctx, err)
		return
	}
	if fu == nil {
		JSONError(ctx, http.StatusNotFound, "not_found", "follow-up not found")
		return
	}
	ctx.JSON(iris.Map{"data": fu})
}

func (h *handler) deleteFollowUp(ctx iris.Context) {
	if err := h.ws.DeleteFollowUp(ctx.Request().Context(), ctx.Params().Get("id")); err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.StatusCode(http.StatusNoContent)
}

// GET /api/decisions?q=
func (h *handler) listDecisions(ctx iris.Context) {
	decisions, err := h.ws.Decisions(ctx.Request().Context(), ctx.URLParam("q"))
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"data": decisions})
}

func (h *handler) deleteDecision(ctx iris.Context) {
	if err := h.ws.DeleteDecision(ctx.Request().Context(), ctx.Params().Get("id")); err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.StatusCode(http.StatusNoContent)
}

func (h *handler) listMeetings(ctx iris.Context) {
	meetings, err := h.ws.Meetings(ctx.Request().Context())
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"data": meetings})
}

func (h *handler) counts(ctx iris.Context) {
	c, err := h.ws.Counts(ctx.Request().Context())
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"data": c})
}

func (h *handler) getComposer(ctx iris.Context) {
	ctx.JSON(iris.Map{"data": h.ws.Composer().Snapshot(), "sending": h.ws.Sending()})
}

func (h *handler) setComposer(ctx iris.Context) {
	var input setComposerInput
	if err := ctx.ReadJSON(&input); err != nil {
		invalidPayload(ctx, err)
		return
	}
	h.ws.Composer().Set(input.Draft)
	ctx.JSON(iris.Map{"data": h.ws.Composer().Snapshot()})
}

// POST /api/composer/send posts the draft to the active channel.
func (h *handler) sendDraft(ctx iris.Context) {
	var input sendDraftInput
	if err := readOptionalJSON(ctx, &input); err != nil {
		invalidPayload(ctx, err)
		return
	}

	msg, err := h.ws.SendDraft(ctx.Request().Context(), input.Sender, input.Avatar)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(iris.Map{"data": msg})
}
