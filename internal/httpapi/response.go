package httpapi

import (
	"errors"
	"net/http"

	"github.com/kataras/iris/v12"
	"github.com/xaenox/huddle-bot/internal/storage"
	"github.com/xaenox/huddle-bot/internal/workspace"
	"go.uber.org/zap"
)

func JSONError(ctx iris.Context, status int, code, message string) {
	ctx.StatusCode(status)
	ctx.JSON(iris.Map{"error": code, "message": message})
}

// fail maps workspace and storage errors to HTTP responses.
func (h *handler) fail(ctx iris.Context, err error) {
	switch {
	case errors.Is(err, workspace.ErrEmptyMessage):
		JSONError(ctx, http.StatusBadRequest, "empty_message", err.Error())
	case errors.Is(err, workspace.ErrSendInFlight):
		JSONError(ctx, http.StatusConflict, "send_in_flight", err.Error())
	case errors.Is(err, workspace.ErrUnknownChannel):
		JSONError(ctx, http.StatusNotFound, "unknown_channel", err.Error())
	case errors.Is(err, storage.ErrNotFound):
		JSONError(ctx, http.StatusNotFound, "not_found", err.Error())
	default:
		h.logger.Error("Request failed",
			zap.Error(err),
			zap.String("method", ctx.Method()),
			zap.String("path", ctx.Path()))
		JSONError(ctx, http.StatusInternalServerError, "server_error", "internal error")
	}
}

// readOptionalJSON decodes the body when one was sent.
func readOptionalJSON(ctx iris.Context, out any) error {
	if ctx.Request().ContentLength == 0 {
		return nil
	}
	return ctx.ReadJSON(out)
}

func invalidPayload(ctx iris.Context, err error) {
	JSONError(ctx, http.StatusBadRequest, "invalid_payload", err.Error())
}
