// Package httpapi exposes the workspace over a JSON HTTP API.
package httpapi

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"github.com/xaenox/huddle-bot/internal/workspace"
	"go.uber.org/zap"
)

type handler struct {
	ws     *workspace.Workspace
	logger *zap.Logger
}

// New builds the iris application with every route registered.
func New(ws *workspace.Workspace, logger *zap.Logger) *iris.Application {
	app := iris.New()
	app.Validator = validator.New()
	app.Logger().SetLevel("disable")
	app.Use(requestLogger(logger))

	h := &handler{ws: ws, logger: logger}

	api := app.Party("/api")
	{
		api.Get("/channels", h.listChannels)
		api.Get("/channels/{channel}/messages", h.listMessages)
		api.Post("/channels/{channel}/messages", h.sendMessage)
		api.Get("/counts", h.counts)
	}

	messages := app.Party("/api/messages/{id}")
	{
		messages.Get("/", h.getMessage)
		messages.Post("/task", h.addTask)
		messages.Post("/followup", h.trackFollowUp)
		messages.Post("/decision", h.logDecision)
		messages.Post("/meeting", h.saveMeeting)
		messages.Post("/reply", h.useReply)
		messages.Get("/card", h.getCard)
		messages.Patch("/card", h.updateCard)
		messages.Post("/notes", h.saveNotes)
	}

	tasks := app.Party("/api/tasks")
	{
		tasks.Get("/", h.listTasks)
		tasks.Post("/{id}/toggle", h.toggleTask)
		tasks.Delete("/{id}", h.deleteTask)
	}

	followUps := app.Party("/api/followups")
	{
		followUps.Get("/", h.listFollowUps)
		followUps.Post("/{id}/resolve", h.resolveFollowUp)
		followUps.Delete("/{id}", h.deleteFollowUp)
	}

	decisions := app.Party("/api/decisions")
	{
		decisions.Get("/", h.listDecisions)
		decisions.Delete("/{id}", h.deleteDecision)
	}

	app.Get("/api/meetings", h.listMeetings)

	composer := app.Party("/api/composer")
	{
		composer.Get("/", h.getComposer)
		composer.Put("/", h.setComposer)
		composer.Post("/send", h.sendDraft)
	}

	return app
}

func requestLogger(logger *zap.Logger) iris.Handler {
	return func(ctx iris.Context) {
		start := time.Now()
		ctx.Next()
		logger.Debug("HTTP request",
			zap.String("method", ctx.Method()),
			zap.String("path", ctx.Path()),
			zap.Int("status", ctx.GetStatusCode()),
			zap.Duration("took", time.Since(start)))
	}
}

// Serve listens on addr until ctx is cancelled.
func Serve(ctx context.Context, app *iris.Application, addr string, logger *zap.Logger) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("HTTP API listening", zap.String("addr", addr))
	return app.Listen(addr,
		iris.WithoutInterruptHandler,
		iris.WithoutServerError(iris.ErrServerClosed),
		iris.WithoutStartupLog)
}
