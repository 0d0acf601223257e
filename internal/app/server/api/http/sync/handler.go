package sync

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"finlink/internal/domain/sync"
)

// Runner runs one batch synchronization pass.
type Runner interface {
	RunAll(ctx context.Context) sync.Report
}

type Handler struct {
	runner     Runner
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(runner Runner, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		runner:     runner,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.runOp(), h.run)
}

func (h *Handler) run(ctx context.Context, _ *runInput) (*runOutput, error) {
	report := h.runner.RunAll(ctx)
	return &runOutput{Body: report}, nil
}
