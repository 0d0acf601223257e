package asset

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"finlink/internal/domain/asset"
)

// Linker is the slice of the account service the handler needs.
type Linker interface {
	Connect(ctx context.Context, req asset.ConnectRequest) (*asset.Account, error)
	ConnectSub(ctx context.Context, req asset.ConnectRequest) (*asset.Account, error)
	Disconnect(ctx context.Context, userID int64, role string) error
}

// Refresher runs the on-demand sync for one user.
type Refresher interface {
	SyncUser(ctx context.Context, userID int64) error
}

type Handler struct {
	linker     Linker
	refresher  Refresher
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(linker Linker, refresher Refresher, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		linker:     linker,
		refresher:  refresher,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.connectOp(), h.connect)
	huma.Register(api, h.connectSubOp(), h.connectSub)
	huma.Register(api, h.disconnectOp(), h.disconnect)
	huma.Register(api, h.refreshOp(), h.refresh)
}

func (h *Handler) connect(ctx context.Context, input *connectInput) (*connectOutput, error) {
	account, err := h.linker.Connect(ctx, input.Body)
	if err != nil {
		return nil, h.mapConnectError(err)
	}

	return &connectOutput{
		Body: connectResponse{
			Status:  "Ok",
			Account: account,
		},
	}, nil
}

func (h *Handler) connectSub(ctx context.Context, input *connectInput) (*connectOutput, error) {
	account, err := h.linker.ConnectSub(ctx, input.Body)
	if err != nil {
		return nil, h.mapConnectError(err)
	}

	return &connectOutput{
		Body: connectResponse{
			Status:  "Ok",
			Account: account,
		},
	}, nil
}

func (h *Handler) disconnect(ctx context.Context, input *disconnectInput) (*disconnectOutput, error) {
	err := h.linker.Disconnect(ctx, input.UserID, input.Role)
	if err != nil {
		if errors.Is(err, asset.ErrNotFound) {
			return nil, huma.Error404NotFound("no linked account for this slot")
		}
		h.log.Error("disconnect failed", "user_id", input.UserID, "error", err)
		return nil, huma.Error500InternalServerError("failed to disconnect account")
	}

	return &disconnectOutput{
		Body: disconnectResponse{Status: "Ok"},
	}, nil
}

func (h *Handler) refresh(ctx context.Context, input *refreshInput) (*refreshOutput, error) {
	if err := h.refresher.SyncUser(ctx, input.UserID); err != nil {
		h.log.Error("on-demand sync failed", "user_id", input.UserID, "error", err)
		return nil, huma.Error502BadGateway("account synchronization failed")
	}

	return &refreshOutput{
		Body: refreshResponse{Status: "Ok"},
	}, nil
}

func (h *Handler) mapConnectError(err error) error {
	switch {
	case errors.Is(err, asset.ErrMissingCredentials):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, asset.ErrAlreadyLinked):
		return huma.Error409Conflict("an account is already linked for this slot")
	default:
		h.log.Error("account linking failed", "error", err)
		return huma.Error502BadGateway("account connection failed")
	}
}
