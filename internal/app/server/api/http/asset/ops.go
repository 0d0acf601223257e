package asset

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) connectOp() huma.Operation {
	return huma.Operation{
		OperationID: "assets-connect",
		Method:      http.MethodPost,
		Path:        "/api/assets/connect",
		Summary:     "Link the main bank account",
		Description: "Opens an aggregator session and ingests roughly three months of transaction history.",
		Tags:        []string{"assets"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) connectSubOp() huma.Operation {
	return huma.Operation{
		OperationID: "assets-connect-sub",
		Method:      http.MethodPost,
		Path:        "/api/assets/connect/sub",
		Summary:     "Register a secondary account",
		Tags:        []string{"assets"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) disconnectOp() huma.Operation {
	return huma.Operation{
		OperationID: "assets-disconnect",
		Method:      http.MethodDelete,
		Path:        "/api/assets/{userID}",
		Summary:     "Disconnect a linked account",
		Description: "Revokes the aggregator session and removes the account with its synchronized transactions.",
		Tags:        []string{"assets"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) refreshOp() huma.Operation {
	return huma.Operation{
		OperationID: "assets-refresh",
		Method:      http.MethodPost,
		Path:        "/api/assets/{userID}/refresh",
		Summary:     "Synchronize one user's account on demand",
		Tags:        []string{"assets"},
		Middlewares: h.middleware,
	}
}
