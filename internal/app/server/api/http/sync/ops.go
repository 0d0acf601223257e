package sync

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) runOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-run",
		Method:      http.MethodPost,
		Path:        "/api/sync/run",
		Summary:     "Run the batch synchronization now",
		Description: "Synchronizes every linked account and reports per-run counts. Intended for operators; the same run fires daily on a schedule.",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}
