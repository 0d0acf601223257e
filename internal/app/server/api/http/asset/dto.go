package asset

import (
	"finlink/internal/domain/asset"
)

type connectInput struct {
	Body asset.ConnectRequest
}

type connectResponse struct {
	Status  string         `json:"status" example:"Ok"`
	Account *asset.Account `json:"account,omitempty"`
}

type connectOutput struct {
	Body connectResponse
}

type disconnectInput struct {
	UserID int64  `path:"userID" doc:"Owner of the linked account"`
	Role   string `query:"status" enum:"main,sub" default:"main" doc:"Account slot to disconnect"`
}

type disconnectResponse struct {
	Status string `json:"status" example:"Ok"`
}

type disconnectOutput struct {
	Body disconnectResponse
}

type refreshInput struct {
	UserID int64 `path:"userID" doc:"Owner of the linked account"`
}

type refreshResponse struct {
	Status string `json:"status" example:"Ok"`
}

type refreshOutput struct {
	Body refreshResponse
}
