package token

import "errors"

var (
	ErrNoToken          = errors.New("no access token stored")
	ErrTokenAcquisition = errors.New("token acquisition failure")
)
