package domain

import "errors"

var (
	ErrTokenNotFound  = errors.New("token not found")
	ErrInvalidToken   = errors.New("invalid token")
	ErrStreamNotFound = errors.New("stream not found")
	ErrUnknownAction  = errors.New("unknown action type")
	ErrUnauthorized   = errors.New("unauthorized")
)
