// internal/websocket/errors.go
package websocket

import "errors"

var (
	ErrTokenBlacklisted = errors.New("token has been revoked")
	ErrInvalidToken     = errors.New("invalid token")
)
