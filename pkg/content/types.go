// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package content

import (
	"encoding/json"
	"errors"
)

var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrUnauthenticated   = errors.New("authentication required")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// DocumentInput is the body of create and update calls. A tenant or owner
// sent by the client is not part of it and is dropped on decode.
type DocumentInput struct {
	Status *string         `json:"status" validate:"omitempty,oneof=draft published"`
	Slug   *string         `json:"slug" validate:"omitempty,max=200,excludesall=/?#"`
	Title  *string         `json:"title" validate:"omitempty,max=500"`
	Data   json.RawMessage `json:"data"`
}
