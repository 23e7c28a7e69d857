package model

import "errors"

// Sentinel errors surfaced by the store layer. Services translate them into
// error envelopes; everything else wraps them with %w.
var (
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidField    = errors.New("field not allowed")
	ErrInvalidStatus   = errors.New("invalid archive status")
	ErrRelationUnknown = errors.New("unknown relation")
)
