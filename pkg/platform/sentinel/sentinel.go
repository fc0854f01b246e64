package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so services can translate them into domain errors.
//
// - ErrNotFound: entity does not exist in store
// - ErrAlreadyUsed: a unique key (slug, email, user/tenant pair) is taken
// - ErrInvalidReference: a foreign key points at a missing parent row
// - ErrExpired: session has expired
// - ErrUnavailable: backing service temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyUsed      = errors.New("already used")
	ErrInvalidReference = errors.New("invalid reference")
	ErrExpired          = errors.New("expired")
	ErrUnavailable      = errors.New("unavailable")
)
