package entity

import "errors"

var (
	// HTTP boundary errors
	ErrRouteNotFound      = errors.New("route not found")
	ErrMissingDescription = errors.New("itemDescription query parameter is required")

	// Pipeline errors
	ErrGeneration     = errors.New("texture generation failed")
	ErrNoImage        = errors.New("backend returned no image")
	ErrBackendStatus  = errors.New("backend returned non-success status")
	ErrUnknownBackend = errors.New("unknown backend kind")
	ErrUnknownRemover = errors.New("unknown remover kind")

	// Wiring errors
	ErrUnknownLock   = errors.New("unknown lock kind")
	ErrUnknownEvents = errors.New("unknown events kind")
)
