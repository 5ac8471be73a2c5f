package models

import "errors"

// Input errors — rejected before any upstream call is made.
var (
	ErrEmptyIngredients = errors.New("ingredients are required")
	ErrEmptyImage       = errors.New("image data is required")
)

// Configuration errors
var (
	ErrAPIKeyMissing = errors.New("API key not configured")
)

// Upstream errors
var (
	ErrEmptyResponse = errors.New("no response from AI")
)

// Store errors
var (
	ErrUnknownCategory = errors.New("unknown preference category")
	ErrUnknownKey      = errors.New("unknown preference key")
	ErrScanNotFound    = errors.New("scan not found")
)
