package domain

import "errors"

var (
	ErrCapabilityNotFound     = errors.New("capability not found")
	ErrCapabilityNameRequired = errors.New("capability name is required")
	ErrSessionNotFound        = errors.New("session not found")
	ErrSecretNotFound         = errors.New("secret not found")
	ErrPromptAborted          = errors.New("prompt aborted")
	ErrInvalidChoice          = errors.New("invalid choice")
	ErrEmptyQuestion          = errors.New("question is empty")
)
