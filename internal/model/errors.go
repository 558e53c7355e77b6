package model

import "errors"

var (
	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("invalid model config")

	// ErrInvalidInput is returned when an input tensor shape cannot be fed to
	// the network at all (wrong rank, channel count or non-positive sizes).
	ErrInvalidInput = errors.New("invalid input shape")

	// ErrShapeMismatch is returned when two feature maps that the network
	// combines have incompatible shapes for the given input.
	ErrShapeMismatch = errors.New("shape mismatch")
)
