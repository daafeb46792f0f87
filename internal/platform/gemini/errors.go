package gemini

import "errors"

// Errors specific to the Gemini generator.
var (
	// ErrEmptyPrompt is returned when a prompt is empty.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrEmptyImage is returned when an image payload has no data.
	ErrEmptyImage = errors.New("image payload cannot be empty")
)
