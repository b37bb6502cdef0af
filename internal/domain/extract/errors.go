package extract

import "errors"

// Sentinel errors for screenshot extraction.
var (
	// ErrRecognition wraps failures of the external text recognizer.
	ErrRecognition = errors.New("text recognition failed")
	ErrNoImages    = errors.New("no images to process")
	ErrNotAnImage  = errors.New("file is not an image")
)
