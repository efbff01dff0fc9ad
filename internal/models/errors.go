package models

import "errors"

var (
	// ErrUnsupportedFormat marks a document extension no extractor handles.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrExtractionFailure marks a source that produced no usable text
	// (OCR, transcription, scraping or download failure).
	ErrExtractionFailure = errors.New("extraction failure")

	// ErrTransportFailure marks a network or non-2xx response from an
	// external API call.
	ErrTransportFailure = errors.New("transport failure")
)
