package services

import "errors"

// Sentinel errors for the pipeline. Routes translate these into the
// error_code/message envelope; everything else surfaces as an internal
// error. Wrap with fmt.Errorf("...: %w", Err...) to attach detail.
var (
	// ErrUnsupportedFormat: the uploaded file extension is not one the
	// extractor knows how to decode.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrDecode: the file matched a supported format but text extraction
	// failed (corrupt PDF, malformed DOCX archive).
	ErrDecode = errors.New("failed to decode document")

	// ErrEmptyDocument: decoding succeeded but produced no usable text,
	// or chunking produced nothing to index.
	ErrEmptyDocument = errors.New("document has no readable text")

	// ErrSessionNotFound: the session id is unknown. Sessions must be
	// created explicitly before they can be queried.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNoDocument: document_only mode was requested but the session
	// has no index built.
	ErrNoDocument = errors.New("no document uploaded for this session")

	// ErrGeneration: the language model call failed. The underlying
	// cause (rate limit, credential, network) is wrapped, not
	// interpreted; the caller may retry the whole request.
	ErrGeneration = errors.New("failed to generate answer")

	// ErrEmptyQuestion: a blank or whitespace-only question.
	ErrEmptyQuestion = errors.New("empty question not allowed")
)
