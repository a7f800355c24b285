package domain

// RawDocument represents the bytes of one course file before text extraction.
type RawDocument struct {
	// Path is the file location.
	Path string

	// Extension is the lower-cased file extension including the dot (e.g. ".pdf").
	Extension string

	// Content is the raw bytes.
	Content []byte
}
