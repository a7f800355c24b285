package search

import "errors"

// ErrNoSearchService is returned when the view is built without a search port.
var ErrNoSearchService = errors.New("search view: search service is required")
