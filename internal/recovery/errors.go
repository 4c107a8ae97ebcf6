package recovery

import "errors"

// ErrExtractionFailed indicates no strategy recovered any text.
var ErrExtractionFailed = errors.New("no text could be recovered from the document")
