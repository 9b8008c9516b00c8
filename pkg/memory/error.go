package memory

import "errors"

// ErrNotConfigured is returned when recall or indexing is attempted but no
// memory driver has been configured.
var ErrNotConfigured = errors.New("memory not configured")
