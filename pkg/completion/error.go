package completion

import "errors"

// ErrUnavailable tags every failed provider call: network, auth, and
// malformed-response failures alike. A failed call consumes nothing; the
// context bundle it was built from can be reassembled and retried.
var ErrUnavailable = errors.New("completion unavailable")
