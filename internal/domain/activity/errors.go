package activity

import "errors"

// ErrInvalidInput indicates an entry or listing request that cannot be served.
var ErrInvalidInput = errors.New("invalid activity input")
