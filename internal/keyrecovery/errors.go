package keyrecovery

import "errors"

// ErrInvalidKeyLength is returned when Recover is asked for fewer than one
// key position.
var ErrInvalidKeyLength = errors.New("keyrecovery: invalid key length")
