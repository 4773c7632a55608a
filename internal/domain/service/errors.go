package service

import "errors"

// ErrUnauthenticated is returned when no valid session identity is available
// for the current request.
var ErrUnauthenticated = errors.New("unauthenticated")
