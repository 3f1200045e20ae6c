package navigation

import "errors"

// Registration failures. The registry logs each one and leaves its state
// untouched, so callers are free to ignore the returned error.
var (
	ErrNilProvider      = errors.New("navigation: nil provider")
	ErrEmptyFeatureID   = errors.New("navigation: empty feature id")
	ErrDuplicateFeature = errors.New("navigation: duplicate feature id")
	ErrEmptyRoute       = errors.New("navigation: empty route")
	ErrDuplicateRoute   = errors.New("navigation: duplicate route")
)
