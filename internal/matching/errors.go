package matching

import "errors"

// errInvalidSide is returned by ParseSide for any text that isn't one
// of Side.String()'s two forms.
var errInvalidSide = errors.New("matching: invalid side")
