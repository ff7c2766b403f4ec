package types

import "errors"

// ErrInvalidArgument marks tool input that failed validation. Such errors are
// returned to the model instead of aborting the agent run.
var ErrInvalidArgument = errors.New("invalid argument")
