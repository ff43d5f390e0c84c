package resource

import "errors"

// package errors
var (
	ErrUnsupportedFormat = errors.New("no loader registered for extension")
	ErrTypeMismatch      = errors.New("payload type does not match the requested type")
	ErrAlreadyPending    = errors.New("a load is already in flight")
	ErrNotLoaded         = errors.New("resource is not loaded")
	ErrEmbedded          = errors.New("embedded resources have no backing source")
	ErrUnknownBuiltIn    = errors.New("no built-in resource registered under this name")
	ErrManagerClosed     = errors.New("resource manager is closed")
)
