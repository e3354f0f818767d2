package store

import "errors"

// ErrClosed is returned by MemStore after Close.
var ErrClosed = errors.New("store: closed")
