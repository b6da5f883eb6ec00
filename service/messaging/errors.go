package messaging

import "errors"

// ErrClosed is returned by queues that no longer accept or deliver messages
var ErrClosed = errors.New("messaging: queue closed")
