package threadpool

import "errors"

var (
	ErrInvalidWorkerCount = errors.New("worker count must not be negative")
	ErrInvalidLogLevel    = errors.New("unknown log level")
)
