package store

import "errors"

var (
	// ErrReadRegression reports an upsert that would flip an already-read
	// record back to unread. Push traffic must never un-read a record; only
	// the explicit Restore path may.
	ErrReadRegression = errors.New("upsert would mark a read record unread")
)
