package database

import "errors"

// ErrUnavailable indicates the database did not answer a ping.
var ErrUnavailable = errors.New("database unavailable")
