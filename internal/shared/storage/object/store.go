package object

import (
	"context"
	"errors"
	"io"
)

var ErrInvalidKey = errors.New("invalid storage key")

// Object describes a stored export.
type Object struct {
	Key      string
	Location string
	Size     int64
}

// Store saves and reads back exported analysis reports.
type Store interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}
