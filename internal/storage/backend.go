package storage

import (
	"context"
	"errors"
)

// ErrNotExist indicates the collection has never been saved.
var ErrNotExist = errors.New("collection does not exist")

// Backend persists whole collection documents. Save always replaces the entire
// document; partial writes must never become visible to Load.
type Backend interface {
	Load(ctx context.Context, collection string) ([]byte, error)
	Save(ctx context.Context, collection string, document []byte) error
}
