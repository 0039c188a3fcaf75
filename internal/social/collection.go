package social

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/socialcosmos/backend/internal/logging"
	"github.com/socialcosmos/backend/internal/metrics"
	"github.com/socialcosmos/backend/internal/storage"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// collection owns one persisted aggregate. Mutations run on a copy that only
// replaces the live state once the backend has accepted the whole document.
type collection[T any] struct {
	name    string
	backend storage.Backend
	metrics *metrics.Collector

	// legacyName is read when name has never been written.
	legacyName string
	// decode replaces the default JSON decoding when set.
	decode func([]byte) (T, error)

	// clone returns a copy that fn may mutate without touching the live state.
	clone func(T) T
	// normalize repairs a freshly decoded state (e.g. a JSON null).
	normalize func(T) T

	mu    sync.Mutex
	state T
}

func (c *collection[T]) load(ctx context.Context) error {
	var state T
	data, err := c.backend.Load(ctx, c.name)
	if errors.Is(err, storage.ErrNotExist) && c.legacyName != "" {
		data, err = c.backend.Load(ctx, c.legacyName)
	}
	switch {
	case errors.Is(err, storage.ErrNotExist):
	case err != nil:
		return fmt.Errorf("load %s: %w", c.name, err)
	case len(data) > 0:
		if state, err = c.decodeState(data); err != nil {
			return fmt.Errorf("decode %s: %w", c.name, err)
		}
	}

	c.mu.Lock()
	c.state = c.normalize(state)
	c.mu.Unlock()
	return nil
}

func (c *collection[T]) decodeState(data []byte) (T, error) {
	if c.decode != nil {
		return c.decode(data)
	}
	var state T
	err := codec.Unmarshal(data, &state)
	return state, err
}

// view runs fn against the live state while holding the collection lock.
// fn must not retain or modify the state.
func (c *collection[T]) view(fn func(T)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.state)
}

// mutate applies fn to a copy of the state and persists the result. Returning
// errNoChange from fn ends the mutation successfully without a write.
func (c *collection[T]) mutate(ctx context.Context, fn func(T) (T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fn(c.clone(c.state))
	if errors.Is(err, errNoChange) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := c.persist(ctx, next); err != nil {
		return err
	}
	c.state = next
	return nil
}

func (c *collection[T]) persist(ctx context.Context, state T) (err error) {
	ctx, span := logging.StartSpan(ctx, "persist "+c.name)
	start := time.Now()
	var size int
	defer func() {
		c.metrics.ObserveCollectionWrite(c.name, size, time.Since(start), err)
		span.End(err)
	}()

	data, err := codec.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.name, err)
	}
	size = len(data)

	if err := c.backend.Save(ctx, c.name, data); err != nil {
		return fmt.Errorf("save %s: %w", c.name, err)
	}
	return nil
}
