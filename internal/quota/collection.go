// Package quota mirrors the per-account resource caps on the client so doomed
// create requests are never sent. The server stays authoritative.
package quota

import (
	"errors"
	"fmt"
	"sync"
)

const (
	ResumeLimit  = 1
	PostingLimit = 3
)

var ErrLimitReached = errors.New("resource limit reached")

// LimitError names the resource whose cap blocked a create.
type LimitError struct {
	Resource string
	Limit    int
}

func (e *LimitError) Error() string {
	switch e.Resource {
	case "posting":
		return fmt.Sprintf("공고는 최대 %d개까지 작성할 수 있습니다.", e.Limit)
	case "resume":
		return fmt.Sprintf("이력서는 최대 %d개까지 등록할 수 있습니다.", e.Limit)
	default:
		return fmt.Sprintf("%s limit of %d reached", e.Resource, e.Limit)
	}
}

func (e *LimitError) Unwrap() error {
	return ErrLimitReached
}

// Collection is a read-through cache of one fetched resource list. It is seeded
// by Reset after a full fetch and patched by creates and deletes issued from
// the same view.
type Collection[T any] struct {
	mu       sync.RWMutex
	resource string
	limit    int
	idOf     func(T) string
	items    []T
}

func NewCollection[T any](resource string, limit int, idOf func(T) string) *Collection[T] {
	return &Collection[T]{resource: resource, limit: limit, idOf: idOf}
}

// Reset replaces the cache with the result of a full fetch.
func (c *Collection[T]) Reset(items []T) {
	c.mu.Lock()
	c.items = append([]T(nil), items...)
	c.mu.Unlock()
}

// Items returns a copy in display order (newest first after Prepend).
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T(nil), c.items...)
}

// IDs returns the ids in display order.
func (c *Collection[T]) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.items))
	for _, item := range c.items {
		ids = append(ids, c.idOf(item))
	}
	return ids
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Remaining is the number of creates the cap still allows.
func (c *Collection[T]) Remaining() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if n := c.limit - len(c.items); n > 0 {
		return n
	}
	return 0
}

// CheckCreate blocks a create once the fetched count has reached the cap.
func (c *Collection[T]) CheckCreate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.items) >= c.limit {
		return &LimitError{Resource: c.resource, Limit: c.limit}
	}
	return nil
}

// Prepend records a successful create at the head of the list.
func (c *Collection[T]) Prepend(item T) {
	c.mu.Lock()
	c.items = append([]T{item}, c.items...)
	c.mu.Unlock()
}

// Remove drops the item with id and reports whether it was present.
func (c *Collection[T]) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, item := range c.items {
		if c.idOf(item) == id {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}
