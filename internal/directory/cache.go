package directory

import (
	"context"
	"sync"
	"time"
)

type listCache[T any] struct {
	mu        sync.RWMutex
	items     []T
	fetchedAt time.Time
	ttl       time.Duration
}

func (c *listCache[T]) get() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.items == nil || time.Since(c.fetchedAt) > c.ttl {
		return nil
	}

	result := make([]T, len(c.items))
	copy(result, c.items)
	return result
}

func (c *listCache[T]) set(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make([]T, len(items))
	copy(c.items, items)
	c.fetchedAt = time.Now()
}

func (c *listCache[T]) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
}

// Cached wraps a Service and keeps the full list queries for ttl. Targeted
// lookups always go to the wrapped service.
type Cached struct {
	Service
	employees   listCache[Employee]
	departments listCache[Department]
	payRuns     listCache[PayRun]
}

func NewCached(svc Service, ttl time.Duration) *Cached {
	c := &Cached{Service: svc}
	c.employees.ttl = ttl
	c.departments.ttl = ttl
	c.payRuns.ttl = ttl
	return c
}

func (c *Cached) ListEmployees(ctx context.Context) ([]Employee, error) {
	return cachedList(ctx, &c.employees, c.Service.ListEmployees)
}

func (c *Cached) ListDepartments(ctx context.Context) ([]Department, error) {
	return cachedList(ctx, &c.departments, c.Service.ListDepartments)
}

func (c *Cached) ListPayRuns(ctx context.Context) ([]PayRun, error) {
	return cachedList(ctx, &c.payRuns, c.Service.ListPayRuns)
}

func (c *Cached) Invalidate() {
	c.employees.invalidate()
	c.departments.invalidate()
	c.payRuns.invalidate()
}

func cachedList[T any](ctx context.Context, c *listCache[T], fetch func(context.Context) ([]T, error)) ([]T, error) {
	if items := c.get(); items != nil {
		return items, nil
	}
	items, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	c.set(items)
	return items, nil
}
