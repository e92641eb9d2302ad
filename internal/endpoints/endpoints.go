// Package endpoints declares every backend capability as a typed query or
// mutation: how to build the request, how to transform the response and
// which cache tags it provides or invalidates.
package endpoints

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"broker-backoffice-go/internal/cache"
	"broker-backoffice-go/internal/client"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Doer executes backend requests. *client.Client implements it.
type Doer interface {
	Do(ctx context.Context, req client.Request) ([]byte, error)
}

// Registry binds declarations to a backend and a query cache.
type Registry struct {
	doer  Doer
	cache *cache.Cache
	now   func() time.Time
}

// NewRegistry creates a Registry.
func NewRegistry(doer Doer, qc *cache.Cache) *Registry {
	return &Registry{doer: doer, cache: qc, now: time.Now}
}

// WithClock replaces the clock passed to transforms.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// Cache returns the query cache.
func (r *Registry) Cache() *cache.Cache {
	return r.cache
}

// Query is a cached read. Transform must not fail: malformed payloads
// degrade to zero values. TransformWith replaces Transform for responses
// that need the argument, such as per-user lists that omit the user id.
type Query[A, R any] struct {
	Name          string
	Request       func(A) client.Request
	Transform     func(body []byte, now time.Time) R
	TransformWith func(arg A, body []byte, now time.Time) R
	Provides      func(R, A) []cache.Tag
}

// Mutation is a write. On success every tag returned by Invalidates is
// marked stale. A nil Transform discards the response body.
type Mutation[A, R any] struct {
	Name        string
	Request     func(A) client.Request
	Transform   func(body []byte, now time.Time) R
	Invalidates func(A) []cache.Tag
}

// Key identifies the cache entry for arg.
func (q Query[A, R]) Key(arg A) string {
	return cacheKey(q.Name, arg)
}

func cacheKey(name string, arg any) string {
	encoded, err := json.Marshal(arg)
	if err != nil {
		return fmt.Sprintf("%s(%v)", name, arg)
	}
	return name + "(" + string(encoded) + ")"
}

func (q Query[A, R]) request(arg A) client.Request {
	req := q.Request(arg)
	if req.Name == "" {
		req.Name = q.Name
	}
	return req
}

func (m Mutation[A, R]) request(arg A) client.Request {
	req := m.Request(arg)
	if req.Name == "" {
		req.Name = m.Name
	}
	return req
}

func (q Query[A, R]) transform(arg A, body []byte, now time.Time) R {
	if q.TransformWith != nil {
		return q.TransformWith(arg, body, now)
	}
	return q.Transform(body, now)
}

func fetcher[A, R any](r *Registry, q Query[A, R], arg A) cache.Fetcher {
	return func(ctx context.Context) (any, []cache.Tag, error) {
		body, err := r.doer.Do(ctx, q.request(arg))
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", q.Name, err)
		}
		data := q.transform(arg, body, r.now())
		var tags []cache.Tag
		if q.Provides != nil {
			tags = q.Provides(data, arg)
		}
		return data, tags, nil
	}
}

// Run returns the result of q for arg, from cache while fresh.
func Run[A, R any](ctx context.Context, r *Registry, q Query[A, R], arg A) (R, error) {
	v, err := r.cache.Query(ctx, q.Key(arg), q.Name, fetcher(r, q, arg))
	if err != nil {
		var zero R
		return zero, err
	}
	data, _ := v.(R)
	return data, nil
}

// State is the typed view of a watched query.
type State[R any] struct {
	Data        R
	IsLoading   bool
	IsFetching  bool
	IsError     bool
	IsStale     bool
	Error       error
	FulfilledAt time.Time
}

func typedState[R any](st cache.State) State[R] {
	data, _ := st.Data.(R)
	return State[R]{
		Data:        data,
		IsLoading:   st.IsLoading,
		IsFetching:  st.IsFetching,
		IsError:     st.IsError,
		IsStale:     st.IsStale,
		Error:       st.Error,
		FulfilledAt: st.FulfilledAt,
	}
}

// Handle is a live subscription to one query.
type Handle[R any] struct {
	sub *cache.Subscription
}

// State returns the current state.
func (h *Handle[R]) State() State[R] {
	return typedState[R](h.sub.State())
}

// Refetch forces a fetch and waits for it.
func (h *Handle[R]) Refetch(ctx context.Context) error {
	return h.sub.Refetch(ctx)
}

// Close stops notifications; late results are dropped.
func (h *Handle[R]) Close() {
	h.sub.Close()
}

// Watch subscribes to q for arg. onChange may be nil when the caller only
// polls State.
func Watch[A, R any](r *Registry, q Query[A, R], arg A, onChange func(State[R])) *Handle[R] {
	var cb func(cache.State)
	if onChange != nil {
		cb = func(st cache.State) { onChange(typedState[R](st)) }
	}
	return &Handle[R]{sub: r.cache.Subscribe(q.Key(arg), q.Name, fetcher(r, q, arg), cb)}
}

// Execute performs m as one logical write under its own idempotency key.
// Tags are invalidated only when the backend accepted the write.
func Execute[A, R any](ctx context.Context, r *Registry, m Mutation[A, R], arg A) (R, error) {
	var zero R

	req := m.request(arg)
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.New().String()
	}
	body, err := r.doer.Do(ctx, req)
	if err != nil {
		zap.L().Info("Mutation failed",
			zap.String("endpoint", m.Name),
			zap.Error(err))
		return zero, fmt.Errorf("%s: %w", m.Name, err)
	}

	result := zero
	if m.Transform != nil {
		result = m.Transform(body, r.now())
	}

	if m.Invalidates != nil {
		tags := m.Invalidates(arg)
		n := r.cache.Invalidate(tags...)
		zap.L().Info("Mutation completed",
			zap.String("endpoint", m.Name),
			zap.Stringers("invalidated", tags),
			zap.Int("stale_entries", n))
	}
	return result, nil
}

// None is the argument and result of endpoints that take or return nothing.
type None struct{}

func discard(body []byte, now time.Time) None { return None{} }
