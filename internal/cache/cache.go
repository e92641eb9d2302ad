// Package cache is the in-memory query cache. Results are stored per query
// key with the tags they provide; invalidating a tag marks every matching
// entry stale and refetches the ones somebody is watching.
package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"broker-backoffice-go/internal/models"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	defaultKeepUnusedFor   = 60 * time.Second
	defaultCleanupInterval = 30 * time.Second
	defaultRefetchTimeout  = 30 * time.Second
)

// ErrClosed is returned by operations on a closed Subscription.
var ErrClosed = errors.New("subscription closed")

// Fetcher loads a query result and reports the tags it provides.
type Fetcher func(ctx context.Context) (data any, tags []Tag, err error)

// State is what a watcher sees. Data survives a failed refetch so a view
// keeps showing the last good result next to the error.
type State struct {
	Data        any
	IsLoading   bool
	IsFetching  bool
	IsError     bool
	IsStale     bool
	Error       error
	FulfilledAt time.Time
}

type entry struct {
	key         string
	endpoint    string
	fetch       Fetcher
	data        any
	hasData     bool
	err         error
	fulfilledAt time.Time
	stale       bool
	generation  uint64
	inflight    int
	subs        map[uint64]*Subscription
}

func (e *entry) fresh() bool {
	return e.hasData && !e.stale && e.err == nil
}

func (e *entry) state() State {
	return State{
		Data:        e.data,
		IsLoading:   e.inflight > 0 && !e.hasData,
		IsFetching:  e.inflight > 0,
		IsError:     e.err != nil,
		IsStale:     e.stale,
		Error:       e.err,
		FulfilledAt: e.fulfilledAt,
	}
}

func (e *entry) subscribers() []*Subscription {
	subs := make([]*Subscription, 0, len(e.subs))
	for _, s := range e.subs {
		subs = append(subs, s)
	}
	return subs
}

// Cache is safe for concurrent use.
type Cache struct {
	mutex          sync.Mutex
	store          *gocache.Cache
	registry       *Registry
	group          singleflight.Group
	keepUnusedFor  time.Duration
	refetchTimeout time.Duration
	retention      map[string]time.Duration
	nextId         uint64
	listeners      map[uint64]func([]Tag)
	// flights collects the tags invalidated while each fetch is running, since
	// a result's tags are only known once it arrives.
	flights map[uint64][]Tag
}

// New creates a cache. Unwatched entries expire after KeepUnusedFor, or the
// per-endpoint retention when one is configured.
func New(cfg models.CacheConfig) *Cache {
	keep := cfg.KeepUnusedFor
	if keep <= 0 {
		keep = defaultKeepUnusedFor
	}
	cleanup := cfg.CleanupInterval
	if cleanup <= 0 {
		cleanup = defaultCleanupInterval
	}
	refetchTimeout := cfg.RefetchTimeout
	if refetchTimeout <= 0 {
		refetchTimeout = defaultRefetchTimeout
	}

	retention := make(map[string]time.Duration, len(cfg.EndpointRetention))
	for name, d := range cfg.EndpointRetention {
		retention[name] = d
	}

	c := &Cache{
		store:          gocache.New(keep, cleanup),
		registry:       NewRegistry(),
		keepUnusedFor:  keep,
		refetchTimeout: refetchTimeout,
		retention:      retention,
		listeners:      make(map[uint64]func([]Tag)),
		flights:        make(map[uint64][]Tag),
	}
	c.store.OnEvicted(c.onEvicted)
	return c
}

// Registry exposes the tag registry.
func (c *Cache) Registry() *Registry {
	return c.registry
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return c.store.ItemCount()
}

func (c *Cache) ttlLocked(e *entry) time.Duration {
	if len(e.subs) > 0 {
		return gocache.NoExpiration
	}
	if d, ok := c.retention[e.endpoint]; ok && d > 0 {
		return d
	}
	return c.keepUnusedFor
}

// touchLocked re-stores e so its keep-unused timer restarts.
func (c *Cache) touchLocked(e *entry) {
	c.store.Set(e.key, e, c.ttlLocked(e))
}

func (c *Cache) lookupLocked(key, endpoint string, fetch Fetcher) *entry {
	if v, ok := c.store.Get(key); ok {
		e := v.(*entry)
		c.touchLocked(e)
		return e
	}
	e := &entry{
		key:      key,
		endpoint: endpoint,
		fetch:    fetch,
		subs:     make(map[uint64]*Subscription),
	}
	c.touchLocked(e)
	return e
}

func (c *Cache) currentLocked(e *entry) bool {
	v, ok := c.store.Get(e.key)
	return ok && v.(*entry) == e
}

// onEvicted runs outside go-cache's lock. The key may already hold a new
// entry, in which case its tags stay registered.
func (c *Cache) onEvicted(key string, _ any) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, ok := c.store.Get(key); ok {
		return
	}
	c.registry.Unregister(key)
	zap.L().Debug("Query cache entry evicted", zap.String("key", key))
}

// Query returns the cached result for key while it is fresh. Otherwise it
// fetches, sharing one in-flight request among concurrent callers. If ctx
// ends first the caller gets ctx.Err() and the fetch still fills the cache.
func (c *Cache) Query(ctx context.Context, key, endpoint string, fetch Fetcher) (any, error) {
	c.mutex.Lock()
	e := c.lookupLocked(key, endpoint, fetch)
	if e.fresh() {
		data := e.data
		c.mutex.Unlock()
		cacheLookupsTotal.WithLabelValues(endpoint, "hit").Inc()
		return data, nil
	}
	c.mutex.Unlock()

	cacheLookupsTotal.WithLabelValues(endpoint, "miss").Inc()
	return c.fetchEntry(ctx, e, false)
}

// Peek returns the state cached under key without fetching.
func (c *Cache) Peek(key string) (State, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	v, ok := c.store.Get(key)
	if !ok {
		return State{}, false
	}
	return v.(*entry).state(), true
}

// fetchEntry runs or joins the flight for e's current generation. Unless
// force is set, a flight that finds e already fresh returns the cached data.
func (c *Cache) fetchEntry(ctx context.Context, e *entry, force bool) (any, error) {
	c.mutex.Lock()
	gen := e.generation
	c.mutex.Unlock()

	// A new generation starts a new flight so a post-invalidation read never
	// joins a request that began before the invalidation.
	flightKey := e.key + "#" + strconv.FormatUint(gen, 10)
	base := context.WithoutCancel(ctx)

	ch := c.group.DoChan(flightKey, func() (any, error) {
		return c.run(base, e, gen, force)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) run(ctx context.Context, e *entry, gen uint64, force bool) (any, error) {
	c.mutex.Lock()
	if !force && e.fresh() {
		data := e.data
		c.mutex.Unlock()
		return data, nil
	}
	e.inflight++
	c.nextId++
	flight := c.nextId
	c.flights[flight] = nil
	subs := e.subscribers()
	c.mutex.Unlock()
	notify(subs)

	fetchCtx, cancel := context.WithTimeout(ctx, c.refetchTimeout)
	defer cancel()
	data, tags, err := e.fetch(fetchCtx)

	c.mutex.Lock()
	e.inflight--
	missed := c.flights[flight]
	delete(c.flights, flight)
	if err != nil {
		e.err = err
	} else {
		e.data = data
		e.hasData = true
		e.err = nil
		e.fulfilledAt = time.Now()
		if matchesAny(missed, tags) {
			// The result predates a mutation that affects it.
			e.generation++
		}
		e.stale = e.generation != gen
		if c.currentLocked(e) {
			c.registry.Register(e.key, tags)
		}
	}
	again := err == nil && e.stale && len(e.subs) > 0
	subs = e.subscribers()
	c.mutex.Unlock()

	if err != nil {
		zap.L().Warn("Query failed",
			zap.String("endpoint", e.endpoint),
			zap.String("key", e.key),
			zap.Error(err))
	}

	notify(subs)
	if again {
		go c.refetch(e)
	}
	return data, err
}

func (c *Cache) refetch(e *entry) {
	cacheRefetchesTotal.WithLabelValues(e.endpoint).Inc()
	if _, err := c.fetchEntry(context.Background(), e, false); err != nil {
		zap.L().Debug("Background refetch failed",
			zap.String("key", e.key),
			zap.Error(err))
	}
}

// Invalidate marks every entry providing a matching tag stale before it
// returns. Watched entries then refetch in the background; unwatched ones
// refetch on their next Query. A fetch still running when Invalidate is
// called lands stale if its result provides a matching tag. The count covers
// registered entries only.
func (c *Cache) Invalidate(tags ...Tag) int {
	if len(tags) == 0 {
		return 0
	}

	c.mutex.Lock()
	for id, missed := range c.flights {
		c.flights[id] = append(missed, tags...)
	}
	keys := c.registry.Match(tags...)
	var watched []*entry
	for _, key := range keys {
		v, ok := c.store.Get(key)
		if !ok {
			continue
		}
		e := v.(*entry)
		e.stale = true
		e.generation++
		if len(e.subs) > 0 {
			watched = append(watched, e)
		}
	}
	listeners := make([]func([]Tag), 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mutex.Unlock()

	for _, tag := range tags {
		cacheInvalidationsTotal.WithLabelValues(tag.Type).Inc()
	}
	zap.L().Debug("Invalidated cache tags",
		zap.Stringers("tags", tags),
		zap.Int("entries", len(keys)),
		zap.Int("refetching", len(watched)))

	for _, e := range watched {
		go c.refetch(e)
	}
	for _, l := range listeners {
		l(tags)
	}
	return len(keys)
}

// OnInvalidate registers fn to be called after every invalidation. The
// returned func removes it.
func (c *Cache) OnInvalidate(fn func([]Tag)) func() {
	c.mutex.Lock()
	c.nextId++
	id := c.nextId
	c.listeners[id] = fn
	c.mutex.Unlock()

	return func() {
		c.mutex.Lock()
		delete(c.listeners, id)
		c.mutex.Unlock()
	}
}

// Subscribe watches key. onChange is called with the latest state whenever
// it changes; it is never called after Close returns.
func (c *Cache) Subscribe(key, endpoint string, fetch Fetcher, onChange func(State)) *Subscription {
	c.mutex.Lock()
	c.nextId++
	sub := &Subscription{id: c.nextId, cache: c, onChange: onChange}
	e := c.lookupLocked(key, endpoint, fetch)
	sub.entry = e
	e.subs[sub.id] = sub
	c.touchLocked(e)
	needsFetch := !e.fresh() && e.inflight == 0
	c.mutex.Unlock()

	if needsFetch {
		cacheLookupsTotal.WithLabelValues(endpoint, "miss").Inc()
		go c.refetch(e)
	} else {
		cacheLookupsTotal.WithLabelValues(endpoint, "hit").Inc()
		go sub.deliver()
	}
	return sub
}

// Flush drops every entry and tag. Open subscriptions stop receiving
// invalidations.
func (c *Cache) Flush() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.store.Flush()
	c.registry.Reset()
}

func notify(subs []*Subscription) {
	for _, s := range subs {
		go s.deliver()
	}
}
