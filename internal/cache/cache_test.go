package cache

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"broker-backoffice-go/internal/models"
)

func newTestCache() *Cache {
	return New(models.CacheConfig{KeepUnusedFor: time.Minute, CleanupInterval: time.Minute, RefetchTimeout: 5 * time.Second})
}

// counter returns a fetcher that yields an incrementing value and the given tags.
func counter(calls *atomic.Int32, tags ...Tag) Fetcher {
	return func(ctx context.Context) (any, []Tag, error) {
		n := calls.Add(1)
		return int(n), tags, nil
	}
}

func waitForState(t *testing.T, states <-chan State, pred func(State) bool) State {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case st := <-states:
			if pred(st) {
				return st
			}
		case <-timeout:
			t.Fatal("timed out waiting for state")
			return State{}
		}
	}
}

func TestTagMatches(t *testing.T) {
	tests := []struct {
		invalidate Tag
		provided   Tag
		want       bool
	}{
		{ItemTag("Transactions", 42), ItemTag("Transactions", 42), true},
		{ItemTag("Transactions", 42), ItemTag("Transactions", 43), false},
		{ListTag("Transactions"), ListTag("Transactions"), true},
		{ListTag("Transactions"), ItemTag("Transactions", 1), false},
		{TypeTag("Transactions"), ItemTag("Transactions", 1), true},
		{TypeTag("Transactions"), ListTag("Transactions"), true},
		{TypeTag("Transactions"), ListTag("Users"), false},
	}
	for _, tt := range tests {
		if got := tt.invalidate.Matches(tt.provided); got != tt.want {
			t.Errorf("%s.Matches(%s) = %v, want %v", tt.invalidate, tt.provided, got, tt.want)
		}
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("tx.list", []Tag{ListTag("Transactions"), ItemTag("Transactions", 1), ItemTag("Transactions", 2)})
	r.Register("tx.1", []Tag{ItemTag("Transactions", 1)})
	r.Register("users.list", []Tag{ListTag("Users")})

	if got := r.Match(ItemTag("Transactions", 1)); !reflect.DeepEqual(got, []string{"tx.1", "tx.list"}) {
		t.Errorf("item match = %v", got)
	}
	if got := r.Match(TypeTag("Transactions")); !reflect.DeepEqual(got, []string{"tx.1", "tx.list"}) {
		t.Errorf("wildcard match = %v", got)
	}
	if got := r.Match(ListTag("Users"), ItemTag("Transactions", 2)); !reflect.DeepEqual(got, []string{"tx.list", "users.list"}) {
		t.Errorf("multi match = %v", got)
	}

	r.Register("tx.list", []Tag{ListTag("Transactions")})
	if got := r.Match(ItemTag("Transactions", 2)); len(got) != 0 {
		t.Errorf("re-registration should replace tags, got %v", got)
	}

	r.Unregister("tx.1")
	if got := r.Match(TypeTag("Transactions")); !reflect.DeepEqual(got, []string{"tx.list"}) {
		t.Errorf("after unregister = %v", got)
	}
	if r.Len() != 2 {
		t.Errorf("Len = %d, want 2", r.Len())
	}
}

func TestQueryServesFreshEntryFromCache(t *testing.T) {
	c := newTestCache()
	var calls atomic.Int32
	fetch := counter(&calls, ListTag("Users"))

	for i := 0; i < 3; i++ {
		v, err := c.Query(context.Background(), "users.list()", "users.list", fetch)
		if err != nil || v.(int) != 1 {
			t.Fatalf("Query = %v, %v", v, err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("fetch called %d times, want 1", calls.Load())
	}
}

func TestConcurrentQueriesShareOneRequest(t *testing.T) {
	c := newTestCache()
	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (any, []Tag, error) {
		calls.Add(1)
		<-release
		return "ok", nil, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := c.Query(context.Background(), "k", "e", fetch); err != nil || v != "ok" {
				t.Errorf("Query = %v, %v", v, err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("fetch called %d times, want 1", calls.Load())
	}
}

func TestInvalidationRoundTrip(t *testing.T) {
	c := newTestCache()
	var calls atomic.Int32
	list := counter(&calls, ListTag("Transactions"), ItemTag("Transactions", 41), ItemTag("Transactions", 42))

	if _, err := c.Query(context.Background(), "transactions.list", "transactions.list", list); err != nil {
		t.Fatal(err)
	}
	c.Query(context.Background(), "transactions.list", "transactions.list", list)
	if calls.Load() != 1 {
		t.Fatalf("expected one network call before the mutation, got %d", calls.Load())
	}

	// approving transaction 42
	if n := c.Invalidate(ItemAndList("Transactions", 42)...); n != 1 {
		t.Errorf("Invalidate matched %d entries, want 1", n)
	}
	if st, _ := c.Peek("transactions.list"); !st.IsStale {
		t.Errorf("entry should be stale immediately after invalidation")
	}

	v, err := c.Query(context.Background(), "transactions.list", "transactions.list", list)
	if err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 || v.(int) != 2 {
		t.Errorf("list after approval should hit the network, calls=%d value=%v", calls.Load(), v)
	}
}

func TestInvalidationDuringFirstFetch(t *testing.T) {
	tests := []struct {
		name      string
		tags      []Tag
		wantStale bool
		wantCalls int32
	}{
		{"matching tag", ItemAndList("Transactions", 42), true, 2},
		{"wildcard tag", []Tag{TypeTag("Transactions")}, true, 2},
		{"unrelated tag", []Tag{ListTag("Users")}, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCache()
			var calls atomic.Int32
			release := make(chan struct{})
			fetch := func(ctx context.Context) (any, []Tag, error) {
				n := calls.Add(1)
				if n == 1 {
					<-release
				}
				return int(n), []Tag{ListTag("Transactions"), ItemTag("Transactions", 42)}, nil
			}

			done := make(chan any, 1)
			go func() {
				v, _ := c.Query(context.Background(), "tx.list", "tx.list", fetch)
				done <- v
			}()
			deadline := time.Now().Add(2 * time.Second)
			for calls.Load() == 0 {
				if time.Now().After(deadline) {
					t.Fatal("fetch never started")
				}
				time.Sleep(time.Millisecond)
			}

			// mutation lands while the list is still loading
			c.Invalidate(tt.tags...)
			close(release)
			if v := <-done; v != 1 {
				t.Fatalf("in-flight Query = %v, want 1", v)
			}

			if st, _ := c.Peek("tx.list"); st.IsStale != tt.wantStale {
				t.Errorf("IsStale = %v, want %v", st.IsStale, tt.wantStale)
			}
			if _, err := c.Query(context.Background(), "tx.list", "tx.list", fetch); err != nil {
				t.Fatal(err)
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("backend calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestInvalidationLeavesUnrelatedEntries(t *testing.T) {
	c := newTestCache()
	var users, tx atomic.Int32
	c.Query(context.Background(), "users", "users", counter(&users, ListTag("Users")))
	c.Query(context.Background(), "tx", "tx", counter(&tx, ListTag("Transactions")))

	c.Invalidate(TypeTag("Transactions"))

	c.Query(context.Background(), "users", "users", counter(&users, ListTag("Users")))
	c.Query(context.Background(), "tx", "tx", counter(&tx, ListTag("Transactions")))
	if users.Load() != 1 || tx.Load() != 2 {
		t.Errorf("users=%d tx=%d, want 1 and 2", users.Load(), tx.Load())
	}
}

func TestSubscriptionRefetchesAfterInvalidation(t *testing.T) {
	c := newTestCache()
	var calls atomic.Int32
	states := make(chan State, 32)

	sub := c.Subscribe("wallet", "wallet.balances", counter(&calls, ListTag("Wallet")), func(st State) {
		states <- st
	})
	defer sub.Close()

	waitForState(t, states, func(st State) bool { return st.Data == 1 && !st.IsFetching })

	c.Invalidate(ListTag("Wallet"))
	st := waitForState(t, states, func(st State) bool { return st.Data == 2 && !st.IsFetching })
	if st.IsStale || st.IsError {
		t.Errorf("unexpected state after refetch: %+v", st)
	}
}

func TestFailedRefetchKeepsPreviousData(t *testing.T) {
	c := newTestCache()
	boom := errors.New("backend down")
	var fail atomic.Bool
	fetch := func(ctx context.Context) (any, []Tag, error) {
		if fail.Load() {
			return nil, nil, boom
		}
		return "v1", []Tag{ListTag("Users")}, nil
	}

	states := make(chan State, 32)
	sub := c.Subscribe("users", "users", fetch, func(st State) { states <- st })
	defer sub.Close()
	waitForState(t, states, func(st State) bool { return st.Data == "v1" && !st.IsFetching })

	fail.Store(true)
	if err := sub.Refetch(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Refetch error = %v", err)
	}
	st := sub.State()
	if !st.IsError || st.Data != "v1" || !errors.Is(st.Error, boom) {
		t.Errorf("failed refetch should keep data next to the error: %+v", st)
	}

	fail.Store(false)
	if err := sub.Refetch(context.Background()); err != nil {
		t.Fatal(err)
	}
	if st := sub.State(); st.IsError || st.Error != nil {
		t.Errorf("successful refetch should clear the error: %+v", st)
	}
}

func TestClosedSubscriptionNeverReceivesLateResults(t *testing.T) {
	c := newTestCache()
	release := make(chan struct{})
	fetch := func(ctx context.Context) (any, []Tag, error) {
		<-release
		return "late", nil, nil
	}

	var (
		mu        sync.Mutex
		delivered []State
	)
	sub := c.Subscribe("k", "e", fetch, func(st State) {
		mu.Lock()
		delivered = append(delivered, st)
		mu.Unlock()
	})
	sub.Close()
	close(release)

	deadline := time.Now().Add(2 * time.Second)
	for {
		if st, ok := c.Peek("k"); ok && st.Data == "late" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("fetch never completed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for _, st := range delivered {
		if st.Data != nil {
			t.Errorf("closed subscription received data: %+v", st)
		}
	}
	if err := sub.Refetch(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Refetch on closed subscription = %v", err)
	}
}

func TestCloseWaitsForDeliveryInProgress(t *testing.T) {
	c := newTestCache()
	entered := make(chan struct{})
	release := make(chan struct{})
	var (
		once     sync.Once
		returned atomic.Bool
		late     atomic.Int32
	)
	sub := c.Subscribe("k", "e", counter(new(atomic.Int32), ListTag("Users")), func(st State) {
		if returned.Load() {
			late.Add(1)
		}
		once.Do(func() { close(entered) })
		<-release
	})

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("no delivery started")
	}

	closed := make(chan struct{})
	go func() {
		sub.Close()
		returned.Store(true)
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while onChange was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close never returned")
	}

	c.Invalidate(ListTag("Users"))
	time.Sleep(50 * time.Millisecond)
	if n := late.Load(); n != 0 {
		t.Errorf("onChange ran %d times after Close returned", n)
	}
}

func TestQueryCancellationStillFillsCache(t *testing.T) {
	c := newTestCache()
	release := make(chan struct{})
	fetch := func(ctx context.Context) (any, []Tag, error) {
		<-release
		return "value", nil, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Query(ctx, "k", "e", fetch)
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Query error = %v, want context.Canceled", err)
	}

	close(release)
	v, err := c.Query(context.Background(), "k", "e", fetch)
	if err != nil || v != "value" {
		t.Errorf("Query after release = %v, %v", v, err)
	}
}

func TestUnusedEntriesExpire(t *testing.T) {
	c := New(models.CacheConfig{KeepUnusedFor: 30 * time.Millisecond, CleanupInterval: 10 * time.Millisecond})
	var calls atomic.Int32
	c.Query(context.Background(), "k", "e", counter(&calls, ListTag("Users")))

	deadline := time.Now().Add(2 * time.Second)
	for c.Registry().Len() != 0 || c.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("entry was not evicted: entries=%d tags=%d", c.Len(), c.Registry().Len())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWatchedEntriesDoNotExpire(t *testing.T) {
	c := New(models.CacheConfig{KeepUnusedFor: 20 * time.Millisecond, CleanupInterval: 10 * time.Millisecond})
	var calls atomic.Int32
	states := make(chan State, 8)
	sub := c.Subscribe("k", "e", counter(&calls, ListTag("Users")), func(st State) { states <- st })
	waitForState(t, states, func(st State) bool { return st.Data == 1 })

	time.Sleep(100 * time.Millisecond)
	if _, ok := c.Peek("k"); !ok {
		t.Errorf("watched entry expired")
	}
	sub.Close()
}

func TestOnInvalidateListeners(t *testing.T) {
	c := newTestCache()
	var got []Tag
	remove := c.OnInvalidate(func(tags []Tag) { got = append(got, tags...) })

	c.Invalidate(ItemAndList("SupportTickets", 9)...)
	if !reflect.DeepEqual(got, []Tag{ItemTag("SupportTickets", 9), ListTag("SupportTickets")}) {
		t.Errorf("listener got %v", got)
	}

	remove()
	c.Invalidate(ListTag("Users"))
	if len(got) != 2 {
		t.Errorf("removed listener still called")
	}
}

func TestEndpointRetention(t *testing.T) {
	c := New(models.CacheConfig{
		KeepUnusedFor:     time.Hour,
		CleanupInterval:   10 * time.Millisecond,
		EndpointRetention: map[string]time.Duration{"short": 20 * time.Millisecond},
	})
	var a, b atomic.Int32
	c.Query(context.Background(), "short()", "short", counter(&a))
	c.Query(context.Background(), "long()", "long", counter(&b))

	time.Sleep(150 * time.Millisecond)
	if _, ok := c.Peek("short()"); ok {
		t.Errorf("short-retention entry should have expired")
	}
	if _, ok := c.Peek("long()"); !ok {
		t.Errorf("default-retention entry should still be cached")
	}
}
