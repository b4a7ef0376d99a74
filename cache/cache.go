// Package cache is a keyed read-through cache over asynchronous fetch
// functions. It dedupes in-flight requests, tracks staleness, resolves
// races between overlapping fetches by sequence number, and supports the
// targeted invalidation and direct writes mutations need.
package cache

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

// Key identifies a query, e.g. Key{"posts", "detail", id}.
type Key []string

func NewKey(parts ...string) Key {
	return Key(parts)
}

func (k Key) String() string {
	return strings.Join(k, "/")
}

// HasPrefix reports whether k starts with the given prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Status is the per-key fetch state machine: Idle → Loading →
// Success|Error, with Success/Error re-entering Loading on refetch.
type Status int

const (
	Idle Status = iota
	Loading
	Success
	Error
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "idle"
	}
}

// FetchFunc loads the value for a key from the source of truth.
type FetchFunc func(ctx context.Context) (any, error)

// Options tune a single Read.
type Options struct {
	// StaleTime is how long fetched data stays fresh. A read of data older
	// than this triggers a background refetch.
	StaleTime time.Duration
	// Retain is how long an entry survives without being read before the
	// janitor drops it.
	Retain time.Duration
	// Enabled gates fetching entirely; a disabled read returns the entry
	// as-is and never hits the network.
	Enabled bool
	// Retries is the number of additional attempts after a failed fetch.
	Retries int
	// Retryable decides which errors are worth another attempt.
	// Nil means all of them.
	Retryable func(error) bool
}

// Result is an immediate snapshot of a cache entry. Data may be non-nil
// even while Status is Loading (stale data stays servable during refetch)
// or Error (failures do not wipe previously cached data).
type Result struct {
	Data      any
	Status    Status
	Err       error
	FetchedAt time.Time
	Stale     bool
}

type entry struct {
	data       any
	err        error
	status     Status
	fetchedAt  time.Time
	stale      bool
	seq        uint64
	inflight   bool
	lastAccess time.Time
	retain     time.Duration
}

type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	seq     uint64
	updates chan Key

	// overridable for tests
	now         func() time.Time
	backoffBase time.Duration
	backoffCap  time.Duration
}

func New() *Cache {
	return &Cache{
		entries:     make(map[string]*entry),
		updates:     make(chan Key, 64),
		now:         time.Now,
		backoffBase: time.Second,
		backoffCap:  30 * time.Second,
	}
}

// Updates delivers the key of every completed fetch, invalidation, write
// and eviction. Consumers re-read the keys they care about.
func (c *Cache) Updates() <-chan Key {
	return c.updates
}

// Read returns the entry's current state immediately. When the entry is
// absent, stale, or older than StaleTime, it also starts a fetch — unless
// one for this key is already in flight, in which case the caller joins it.
func (c *Cache) Read(key Key, fetch FetchFunc, opts Options) Result {
	c.mu.Lock()

	e := c.entries[key.String()]
	if e == nil {
		e = &entry{retain: opts.Retain}
		c.entries[key.String()] = e
	}
	e.lastAccess = c.now()
	if opts.Retain > e.retain {
		e.retain = opts.Retain
	}

	if opts.Enabled && !e.inflight && c.needsFetch(e, opts) {
		c.seq++
		e.seq = c.seq
		e.inflight = true
		e.status = Loading
		go c.runFetch(key, e.seq, fetch, opts)
	}

	res := snapshot(e)
	c.mu.Unlock()
	return res
}

// Invalidate marks every entry under the prefix stale. Data is kept so
// consumers still rendering it never flash back to loading; the next read
// by an active consumer refetches. Calling it twice is the same as once.
func (c *Cache) Invalidate(prefix Key) {
	c.mu.Lock()
	var touched []Key
	for ks, e := range c.entries {
		k := Key(strings.Split(ks, "/"))
		if !k.HasPrefix(prefix) {
			continue
		}
		if !e.stale {
			e.stale = true
			touched = append(touched, k)
		}
	}
	c.mu.Unlock()

	for _, k := range touched {
		c.notify(k)
	}
}

// Write overwrites an entry's data and marks it fresh, superseding any
// fetch still in flight for the key.
func (c *Cache) Write(key Key, value any) {
	c.mu.Lock()
	e := c.entries[key.String()]
	if e == nil {
		e = &entry{}
		c.entries[key.String()] = e
	}
	c.seq++
	e.seq = c.seq
	e.inflight = false
	e.data = value
	e.err = nil
	e.status = Success
	e.fetchedAt = c.now()
	e.stale = false
	e.lastAccess = c.now()
	c.mu.Unlock()

	c.notify(key)
}

// Evict removes an entry entirely; no value remains, not even as stale
// data. A fetch still in flight for the key is discarded on completion.
func (c *Cache) Evict(key Key) {
	c.mu.Lock()
	_, existed := c.entries[key.String()]
	delete(c.entries, key.String())
	c.mu.Unlock()

	if existed {
		c.notify(key)
	}
}

// Sweep drops entries that have not been read within their retain window.
// In-flight entries are left alone.
func (c *Cache) Sweep() {
	c.mu.Lock()
	now := c.now()
	for ks, e := range c.entries {
		if e.inflight || e.retain <= 0 {
			continue
		}
		if now.Sub(e.lastAccess) > e.retain {
			delete(c.entries, ks)
		}
	}
	c.mu.Unlock()
}

// StartJanitor sweeps on an interval until the returned stop func is called.
func (c *Cache) StartJanitor(interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				c.Sweep()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	return func() { close(done) }
}

func (c *Cache) needsFetch(e *entry, opts Options) bool {
	switch e.status {
	case Idle:
		return true
	case Loading:
		return false
	case Error:
		// A failed fetch terminates in Error; it is retried only once the
		// entry is invalidated, not on every subsequent read.
		return e.stale
	}
	if e.stale {
		return true
	}
	return c.now().Sub(e.fetchedAt) > opts.StaleTime
}

func (c *Cache) runFetch(key Key, seq uint64, fetch FetchFunc, opts Options) {
	backoff := retry.WithCappedDuration(c.backoffCap, retry.NewExponential(c.backoffBase))
	backoff = retry.WithMaxRetries(uint64(opts.Retries), backoff)

	var value any
	err := retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		v, ferr := fetch(ctx)
		if ferr != nil {
			if opts.Retryable == nil || opts.Retryable(ferr) {
				return retry.RetryableError(ferr)
			}
			return ferr
		}
		value = v
		return nil
	})

	c.mu.Lock()
	e := c.entries[key.String()]
	if e == nil || e.seq != seq {
		// Evicted or superseded while we were fetching; this result is
		// no longer the latest initiated fetch for the key.
		c.mu.Unlock()
		return
	}
	e.inflight = false
	if err != nil {
		e.status = Error
		e.err = err
		// The invalidation that triggered this fetch is consumed even on
		// failure; erroring entries refetch on the next invalidation, not
		// on every read.
		e.stale = false
		log.Printf("Fetch for %s failed: %v", key, err)
	} else {
		e.data = value
		e.err = nil
		e.status = Success
		e.fetchedAt = c.now()
		e.stale = false
	}
	c.mu.Unlock()

	c.notify(key)
}

func (c *Cache) notify(key Key) {
	select {
	case c.updates <- key:
	default:
		// Consumer stopped draining; it will re-read on its next update.
	}
}

func snapshot(e *entry) Result {
	return Result{
		Data:      e.data,
		Status:    e.status,
		Err:       e.err,
		FetchedAt: e.fetchedAt,
		Stale:     e.stale,
	}
}
