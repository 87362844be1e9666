// Package lifecycle drives the roster: it mirrors the persisted entry list,
// runs one independent profile lookup per entry, and applies the per-entry
// state machine, including timed auto-removal after transport errors.
package lifecycle

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/freema/coauthor/internal/apperror"
	"github.com/freema/coauthor/internal/github"
	"github.com/freema/coauthor/internal/metrics"
	"github.com/freema/coauthor/internal/roster"
	"github.com/freema/coauthor/internal/store"
)

// DefaultExpiryDelay is how long a transport-errored entry stays visible
// before it is removed automatically.
const DefaultExpiryDelay = 1500 * time.Millisecond

// Controller owns the roster and the per-entry lookup state. All mutations go
// through its mutex, so they apply in user-action order and each entry's
// failure stays scoped to that entry.
type Controller struct {
	store    store.Store
	resolver github.Resolver
	expiry   time.Duration

	mu      sync.Mutex
	list    []roster.Entry
	states  map[string]*entryState
	nextGen uint64
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// entryState tracks one entry's lookup. gen distinguishes the current
// occupant of a username from an earlier one that was removed or replaced, so
// a late fetch result or a stale expiry timer can never touch the wrong entry.
type entryState struct {
	entry      roster.Entry
	gen        uint64
	status     roster.EntryStatus
	trailer    string
	transport  *github.TransportError
	validation *github.ValidationError
	cancelFn   context.CancelFunc
	timer      *time.Timer
}

func (st *entryState) stop() {
	if st.cancelFn != nil {
		st.cancelFn()
	}
	if st.timer != nil {
		st.timer.Stop()
	}
}

// New creates a controller. expiry <= 0 selects DefaultExpiryDelay.
func New(s store.Store, resolver github.Resolver, expiry time.Duration) *Controller {
	if expiry <= 0 {
		expiry = DefaultExpiryDelay
	}
	return &Controller{
		store:    s,
		resolver: resolver,
		expiry:   expiry,
		states:   make(map[string]*entryState),
	}
}

// Start loads the persisted roster and begins a lookup for every entry.
// ctx bounds the lifetime of all lookups; it must outlive individual requests.
func (c *Controller) Start(ctx context.Context) error {
	entries, err := c.store.Load(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.baseCtx, c.cancel = context.WithCancel(ctx)
	c.list = entries
	for _, e := range entries {
		c.spawnLocked(e)
	}
	metrics.RosterSize.Set(float64(len(c.list)))

	slog.Info("roster resumed", "entries", len(entries))
	return nil
}

// Stop cancels all in-flight lookups and expiry timers and waits for the
// lookup goroutines to finish. The persisted roster is left as is.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	for _, st := range c.states {
		st.stop()
	}
	c.mu.Unlock()
	c.wg.Wait()
}

// Add admits an entry: the roster is persisted with the entry moved to the
// end (replacing any prior entry for the username), then a fresh lookup
// starts. A replaced occupant's lookup and expiry timer are cancelled.
func (c *Controller) Add(ctx context.Context, e roster.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := roster.Add(c.list, e)
	if err := c.store.Save(ctx, next); err != nil {
		return apperror.Internal("persisting roster: %v", err)
	}

	if prev, ok := c.states[e.Username]; ok {
		prev.stop()
		delete(c.states, e.Username)
	}

	c.list = next
	c.spawnLocked(e)
	metrics.RosterSize.Set(float64(len(c.list)))

	slog.Info("entry added", "username", e.Username)
	return nil
}

// Remove drops the entry for username. Removing an absent username is a
// no-op. An in-flight lookup is cancelled and its eventual result discarded;
// a pending expiry timer is stopped.
func (c *Controller) Remove(ctx context.Context, username string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !roster.Contains(c.list, username) {
		return nil
	}

	next := roster.Remove(c.list, username)
	if err := c.store.Save(ctx, next); err != nil {
		return apperror.Internal("persisting roster: %v", err)
	}

	if st, ok := c.states[username]; ok {
		st.stop()
		delete(c.states, username)
	}

	c.list = next
	metrics.RosterSize.Set(float64(len(c.list)))

	slog.Info("entry removed", "username", username)
	return nil
}

// spawnLocked registers fresh state for e and launches its lookup.
// Callers must hold c.mu and must have called Start.
func (c *Controller) spawnLocked(e roster.Entry) {
	c.nextGen++
	fetchCtx, cancelFn := context.WithCancel(c.baseCtx)
	st := &entryState{
		entry:    e,
		gen:      c.nextGen,
		status:   roster.StatusIdle,
		cancelFn: cancelFn,
	}
	c.states[e.Username] = st

	c.wg.Add(1)
	go c.fetch(fetchCtx, e, st.gen)
}

func (c *Controller) fetch(ctx context.Context, e roster.Entry, gen uint64) {
	defer c.wg.Done()

	c.transition(e.Username, gen, roster.StatusLoading, nil, nil)

	start := time.Now()
	profile, err := c.resolver.Resolve(ctx, e.Username)
	outcome := classifyOutcome(err)
	metrics.LookupsTotal.WithLabelValues(outcome).Inc()
	metrics.LookupDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	if err == nil {
		c.settle(e.Username, gen, roster.StatusResolved, profile, nil)
		return
	}

	switch te := err.(type) {
	case *github.TransportError:
		c.settle(e.Username, gen, roster.StatusTransportError, nil, te)
	case *github.ValidationError:
		c.settle(e.Username, gen, roster.StatusValidationError, nil, te)
	default:
		// Resolver contract violation; treat as transport failure.
		c.settle(e.Username, gen, roster.StatusTransportError, nil, &github.TransportError{Message: err.Error()})
	}
}

// transition applies a non-final status change, gated on the entry still
// being the same occupant.
func (c *Controller) transition(username string, gen uint64, next roster.EntryStatus, profile *github.Profile, failure error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyLocked(username, gen, next, profile, failure)
}

// settle records a lookup result. Results for removed or replaced entries are
// discarded: nothing may render for a username after its removal.
func (c *Controller) settle(username string, gen uint64, next roster.EntryStatus, profile *github.Profile, failure error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.applyLocked(username, gen, next, profile, failure) {
		return
	}

	if next == roster.StatusTransportError {
		st := c.states[username]
		st.timer = time.AfterFunc(c.expiry, func() {
			c.expire(username, gen)
		})
	}
}

func (c *Controller) applyLocked(username string, gen uint64, next roster.EntryStatus, profile *github.Profile, failure error) bool {
	st, ok := c.states[username]
	if !ok || st.gen != gen {
		return false
	}
	if err := roster.ValidateTransition(st.status, next); err != nil {
		slog.Warn("dropping entry state change", "username", username, "error", err)
		return false
	}

	st.status = next
	switch next {
	case roster.StatusResolved:
		st.trailer = profile.Trailer(st.entry.Name)
	case roster.StatusTransportError:
		st.transport = failure.(*github.TransportError)
	case roster.StatusValidationError:
		st.validation = failure.(*github.ValidationError)
	}
	return true
}

// expire auto-removes a transport-errored entry once its delay elapses. The
// generation gate means a manual removal or a re-add in the meantime wins.
func (c *Controller) expire(username string, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.states[username]
	if !ok || st.gen != gen || st.status != roster.StatusTransportError {
		return
	}

	next := roster.Remove(c.list, username)
	if err := c.store.Save(context.Background(), next); err != nil {
		slog.Error("persisting auto-removal failed", "username", username, "error", err)
		return
	}

	delete(c.states, username)
	c.list = next
	metrics.RosterSize.Set(float64(len(c.list)))
	metrics.AutoExpired.Inc()

	slog.Info("entry auto-expired", "username", username)
}

func classifyOutcome(err error) string {
	switch err.(type) {
	case nil:
		return "resolved"
	case *github.ValidationError:
		return "validation_error"
	default:
		return "transport_error"
	}
}
