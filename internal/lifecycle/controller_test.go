package lifecycle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/freema/coauthor/internal/github"
	"github.com/freema/coauthor/internal/roster"
	"github.com/freema/coauthor/internal/store"
)

const testExpiry = 100 * time.Millisecond

// fakeResolver returns canned results per username and can hold a lookup
// open until released.
type fakeResolver struct {
	mu       sync.Mutex
	profiles map[string]*github.Profile
	failures map[string]error
	block    map[string]chan struct{}
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		profiles: make(map[string]*github.Profile),
		failures: make(map[string]error),
		block:    make(map[string]chan struct{}),
	}
}

func (f *fakeResolver) succeed(username string, id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[username] = &github.Profile{ID: id, Login: username}
}

func (f *fakeResolver) fail(username string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[username] = err
}

func (f *fakeResolver) hold(username string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.block[username] = ch
	return ch
}

func (f *fakeResolver) Resolve(ctx context.Context, username string) (*github.Profile, error) {
	f.mu.Lock()
	gate := f.block[username]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, &github.TransportError{Message: ctx.Err().Error()}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failures[username]; ok {
		return nil, err
	}
	if p, ok := f.profiles[username]; ok {
		return p, nil
	}
	return nil, &github.TransportError{StatusCode: 404, Message: "Not Found"}
}

func newTestController(t *testing.T, resolver github.Resolver) (*Controller, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	c := New(s, resolver, testExpiry)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(c.Stop)
	return c, s
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func findView(c *Controller, username string) (EntryView, bool) {
	for _, v := range c.Snapshot() {
		if v.Username == username {
			return v, true
		}
	}
	return EntryView{}, false
}

func TestAddResolvesAndRendersTrailer(t *testing.T) {
	resolver := newFakeResolver()
	resolver.succeed("manudeli", 1234)
	c, _ := newTestController(t, resolver)

	if err := c.Add(context.Background(), roster.Entry{Username: "manudeli", Name: "Jonghyeon Ko"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	ok := waitFor(t, 2*time.Second, func() bool {
		v, found := findView(c, "manudeli")
		return found && v.Status == roster.StatusResolved
	})
	if !ok {
		t.Fatal("entry never resolved")
	}

	v, _ := findView(c, "manudeli")
	want := "Co-authored-by: Jonghyeon Ko <1234+manudeli@users.noreply.github.com>"
	if v.Trailer != want {
		t.Errorf("trailer: got %q, want %q", v.Trailer, want)
	}
}

func TestTransportErrorAutoExpires(t *testing.T) {
	resolver := newFakeResolver()
	resolver.fail("doesnotexist123xyz", &github.TransportError{StatusCode: 404, Message: "404"})
	c, s := newTestController(t, resolver)

	if err := c.Add(context.Background(), roster.Entry{Username: "doesnotexist123xyz", Name: "Nobody"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// Error panel first...
	ok := waitFor(t, 2*time.Second, func() bool {
		v, found := findView(c, "doesnotexist123xyz")
		return found && v.Status == roster.StatusTransportError && v.Error == "404"
	})
	if !ok {
		t.Fatal("entry never reached transport_error")
	}

	// ...then automatic removal once the delay elapses.
	ok = waitFor(t, 2*time.Second, func() bool {
		_, found := findView(c, "doesnotexist123xyz")
		return !found
	})
	if !ok {
		t.Fatal("entry was not auto-removed")
	}

	entries, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if roster.Contains(entries, "doesnotexist123xyz") {
		t.Error("auto-removal was not persisted")
	}
}

func TestValidationErrorDoesNotAutoExpire(t *testing.T) {
	resolver := newFakeResolver()
	resolver.fail("badshape", &github.ValidationError{
		Violations: []github.Violation{{Path: "id", Code: "required", Message: "field is required"}},
		Raw:        []byte(`{"login":"badshape"}`),
	})
	c, s := newTestController(t, resolver)

	if err := c.Add(context.Background(), roster.Entry{Username: "badshape", Name: "Bad Shape"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	ok := waitFor(t, 2*time.Second, func() bool {
		v, found := findView(c, "badshape")
		return found && v.Status == roster.StatusValidationError
	})
	if !ok {
		t.Fatal("entry never reached validation_error")
	}

	v, _ := findView(c, "badshape")
	if len(v.Violations) != 1 || v.Violations[0].Path != "id" {
		t.Errorf("expected violation for path id, got %+v", v.Violations)
	}
	if len(v.Raw) == 0 {
		t.Error("expected raw dump in view")
	}

	// Well past the expiry delay the entry must still be there.
	time.Sleep(4 * testExpiry)
	if _, found := findView(c, "badshape"); !found {
		t.Fatal("validation-errored entry was auto-removed")
	}
	entries, _ := s.Load(context.Background())
	if !roster.Contains(entries, "badshape") {
		t.Error("validation-errored entry missing from persisted roster")
	}
}

func TestEntryFailuresAreIsolated(t *testing.T) {
	resolver := newFakeResolver()
	resolver.succeed("good", 7)
	resolver.fail("bad", &github.TransportError{StatusCode: 500, Message: "boom"})
	c, _ := newTestController(t, resolver)

	ctx := context.Background()
	if err := c.Add(ctx, roster.Entry{Username: "good", Name: "Good"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := c.Add(ctx, roster.Entry{Username: "bad", Name: "Bad"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// The failing entry expires; the succeeding one is untouched.
	ok := waitFor(t, 2*time.Second, func() bool {
		_, badFound := findView(c, "bad")
		v, goodFound := findView(c, "good")
		return !badFound && goodFound && v.Status == roster.StatusResolved
	})
	if !ok {
		t.Fatalf("expected bad removed and good resolved, got %+v", c.Snapshot())
	}
}

func TestRemoveWhilePendingDiscardsResult(t *testing.T) {
	resolver := newFakeResolver()
	resolver.succeed("slow", 9)
	gate := resolver.hold("slow")
	c, _ := newTestController(t, resolver)

	ctx := context.Background()
	if err := c.Add(ctx, roster.Entry{Username: "slow", Name: "Slow"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	ok := waitFor(t, 2*time.Second, func() bool {
		v, found := findView(c, "slow")
		return found && v.Status == roster.StatusLoading
	})
	if !ok {
		t.Fatal("entry never reached loading")
	}

	if err := c.Remove(ctx, "slow"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	close(gate) // let the pending lookup finish now

	// The late result must not resurface the entry.
	time.Sleep(4 * testExpiry)
	if _, found := findView(c, "slow"); found {
		t.Fatal("removed entry rendered after its pending lookup resolved")
	}
}

func TestReAddReplacesPriorOccupant(t *testing.T) {
	resolver := newFakeResolver()
	resolver.succeed("alice", 1)
	resolver.succeed("bob", 2)
	c, s := newTestController(t, resolver)

	ctx := context.Background()
	if err := c.Add(ctx, roster.Entry{Username: "alice", Name: "First"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := c.Add(ctx, roster.Entry{Username: "bob", Name: "Bob"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := c.Add(ctx, roster.Entry{Username: "alice", Name: "Second"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	entries, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 2 || entries[0].Username != "bob" || entries[1].Username != "alice" || entries[1].Name != "Second" {
		t.Errorf("unexpected persisted roster: %+v", entries)
	}

	ok := waitFor(t, 2*time.Second, func() bool {
		v, found := findView(c, "alice")
		return found && v.Status == roster.StatusResolved && v.Name == "Second"
	})
	if !ok {
		t.Fatalf("re-added entry did not resolve with new name: %+v", c.Snapshot())
	}
}

func TestManualRemoveCancelsExpiryTimer(t *testing.T) {
	resolver := newFakeResolver()
	resolver.fail("flaky", &github.TransportError{StatusCode: 503, Message: "unavailable"})
	c, s := newTestController(t, resolver)

	ctx := context.Background()
	if err := c.Add(ctx, roster.Entry{Username: "flaky", Name: "Flaky"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	ok := waitFor(t, 2*time.Second, func() bool {
		v, found := findView(c, "flaky")
		return found && v.Status == roster.StatusTransportError
	})
	if !ok {
		t.Fatal("entry never reached transport_error")
	}

	if err := c.Remove(ctx, "flaky"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	// Re-add under the same username; the stale timer must not remove the
	// new occupant.
	resolver.succeed("flaky", 3)
	resolver.mu.Lock()
	delete(resolver.failures, "flaky")
	resolver.mu.Unlock()
	if err := c.Add(ctx, roster.Entry{Username: "flaky", Name: "Flaky"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	time.Sleep(4 * testExpiry)
	entries, _ := s.Load(ctx)
	if !roster.Contains(entries, "flaky") {
		t.Fatal("stale expiry timer removed the re-added entry")
	}
}

func TestStartResumesPersistedRoster(t *testing.T) {
	resolver := newFakeResolver()
	resolver.succeed("alice", 1)

	s := store.NewMemoryStore()
	if err := s.Save(context.Background(), []roster.Entry{{Username: "alice", Name: "Alice"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	c := New(s, resolver, testExpiry)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer c.Stop()

	ok := waitFor(t, 2*time.Second, func() bool {
		v, found := findView(c, "alice")
		return found && v.Status == roster.StatusResolved
	})
	if !ok {
		t.Fatal("persisted entry was not resumed")
	}
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	resolver := newFakeResolver()
	resolver.succeed("alice", 1)
	c, s := newTestController(t, resolver)

	ctx := context.Background()
	if err := c.Add(ctx, roster.Entry{Username: "alice", Name: "Alice"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := c.Remove(ctx, "nobody"); err != nil {
		t.Fatalf("Remove of absent username: %v", err)
	}

	entries, _ := s.Load(ctx)
	if len(entries) != 1 || entries[0].Username != "alice" {
		t.Errorf("roster changed by no-op remove: %+v", entries)
	}
}
