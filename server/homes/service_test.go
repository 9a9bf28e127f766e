package homes

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/dm-vev/homes/server/home"
	"github.com/dm-vev/homes/server/location"
	"github.com/dm-vev/homes/server/teleport"
	"github.com/dm-vev/homes/server/tick"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

type memoryStore struct {
	mu    sync.Mutex
	homes map[uuid.UUID][]home.Home
}

func (s *memoryStore) Load(_ context.Context, owner uuid.UUID) ([]home.Home, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]home.Home(nil), s.homes[owner]...), nil
}

func (s *memoryStore) Save(_ context.Context, owner uuid.UUID, homes []home.Home) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.homes == nil {
		s.homes = map[uuid.UUID][]home.Home{}
	}
	s.homes[owner] = append([]home.Home(nil), homes...)
	return nil
}

func (s *memoryStore) Owners(context.Context) ([]uuid.UUID, error) { return nil, nil }
func (s *memoryStore) Close() error                                { return nil }

type testConfig map[string]any

func (c testConfig) Int(key string, def int) int {
	if v, ok := c[key].(int); ok {
		return v
	}
	return def
}

func (c testConfig) String(key string, def string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return def
}

func (c testConfig) Strings(key string, def []string) []string {
	if v, ok := c[key].([]string); ok {
		return v
	}
	return def
}

type request struct {
	actor uuid.UUID
	dest  teleport.Destination
}

type cancellation struct {
	actor  uuid.UUID
	reason teleport.Reason
}

type fakeTeleporter struct {
	err       error
	active    map[uuid.UUID]bool
	requests  []request
	cancelled []cancellation
}

func (f *fakeTeleporter) RequestTeleport(actor uuid.UUID, dest teleport.Destination) error {
	if f.err != nil {
		return f.err
	}
	f.requests = append(f.requests, request{actor: actor, dest: dest})
	return nil
}

func (f *fakeTeleporter) CancelTeleport(actor uuid.UUID, reason teleport.Reason) bool {
	f.cancelled = append(f.cancelled, cancellation{actor: actor, reason: reason})
	return true
}

func (f *fakeTeleporter) Active(actor uuid.UUID) bool { return f.active[actor] }

type noopHandle struct{}

func (noopHandle) Cancel()         {}
func (noopHandle) Cancelled() bool { return false }

// queue collects deferred work until run is called.
type queue struct {
	fns []func()
}

func (q *queue) RunLater(_ int64, fn func()) tick.Handle {
	q.fns = append(q.fns, fn)
	return noopHandle{}
}

func (q *queue) run() {
	fns := q.fns
	q.fns = nil
	for _, fn := range fns {
		fn()
	}
}

type sent struct {
	id  uuid.UUID
	key string
}

type recordingNotifier struct {
	sent []sent
}

func (r *recordingNotifier) Message(id uuid.UUID, key string, _ map[string]string) error {
	r.sent = append(r.sent, sent{id: id, key: key})
	return nil
}

type fixture struct {
	svc    *Service
	tp     *fakeTeleporter
	queue  *queue
	notify *recordingNotifier
	conf   testConfig
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		tp:     &fakeTeleporter{active: map[uuid.UUID]bool{}},
		queue:  &queue{},
		notify: &recordingNotifier{},
		conf: testConfig{
			home.KeyDefaultLimit:   2,
			home.KeyWorldBlacklist: []string{" END "},
			KeyIcons:               []string{"bed", "Diamond", " ", "bed"},
			KeyAdmins:              []string{"Steve", "0f1e2d3c-4b5a-6978-8796-a5b4c3d2e1f0"},
		},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := home.NewManager(&memoryStore{}, f.conf, log)
	f.svc = NewService(manager, f.tp, f.queue, f.notify, f.conf, log)
	return f
}

func spawn(world string) location.Location {
	return location.New(world, mgl64.Vec3{10.5, 64, -3.5}, 90, 0)
}

func TestServiceCreate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	owner := uuid.New()
	cases := []struct {
		name, world, want string
	}{
		{"base", location.Overworld, "home-created"},
		{"BASE", location.Overworld, "error-home-exists"},
		{"bad name!", location.Overworld, "error-invalid-name"},
		{"outpost", location.End, "error-world-blacklisted"},
		{"farm", location.Nether, "home-created"},
		{"mine", location.Overworld, "error-max-homes"},
	}
	for _, c := range cases {
		n := f.svc.Create(owner, c.name, spawn(c.world))
		if n.Key != c.want {
			t.Fatalf("Create(%q, %s) = %q, want %q", c.name, c.world, n.Key, c.want)
		}
		if c.want == "error-max-homes" && n.Placeholders["max"] != "2" {
			t.Fatalf("max placeholder = %q, want 2", n.Placeholders["max"])
		}
	}
}

func TestServiceTeleportIsDeferred(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	owner := uuid.New()
	f.svc.Create(owner, "base", spawn(location.Overworld))

	if n := f.svc.Teleport(owner, "Base"); !n.Empty() {
		t.Fatalf("Teleport returned notice %q", n.Key)
	}
	if len(f.tp.requests) != 0 {
		t.Fatalf("teleport requested before the scheduler ran")
	}
	f.queue.run()
	if len(f.tp.requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(f.tp.requests))
	}
	req := f.tp.requests[0]
	if req.actor != owner || req.dest.Name != "base" || req.dest.Location.World != location.Overworld {
		t.Fatalf("unexpected request %+v", req)
	}

	if n := f.svc.Teleport(owner, "nowhere"); n.Key != "error-home-not-found" || n.Placeholders["home_name"] != "nowhere" {
		t.Fatalf("unknown home notice = %+v", n)
	}
	if len(f.queue.fns) != 0 {
		t.Fatalf("unknown home deferred a request")
	}
}

func TestServiceTeleportFailure(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		err      error
		notified bool
	}{
		"invalid":     {err: teleport.ErrInvalidArgument, notified: true},
		"unreachable": {err: teleport.ErrActorUnreachable, notified: false},
	}
	for name, c := range cases {
		f := newFixture(t)
		owner := uuid.New()
		f.svc.Create(owner, "base", spawn(location.Overworld))
		f.tp.err = c.err

		f.svc.Teleport(owner, "base")
		f.queue.run()
		if got := len(f.notify.sent) == 1; got != c.notified {
			t.Fatalf("%s: notified = %v, want %v", name, got, c.notified)
		}
		if c.notified && f.notify.sent[0].key != "error-generic" {
			t.Fatalf("%s: notice %q, want error-generic", name, f.notify.sent[0].key)
		}
	}
}

func TestServiceCancel(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	owner := uuid.New()
	if n := f.svc.Cancel(owner); n.Key != "teleport-none-pending" {
		t.Fatalf("Cancel without request = %q", n.Key)
	}
	if len(f.queue.fns) != 0 {
		t.Fatalf("cancel without request was deferred")
	}

	f.tp.active[owner] = true
	if n := f.svc.Cancel(owner); !n.Empty() {
		t.Fatalf("Cancel returned %q", n.Key)
	}
	f.queue.run()
	if len(f.tp.cancelled) != 1 || f.tp.cancelled[0] != (cancellation{actor: owner, reason: teleport.ReasonManual}) {
		t.Fatalf("cancellations = %+v", f.tp.cancelled)
	}
}

func TestServiceRenameAndDelete(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	owner := uuid.New()
	f.svc.Create(owner, "base", spawn(location.Overworld))
	f.svc.Create(owner, "farm", spawn(location.Overworld))

	if n := f.svc.Rename(owner, "base", "farm"); n.Key != "error-home-exists" || n.Placeholders["home_name"] != "farm" {
		t.Fatalf("rename onto existing = %+v", n)
	}
	n := f.svc.Rename(owner, "base", "castle")
	if n.Key != "home-renamed" || n.Placeholders["old_name"] != "base" || n.Placeholders["home_name"] != "castle" {
		t.Fatalf("rename = %+v", n)
	}
	if n := f.svc.Delete(owner, "base"); n.Key != "error-home-not-found" {
		t.Fatalf("delete renamed home = %q", n.Key)
	}
	if n := f.svc.Delete(owner, "CASTLE"); n.Key != "home-deleted" || n.Placeholders["home_name"] != "castle" {
		t.Fatalf("delete = %+v", n)
	}
}

func TestServiceIcons(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	owner := uuid.New()
	f.svc.Create(owner, "base", spawn(location.Overworld))

	icons := f.svc.Icons()
	if len(icons) != 2 || icons[0] != "bed" || icons[1] != "diamond" {
		t.Fatalf("Icons() = %v", icons)
	}
	if n := f.svc.SetIcon(owner, "base", "nether_star"); n.Key != "error-invalid-icon" {
		t.Fatalf("unlisted icon = %q", n.Key)
	}
	if n := f.svc.SetIcon(owner, "base", "DIAMOND"); n.Key != "home-icon-changed" {
		t.Fatalf("SetIcon = %q", n.Key)
	}
	h, err := f.svc.Homes().Get(owner, "base")
	if err != nil || h.Icon != "diamond" {
		t.Fatalf("icon = %q, %v", h.Icon, err)
	}
}

func TestServiceListAndInfo(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	owner := uuid.New()
	if lines := f.svc.List(owner); len(lines) != 1 || lines[0].Key != "home-list-empty" {
		t.Fatalf("empty list = %+v", lines)
	}
	f.svc.Create(owner, "base", spawn(location.Overworld))
	f.conf[home.KeyLimits+"."+owner.String()] = -1

	lines := f.svc.List(owner)
	if len(lines) != 2 || lines[0].Key != "home-list-header" || lines[1].Key != "home-list-entry" {
		t.Fatalf("list = %+v", lines)
	}
	if lines[0].Placeholders["count"] != "1" || lines[0].Placeholders["max"] != "∞" {
		t.Fatalf("header placeholders = %v", lines[0].Placeholders)
	}
	if p := lines[1].Placeholders; p["home_name"] != "base" || p["x"] != "10.5" || p["y"] != "64.0" {
		t.Fatalf("entry placeholders = %v", p)
	}

	info := f.svc.Info(owner, "base")
	if len(info) != 4 || info[0].Key != "home-info-header" || info[2].Placeholders["z"] != "-3.5" {
		t.Fatalf("info = %+v", info)
	}
	if info := f.svc.Info(owner, "nope"); len(info) != 1 || info[0].Key != "error-home-not-found" {
		t.Fatalf("unknown info = %+v", info)
	}
}

func TestServiceIsAdmin(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	listed := uuid.MustParse("0f1e2d3c-4b5a-6978-8796-a5b4c3d2e1f0")
	cases := []struct {
		id   uuid.UUID
		name string
		want bool
	}{
		{uuid.New(), "steve", true},
		{listed, "Alex", true},
		{uuid.New(), "Alex", false},
	}
	for _, c := range cases {
		if got := f.svc.IsAdmin(c.id, c.name); got != c.want {
			t.Fatalf("IsAdmin(%v, %q) = %v, want %v", c.id, c.name, got, c.want)
		}
	}
}

func TestLimitString(t *testing.T) {
	t.Parallel()

	if LimitString(home.Unlimited) != "∞" || LimitString(4) != "4" {
		t.Fatalf("unexpected limit strings")
	}
}

func TestStatsPlaceholders(t *testing.T) {
	t.Parallel()

	p := StatsPlaceholders(teleport.MetricsSnapshot{
		Requested: 5,
		Completed: 2,
		Failed:    1,
		Cancelled: map[teleport.Reason]uint64{teleport.ReasonMove: 1, teleport.ReasonManual: 1},
	})
	want := map[string]string{"requested": "5", "completed": "2", "failed": "1", "cancelled": "2", "move": "1", "damage": "0", "manual": "1"}
	for k, v := range want {
		if p[k] != v {
			t.Errorf("%s = %q, want %q", k, p[k], v)
		}
	}
}
