package plugin

import (
	"slices"
	"testing"
	"time"

	"github.com/df-mc/dragonfly/server/event"
	"github.com/df-mc/dragonfly/server/player"
)

type recordingHandler struct {
	player.NopHandler
	name   string
	calls  *[]string
	cancel bool
}

func (h recordingHandler) HandleChat(ctx *player.Context, _ *string) {
	*h.calls = append(*h.calls, h.name+":chat")
	if h.cancel {
		ctx.Cancel()
	}
}

func (h recordingHandler) HandleQuit(*player.Player) {
	*h.calls = append(*h.calls, h.name+":quit")
}

func (h recordingHandler) HandleJump(*player.Player) {
	*h.calls = append(*h.calls, h.name+":jump")
}

type panickingHandler struct{ player.NopHandler }

func (panickingHandler) HandleQuit(*player.Player) { panic("quit") }

func TestPlayerChainOrder(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t, Config{Enabled: true})
	var calls []string
	var remove func()
	enableWith(t, manager, "homes", func(api *API[testServer, testConfig]) {
		remove = api.Events().OnPlayer(recordingHandler{name: "homes", calls: &calls})
	})
	enableWith(t, manager, "rules", func(api *API[testServer, testConfig]) {
		api.Events().OnPlayer(recordingHandler{name: "rules", calls: &calls})
	})
	h := manager.PlayerHandlerWrap(nil, recordingHandler{name: "base", calls: &calls})

	h.HandleQuit(nil)
	h.HandleJump(nil)
	if want := []string{"homes:quit", "rules:quit", "base:quit", "base:jump"}; !slices.Equal(calls, want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}

	calls = nil
	remove()
	remove()
	h.HandleQuit(nil)
	if !slices.Equal(calls, []string{"rules:quit", "base:quit"}) {
		t.Fatalf("calls after remove = %v", calls)
	}

	calls = nil
	if _, err := manager.Disable("rules"); err != nil {
		t.Fatalf("disable: %v", err)
	}
	h.HandleQuit(nil)
	if !slices.Equal(calls, []string{"base:quit"}) {
		t.Fatalf("calls after disable = %v", calls)
	}
}

func TestPlayerChainCancellation(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t, Config{Enabled: true})
	var calls []string
	enableWith(t, manager, "rules", func(api *API[testServer, testConfig]) {
		api.Events().OnPlayer(recordingHandler{name: "rules", calls: &calls, cancel: true})
	})
	enableWith(t, manager, "homes", func(api *API[testServer, testConfig]) {
		api.Events().OnPlayer(recordingHandler{name: "homes", calls: &calls})
	})
	h := manager.PlayerHandlerWrap(nil, recordingHandler{name: "base", calls: &calls})

	msg := "hello"
	h.HandleChat(event.C[*player.Player](nil), &msg)
	if !slices.Equal(calls, []string{"rules:chat"}) {
		t.Fatalf("cancelled chat reached %v", calls)
	}
}

func TestPlayerChainRewrapUsesBase(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t, Config{Enabled: true})
	var calls []string
	enableWith(t, manager, "homes", func(api *API[testServer, testConfig]) {
		api.Events().OnPlayer(recordingHandler{name: "homes", calls: &calls})
	})
	first := manager.PlayerHandlerWrap(nil, recordingHandler{name: "base", calls: &calls})
	second := manager.PlayerHandlerWrap(nil, first)

	second.HandleQuit(nil)
	if !slices.Equal(calls, []string{"homes:quit", "base:quit"}) {
		t.Fatalf("rewrapped chain ran %v", calls)
	}
	if _, ok := manager.PlayerHandlerWrap(nil, nil).(*chain).Handler.(player.NopHandler); !ok {
		t.Fatalf("nil base was not replaced by a no-op handler")
	}
}

func TestPanickingHandlerIsDropped(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t, Config{Enabled: true})
	var calls []string
	broken := enableWith(t, manager, "broken", func(api *API[testServer, testConfig]) {
		api.Events().OnPlayer(panickingHandler{})
	})
	enableWith(t, manager, "homes", func(api *API[testServer, testConfig]) {
		api.Events().OnPlayer(recordingHandler{name: "homes", calls: &calls})
	})
	h := manager.PlayerHandlerWrap(nil, recordingHandler{name: "base", calls: &calls})

	h.HandleQuit(nil)
	if !slices.Equal(calls, []string{"homes:quit", "base:quit"}) {
		t.Fatalf("calls = %v", calls)
	}
	if got := len(manager.events.players.load()); got != 1 {
		t.Fatalf("player chain has %d handlers, want 1", got)
	}
	select {
	case <-broken.closed:
	case <-time.After(2 * time.Second):
		t.Fatalf("panicking plugin was not closed")
	}
}

func TestJoinSubscribers(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t, Config{Enabled: true})
	var joins []string
	enableWith(t, manager, "homes", func(api *API[testServer, testConfig]) {
		api.Events().OnJoin(func(*player.Player) { joins = append(joins, "homes") })
	})
	enableWith(t, manager, "rules", func(api *API[testServer, testConfig]) {
		api.Events().OnJoin(func(*player.Player) { panic("broken") })
	})

	manager.PlayerJoined(nil)
	manager.PlayerJoined(nil)
	if !slices.Equal(joins, []string{"homes", "homes"}) {
		t.Fatalf("joins = %v", joins)
	}
	if subs := manager.events.joins.load(); len(subs) != 1 || subs[0].owner != "homes#1" {
		t.Fatalf("panicking subscriber was not cleared: %v", subs)
	}
}

func TestClearRemovesOwnSubscriptions(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t, Config{Enabled: true})
	var events Events
	enableWith(t, manager, "homes", func(api *API[testServer, testConfig]) {
		events = api.Events()
		events.OnPlayer(player.NopHandler{})
		events.OnJoin(func(*player.Player) {})
	})
	enableWith(t, manager, "rules", func(api *API[testServer, testConfig]) {
		api.Events().OnPlayer(player.NopHandler{})
	})

	events.Clear()
	if got := len(manager.events.players.load()); got != 1 {
		t.Fatalf("player chain has %d handlers, want 1", got)
	}
	if got := len(manager.events.joins.load()); got != 0 {
		t.Fatalf("join chain has %d handlers, want 0", got)
	}
}
