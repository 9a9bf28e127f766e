package rules

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/dm-vev/homes/server/console"
	"github.com/google/uuid"
)

type executed struct {
	src  cmd.Source
	line string
}

type testHost struct {
	dir      string
	known    bool
	commands []cmd.Command
	executed []executed
}

func (h *testHost) Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
func (h *testHost) DataPath(name string) (string, error)            { return filepath.Join(h.dir, name), nil }
func (h *testHost) Go(fn func(context.Context))                     { fn(context.Background()) }
func (h *testHost) RegisterCommand(c cmd.Command)                   { h.commands = append(h.commands, c) }
func (h *testHost) PlayerByName(string) (*world.EntityHandle, bool) { return nil, false }
func (h *testHost) ExecuteCommand(src cmd.Source, line string) bool {
	h.executed = append(h.executed, executed{src: src, line: line})
	return h.known
}

func newPlugin(t *testing.T, config string) (*Plugin, *testHost) {
	t.Helper()
	h := &testHost{dir: t.TempDir(), known: true}
	if config != "" {
		if err := os.WriteFile(filepath.Join(h.dir, "config.yml"), []byte(config), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	p, err := setup(h)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	return p, h
}

func TestSetupWritesDefaults(t *testing.T) {
	t.Parallel()

	p, h := newPlugin(t, "")
	for _, name := range []string{"config.yml", "accepted.toml"} {
		if _, err := os.Stat(filepath.Join(h.dir, name)); err != nil {
			t.Fatalf("%s not written: %v", name, err)
		}
	}
	if len(h.commands) != 1 || h.commands[0].Name() != "rules" {
		t.Fatalf("registered commands = %v", h.commands)
	}
	lines := p.Lines()
	if len(lines) != 3 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.Contains(lines[0], "1) Be respectful to other players.") {
		t.Fatalf("first line = %q", lines[0])
	}
	if p.Rules()[1].Icon != "flint_and_steel" {
		t.Fatalf("rules = %+v", p.Rules())
	}
}

func TestConfiguredRules(t *testing.T) {
	t.Parallel()

	p, _ := newPlugin(t, `rule-format: "#{num} <gold>{text}</gold>"
rules:
  - text: First
  - text: "  "
  - text: Second
    icon: compass
`)
	lines := p.Lines()
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.Contains(lines[1], "#2") || !strings.Contains(lines[1], "Second") || strings.Contains(lines[1], "<gold>") {
		t.Fatalf("second line = %q", lines[1])
	}
	if body := p.body(); !strings.Contains(body, "First") {
		t.Fatalf("body = %q", body)
	}

	buttons := p.View().Buttons()
	if len(buttons) != 3 {
		t.Fatalf("view buttons = %+v", buttons)
	}
	if buttons[0].Image != "" || buttons[1].Image != "textures/items/compass" || buttons[2].Image != "textures/ui/cancel" {
		t.Fatalf("view images = %q, %q, %q", buttons[0].Image, buttons[1].Image, buttons[2].Image)
	}
}

func TestIconTexture(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                         "",
		"book":                     "textures/items/book",
		" Minecraft:Compass ":      "textures/items/compass",
		"textures/blocks/tnt_side": "textures/blocks/tnt_side",
	}
	for in, want := range cases {
		if got := iconTexture(in); got != want {
			t.Errorf("iconTexture(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRunActions(t *testing.T) {
	t.Parallel()

	p, h := newPlugin(t, "")
	id := uuid.MustParse("0f1e2d3c-4b5a-6978-8796-a5b4c3d2e1f0")
	var reasons []string
	disconnect := func(a ...any) {
		for _, v := range a {
			reasons = append(reasons, v.(string))
		}
	}

	p.run("command:say welcome {name} ({uuid})", id, "Steve", disconnect)
	if len(h.executed) != 1 {
		t.Fatalf("executed = %+v", h.executed)
	}
	if got := h.executed[0].line; got != "say welcome Steve (0f1e2d3c-4b5a-6978-8796-a5b4c3d2e1f0)" {
		t.Fatalf("command line = %q", got)
	}
	if _, ok := h.executed[0].src.(*console.Source); !ok {
		t.Fatalf("command source = %T, want console", h.executed[0].src)
	}

	p.run("disconnect:<red>Bye {name}</red>", id, "Steve", disconnect)
	if len(reasons) != 1 || !strings.Contains(reasons[0], "Bye Steve") || strings.Contains(reasons[0], "<red>") {
		t.Fatalf("disconnect reasons = %q", reasons)
	}

	p.run("none", id, "Steve", disconnect)
	p.run("teleport:spawn", id, "Steve", disconnect)
	if len(h.executed) != 1 || len(reasons) != 1 {
		t.Fatalf("no-op actions ran: %+v %q", h.executed, reasons)
	}
}

func TestTarget(t *testing.T) {
	t.Parallel()

	p, _ := newPlugin(t, "")
	id := uuid.New()
	if got, ok := p.target(" " + id.String() + " "); !ok || got != id {
		t.Fatalf("target(uuid) = %v, %v", got, ok)
	}
	for _, s := range []string{"", "Offline"} {
		if _, ok := p.target(s); ok {
			t.Fatalf("target(%q) resolved", s)
		}
	}
}

func TestViewWithoutRules(t *testing.T) {
	t.Parallel()

	p, _ := newPlugin(t, "rules: []\n")
	m := p.View()
	if !strings.Contains(m.Body(), "No rules are configured.") {
		t.Fatalf("body = %q", m.Body())
	}
	if buttons := m.Buttons(); len(buttons) != 1 || buttons[0].Image != "textures/ui/cancel" {
		t.Fatalf("buttons = %+v", buttons)
	}
}
