package plugin

import (
	"errors"
	"testing"
)

func TestCatalogEnableAll(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t, Config{Enabled: true, Disabled: []string{"rules"}})
	catalog := NewCatalog(manager)
	homes := &closingPlugin{name: "homes", closed: make(chan struct{})}
	rules := &closingPlugin{name: "rules", closed: make(chan struct{})}
	catalog.Add("homes", factoryFor(homes))
	catalog.Add("rules", factoryFor(rules))
	catalog.Add("Homes", factoryFor(homes))

	if names := catalog.Names(); len(names) != 2 || names[0] != "homes" || names[1] != "rules" {
		t.Fatalf("Names() = %v", names)
	}
	if err := catalog.EnableAll(); err != nil {
		t.Fatalf("EnableAll() error = %v", err)
	}
	if _, ok := catalog.Plugin("homes"); !ok {
		t.Fatalf("homes not enabled")
	}
	if _, ok := catalog.Plugin("rules"); ok {
		t.Fatalf("rules enabled despite configuration")
	}

	if _, err := catalog.Disable("homes"); err != nil {
		t.Fatalf("Disable() error = %v", err)
	}
	if info, err := catalog.EnableNamed(" HOMES "); err != nil || info.Name != "homes" {
		t.Fatalf("EnableNamed() = %+v, %v", info, err)
	}
	if _, err := catalog.EnableNamed("chat"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("EnableNamed(unknown) error = %v", err)
	}
}

func TestCatalogEnableAllJoinsErrors(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog(newTestManager(t, Config{Enabled: true}))
	boom := errors.New("boom")
	catalog.Add("broken", func(*API[testServer, testConfig]) (Plugin, error) { return nil, boom })
	catalog.Add("fine", factoryFor(&closingPlugin{name: "fine", closed: make(chan struct{})}))

	if err := catalog.EnableAll(); !errors.Is(err, boom) {
		t.Fatalf("EnableAll() error = %v, want %v", err, boom)
	}
	if _, ok := catalog.Plugin("fine"); !ok {
		t.Fatalf("a failing plugin stopped the ones after it")
	}
}
