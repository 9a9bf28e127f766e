package builtin

import (
	"strings"
	"testing"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/dm-vev/homes/server/plugin"
)

type fakeExtensions struct {
	enabled  map[string]plugin.Info
	names    []string
	disabled []string
}

func (f *fakeExtensions) Enabled() bool { return true }
func (f *fakeExtensions) Names() []string {
	return append([]string(nil), f.names...)
}
func (f *fakeExtensions) Infos() []plugin.Info {
	infos := make([]plugin.Info, 0, len(f.enabled))
	for _, info := range f.enabled {
		infos = append(infos, info)
	}
	return infos
}
func (f *fakeExtensions) EnableNamed(name string) (plugin.Info, error) {
	if name != "rules" {
		return plugin.Info{}, plugin.ErrNotFound
	}
	info := plugin.Info{Name: "rules", Version: "1.1.0"}
	f.enabled[name] = info
	return info, nil
}
func (f *fakeExtensions) Disable(name string) (plugin.Info, error) {
	info, ok := f.enabled[name]
	if !ok {
		return plugin.Info{}, plugin.ErrNotFound
	}
	delete(f.enabled, name)
	f.disabled = append(f.disabled, name)
	return info, nil
}
func (f *fakeExtensions) Reload(name string) (plugin.Info, error) {
	info, ok := f.enabled[name]
	if !ok {
		return plugin.Info{}, plugin.ErrNotFound
	}
	return info, nil
}

func messages(o *cmd.Output) []string {
	var lines []string
	for _, m := range o.Messages() {
		lines = append(lines, m.String())
	}
	return lines
}

func TestExtensionList(t *testing.T) {
	t.Parallel()

	ext := &fakeExtensions{
		enabled: map[string]plugin.Info{"homes": {Name: "homes", Version: "1.4.0"}},
		names:   []string{"rules", "homes"},
	}
	o := &cmd.Output{}
	extensionListCommand{ext: ext}.Run(nil, o, nil)

	got := messages(o)
	want := []string{"homes v1.4.0 (enabled)", "rules (disabled)"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("list = %q, want %q", got, want)
	}
}

func TestExtensionLifecycle(t *testing.T) {
	t.Parallel()

	ext := &fakeExtensions{enabled: map[string]plugin.Info{}, names: []string{"homes", "rules"}}

	o := &cmd.Output{}
	extensionEnableCommand{Name: "rules", ext: ext}.Run(nil, o, nil)
	if got := messages(o); len(got) != 1 || got[0] != "Enabled rules v1.1.0." {
		t.Fatalf("enable output = %q", got)
	}

	o = &cmd.Output{}
	extensionReloadCommand{Name: " rules ", ext: ext}.Run(nil, o, nil)
	if got := messages(o); len(got) != 1 || got[0] != "Reloaded rules v1.1.0." {
		t.Fatalf("reload output = %q", got)
	}

	o = &cmd.Output{}
	extensionDisableCommand{Name: "rules", ext: ext}.Run(nil, o, nil)
	if len(ext.disabled) != 1 || o.ErrorCount() != 0 {
		t.Fatalf("disable did not run: %v %v", ext.disabled, o.Errors())
	}

	o = &cmd.Output{}
	extensionDisableCommand{Name: "rules", ext: ext}.Run(nil, o, nil)
	if o.ErrorCount() != 1 || !strings.Contains(o.Errors()[0].Error(), plugin.ErrNotFound.Error()) {
		t.Fatalf("second disable errors = %v", o.Errors())
	}
}

func TestConsoleOnly(t *testing.T) {
	t.Parallel()

	if !(stopCommand{}).Allow(nil) {
		t.Fatalf("console source refused")
	}
}
