package builtin

import (
	"slices"
	"strings"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/world"
)

type extensionListCommand struct {
	consoleOnly
	List cmd.SubCommand `cmd:"list"`
	ext  Extensions
}

type extensionEnableCommand struct {
	consoleOnly
	Enable cmd.SubCommand `cmd:"enable"`
	Name   string         `cmd:"name"`
	ext    Extensions
}

type extensionDisableCommand struct {
	consoleOnly
	Disable cmd.SubCommand `cmd:"disable"`
	Name    string         `cmd:"name"`
	ext     Extensions
}

type extensionReloadCommand struct {
	consoleOnly
	Reload cmd.SubCommand `cmd:"reload"`
	Name   string         `cmd:"name"`
	ext    Extensions
}

func newExtensionCommand(ext Extensions) cmd.Command {
	return cmd.New(
		"extension",
		"Manages the extensions built into the server.",
		[]string{"ext", "plugins"},
		extensionListCommand{ext: ext},
		extensionEnableCommand{ext: ext},
		extensionDisableCommand{ext: ext},
		extensionReloadCommand{ext: ext},
	)
}

func (e extensionListCommand) Run(_ cmd.Source, o *cmd.Output, _ *world.Tx) {
	if !e.ext.Enabled() {
		o.Print("Extensions are disabled.")
		return
	}
	enabled := make(map[string]string)
	for _, info := range e.ext.Infos() {
		enabled[strings.ToLower(info.Name)] = describe(info)
	}
	names := e.ext.Names()
	slices.SortFunc(names, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	for _, name := range names {
		if d, ok := enabled[strings.ToLower(name)]; ok {
			o.Printf("%s (enabled)", d)
			continue
		}
		o.Printf("%s (disabled)", name)
	}
}

func (e extensionEnableCommand) Run(_ cmd.Source, o *cmd.Output, _ *world.Tx) {
	info, err := e.ext.EnableNamed(e.Name)
	if err != nil {
		o.Error(err)
		return
	}
	o.Printf("Enabled %s.", describe(info))
}

func (e extensionDisableCommand) Run(_ cmd.Source, o *cmd.Output, _ *world.Tx) {
	info, err := e.ext.Disable(strings.TrimSpace(e.Name))
	if err != nil {
		o.Error(err)
		return
	}
	o.Printf("Disabled %s.", info.Name)
}

func (e extensionReloadCommand) Run(_ cmd.Source, o *cmd.Output, _ *world.Tx) {
	info, err := e.ext.Reload(strings.TrimSpace(e.Name))
	if err != nil {
		o.Error(err)
		return
	}
	o.Printf("Reloaded %s.", describe(info))
}
