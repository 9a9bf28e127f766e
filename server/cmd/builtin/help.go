package builtin

import (
	"slices"
	"strings"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/world"
)

type helpCommand struct {
	Command cmd.Optional[string] `cmd:"command"`
}

func newHelpCommand() cmd.Command {
	return cmd.New("help", "Shows the commands you can run.", []string{"?"}, helpCommand{})
}

func (h helpCommand) Run(src cmd.Source, o *cmd.Output, _ *world.Tx) {
	if name, ok := h.Command.Load(); ok {
		usage(src, o, strings.ToLower(strings.TrimPrefix(name, "/")))
		return
	}
	var commands []cmd.Command
	for alias, command := range cmd.Commands() {
		if command.Name() == alias && len(command.Runnables(src)) != 0 {
			commands = append(commands, command)
		}
	}
	slices.SortFunc(commands, func(a, b cmd.Command) int {
		return strings.Compare(a.Name(), b.Name())
	})
	o.Printf("Commands (%d):", len(commands))
	for _, command := range commands {
		o.Printf("/%s - %s", command.Name(), command.Description())
	}
}

// usage prints the description, aliases and usage lines of a command.
func usage(src cmd.Source, o *cmd.Output, name string) {
	command, ok := cmd.ByAlias(name)
	if !ok || len(command.Runnables(src)) == 0 {
		o.Errorf("Unknown command: %s.", name)
		return
	}
	o.Print(command.Description())
	if aliases := command.Aliases(); len(aliases) != 0 {
		o.Printf("Aliases: %s", strings.Join(aliases, ", "))
	}
	for _, line := range strings.Split(command.Usage(), "\n") {
		o.Print(line)
	}
}
