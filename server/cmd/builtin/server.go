package builtin

import (
	"slices"
	"strings"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/world"
)

type listCommand struct {
	srv Server
}

func newListCommand(srv Server) cmd.Command {
	return cmd.New("list", "Lists the players online.", []string{"players", "online"}, listCommand{srv: srv})
}

func (l listCommand) Run(_ cmd.Source, o *cmd.Output, tx *world.Tx) {
	var names []string
	for p := range l.srv.Players(tx) {
		names = append(names, p.Name())
	}
	slices.SortFunc(names, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})

	o.Printf("Online (%d/%d): %s", len(names), l.srv.MaxPlayerCount(), strings.Join(names, ", "))
}

type stopCommand struct {
	consoleOnly
	srv Server
}

func newStopCommand(srv Server) cmd.Command {
	return cmd.New("stop", "Saves all homes and stops the server.", nil, stopCommand{srv: srv})
}

func (s stopCommand) Run(_ cmd.Source, o *cmd.Output, _ *world.Tx) {
	o.Print("Stopping server...")
	// Close waits for the world transactions to finish, including this one.
	go func() { _ = s.srv.Close() }()
}
