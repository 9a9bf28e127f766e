package console

import (
	"log/slog"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/go-gl/mathgl/mgl64"
)

// Source is the cmd.Source of commands run from the console. Messages are
// logged at info level and errors at error level.
type Source struct {
	log *slog.Logger
}

// NewSource returns a Source writing to log.
func NewSource(log *slog.Logger) *Source {
	if log == nil {
		log = slog.Default()
	}
	return &Source{log: log}
}

func (*Source) Name() string         { return "Console" }
func (*Source) Position() mgl64.Vec3 { return mgl64.Vec3{} }

func (s *Source) SendCommandOutput(o *cmd.Output) {
	for _, m := range o.Messages() {
		s.log.Info(m.String())
	}
	for _, err := range o.Errors() {
		s.log.Error(err.Error())
	}
}

var _ cmd.Source = (*Source)(nil)
