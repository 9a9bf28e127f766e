// Package console runs commands typed into the server's standard input.
package console

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/df-mc/dragonfly/server/cmd"
)

// Executor runs commandLine as source and reports if the command exists.
// *dfhost.Host implements it.
type Executor interface {
	ExecuteCommand(source cmd.Source, commandLine string) bool
}

// Console feeds lines read from its input to an Executor, one command per
// line.
type Console struct {
	exec Executor
	log  *slog.Logger
	in   io.Reader
}

// New returns a Console reading from os.Stdin. Command output and unknown
// commands are written to log.
func New(exec Executor, log *slog.Logger) *Console {
	if log == nil {
		log = slog.Default()
	}
	return &Console{exec: exec, log: log, in: os.Stdin}
}

// WithReader makes c read from r instead of os.Stdin.
func (c *Console) WithReader(r io.Reader) *Console {
	if r != nil {
		c.in = r
	}
	return c
}

// Run executes lines until ctx is cancelled or the input ends. Blank lines
// are skipped.
func (c *Console) Run(ctx context.Context) {
	lines := make(chan string)
	go c.scan(ctx, lines)

	src := NewSource(c.log)
	for {
		var line string
		select {
		case <-ctx.Done():
			return
		case l, ok := <-lines:
			if !ok {
				return
			}
			line = l
		}
		if ctx.Err() != nil {
			return
		}
		if c.exec.ExecuteCommand(src, line) {
			continue
		}
		name, _, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
		c.log.Warn("Unknown command.", "command", name)
	}
}

// scan sends the non-blank lines of the input to lines and closes it once the
// input ends.
func (c *Console) scan(ctx context.Context, lines chan<- string) {
	defer close(lines)
	s := bufio.NewScanner(c.in)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		select {
		case lines <- line:
		case <-ctx.Done():
			return
		}
	}
	if err := s.Err(); err != nil {
		c.log.Error("Read console input.", "error", err)
	}
}
