// Package handlers exposes the player over a line-oriented command
// console. One session per console.
package handlers

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/arviel/mediactl/internal/config"
	"github.com/arviel/mediactl/internal/media"
	"github.com/arviel/mediactl/internal/player"
	"github.com/arviel/mediactl/internal/repository"
	"github.com/arviel/mediactl/internal/resolve"
)

const consoleSession = "console"

type Console struct {
	cfg      *config.Config
	repo     *repository.Repo
	pm       *player.Manager
	resolver *resolve.Resolver
	log      *slog.Logger

	in  io.Reader
	out io.Writer
}

func NewConsole(cfg *config.Config, repo *repository.Repo, resolver *resolve.Resolver, in io.Reader, out io.Writer, log *slog.Logger) *Console {
	if log == nil {
		log = slog.Default()
	}
	return &Console{
		cfg:      cfg,
		repo:     repo,
		pm:       player.NewManager(),
		resolver: resolver,
		log:      log,
		in:       in,
		out:      out,
	}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

// Run reads commands until EOF, quit, or context cancellation.
func (c *Console) Run(ctx context.Context) error {
	p := c.pm.Get(c.cfg, c.repo, consoleSession, c.log)
	defer c.pm.CloseAll()

	c.watchEvents(p)

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			if fields[0] == "quit" || fields[0] == "exit" {
				return nil
			}
			c.dispatch(ctx, p, fields[0], fields[1:])
		}
	}
}

// watchEvents echoes player state transitions to the console.
func (c *Console) watchEvents(p *player.Player) {
	echo := []media.EventType{
		media.EventSourceChange,
		media.EventMediaTypeChange,
		media.EventProviderLoaderChange,
		media.EventStreamTypeChange,
		media.EventDurationChange,
		media.EventPlayFail,
		media.EventFullscreenError,
	}
	for _, t := range echo {
		t := t
		p.Events().Subscribe(t, func(ev media.Event) {
			if ev.Err != nil {
				c.printf("! %s: %v", t, ev.Err)
				return
			}
			c.printf("* %s", t)
		})
	}
}
