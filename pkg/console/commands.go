package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/NERVsystems/osmsurvey/pkg/survey"
)

const help = `commands:
  list          list drawn buildings
  tag N         tag building N
  where         show the map centre
  export FILE   write drawn buildings as GeoJSON
  help          show this help
  quit          stop the survey
`

// Commands reads console commands and turns them into map interactions on
// the survey loop.
type Commands struct {
	console *Console
	surface *Surface
	sched   survey.Scheduler
	logger  *slog.Logger
}

// NewCommands creates a dispatcher. Clicks are posted to sched.
func NewCommands(c *Console, s *Surface, sched survey.Scheduler, logger *slog.Logger) *Commands {
	if logger == nil {
		logger = slog.Default()
	}
	return &Commands{console: c, surface: s, sched: sched, logger: logger.With("component", "console")}
}

// Run dispatches commands until quit, end of input or ctx is done.
func (c *Commands) Run(ctx context.Context) error {
	c.console.Printf("%s", help)
	for {
		line, ok := c.console.ReadLine(ctx)
		if !ok {
			return nil
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "list", "ls":
			c.list()
		case "tag":
			if len(fields) != 2 {
				c.console.Printf("usage: tag N\n")
				continue
			}
			if err := c.tag(ctx, fields[1]); err != nil {
				c.console.Printf("%v\n", err)
			}
		case "where":
			c.where()
		case "export":
			if len(fields) != 2 {
				c.console.Printf("usage: export FILE\n")
				continue
			}
			if err := c.export(fields[1]); err != nil {
				c.logger.Error("export failed", "path", fields[1], "error", err)
				c.console.Printf("export failed: %v\n", err)
			}
		case "help", "?":
			c.console.Printf("%s", help)
		case "quit", "exit":
			return nil
		default:
			c.console.Printf("unknown command %q, try help\n", fields[0])
		}
	}
}

func (c *Commands) list() {
	shapes := c.surface.Shapes()
	if len(shapes) == 0 {
		c.console.Printf("no buildings drawn yet\n")
		return
	}
	for _, s := range shapes {
		dist := "?"
		if !math.IsInf(s.Distance, 1) {
			dist = fmt.Sprintf("%.0f m", s.Distance)
		}
		c.console.Printf("%4d  way %-12d %-16s %s  %s  %s\n",
			s.ID, s.WayID, s.Style, s.Center, mgrs(s.Center), dist)
	}
}

// tag clicks shape arg on the loop and waits for the click to be handled,
// so the questionnaire owns the input meanwhile.
func (c *Commands) tag(ctx context.Context, arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("not a building number: %q", arg)
	}
	click, ok := c.surface.ClickHandler(survey.ShapeID(n))
	if !ok {
		return fmt.Errorf("no building %d", n)
	}

	handled := make(chan struct{})
	c.sched.Post(func() {
		defer close(handled)
		click()
	})

	select {
	case <-handled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Commands) where() {
	center, zoom := c.surface.View()
	if center.IsNowhere() {
		c.console.Printf("no position yet\n")
		return
	}
	c.console.Printf("%s  %s  zoom %d\n", center, mgrs(center), zoom)
}

func (c *Commands) export(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if err := c.surface.WriteGeoJSON(f); err != nil {
		return err
	}
	c.console.Printf("wrote %d buildings to %s\n", len(c.surface.Shapes()), path)
	return nil
}
