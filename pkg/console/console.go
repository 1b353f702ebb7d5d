// Package console drives a survey from a terminal: prompts and notices are
// lines of text and the map is an in-memory list of shapes.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// DefaultCancelToken aborts the questionnaire when entered as an answer.
const DefaultCancelToken = "/cancel"

// Console reads lines from one input shared by the command dispatcher and
// the questionnaire. Only one of them reads at a time: a command that
// starts a session waits for the session to finish.
type Console struct {
	out         io.Writer
	outMu       sync.Mutex
	lines       chan string
	done        chan struct{}
	closeOnce   sync.Once
	cancelToken string
}

// New starts reading lines from in. Answers equal to cancelToken cancel the
// questionnaire, as does the end of input.
func New(in io.Reader, out io.Writer, cancelToken string) *Console {
	if cancelToken == "" {
		cancelToken = DefaultCancelToken
	}
	c := &Console{
		out:         out,
		lines:       make(chan string),
		done:        make(chan struct{}),
		cancelToken: cancelToken,
	}
	go c.read(in)
	return c
}

func (c *Console) read(in io.Reader) {
	defer close(c.lines)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case c.lines <- scanner.Text():
		case <-c.done:
			return
		}
	}
}

// Close unblocks pending reads. Further reads report end of input.
func (c *Console) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// ReadLine returns the next input line; ok is false at end of input, after
// Close or when ctx is done.
func (c *Console) ReadLine(ctx context.Context) (line string, ok bool) {
	select {
	case line, ok = <-c.lines:
		return line, ok
	case <-c.done:
		return "", false
	case <-ctx.Done():
		return "", false
	}
}

// Ask implements address.Prompter.
func (c *Console) Ask(label string) (string, bool) {
	c.Printf("%s ", label)
	line, ok := c.ReadLine(context.Background())
	if !ok {
		c.Printf("\n")
		return "", false
	}
	if strings.TrimSpace(line) == c.cancelToken {
		return "", false
	}
	return line, true
}

// Notify implements survey.Notifier.
func (c *Console) Notify(msg string) {
	c.Printf("* %s\n", msg)
}

// Printf writes to the console output.
func (c *Console) Printf(format string, args ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}
