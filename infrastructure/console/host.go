// Package console is a line-oriented reference host: every stdin line is one
// group message, commands use the configured prefix, and mentions are typed
// as inline [CQ:at,qq=<sid>] markup. Useful for local runs; a production
// deployment replaces it with a platform adapter implementing contract.Host.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/gookit/color"

	"mentionbot/contract"
	"mentionbot/domain"
)

type command struct {
	perm contract.Permission
	fn   contract.CommandFunc
}

type Host struct {
	mu       sync.Mutex
	log      *slog.Logger
	cfg      Config
	dataRoot string
	prefix   string
	commands map[string]command
	onMsg    []contract.MessageFunc
	in       io.Reader
	out      io.Writer
}

func NewHost(cfg Config, dataRoot, prefix string, log *slog.Logger) *Host {
	return &Host{
		log:      log,
		cfg:      cfg,
		dataRoot: dataRoot,
		prefix:   prefix,
		commands: make(map[string]command),
		in:       os.Stdin,
		out:      os.Stdout,
	}
}

func (h *Host) RegisterCommand(name string, perm contract.Permission, fn contract.CommandFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.commands[name] = command{perm: perm, fn: fn}
}

func (h *Host) OnGroupMessage(fn contract.MessageFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onMsg = append(h.onMsg, fn)
}

// DataDir creates (when needed) and returns the per-plugin directory.
func (h *Host) DataDir(plugin string) (string, error) {
	dir := filepath.Join(h.dataRoot, plugin)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// Run reads stdin until EOF or cancellation, dispatching each non-empty
// line. Implements contract.Worker so the supervisor drives it. Reading
// happens on its own goroutine: a blocked stdin read must not delay
// shutdown, so on cancel Run returns immediately and the reader exits at
// the next line or EOF.
func (h *Host) Run(ctx context.Context) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(h.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
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
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			h.dispatch(ctx, line)
		}
	}
}

// dispatch routes one line: command invocations go to the registered
// handler, everything else to the group-message hooks. Handler errors are
// resolved here into plain replies, never crashes.
func (h *Host) dispatch(ctx context.Context, line string) {
	ev := parseEvent(h.cfg.Group, line)

	if strings.HasPrefix(line, h.prefix) {
		fields := strings.Fields(strings.TrimPrefix(line, h.prefix))
		if len(fields) == 0 {
			return
		}
		name := fields[0]
		// Mentions ride along as inline markup on this host; the handler
		// reads them from the event segments, not from the argument.
		arg := domain.StripMentionMarkup(strings.Join(fields[1:], " "))

		h.mu.Lock()
		cmd, ok := h.commands[name]
		h.mu.Unlock()
		if !ok {
			h.reply("Unknown command: " + name)
			return
		}
		if cmd.perm == contract.PermissionAdmin && !h.cfg.Admin {
			h.reply("Admin only.")
			return
		}

		reply, err := cmd.fn(ctx, ev, arg)
		if err != nil {
			h.log.Error("Command failed", "command", name, "err", err)
			h.reply("Error: " + err.Error())
			return
		}
		if reply != "" {
			h.reply(reply)
		}
		return
	}

	h.mu.Lock()
	hooks := append([]contract.MessageFunc(nil), h.onMsg...)
	h.mu.Unlock()
	for _, fn := range hooks {
		chain, err := fn(ctx, ev)
		if err != nil {
			h.log.Error("Message hook failed", "err", err)
			h.reply("Error: " + err.Error())
			continue
		}
		if len(chain) > 0 {
			h.emit(chain)
		}
	}
}

var atMarkup = regexp.MustCompile(`\[CQ:at,qq=([^\]]+)\]`)

// parseEvent splits a line into text and mention segments.
func parseEvent(group, line string) consoleEvent {
	var segments []domain.Segment
	last := 0
	for _, loc := range atMarkup.FindAllStringSubmatchIndex(line, -1) {
		if loc[0] > last {
			segments = append(segments, domain.Text{Content: line[last:loc[0]]})
		}
		segments = append(segments, domain.Mention{SID: line[loc[2]:loc[3]]})
		last = loc[1]
	}
	if last < len(line) {
		segments = append(segments, domain.Text{Content: line[last:]})
	}
	return consoleEvent{group: group, segments: segments, raw: line}
}

// emit renders an outgoing segment chain to the console.
func (h *Host) emit(chain []domain.Segment) {
	var b strings.Builder
	for _, seg := range chain {
		switch s := seg.(type) {
		case domain.Mention:
			b.WriteString("@" + s.SID)
		case domain.Text:
			b.WriteString(s.Content)
		}
	}
	h.reply(b.String())
}

func (h *Host) reply(text string) {
	if h.cfg.Colours {
		text = color.New(color.FgGreen).Render(text)
	}
	fmt.Fprintln(h.out, text)
}

type consoleEvent struct {
	group    string
	segments []domain.Segment
	raw      string
}

func (e consoleEvent) GroupID() string            { return e.group }
func (e consoleEvent) Segments() []domain.Segment { return e.segments }
func (e consoleEvent) Raw() string                { return e.raw }
