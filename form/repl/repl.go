// Package repl drives a [form.Controller] from typed command lines.
package repl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/twipi/bfhl/bfhl"
	"github.com/twipi/bfhl/form"
	"github.com/twipi/bfhl/internal/cmdline"
)

// ErrQuit is returned by [Shell.Exec] when the user asked to leave.
var ErrQuit = errors.New("quit")

// Usage describes the commands understood by [Shell].
const Usage = `commands:
  submit <json>    send JSON such as {"data": ["A", "B", "5"]}
  toggle <label>   tick or untick Numbers, Alphabets or "Highest Alphabet"
  filters          list the filters
  show             print the filtered response
  help             print this message
  quit             leave`

// Shell executes command lines against a controller.
type Shell struct {
	ctrl *form.Controller
}

// NewShell creates a new [Shell].
func NewShell(ctrl *form.Controller) *Shell {
	return &Shell{ctrl: ctrl}
}

// Exec runs one command line and returns what should be printed.
func (s *Shell) Exec(ctx context.Context, line string) (string, error) {
	cmd, tail, err := cmdline.PopFirstWord(line)
	if err != nil {
		return "", err
	}

	switch strings.ToLower(cmd) {
	case "":
		return "", nil
	case "submit":
		return s.submit(ctx, tail)
	case "toggle":
		return s.toggle(tail)
	case "filters":
		return s.filters(), nil
	case "show":
		return s.show(), nil
	case "help", "?":
		return Usage, nil
	case "quit", "exit":
		return "", ErrQuit
	default:
		return "", fmt.Errorf("unknown command %q, try help", cmd)
	}
}

func (s *Shell) submit(ctx context.Context, raw string) (string, error) {
	// Failures are logged by the controller; the user only sees its message.
	if _, err := s.ctrl.Submit(ctx, raw); err != nil {
		if errors.Is(err, form.ErrStale) {
			return "", nil
		}
		return s.ctrl.State().Error, nil
	}
	return s.show(), nil
}

func (s *Shell) toggle(tail string) (string, error) {
	words, err := cmdline.Split(tail)
	if err != nil {
		return "", err
	}

	label, ok := bfhl.ParseLabel(strings.Join(words, " "))
	if !ok {
		return "", fmt.Errorf("unknown filter %q", strings.Join(words, " "))
	}

	s.ctrl.ToggleFilter(label)
	return s.filters(), nil
}

func (s *Shell) filters() string {
	sel := s.ctrl.State().Selection

	var b strings.Builder
	for i, label := range bfhl.Labels {
		if i > 0 {
			b.WriteByte('\n')
		}
		if sel.Has(label) {
			b.WriteString("[x] ")
		} else {
			b.WriteString("[ ] ")
		}
		b.WriteString(string(label))
	}
	return b.String()
}

func (s *Shell) show() string {
	view := s.ctrl.View()
	if view == nil {
		return "no response yet"
	}
	return view.Indent()
}
