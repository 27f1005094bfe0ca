// Package editor is an interactive, line based editor of a cryptofund session.
package editor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/etnz/cryptofund"
	"github.com/etnz/cryptofund/renderer"
	"github.com/shopspring/decimal"
)

// ErrBye is returned by Exec when the user asks to leave.
var ErrBye = errors.New("bye")

// Editor runs editing commands against a session.
type Editor struct {
	w        io.Writer
	r        *bufio.Reader
	Session  *cryptofund.Session
	Currency string
	// Print writes a markdown output, defaults to printing it as is.
	Print func(w io.Writer, md string)
}

// New creates an editor reading commands from r and writing to w.
func New(w io.Writer, r io.Reader, s *cryptofund.Session, currency string) *Editor {
	return &Editor{
		w:        w,
		r:        bufio.NewReader(r),
		Session:  s,
		Currency: currency,
	}
}

const prompt = "cfund> "

const help = `commands:
  set <i> <ticker|mcap|price> <value>
  add
  rm <i>
  cap <f>
  capital <f>
  fetch
  calc
  show
  bye
`

// Run starts the interactive REPL session.
//
// prompts are executed first, as if the user typed them.
func (e *Editor) Run(ctx context.Context, prompts ...string) error {
	fmt.Fprintln(e.w, "Welcome to the cfund editor. Type 'help' for the commands, 'bye' to exit.")

	for {
		fmt.Fprint(e.w, prompt)
		var input string

		// Flush prompts from the list and then ask for the user.
		if len(prompts) > 0 {
			input, prompts = strings.TrimSpace(prompts[0]), prompts[1:]
			if input == "" {
				continue
			}
			fmt.Fprintln(e.w, input)
		} else {
			var err error
			input, err = e.r.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					return nil // Clean exit on Ctrl+D
				}
				return err
			}
		}

		out, err := e.Exec(ctx, input)
		if errors.Is(err, ErrBye) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(e.w, "error: %v\n", err)
			continue
		}
		if out != "" {
			e.print(out)
		}
	}
}

func (e *Editor) print(md string) {
	if e.Print != nil {
		e.Print(e.w, md)
		return
	}
	fmt.Fprint(e.w, md)
}

// Exec executes a single command line and returns its markdown output.
func (e *Editor) Exec(ctx context.Context, line string) (string, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return "", nil
	}
	s := e.Session
	switch cmd, args := args[0], args[1:]; cmd {
	case "bye", "exit", "quit":
		return "", ErrBye
	case "help", "?":
		return help, nil

	case "show":
		return e.show(), nil

	case "set":
		if len(args) < 2 {
			return "", errors.New("usage: set <i> <ticker|mcap|price> <value>")
		}
		i, err := e.index(args[0])
		if err != nil {
			return "", err
		}
		f, err := cryptofund.ParseField(args[1])
		if err != nil {
			return "", err
		}
		s.Rows.SetField(i, f, strings.Join(args[2:], " "))
		// a ticker typed on the trailing row completes it.
		if f == cryptofund.FieldTicker && i == s.Rows.Last() {
			if _, err := s.EnrichTrailing(ctx); err != nil {
				return "", err
			}
		}
		return renderer.RowsMarkdown(s.Rows.All()), nil

	case "add":
		s.Rows.AddRow()
		return renderer.RowsMarkdown(s.Rows.All()), nil

	case "rm":
		if len(args) != 1 {
			return "", errors.New("usage: rm <i>")
		}
		i, err := e.index(args[0])
		if err != nil {
			return "", err
		}
		s.Rows.RemoveRow(i)
		return renderer.RowsMarkdown(s.Rows.All()), nil

	case "cap":
		v, err := decimalArg(args)
		if err != nil {
			return "", err
		}
		if !v.IsPositive() || v.GreaterThan(decimal.NewFromInt(1)) {
			return "", fmt.Errorf("asset cap must be within (0,1], got %v", v)
		}
		s.AssetCap = v
		return e.show(), nil

	case "capital":
		v, err := decimalArg(args)
		if err != nil {
			return "", err
		}
		if v.IsNegative() {
			return "", fmt.Errorf("total capital must be >= 0, got %v", v)
		}
		s.TotalCapital = v
		return e.show(), nil

	case "fetch":
		changed, err := s.EnrichTrailing(ctx)
		if err != nil {
			return "", err
		}
		if !changed {
			return "nothing to fetch\n", nil
		}
		return renderer.RowsMarkdown(s.Rows.All()), nil

	case "calc":
		// the outcome, error included, is part of the session.
		_, err := s.Calculate(ctx)
		if errors.Is(err, cryptofund.ErrBusy) {
			return "", err
		}
		return e.show(), nil

	default:
		return "", fmt.Errorf("unknown command %q, type 'help' for the commands", cmd)
	}
}

func (e *Editor) show() string { return renderer.SessionMarkdown(e.Session, e.Currency) }

// index parses a row index and checks it is in range.
func (e *Editor) index(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid row index %q", s)
	}
	if i < 0 || i >= e.Session.Rows.Len() {
		return 0, fmt.Errorf("row %d does not exist", i)
	}
	return i, nil
}

func decimalArg(args []string) (decimal.Decimal, error) {
	if len(args) != 1 {
		return decimal.Zero, errors.New("expected a single number")
	}
	return decimal.NewFromString(args[0])
}
