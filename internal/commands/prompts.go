package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/bookreview/internal/api"
	"github.com/hay-kot/bookreview/internal/core/styles"
	"github.com/hay-kot/bookreview/internal/core/validate"
)

// isInteractive reports whether stdin is attached to a terminal.
// Package-level variable to allow test overrides.
var isInteractive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// passwordSource reads a password from --password-file. A path reads the
// first line of that file, "-" reads the first line of stdin, and an empty
// value means the caller should prompt.
type passwordSource struct {
	file  string
	stdin io.Reader
}

func (ps *passwordSource) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "password-file",
		Usage:       "read the password from a file, or - for stdin (default: prompt)",
		Destination: &ps.file,
	}
}

func (ps *passwordSource) Provided() bool {
	return ps.file != ""
}

func (ps *passwordSource) Read() (string, error) {
	var r io.Reader
	switch ps.file {
	case "":
		return "", fmt.Errorf("no password file given")
	case "-":
		r = ps.stdin
		if r == nil {
			r = os.Stdin
		}
	default:
		f, err := os.Open(ps.file)
		if err != nil {
			return "", fmt.Errorf("open password file: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// runForm runs a huh form with the shared theme. Aborting the form is
// reported as errAborted.
func runForm(groups ...*huh.Group) error {
	err := huh.NewForm(groups...).WithTheme(styles.FormTheme()).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return errAborted
	}
	return err
}

var errAborted = errors.New("aborted")

// userError turns a client error into the message printed to the user.
// Field errors are listed one per line below the summary.
func userError(err error) error {
	if err == nil {
		return nil
	}

	msg := api.Describe(err)
	if fields := validate.FieldMessages(err); len(fields) > 0 {
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)

		var b strings.Builder
		b.WriteString(msg)
		for _, name := range names {
			fmt.Fprintf(&b, "\n  %s: %s", name, fields[name])
		}
		msg = b.String()
	}

	return errors.New(msg)
}
