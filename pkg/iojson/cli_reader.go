package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// FileReader decodes a JSON document of type T from the file named by its
// --file flag, or from piped stdin when the flag is "-".
type FileReader[T any] struct {
	fileFlagValue string
	stdin         io.Reader
}

func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to a JSON file, or - to read from stdin",
		Destination: &fr.fileFlagValue,
	}
}

// Provided reports whether the --file flag was set.
func (fr *FileReader[T]) Provided() bool {
	return fr.fileFlagValue != ""
}

func (fr *FileReader[T]) Read() (T, error) {
	var reader io.Reader
	var input T

	switch fr.fileFlagValue {
	case "":
		return input, fmt.Errorf("no input provided; use -f <path> or -f - with piped JSON")
	case "-":
		if fr.stdin != nil {
			reader = fr.stdin
			break
		}
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return input, fmt.Errorf("no input provided (stdin is a terminal); pipe JSON input")
		}
		reader = os.Stdin
	default:
		f, err := os.Open(fr.fileFlagValue)
		if err != nil {
			return input, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		reader = f
	}

	if err := json.NewDecoder(reader).Decode(&input); err != nil {
		return input, fmt.Errorf("decode JSON: %w", err)
	}

	return input, nil
}
