package cli

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// TerminalPasswordReader reads passwords without echo when in is a terminal.
// It returns nil otherwise, so the session falls back to plain line input.
func TerminalPasswordReader(in *os.File, out io.Writer) PasswordReader {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	return func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
