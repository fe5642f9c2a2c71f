package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// TerminalPassword reads passwords from in without echo when it is a
// terminal, and as a plain line otherwise (for piped input).
func TerminalPassword(in *os.File, out io.Writer) PasswordReader {
	reader := bufio.NewReader(in)
	return func(prompt string) (string, error) {
		fd := int(in.Fd())
		if term.IsTerminal(fd) {
			fmt.Fprint(out, prompt)
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(out)
			return string(b), err
		}

		line, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
}
