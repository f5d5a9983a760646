package iocli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Stdio is a Prompter over a reader and a writer, normally stdin and stderr
type Stdio struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewStdio creates a prompter. Input is interactive when in is a terminal.
func NewStdio(in io.Reader, out io.Writer) *Stdio {
	interactive := false
	if f, ok := in.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}
	return &Stdio{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: interactive,
	}
}

// Interactive implements Prompter
func (s *Stdio) Interactive() bool {
	return s.interactive
}

// ReadInput implements Prompter. The last line may end without a newline.
func (s *Stdio) ReadInput(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	line, err := s.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm implements Prompter
func (s *Stdio) Confirm(question string) (bool, error) {
	answer, err := s.ReadInput(question + " [y/N]: ")
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
