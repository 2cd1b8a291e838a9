package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/semmy-space/bazaar/internal/output"
)

// prompter reads answers from the terminal. All prompt text goes to stderr.
type prompter struct {
	in      io.Reader
	reader  *bufio.Reader
	out     io.Writer
	noInput bool
}

func newPrompter(fp *FormatterProvider, globals *Globals) *prompter {
	in := fp.In
	if in == nil {
		in = os.Stdin
	}
	out := fp.Err
	if out == nil {
		out = os.Stderr
	}
	return &prompter{in: in, reader: bufio.NewReader(in), out: out, noInput: globals.NoInput}
}

func (p *prompter) refuse(what string) error {
	return output.NewCLIError(output.ExitUsage, fmt.Sprintf("%s is required but prompts are disabled (--no-input)", what)).
		WithHint("Pass it as a flag instead")
}

// Line prints label and reads one trimmed line.
func (p *prompter) Line(label string) (string, error) {
	if p.noInput {
		return "", p.refuse(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(label), ":")))
	}
	fmt.Fprint(p.out, label)
	return p.readLine()
}

// Secret reads a line without echo when attached to a terminal.
func (p *prompter) Secret(label string) (string, error) {
	if p.noInput {
		return "", p.refuse(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(label), ":")))
	}
	fmt.Fprint(p.out, label)

	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	return p.readLine()
}

// Confirm asks a yes/no question; anything but y/yes is no.
func (p *prompter) Confirm(question string) (bool, error) {
	if p.noInput {
		return false, output.NewCLIError(output.ExitUsage, "Confirmation required but prompts are disabled (--no-input)").
			WithHint("Pass --force to skip confirmation")
	}
	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (p *prompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readSecretFrom reads the first line of r, for --password-stdin.
func readSecretFrom(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
