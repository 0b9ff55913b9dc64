package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Prompter reads answers line by line. It is the terminal counterpart of
// the browser's confirm and prompt dialogs.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{bufio.NewReader(in), out}
}

// Ask prints the prompt and returns the next line, without the line ending.
// io.EOF is returned only when nothing was typed before the input ended.
func (p *Prompter) Ask(_ context.Context, prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// AskDefault is Ask, keeping value when it is already set.
func (p *Prompter) AskDefault(ctx context.Context, prompt, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	return p.Ask(ctx, prompt)
}

// Confirm asks a yes/no question; anything but a yes is a no.
func (p *Prompter) Confirm(ctx context.Context, prompt string) bool {
	answer, err := p.Ask(ctx, prompt+" [t/N] ")
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "t", "tak", "y", "yes":
		return true
	}
	return false
}

// errInputEnded is returned by interactive loops when input runs out
// before they are finished.
var errInputEnded = errors.New("input ended")
