package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Prompter reads one line of user input after displaying a prompt.
type Prompter interface {
	ReadLine(prompt string) (string, error)
}

// Prompt is a Prompter over a file or stream. Calls are serialized.
type Prompt struct {
	mu  sync.Mutex
	in  io.Reader
	out io.Writer

	fd       int
	terminal *term.Terminal // nil unless in is a terminal
	reader   *bufio.Reader
}

// NewPrompt creates a prompt reading from in and echoing to out. Terminal
// handling applies when in is an *os.File attached to a terminal.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	p := &Prompt{in: in, out: out, fd: -1}

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.terminal = term.NewTerminal(struct {
			io.Reader
			io.Writer
		}{in, out}, "")
		return p
	}

	p.reader = bufio.NewReader(in)
	return p
}

// Interactive reports whether the prompt drives a terminal.
func (p *Prompt) Interactive() bool {
	return p.terminal != nil
}

// ReadLine shows prompt and returns the line typed, without its terminator.
// io.EOF is returned once input is exhausted with nothing left to return.
func (p *Prompt) ReadLine(prompt string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.terminal != nil {
		return p.readTerminal(prompt)
	}
	return p.readStream(prompt)
}

func (p *Prompt) readTerminal(prompt string) (string, error) {
	state, err := term.MakeRaw(p.fd)
	if err != nil {
		return "", fmt.Errorf("readline: enter raw mode: %w", err)
	}
	defer term.Restore(p.fd, state)

	p.terminal.SetPrompt(prompt)
	line, err := p.terminal.ReadLine()
	if err != nil {
		return "", err
	}
	return line, nil
}

func (p *Prompt) readStream(prompt string) (string, error) {
	if prompt != "" && p.out != nil {
		if _, err := io.WriteString(p.out, prompt); err != nil {
			return "", fmt.Errorf("readline: write prompt: %w", err)
		}
	}

	line, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
