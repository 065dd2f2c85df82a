package terminal

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamPromptReadsLines(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompt(strings.NewReader("first\nsecond\r\nlast"), &out)
	assert.False(t, p.Interactive())

	for _, want := range []string{"first", "second", "last"} {
		got, err := p.ReadLine("> ")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := p.ReadLine("> ")
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "> > > > ", out.String())
}

func TestStreamPromptEmptyLine(t *testing.T) {
	p := NewPrompt(strings.NewReader("\n"), io.Discard)
	got, err := p.ReadLine("")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestTerminalPrompt(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	p := NewPrompt(tty, tty)
	require.True(t, p.Interactive())

	type result struct {
		line string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		line, err := p.ReadLine("trussfs> ")
		done <- result{line, err}
	}()

	// Wait for the prompt so input arrives after raw mode is on.
	waitFor(t, ptmx, "trussfs> ")
	_, err = ptmx.Write([]byte("hello\r"))
	require.NoError(t, err)

	go io.Copy(io.Discard, ptmx)

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.Equal(t, "hello", r.line)
	case <-time.After(5 * time.Second):
		t.Fatal("ReadLine did not return")
	}
}

func waitFor(t *testing.T, r io.Reader, marker string) {
	t.Helper()

	found := make(chan struct{})
	go func() {
		var seen []byte
		buf := make([]byte, 256)
		for {
			n, err := r.Read(buf)
			seen = append(seen, buf[:n]...)
			if bytes.Contains(seen, []byte(marker)) {
				close(found)
				return
			}
			if err != nil {
				return
			}
		}
	}()

	select {
	case <-found:
	case <-time.After(5 * time.Second):
		t.Fatalf("never saw %q", marker)
	}
}
