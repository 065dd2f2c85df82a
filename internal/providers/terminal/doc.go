// Package terminal provides line-prompt input for trussfs hosts.
//
// When the input is an interactive terminal, ReadLine switches it to raw
// mode for the duration of one line and edits through golang.org/x/term,
// which supplies cursor movement and an in-memory history shared by every
// call on the same Prompt. Any other input (pipes, files) is read line by
// line with the prompt echoed to the output.
//
// Example Usage:
//
//	p := terminal.NewPrompt(os.Stdin, os.Stdout)
//	line, err := p.ReadLine("> ")
//	if errors.Is(err, io.EOF) {
//	    // input closed
//	}
package terminal
