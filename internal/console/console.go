// Package console runs the shortener actions in a terminal: stdout is the status display, alerts go to stderr and urls open in the system browser.
package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/cli/browser"
)

// Opener opens url in a new browser window
type Opener func(url string) error

// BrowserOpener opens urls with the system browser. Output from the browser launcher is sent to w.
//
// The launcher output is configured through the package variables browser.Stdout and browser.Stderr,
// so the last BrowserOpener created wins for the whole process. The CLI creates one per run; tests that create several must restore them.
func BrowserOpener(w io.Writer) Opener {
	browser.Stdout = w
	browser.Stderr = w
	return browser.OpenURL
}

// PrintOpener does not start a browser, it prints the url so the user can follow it
func PrintOpener(w io.Writer) Opener {
	return func(url string) error {
		_, err := fmt.Fprintln(w, url)
		return err
	}
}

// Terminal is the command line State. Every status update is written to out on its own line.
type Terminal struct {
	mu      sync.Mutex
	input   string
	cleared bool
	alerted bool
	out     io.Writer
	errOut  io.Writer
	open    Opener
}

func NewTerminal(input string, out, errOut io.Writer, open Opener) *Terminal {
	return &Terminal{
		input:  input,
		out:    out,
		errOut: errOut,
		open:   open,
	}
}

func (t *Terminal) Input() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.input
}

func (t *Terminal) ClearInput() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.input = ""
	t.cleared = true
}

// Cleared reports whether the action consumed the input, i.e. it succeeded
func (t *Terminal) Cleared() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cleared
}

func (t *Terminal) SetStatus(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(msg) > 0 && msg[len(msg)-1] == '\n' {
		fmt.Fprint(t.out, msg)
		return
	}
	fmt.Fprintln(t.out, msg)
}

func (t *Terminal) Alert(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.alerted = true
	fmt.Fprintf(t.errOut, "! %s\n", msg)
}

// Alerted reports whether the action rejected the input
func (t *Terminal) Alerted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.alerted
}

func (t *Terminal) Open(url string) error {
	return t.open(url)
}

// VerboseResponses returns a response hook that prints every backend response to w.
// JSON bodies are indented, and highlighted when colour is true.
func VerboseResponses(w io.Writer, colour bool) func(ctx context.Context, method, url string, status int, body []byte) {
	var mu sync.Mutex
	return func(ctx context.Context, method, url string, status int, body []byte) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Fprintf(w, "Response %d %s (%s %s)\n", status, http.StatusText(status), method, url)
		if len(body) == 0 {
			return
		}
		if err := HighlightJSON(w, body, colour); err != nil {
			fmt.Fprintf(w, "%s\n", body)
		}
	}
}

// HighlightJSON writes data indented, with terminal colours when colour is true.
// Data that is not JSON is an error and nothing is written.
func HighlightJSON(w io.Writer, data []byte, colour bool) error {
	var indented bytes.Buffer
	if err := json.Indent(&indented, data, "", "  "); err != nil {
		return err
	}
	indented.WriteByte('\n')

	if !colour {
		_, err := w.Write(indented.Bytes())
		return err
	}
	return quick.Highlight(w, indented.String(), "json", "terminal256", "monokai")
}
