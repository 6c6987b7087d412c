package challenge

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/goliatone/go-localpay/core"
)

// TerminalPresenter asks on Out and reads the answer from In. It keeps
// asking until it gets a recognizable answer.
//
// A single goroutine owns In for the presenter's lifetime; a prompt abandoned
// through its context leaves the pending line for the next prompt.
type TerminalPresenter struct {
	In  io.Reader
	Out io.Writer

	start sync.Once
	lines chan line
}

type line struct {
	text string
	err  error
}

func NewTerminalPresenter(in io.Reader, out io.Writer) *TerminalPresenter {
	return &TerminalPresenter{In: in, Out: out}
}

func (p *TerminalPresenter) Present(ctx context.Context, challenge core.Challenge) (bool, error) {
	if p == nil || p.In == nil {
		return false, fmt.Errorf("challenge: terminal presenter has no input")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	p.start.Do(p.startReader)
	out := p.Out
	if out == nil {
		out = io.Discard
	}

	fmt.Fprintln(out, challenge.Prompt)
	for {
		fmt.Fprintf(out, "  [1] %s\n  [2] %s\n> ", challenge.ConfirmLabel, challenge.CancelLabel)
		var next line
		select {
		case <-ctx.Done():
			return false, fmt.Errorf("challenge: prompt abandoned: %w", ctx.Err())
		case read, ok := <-p.lines:
			if !ok {
				return false, fmt.Errorf("challenge: no answer before end of input")
			}
			next = read
		}
		if accepted, ok := parseAnswer(next.text, challenge); ok {
			return accepted, nil
		}
		if next.err != nil {
			if next.err == io.EOF {
				return false, fmt.Errorf("challenge: no answer before end of input")
			}
			return false, fmt.Errorf("challenge: read answer: %w", next.err)
		}
		fmt.Fprintln(out, "Please answer 1 or 2.")
	}
}

func (p *TerminalPresenter) startReader() {
	p.lines = make(chan line)
	reader := bufio.NewReader(p.In)
	go func() {
		defer close(p.lines)
		for {
			text, err := reader.ReadString('\n')
			p.lines <- line{text: text, err: err}
			if err != nil {
				return
			}
		}
	}()
}

func parseAnswer(raw string, challenge core.Challenge) (bool, bool) {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return false, false
	}
	switch text {
	case "1", "y", "yes", "confirm", strings.ToLower(challenge.ConfirmLabel):
		return true, true
	case "2", "n", "no", "cancel", strings.ToLower(challenge.CancelLabel):
		return false, true
	}
	return false, false
}

var _ core.ChallengePresenter = (*TerminalPresenter)(nil)
