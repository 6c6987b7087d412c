package coretest

import (
	"context"
	"sync"

	"github.com/goliatone/go-localpay/core"
)

// RecordingPresenter answers every challenge with Decision and remembers what
// it was asked.
type RecordingPresenter struct {
	Decision bool
	Err      error

	mu    sync.Mutex
	calls []core.Challenge
}

func (p *RecordingPresenter) Present(_ context.Context, challenge core.Challenge) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, challenge)
	return p.Decision, p.Err
}

func (p *RecordingPresenter) Calls() []core.Challenge {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]core.Challenge(nil), p.calls...)
}

var _ core.ChallengePresenter = (*RecordingPresenter)(nil)
