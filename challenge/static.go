package challenge

import (
	"context"

	"github.com/goliatone/go-localpay/core"
)

// StaticPresenter answers every challenge the same way.
type StaticPresenter struct {
	Decision bool
}

var (
	Accept = StaticPresenter{Decision: true}
	Reject = StaticPresenter{Decision: false}
)

func (p StaticPresenter) Present(ctx context.Context, _ core.Challenge) (bool, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return false, err
		}
	}
	return p.Decision, nil
}

var _ core.ChallengePresenter = StaticPresenter{}
