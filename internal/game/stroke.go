package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/xkilldash9x/gamepilot/api/schemas"
)

// releaseTimeout bounds the final pointer release, which outlives ctx.
const releaseTimeout = 5 * time.Second

// ReplayStroke draws path as one continuous gesture: move to the first point,
// press, move through the rest in order, release. When limiter is non-nil each
// move after the first waits for a token, pacing the stroke.
//
// The button is released even if a move fails or ctx is cancelled, so the page
// is never left mid-drag; the move error is the one returned.
func ReplayStroke(ctx context.Context, page Page, path []schemas.Coordinate, limiter *rate.Limiter) (err error) {
	if len(path) == 0 {
		return errors.New("cannot replay an empty stroke")
	}

	first := path[0]
	if err := page.PointerMove(ctx, first.X, first.Y); err != nil {
		return fmt.Errorf("failed to move to stroke start: %w", err)
	}
	if err := page.PointerDown(ctx); err != nil {
		return fmt.Errorf("failed to press pointer: %w", err)
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if upErr := page.PointerUp(releaseCtx); upErr != nil && err == nil {
			err = fmt.Errorf("failed to release pointer: %w", upErr)
		}
	}()

	for i, p := range path[1:] {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
		}
		if err := page.PointerMove(ctx, p.X, p.Y); err != nil {
			return fmt.Errorf("failed to move to stroke point %d: %w", i+1, err)
		}
	}
	return nil
}

// NewStrokeLimiter returns a limiter allowing eventsPerSecond pointer moves,
// or nil (unpaced) when eventsPerSecond is zero.
func NewStrokeLimiter(eventsPerSecond float64) *rate.Limiter {
	if eventsPerSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(eventsPerSecond), 1)
}
