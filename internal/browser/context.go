package browser

import "context"

// combineContext derives a context from tabCtx, so it carries the chromedp
// target, that is also cancelled when opCtx is done. Page operations receive
// the caller's context but must run against the tab.
func combineContext(tabCtx, opCtx context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(tabCtx)

	go func() {
		select {
		case <-opCtx.Done():
			cancel()
		case <-combined.Done():
		}
	}()

	return combined, cancel
}
