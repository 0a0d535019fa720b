package browser

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/gamepilot/api/schemas"
	"github.com/xkilldash9x/gamepilot/internal/config"
	"github.com/xkilldash9x/gamepilot/internal/game"
)

var (
	_ game.Page   = (*Session)(nil)
	_ game.Framer = (*Session)(nil)
)

// pointerEventTimeout bounds a single dispatched mouse event.
const pointerEventTimeout = 10 * time.Second

// selectIndexFunc selects an option by index and notifies listeners the way a
// user selection would.
const selectIndexFunc = `function(i) {
	if (i < 0 || i >= this.options.length) {
		throw new Error("option index " + i + " out of range (" + this.options.length + " options)");
	}
	this.selectedIndex = i;
	this.dispatchEvent(new Event("input", { bubbles: true }));
	this.dispatchEvent(new Event("change", { bubbles: true }));
}`

// pointerState is the pointer position and button state of one tab. It is
// shared by a Session and the frame views derived from it.
type pointerState struct {
	mu      sync.Mutex
	x, y    float64
	pressed bool
}

// Session drives one browser tab and implements game.Page over CDP.
//
// Selectors starting with "/" or "(" are XPath; all others are CSS. A Session
// returned by InFrame resolves CSS selectors inside that iframe's document.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger

	navigationTimeout time.Duration
	elementTimeout    time.Duration

	frame   *cdp.Node
	pointer *pointerState
}

func newSession(tabCtx context.Context, cancel context.CancelFunc, logger *zap.Logger, cfg config.BrowserConfig) *Session {
	return &Session{
		ctx:               tabCtx,
		cancel:            cancel,
		logger:            logger.Named("session"),
		navigationTimeout: cfg.NavigationTimeout,
		elementTimeout:    cfg.ElementTimeout,
		pointer:           &pointerState{},
	}
}

// Close closes the tab. Frame views share the tab and must not be closed
// separately.
func (s *Session) Close() {
	if s.frame == nil && s.cancel != nil {
		s.cancel()
	}
}

// run executes actions against the tab, bounded by ctx.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := combineContext(s.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// withTimeout applies d to ctx when d is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// isXPath reports whether selector is an XPath expression rather than CSS.
func isXPath(selector string) bool {
	return strings.HasPrefix(selector, "/") || strings.HasPrefix(selector, "(")
}

func (s *Session) queryOptions(selector string, extra ...chromedp.QueryOption) []chromedp.QueryOption {
	var opts []chromedp.QueryOption
	if isXPath(selector) {
		opts = append(opts, chromedp.BySearch)
	} else {
		opts = append(opts, chromedp.ByQuery)
	}
	if s.frame != nil {
		opts = append(opts, chromedp.FromNode(s.frame))
	}
	return append(opts, extra...)
}

// lookupError converts an expired element wait into ElementNotFoundError. The
// caller's own cancellation is returned as is.
func lookupError(ctx, opCtx context.Context, selector string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(opCtx.Err(), context.DeadlineExceeded) {
		return schemas.NewElementNotFoundError(selector)
	}
	return err
}

// InFrame returns a view of the session whose CSS queries run inside the
// document of the first iframe matching selector. The view shares the tab and
// pointer; navigating it navigates the whole tab.
func (s *Session) InFrame(ctx context.Context, selector string) (game.Page, error) {
	opCtx, cancel := withTimeout(ctx, s.elementTimeout)
	defer cancel()

	var nodes []*cdp.Node
	if err := s.run(opCtx, chromedp.Nodes(selector, &nodes, s.queryOptions(selector)...)); err != nil {
		return nil, lookupError(ctx, opCtx, selector, err)
	}
	if len(nodes) == 0 {
		return nil, schemas.NewElementNotFoundError(selector)
	}

	frame := *s
	frame.frame = nodes[0]
	frame.logger = s.logger.With(zap.String("frame", selector))
	return &frame, nil
}

// Navigate loads url in the tab and waits for the load event.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Info("Navigating.", zap.String("url", url))
	opCtx, cancel := withTimeout(ctx, s.navigationTimeout)
	defer cancel()

	if err := s.run(opCtx, chromedp.Navigate(url)); err != nil {
		if ctx.Err() == nil && errors.Is(opCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("navigation to %s timed out after %v: %w", url, s.navigationTimeout, opCtx.Err())
		}
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// ClickElement waits for the element to become visible and clicks its center.
func (s *Session) ClickElement(ctx context.Context, selector string) error {
	s.logger.Debug("Clicking element.", zap.String("selector", selector))
	opCtx, cancel := withTimeout(ctx, s.elementTimeout)
	defer cancel()

	if err := s.run(opCtx, chromedp.WaitVisible(selector, s.queryOptions(selector)...)); err != nil {
		return lookupError(ctx, opCtx, selector, err)
	}
	if err := s.run(ctx, chromedp.Click(selector, s.queryOptions(selector, chromedp.NodeVisible)...)); err != nil {
		return fmt.Errorf("click on '%s' failed: %w", selector, err)
	}
	return nil
}

// SelectOption selects the option at index in a <select> element.
func (s *Session) SelectOption(ctx context.Context, selector string, index int) error {
	opCtx, cancel := withTimeout(ctx, s.elementTimeout)
	defer cancel()

	var nodes []*cdp.Node
	if err := s.run(opCtx, chromedp.Nodes(selector, &nodes, s.queryOptions(selector)...)); err != nil {
		return lookupError(ctx, opCtx, selector, err)
	}
	if len(nodes) == 0 {
		return schemas.NewElementNotFoundError(selector)
	}

	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(nodes[0].NodeID).Do(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = runtime.ReleaseObject(obj.ObjectID).Do(ctx) }()

		return chromedp.CallFunctionOn(selectIndexFunc, nil,
			func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
				return p.WithObjectID(obj.ObjectID)
			},
			index,
		).Do(ctx)
	}))
	if err != nil {
		return fmt.Errorf("failed to select option %d of '%s': %w", index, selector, err)
	}
	return nil
}

// ReadText returns the rendered text of the element.
func (s *Session) ReadText(ctx context.Context, selector string) (string, error) {
	opCtx, cancel := withTimeout(ctx, s.elementTimeout)
	defer cancel()

	var text string
	if err := s.run(opCtx, chromedp.Text(selector, &text, s.queryOptions(selector)...)); err != nil {
		return "", lookupError(ctx, opCtx, selector, err)
	}
	return text, nil
}

// ReadStyleAttribute returns the element's inline style attribute, or "" when
// it has none.
func (s *Session) ReadStyleAttribute(ctx context.Context, selector string) (string, error) {
	opCtx, cancel := withTimeout(ctx, s.elementTimeout)
	defer cancel()

	var (
		style string
		ok    bool
	)
	if err := s.run(opCtx, chromedp.AttributeValue(selector, "style", &style, &ok, s.queryOptions(selector)...)); err != nil {
		return "", lookupError(ctx, opCtx, selector, err)
	}
	return style, nil
}

// BoundingBox returns the element's border box in viewport coordinates, or nil
// when no visible element matches within the element timeout.
func (s *Session) BoundingBox(ctx context.Context, selector string) (*schemas.BoundingBox, error) {
	opCtx, cancel := withTimeout(ctx, s.elementTimeout)
	defer cancel()

	var nodes []*cdp.Node
	if err := s.run(opCtx, chromedp.Nodes(selector, &nodes, s.queryOptions(selector, chromedp.NodeVisible)...)); err != nil {
		var notFound *schemas.ElementNotFoundError
		if errors.As(lookupError(ctx, opCtx, selector, err), &notFound) {
			return nil, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}

	var model *dom.BoxModel
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		model, err = dom.GetBoxModel().WithNodeID(nodes[0].NodeID).Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to get box model for '%s': %w", selector, err)
	}
	box := boxFromQuad(model.Border)
	return &box, nil
}

// boxFromQuad returns the axis-aligned box enclosing a CDP quad
// (x1, y1, ..., x4, y4).
func boxFromQuad(q dom.Quad) schemas.BoundingBox {
	if len(q) < 8 {
		return schemas.BoundingBox{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := 0; i+1 < len(q); i += 2 {
		minX = math.Min(minX, q[i])
		maxX = math.Max(maxX, q[i])
		minY = math.Min(minY, q[i+1])
		maxY = math.Max(maxY, q[i+1])
	}
	return schemas.BoundingBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// -- Pointer --

// PointerMove moves the pointer to (x, y). While the button is held the move
// is reported as a drag.
func (s *Session) PointerMove(ctx context.Context, x, y float64) error {
	s.pointer.mu.Lock()
	defer s.pointer.mu.Unlock()

	data := schemas.MouseEventData{Type: schemas.MouseMove, X: x, Y: y, Button: schemas.ButtonNone}
	if s.pointer.pressed {
		data.Button = schemas.ButtonLeft
		data.Buttons = 1
	}
	if err := s.dispatch(ctx, data); err != nil {
		return err
	}
	s.pointer.x, s.pointer.y = x, y
	return nil
}

// PointerDown presses the left button at the current pointer position.
func (s *Session) PointerDown(ctx context.Context) error {
	s.pointer.mu.Lock()
	defer s.pointer.mu.Unlock()

	data := schemas.MouseEventData{
		Type:       schemas.MousePress,
		X:          s.pointer.x,
		Y:          s.pointer.y,
		Button:     schemas.ButtonLeft,
		Buttons:    1,
		ClickCount: 1,
	}
	if err := s.dispatch(ctx, data); err != nil {
		return err
	}
	s.pointer.pressed = true
	return nil
}

// PointerUp releases the left button at the current pointer position.
func (s *Session) PointerUp(ctx context.Context) error {
	s.pointer.mu.Lock()
	defer s.pointer.mu.Unlock()

	data := schemas.MouseEventData{
		Type:       schemas.MouseRelease,
		X:          s.pointer.x,
		Y:          s.pointer.y,
		Button:     schemas.ButtonLeft,
		ClickCount: 1,
	}
	// Released either way; a failed release leaves nothing to retry.
	s.pointer.pressed = false
	return s.dispatch(ctx, data)
}

func (s *Session) dispatch(ctx context.Context, data schemas.MouseEventData) error {
	p := input.DispatchMouseEvent(input.MouseType(data.Type), data.X, data.Y).
		WithButton(input.MouseButton(data.Button)).
		WithButtons(data.Buttons).
		WithClickCount(int64(data.ClickCount))

	opCtx, cancel := context.WithTimeout(ctx, pointerEventTimeout)
	defer cancel()

	if err := s.run(opCtx, p); err != nil {
		if ctx.Err() == nil && errors.Is(opCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%s event timed out after %v: %w", data.Type, pointerEventTimeout, opCtx.Err())
		}
		return fmt.Errorf("%s event failed: %w", data.Type, err)
	}
	return nil
}

// Wait pauses for d, returning early if ctx is cancelled.
func (s *Session) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	return s.run(ctx, chromedp.Sleep(d))
}
