// Package game drives the two mini-games: it reads game state through a Page,
// computes pointer targets with the bearing and geometry packages, and issues
// the resulting input.
package game

import (
	"context"
	"time"

	"github.com/xkilldash9x/gamepilot/api/schemas"
)

// Page is the browser capability the drivers need. Every call is a blocking,
// fire-and-confirm operation; implementations must not reorder them.
type Page interface {
	Navigate(ctx context.Context, url string) error
	// ClickElement clicks the first element matching selector. A selector that
	// matches nothing yields *schemas.ElementNotFoundError.
	ClickElement(ctx context.Context, selector string) error
	// SelectOption chooses the option at index in a <select> and fires change.
	SelectOption(ctx context.Context, selector string, index int) error
	ReadText(ctx context.Context, selector string) (string, error)
	ReadStyleAttribute(ctx context.Context, selector string) (string, error)
	// BoundingBox returns nil without error when nothing matches selector.
	BoundingBox(ctx context.Context, selector string) (*schemas.BoundingBox, error)

	PointerMove(ctx context.Context, x, y float64) error
	PointerDown(ctx context.Context) error
	PointerUp(ctx context.Context) error

	// Wait blocks for d. It is the only source of delay in the drivers.
	Wait(ctx context.Context, d time.Duration) error
}

// Framer is implemented by pages that can scope their queries to the document
// of an embedded iframe.
type Framer interface {
	InFrame(ctx context.Context, selector string) (Page, error)
}
