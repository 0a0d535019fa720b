// File: internal/mocks/mocks.go
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/gamepilot/api/schemas"
)

// -- Page Mock --

// MockPage mocks game.Page. Waits are recorded through the mock instead of
// sleeping, so driver tests run without real timers.
type MockPage struct {
	mock.Mock
}

func (m *MockPage) Navigate(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

func (m *MockPage) ClickElement(ctx context.Context, selector string) error {
	args := m.Called(ctx, selector)
	return args.Error(0)
}

func (m *MockPage) SelectOption(ctx context.Context, selector string, index int) error {
	args := m.Called(ctx, selector, index)
	return args.Error(0)
}

func (m *MockPage) ReadText(ctx context.Context, selector string) (string, error) {
	args := m.Called(ctx, selector)
	return args.String(0), args.Error(1)
}

func (m *MockPage) ReadStyleAttribute(ctx context.Context, selector string) (string, error) {
	args := m.Called(ctx, selector)
	return args.String(0), args.Error(1)
}

func (m *MockPage) BoundingBox(ctx context.Context, selector string) (*schemas.BoundingBox, error) {
	args := m.Called(ctx, selector)
	box, _ := args.Get(0).(*schemas.BoundingBox)
	return box, args.Error(1)
}

func (m *MockPage) PointerMove(ctx context.Context, x, y float64) error {
	args := m.Called(ctx, x, y)
	return args.Error(0)
}

func (m *MockPage) PointerDown(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockPage) PointerUp(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockPage) Wait(ctx context.Context, d time.Duration) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

// Pointer is one recorded pointer primitive, used by tests to assert gesture order.
type Pointer struct {
	Kind string // "move", "down" or "up"
	X, Y float64
}

// RecordPointer wires PointerMove, PointerDown and PointerUp to append to the
// returned slice and succeed.
func (m *MockPage) RecordPointer() *[]Pointer {
	var events []Pointer
	m.On("PointerMove", mock.Anything, mock.AnythingOfType("float64"), mock.AnythingOfType("float64")).
		Run(func(args mock.Arguments) {
			events = append(events, Pointer{Kind: "move", X: args.Get(1).(float64), Y: args.Get(2).(float64)})
		}).Return(nil)
	m.On("PointerDown", mock.Anything).
		Run(func(mock.Arguments) { events = append(events, Pointer{Kind: "down"}) }).Return(nil)
	m.On("PointerUp", mock.Anything).
		Run(func(mock.Arguments) { events = append(events, Pointer{Kind: "up"}) }).Return(nil)
	return &events
}
