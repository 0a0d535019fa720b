package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/gamepilot/api/schemas"
	"github.com/xkilldash9x/gamepilot/internal/bearing"
	"github.com/xkilldash9x/gamepilot/internal/config"
	"github.com/xkilldash9x/gamepilot/internal/mocks"
)

// testBearingConfig mirrors the defaults without the page setup steps.
func testBearingConfig() config.BearingConfig {
	return config.BearingConfig{
		InstructionsSelector: "#instr",
		MarkerSelector:       "#smile",
		ScoreSelector:        "#score",
		TargetSelector:       bearing.DefaultTargetSelector,
		ScoreThreshold:       500,
		StepLength:           30,
		SettleDelay:          3 * time.Second,
	}
}

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return zap.New(core), logs
}

func TestBearingGame_SingleRound(t *testing.T) {
	page := new(mocks.MockPage)
	logger, logs := newObservedLogger()

	page.On("ReadText", mock.Anything, "#instr").Return("2 steps 000°\n1 steps 090°\n", nil).Once()
	page.On("ReadStyleAttribute", mock.Anything, "#smile").Return("position: absolute; left: 100px; top: 100px;", nil).Once()
	page.On("ClickElement", mock.Anything, `canvas[style*="left: 130px; top: 40px;"]`).Return(nil).Once()
	page.On("Wait", mock.Anything, 3*time.Second).Return(nil).Once()
	page.On("ReadText", mock.Anything, "#score").Return("500", nil).Once()

	game := NewBearingGame(page, testBearingConfig(), logger)
	report, err := game.Run(context.Background())

	require.NoError(t, err)
	page.AssertExpectations(t)
	page.AssertNotCalled(t, "Navigate", mock.Anything, mock.Anything)
	page.AssertNotCalled(t, "SelectOption", mock.Anything, mock.Anything, mock.Anything)

	assert.Equal(t, schemas.RunCompleted, report.Status)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 500, report.FinalScore)
	require.Len(t, report.Rounds, 1)
	round := report.Rounds[0]
	assert.Equal(t, schemas.Coordinate{X: 100, Y: 100}, round.Start)
	assert.Equal(t, []schemas.Coordinate{{X: 0, Y: -60}, {X: 30, Y: 0}}, round.Displacement)
	assert.Equal(t, schemas.Coordinate{X: 130, Y: 40}, round.Target)
	assert.Equal(t, []string{"2 steps 000°", "1 steps 090°"}, round.Instructions)

	end := logs.FilterMessage("End coordinates").All()
	require.Len(t, end, 1)
	assert.Equal(t, 130.0, end[0].ContextMap()["x"])
	assert.Equal(t, 40.0, end[0].ContextMap()["y"])
}

func TestBearingGame_LoopsUntilThreshold(t *testing.T) {
	page := new(mocks.MockPage)
	logger, _ := newObservedLogger()

	cfg := testBearingConfig()
	cfg.URL = "https://games.example/bearing"
	cfg.RangeSelector = "#rangeType"
	cfg.RangeIndex = 5

	var order []string
	record := func(name string) func(mock.Arguments) {
		return func(mock.Arguments) { order = append(order, name) }
	}

	page.On("Navigate", mock.Anything, cfg.URL).Run(record("navigate")).Return(nil).Once()
	page.On("SelectOption", mock.Anything, "#rangeType", 5).Run(record("select")).Return(nil).Once()

	page.On("ReadText", mock.Anything, "#instr").Run(record("instr")).Return("1 steps 180°", nil).Once()
	page.On("ReadText", mock.Anything, "#instr").Run(record("instr")).Return("3 steps 270°", nil).Once()
	page.On("ReadText", mock.Anything, "#instr").Run(record("instr")).Return("1 steps 000°\n1 steps 090°", nil).Once()

	page.On("ReadStyleAttribute", mock.Anything, "#smile").Run(record("marker")).Return("left: 60px; top: 60px;", nil).Times(3)

	page.On("ClickElement", mock.Anything, `canvas[style*="left: 60px; top: 90px;"]`).Run(record("click")).Return(nil).Once()
	page.On("ClickElement", mock.Anything, `canvas[style*="left: -30px; top: 60px;"]`).Run(record("click")).Return(nil).Once()
	page.On("ClickElement", mock.Anything, `canvas[style*="left: 90px; top: 30px;"]`).Run(record("click")).Return(nil).Once()

	page.On("Wait", mock.Anything, 3*time.Second).Run(record("wait")).Return(nil).Times(3)

	page.On("ReadText", mock.Anything, "#score").Run(record("score")).Return("120", nil).Once()
	page.On("ReadText", mock.Anything, "#score").Run(record("score")).Return("380", nil).Once()
	page.On("ReadText", mock.Anything, "#score").Run(record("score")).Return("510", nil).Once()

	report, err := NewBearingGame(page, cfg, logger).Run(context.Background())

	require.NoError(t, err)
	page.AssertExpectations(t)
	assert.Equal(t, 510, report.FinalScore)
	require.Len(t, report.Rounds, 3)
	assert.Equal(t, []int{120, 380, 510}, []int{report.Rounds[0].Score, report.Rounds[1].Score, report.Rounds[2].Score})
	assert.Equal(t, 2, report.Rounds[2].Index)

	round := []string{"instr", "marker", "click", "wait", "score"}
	want := append([]string{"navigate", "select"}, round...)
	want = append(want, round...)
	want = append(want, round...)
	assert.Equal(t, want, order, "each round must read, compute, act, wait and re-check in sequence")
}

func TestBearingGame_ZeroThresholdPlaysNoRound(t *testing.T) {
	page := new(mocks.MockPage)
	cfg := testBearingConfig()
	cfg.ScoreThreshold = 0

	report, err := NewBearingGame(page, cfg, zap.NewNop()).Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, report.Rounds)
	page.AssertNotCalled(t, "ReadText", mock.Anything, mock.Anything)
}

func TestBearingGame_FailFast(t *testing.T) {
	t.Run("should abort on a malformed transcript before clicking", func(t *testing.T) {
		page := new(mocks.MockPage)
		page.On("ReadText", mock.Anything, "#instr").Return("2 steps 045°", nil).Once()

		report, err := NewBearingGame(page, testBearingConfig(), zap.NewNop()).Run(context.Background())

		var parseErr *bearing.ParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Equal(t, schemas.RunFailed, report.Status)
		assert.Contains(t, report.Error, "045°")
		page.AssertNotCalled(t, "ClickElement", mock.Anything, mock.Anything)
	})

	t.Run("should abort when the marker style has no position", func(t *testing.T) {
		page := new(mocks.MockPage)
		page.On("ReadText", mock.Anything, "#instr").Return("1 steps 090°", nil).Once()
		page.On("ReadStyleAttribute", mock.Anything, "#smile").Return("display: block;", nil).Once()

		_, err := NewBearingGame(page, testBearingConfig(), zap.NewNop()).Run(context.Background())

		var formatErr *bearing.AttributeFormatError
		require.True(t, errors.As(err, &formatErr))
		page.AssertNotCalled(t, "ClickElement", mock.Anything, mock.Anything)
	})

	t.Run("should abort when no element sits at the target", func(t *testing.T) {
		page := new(mocks.MockPage)
		target := `canvas[style*="left: 130px; top: 100px;"]`
		page.On("ReadText", mock.Anything, "#instr").Return("1 steps 090°", nil).Once()
		page.On("ReadStyleAttribute", mock.Anything, "#smile").Return("left: 100px; top: 100px;", nil).Once()
		page.On("ClickElement", mock.Anything, target).Return(schemas.NewElementNotFoundError(target)).Once()

		report, err := NewBearingGame(page, testBearingConfig(), zap.NewNop()).Run(context.Background())

		var notFound *schemas.ElementNotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, target, notFound.Selector)
		assert.Contains(t, err.Error(), "(130, 100)")
		assert.Empty(t, report.Rounds)
		page.AssertNotCalled(t, "Wait", mock.Anything, mock.Anything)
	})

	t.Run("should abort on an unreadable score", func(t *testing.T) {
		page := new(mocks.MockPage)
		page.On("ReadText", mock.Anything, "#instr").Return("1 steps 090°", nil).Once()
		page.On("ReadStyleAttribute", mock.Anything, "#smile").Return("left: 0px; top: 0px;", nil).Once()
		page.On("ClickElement", mock.Anything, mock.Anything).Return(nil).Once()
		page.On("Wait", mock.Anything, mock.Anything).Return(nil).Once()
		page.On("ReadText", mock.Anything, "#score").Return("", nil).Once()

		_, err := NewBearingGame(page, testBearingConfig(), zap.NewNop()).Run(context.Background())

		var formatErr *bearing.AttributeFormatError
		require.True(t, errors.As(err, &formatErr))
		assert.Equal(t, "score", formatErr.Attribute)
	})

	t.Run("should surface navigation failures", func(t *testing.T) {
		page := new(mocks.MockPage)
		cfg := testBearingConfig()
		cfg.URL = "https://games.example/bearing"
		navErr := errors.New("net::ERR_NAME_NOT_RESOLVED")
		page.On("Navigate", mock.Anything, cfg.URL).Return(navErr).Once()

		report, err := NewBearingGame(page, cfg, zap.NewNop()).Run(context.Background())

		assert.ErrorIs(t, err, navErr)
		assert.Equal(t, schemas.RunFailed, report.Status)
		assert.False(t, report.FinishedAt.Before(report.StartedAt))
	})
}

func TestBearingGame_MaxRounds(t *testing.T) {
	page := new(mocks.MockPage)
	cfg := testBearingConfig()
	cfg.MaxRounds = 2

	page.On("ReadText", mock.Anything, "#instr").Return("1 steps 090°", nil).Times(2)
	page.On("ReadStyleAttribute", mock.Anything, "#smile").Return("left: 0px; top: 0px;", nil).Times(2)
	page.On("ClickElement", mock.Anything, mock.Anything).Return(nil).Times(2)
	page.On("Wait", mock.Anything, mock.Anything).Return(nil).Times(2)
	page.On("ReadText", mock.Anything, "#score").Return("10", nil).Times(2)

	report, err := NewBearingGame(page, cfg, zap.NewNop()).Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 rounds")
	assert.Len(t, report.Rounds, 2)
	page.AssertExpectations(t)
}

func TestSession(t *testing.T) {
	s := newSession(100)
	assert.Equal(t, Playing, s.State)

	s.observe(40)
	assert.Equal(t, Playing, s.State)
	assert.Equal(t, 1, s.Rounds)

	s.observe(100)
	assert.Equal(t, Done, s.State)
	assert.Equal(t, "Done", s.State.String())
}

// framedPage is a page whose game lives in an iframe.
type framedPage struct {
	*mocks.MockPage
	frame    Page
	selector string
}

func (f *framedPage) InFrame(_ context.Context, selector string) (Page, error) {
	f.selector = selector
	return f.frame, nil
}

func TestBearingGame_PlaysInsideFrame(t *testing.T) {
	top := new(mocks.MockPage)
	frame := new(mocks.MockPage)
	page := &framedPage{MockPage: top, frame: frame}

	cfg := testBearingConfig()
	cfg.URL = "https://games.example/bearing"
	cfg.FrameSelector = "iframe"
	cfg.RangeSelector = "#rangeType"
	cfg.RangeIndex = 5

	top.On("Navigate", mock.Anything, cfg.URL).Return(nil).Once()
	frame.On("SelectOption", mock.Anything, "#rangeType", 5).Return(nil).Once()
	frame.On("ReadText", mock.Anything, "#instr").Return("1 steps 090°", nil).Once()
	frame.On("ReadStyleAttribute", mock.Anything, "#smile").Return("left: 0px; top: 0px;", nil).Once()
	frame.On("ClickElement", mock.Anything, `canvas[style*="left: 30px; top: 0px;"]`).Return(nil).Once()
	frame.On("Wait", mock.Anything, 3*time.Second).Return(nil).Once()
	frame.On("ReadText", mock.Anything, "#score").Return("600", nil).Once()

	_, err := NewBearingGame(page, cfg, zap.NewNop()).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "iframe", page.selector)
	top.AssertExpectations(t)
	frame.AssertExpectations(t)
	top.AssertNotCalled(t, "ReadText", mock.Anything, mock.Anything)
}

func TestBearingGame_FrameUnsupported(t *testing.T) {
	page := new(mocks.MockPage)
	cfg := testBearingConfig()
	cfg.FrameSelector = "iframe"

	_, err := NewBearingGame(page, cfg, zap.NewNop()).Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot enter frame")
}
