package game

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/gamepilot/api/schemas"
	"github.com/xkilldash9x/gamepilot/internal/bearing"
	"github.com/xkilldash9x/gamepilot/internal/config"
	"github.com/xkilldash9x/gamepilot/internal/geometry"
)

// State is the phase of a direction game session.
type State int

const (
	Playing State = iota
	Done
)

func (s State) String() string {
	switch s {
	case Playing:
		return "Playing"
	case Done:
		return "Done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session is the transient state of one direction game run. It is owned by
// the loop in BearingGame.Play and mutated once per round.
type Session struct {
	Score     int
	Threshold int
	State     State
	Rounds    int
}

// newSession starts in Playing with a zero score. A threshold the zero score
// already meets starts in Done, so no round is played.
func newSession(threshold int) *Session {
	s := &Session{Threshold: threshold, State: Playing}
	if s.Score >= s.Threshold {
		s.State = Done
	}
	return s
}

// observe records the score read after a round and moves to Done once the
// threshold is reached.
func (s *Session) observe(score int) {
	s.Score = score
	s.Rounds++
	if s.Score >= s.Threshold {
		s.State = Done
	}
}

// BearingGame plays the "follow the direction" game: each round it parses the
// instruction transcript, walks from the marker to the target cell, clicks it
// and waits for the next round, until the score reaches the threshold.
type BearingGame struct {
	page   Page
	cfg    config.BearingConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewBearingGame creates a driver for the direction game.
func NewBearingGame(page Page, cfg config.BearingConfig, logger *zap.Logger) *BearingGame {
	return &BearingGame{
		page:   page,
		cfg:    cfg,
		logger: logger.Named("bearing"),
		now:    time.Now,
	}
}

// Run opens the game, selects the configured range and plays until done. The
// returned report is always non-nil and carries the rounds played so far, even
// when an error aborts the run.
func (g *BearingGame) Run(ctx context.Context) (*schemas.BearingReport, error) {
	report := &schemas.BearingReport{
		RunID:     uuid.New().String(),
		Threshold: g.cfg.ScoreThreshold,
		StartedAt: g.now().UTC(),
	}

	err := g.run(ctx, report)

	report.FinishedAt = g.now().UTC()
	if err != nil {
		report.Status = schemas.RunFailed
		report.Error = err.Error()
		return report, err
	}
	report.Status = schemas.RunCompleted
	return report, nil
}

func (g *BearingGame) run(ctx context.Context, report *schemas.BearingReport) error {
	if g.cfg.URL != "" {
		if err := g.page.Navigate(ctx, g.cfg.URL); err != nil {
			return fmt.Errorf("failed to open bearing game: %w", err)
		}
	}

	board, err := g.board(ctx)
	if err != nil {
		return err
	}

	if g.cfg.RangeSelector != "" {
		if err := board.SelectOption(ctx, g.cfg.RangeSelector, g.cfg.RangeIndex); err != nil {
			return fmt.Errorf("failed to select game range: %w", err)
		}
	}
	return g.play(ctx, board, report)
}

// board returns the page holding the game, entering the configured iframe
// when there is one.
func (g *BearingGame) board(ctx context.Context) (Page, error) {
	if g.cfg.FrameSelector == "" {
		return g.page, nil
	}
	framer, ok := g.page.(Framer)
	if !ok {
		return nil, fmt.Errorf("page cannot enter frame %q", g.cfg.FrameSelector)
	}
	board, err := framer.InFrame(ctx, g.cfg.FrameSelector)
	if err != nil {
		return nil, fmt.Errorf("failed to enter game frame: %w", err)
	}
	return board, nil
}

// Play runs the round loop on an already prepared page. Rounds are appended to
// report as they complete.
func (g *BearingGame) Play(ctx context.Context, report *schemas.BearingReport) error {
	return g.play(ctx, g.page, report)
}

func (g *BearingGame) play(ctx context.Context, page Page, report *schemas.BearingReport) error {
	session := newSession(g.cfg.ScoreThreshold)
	g.logger.Info("Starting bearing game.", zap.String("run_id", report.RunID), zap.Int("threshold", session.Threshold))

	for session.State == Playing {
		if g.cfg.MaxRounds > 0 && session.Rounds >= g.cfg.MaxRounds {
			return fmt.Errorf("score %d below threshold %d after %d rounds", session.Score, session.Threshold, session.Rounds)
		}

		round, err := g.playRound(ctx, page, session.Rounds)
		if err != nil {
			return fmt.Errorf("round %d: %w", session.Rounds+1, err)
		}

		session.observe(round.Score)
		report.Rounds = append(report.Rounds, *round)
		report.FinalScore = session.Score

		g.logger.Info("Score", zap.Int("round", session.Rounds), zap.Int("score", session.Score))
	}

	g.logger.Info("Bearing game finished.", zap.Int("rounds", session.Rounds), zap.Int("score", session.Score))
	return nil
}

// playRound runs read -> compute -> click -> settle -> re-read score once.
func (g *BearingGame) playRound(ctx context.Context, page Page, index int) (*schemas.BearingRound, error) {
	transcript, err := page.ReadText(ctx, g.cfg.InstructionsSelector)
	if err != nil {
		return nil, fmt.Errorf("failed to read instructions: %w", err)
	}
	vectors, err := bearing.Parse(transcript, g.cfg.StepLength)
	if err != nil {
		return nil, err
	}

	style, err := page.ReadStyleAttribute(ctx, g.cfg.MarkerSelector)
	if err != nil {
		return nil, fmt.Errorf("failed to read marker position: %w", err)
	}
	start, err := bearing.ParseMarkerPosition(style)
	if err != nil {
		return nil, err
	}
	g.logger.Info("Start coordinates", zap.Float64("x", start.X), zap.Float64("y", start.Y))

	target := geometry.Accumulate(start, vectors)
	g.logger.Info("End coordinates", zap.Float64("x", target.X), zap.Float64("y", target.Y))

	selector := bearing.TargetSelector(g.cfg.TargetSelector, target)
	if err := page.ClickElement(ctx, selector); err != nil {
		return nil, fmt.Errorf("failed to click target %v: %w", target, err)
	}

	if err := page.Wait(ctx, g.cfg.SettleDelay); err != nil {
		return nil, err
	}

	scoreText, err := page.ReadText(ctx, g.cfg.ScoreSelector)
	if err != nil {
		return nil, fmt.Errorf("failed to read score: %w", err)
	}
	score, err := bearing.ParseScore(scoreText)
	if err != nil {
		return nil, err
	}

	return &schemas.BearingRound{
		Index:        index,
		Instructions: bearing.Lines(transcript),
		Start:        start,
		Displacement: vectors,
		Target:       target,
		Score:        score,
	}, nil
}
