package game

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/gamepilot/api/schemas"
	"github.com/xkilldash9x/gamepilot/internal/config"
	"github.com/xkilldash9x/gamepilot/internal/geometry"
)

// Scenario parameterizes one drawing pass of the circle game. Scenarios differ
// only in these numbers; the drawing logic is shared.
type Scenario struct {
	Name        string
	RadiusRatio float64
	// Density scales the radius into the point count; 0 keeps count = radius.
	Density float64
	// BiasFactor > 0 prepends a miss point at center + (radius*BiasFactor, 0).
	BiasFactor float64
}

// ScenarioFromConfig builds a Scenario from its configuration entry.
func ScenarioFromConfig(name string, sc config.ScenarioConfig) Scenario {
	return Scenario{
		Name:        name,
		RadiusRatio: sc.RadiusRatio,
		Density:     sc.Density,
		BiasFactor:  sc.BiasFactor,
	}
}

// SampleCount is the number of circle samples drawn for radius. A density
// scales the count to round(radius*density) and the points stay evenly spaced
// over the full turn. Where radius*density is whole this is the count the
// built-in scenarios were tuned with; a fractional product may round one point
// lower than ceil would.
func (s Scenario) SampleCount(radius float64) int {
	if s.Density <= 0 {
		return geometry.DefaultSampleCount(radius)
	}
	n := int(math.Round(radius * s.Density))
	if n < 1 {
		return 1
	}
	return n
}

// Path returns the ordered points to draw for a circle of the given center and
// radius, including the bias point when the scenario has one.
func (s Scenario) Path(center schemas.Coordinate, radius float64) []schemas.Coordinate {
	path := geometry.SamplePoints(center, radius, s.SampleCount(radius))
	if s.BiasFactor > 0 {
		path = geometry.WithBias(path, center, radius, s.BiasFactor)
	}
	return path
}

// CircleGame plays the "perfect circle" game: it measures the drawing area,
// draws a sampled circle in one stroke and waits for the verdict.
type CircleGame struct {
	page   Page
	cfg    config.CircleConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewCircleGame creates a driver for the circle game.
func NewCircleGame(page Page, cfg config.CircleConfig, logger *zap.Logger) *CircleGame {
	return &CircleGame{
		page:   page,
		cfg:    cfg,
		logger: logger.Named("circle"),
		now:    time.Now,
	}
}

// Run opens the game and performs a single drawing pass for scenario. The
// returned report is always non-nil.
func (g *CircleGame) Run(ctx context.Context, scenario Scenario) (*schemas.CircleReport, error) {
	report := &schemas.CircleReport{
		RunID:     uuid.New().String(),
		Scenario:  scenario.Name,
		StartedAt: g.now().UTC(),
	}

	err := g.run(ctx, scenario, report)

	report.FinishedAt = g.now().UTC()
	if err != nil {
		report.Status = schemas.RunFailed
		report.Error = err.Error()
		return report, err
	}
	report.Status = schemas.RunCompleted
	return report, nil
}

func (g *CircleGame) run(ctx context.Context, scenario Scenario, report *schemas.CircleReport) error {
	if err := g.open(ctx); err != nil {
		return err
	}
	return g.Draw(ctx, scenario, report)
}

// open navigates to the game, dismisses the consent dialog and starts a round.
func (g *CircleGame) open(ctx context.Context) error {
	if g.cfg.URL != "" {
		if err := g.page.Navigate(ctx, g.cfg.URL); err != nil {
			return fmt.Errorf("failed to open circle game: %w", err)
		}
	}
	if g.cfg.ConsentSelector != "" {
		err := g.page.ClickElement(ctx, g.cfg.ConsentSelector)
		var notFound *schemas.ElementNotFoundError
		switch {
		case errors.As(err, &notFound):
			// The consent dialog is only shown in some regions.
			g.logger.Warn("Consent dialog not shown; continuing.", zap.String("selector", g.cfg.ConsentSelector))
		case err != nil:
			return fmt.Errorf("failed to dismiss consent dialog: %w", err)
		}
	}
	if g.cfg.StartSelector != "" {
		if err := g.page.ClickElement(ctx, g.cfg.StartSelector); err != nil {
			return fmt.Errorf("failed to start the game: %w", err)
		}
	}
	return nil
}

// Draw measures the canvas, draws the scenario's path and waits for the
// result on an already opened game.
func (g *CircleGame) Draw(ctx context.Context, scenario Scenario, report *schemas.CircleReport) error {
	box, err := g.page.BoundingBox(ctx, g.cfg.CanvasSelector)
	if err != nil {
		return fmt.Errorf("failed to measure canvas: %w", err)
	}
	center, radius, err := geometry.CenterAndRadius(box, g.cfg.CanvasSelector, scenario.RadiusRatio)
	if err != nil {
		return err
	}
	report.Box = *box
	report.Center = center
	report.Radius = radius
	if !(radius > 0) {
		return fmt.Errorf("canvas %q is too small to draw on (radius %v)", g.cfg.CanvasSelector, radius)
	}

	path := scenario.Path(center, radius)
	report.PointCount = len(path)
	report.Biased = scenario.BiasFactor > 0

	g.logger.Info("Drawing circle.",
		zap.String("scenario", scenario.Name),
		zap.Float64("center_x", center.X),
		zap.Float64("center_y", center.Y),
		zap.Float64("radius", radius),
		zap.Int("points", len(path)),
		zap.Bool("biased", report.Biased),
	)

	if err := ReplayStroke(ctx, g.page, path, NewStrokeLimiter(g.cfg.PointerRate)); err != nil {
		return fmt.Errorf("failed to draw circle: %w", err)
	}

	if err := g.page.Wait(ctx, g.cfg.ObserveDelay); err != nil {
		return err
	}

	if g.cfg.ResultSelector != "" {
		text, err := g.page.ReadText(ctx, g.cfg.ResultSelector)
		if err != nil {
			return fmt.Errorf("failed to read result: %w", err)
		}
		report.ResultText = text
		g.logger.Info("Circle result.", zap.String("scenario", scenario.Name), zap.String("result", text))
	}
	return nil
}
