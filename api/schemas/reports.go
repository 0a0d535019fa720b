package schemas

import "time"

// -- Run Report Schemas --

// RunStatus is the terminal state of a game run.
type RunStatus string

const (
	RunCompleted RunStatus = "COMPLETED"
	RunFailed    RunStatus = "FAILED"
)

// GameKind identifies which mini-game a report belongs to.
type GameKind string

const (
	GameBearing GameKind = "bearing"
	GameCircle  GameKind = "circle"
)

// BearingRound records a single round of the direction game.
type BearingRound struct {
	Index        int          `json:"index"`
	Instructions []string     `json:"instructions"`
	Start        Coordinate   `json:"start"`
	Displacement []Coordinate `json:"displacement"`
	Target       Coordinate   `json:"target"`
	Score        int          `json:"score"`
}

// BearingReport summarizes a direction game run.
type BearingReport struct {
	RunID      string         `json:"run_id"`
	Status     RunStatus      `json:"status"`
	Threshold  int            `json:"threshold"`
	FinalScore int            `json:"final_score"`
	Rounds     []BearingRound `json:"rounds"`
	Error      string         `json:"error,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// CircleReport summarizes one circle drawing pass.
type CircleReport struct {
	RunID      string      `json:"run_id"`
	Status     RunStatus   `json:"status"`
	Scenario   string      `json:"scenario"`
	Box        BoundingBox `json:"box"`
	Center     Coordinate  `json:"center"`
	Radius     float64     `json:"radius"`
	PointCount int         `json:"point_count"`
	Biased     bool        `json:"biased"`
	ResultText string      `json:"result_text,omitempty"`
	Error      string      `json:"error,omitempty"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
}

// RunSummary is one entry of the run history.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	Game       GameKind  `json:"game"`
	Status     RunStatus `json:"status"`
	Scenario   string    `json:"scenario,omitempty"`
	Score      int       `json:"score"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
