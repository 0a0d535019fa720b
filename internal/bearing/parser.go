// Package bearing understands the direction game: its instruction transcript
// ("<count> steps <bearing>" per line), the marker's inline style position and
// the style selector used to find the cell to click.
package bearing

import (
	"strconv"
	"strings"

	"github.com/xkilldash9x/gamepilot/api/schemas"
)

// Instruction is a single parsed line: take Count steps towards Direction.
type Instruction struct {
	Count     int
	Direction Direction
}

// Displacement scales the direction's unit vector by Count steps of stepLength.
func (i Instruction) Displacement(stepLength float64) schemas.Coordinate {
	return i.Direction.Unit().Scale(float64(i.Count) * stepLength)
}

// ParseInstructions reads a transcript, one instruction per non-blank line,
// preserving order. Token 0 is the decimal count, token 1 a filler word that is
// ignored and token 2 the bearing label. Any malformed line fails the whole
// transcript with a *ParseError.
func ParseInstructions(transcript string) ([]Instruction, error) {
	var out []Instruction
	for i, line := range strings.Split(transcript, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		lineNo := i + 1
		text := strings.TrimSpace(line)

		if len(fields) < 3 {
			return nil, &ParseError{Line: lineNo, Text: text, Reason: "expected \"<count> steps <bearing>\""}
		}
		count, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: text, Reason: "count is not a decimal integer"}
		}
		if count < 1 {
			return nil, &ParseError{Line: lineNo, Text: text, Reason: "count must be positive"}
		}
		dir, ok := ParseDirection(fields[2])
		if !ok {
			return nil, &ParseError{Line: lineNo, Text: text, Reason: "unrecognized bearing " + strconv.Quote(fields[2])}
		}
		out = append(out, Instruction{Count: count, Direction: dir})
	}
	return out, nil
}

// Parse turns a transcript into displacement vectors, one per instruction, in
// transcript order. An empty transcript yields an empty sequence.
func Parse(transcript string, stepLength float64) ([]schemas.Coordinate, error) {
	instructions, err := ParseInstructions(transcript)
	if err != nil {
		return nil, err
	}
	vectors := make([]schemas.Coordinate, len(instructions))
	for i, in := range instructions {
		vectors[i] = in.Displacement(stepLength)
	}
	return vectors, nil
}

// Lines returns the non-blank, trimmed lines of a transcript, for reporting.
func Lines(transcript string) []string {
	var lines []string
	for _, line := range strings.Split(transcript, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
