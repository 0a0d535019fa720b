package bearing

import "fmt"

// ParseError reports an instruction line that could not be understood. It is
// fatal for the whole transcript; no instructions are returned alongside it.
type ParseError struct {
	// Line is the 1-based line number within the transcript.
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("instruction line %d %q: %s", e.Line, e.Text, e.Reason)
}

// AttributeFormatError reports page state that lacks the numeric pattern it
// must carry, such as a marker style without "left: Npx" or a non-numeric score.
type AttributeFormatError struct {
	Attribute string
	Value     string
}

func (e *AttributeFormatError) Error() string {
	return fmt.Sprintf("attribute %s has unexpected format: %q", e.Attribute, e.Value)
}
