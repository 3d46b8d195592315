package token

import "fmt"

// Location is a span in a source file. Lines and columns are 1-based;
// a zero Line means the location is unknown.
type Location struct {
	File      string
	Line      int
	Column    int
	EndLine   int
	EndColumn int
}

// Unknown is the location of synthesized nodes.
var Unknown = Location{}

// At builds a single-line location.
func At(file string, line, col, endCol int) Location {
	return Location{File: file, Line: line, Column: col, EndLine: line, EndColumn: endCol}
}

func (l Location) IsUnknown() bool {
	return l.Line == 0
}

// Concat returns the span covering both l and r.
func Concat(l, r Location) Location {
	if l.IsUnknown() {
		return r
	}
	if r.IsUnknown() {
		return l
	}
	out := l
	if r.EndLine > out.EndLine || (r.EndLine == out.EndLine && r.EndColumn > out.EndColumn) {
		out.EndLine = r.EndLine
		out.EndColumn = r.EndColumn
	}
	return out
}

func (l Location) String() string {
	if l.IsUnknown() {
		if l.File != "" {
			return l.File
		}
		return "<unknown>"
	}
	file := l.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", file, l.Line, l.Column)
}
