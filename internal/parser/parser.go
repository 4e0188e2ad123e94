// Package parser holds the line-level collaborators of the CSV codecs: the raw
// line tokenizer and the structured parse error.
package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Error is a parse failure tied to a source location.
// Line and Position are nil when the location is unknown.
type Error struct {
	Line     *int64
	Position *int
	Msg      string
	Err      error
}

// NewError returns an Error located at the given line with no in-line position.
func NewError(line int64, format string, args ...any) *Error {
	return &Error{Line: &line, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Line != nil {
		fmt.Fprintf(&b, "line %d", *e.Line)
		if e.Position != nil {
			fmt.Fprintf(&b, ", position %d", *e.Position)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// LineNumber returns the line number and whether it is known.
func (e *Error) LineNumber() (int64, bool) {
	if e.Line == nil {
		return 0, false
	}
	return *e.Line, true
}

// SplitLine tokenizes one comma separated line. Tokens are returned untrimmed
// except for leading blanks; quoting follows encoding/csv rules.
// A blank line yields a single empty token.
func SplitLine(line string) ([]string, error) {
	if strings.TrimSpace(line) == "" {
		return []string{""}, nil
	}

	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	record, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []string{""}, nil
		}
		return nil, fmt.Errorf("split line: %w", err)
	}
	return record, nil
}
