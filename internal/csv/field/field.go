// Package field describes a single CSV column: its name, its declared data type
// and, for the timestamp column, the layout used to read its values.
//
// A column is persisted as a header token of the form name(tag), for example
// "some int(int)". The timestamp column always carries the reserved name
// "timestamp" and the tag "time", optionally followed by a layout:
// "timestamp(time:01/02/06 15:04:05)".
package field

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/telhawk-systems/telhawk-csv/internal/event"
)

// Type is the declared data type of a column.
type Type int

const (
	String Type = iota
	Int
	Long
	Float
	Double
	Boolean
	Time
)

var typeTags = map[Type]string{
	String:  "string",
	Int:     "int",
	Long:    "long",
	Float:   "float",
	Double:  "double",
	Boolean: "boolean",
	Time:    "time",
}

var tagTypes = func() map[string]Type {
	m := make(map[string]Type, len(typeTags))
	for t, tag := range typeTags {
		m[tag] = t
	}
	return m
}()

// Tag returns the short lower-case name used in header tokens.
func (t Type) Tag() string {
	if tag, ok := typeTags[t]; ok {
		return tag
	}
	return fmt.Sprintf("type(%d)", int(t))
}

func (t Type) String() string { return t.Tag() }

// TypeForTag resolves a header tag.
func TypeForTag(tag string) (Type, bool) {
	t, ok := tagTypes[strings.ToLower(strings.TrimSpace(tag))]
	return t, ok
}

// Types returns every supported type in declaration order.
func Types() []Type {
	return []Type{String, Int, Long, Float, Double, Boolean, Time}
}

// timeTagSeparator separates the time tag from an embedded layout.
const timeTagSeparator = ":"

// ErrEmptyName is returned when a field is constructed without a name.
var ErrEmptyName = errors.New("field name must not be empty")

// Field is an immutable column definition.
type Field struct {
	name   string
	typ    Type
	format string
}

// New constructs a field. The format is only kept for Time fields, and Time
// fields always take the reserved timestamp name. Names may not contain
// parentheses since the token grammar uses them to delimit the type.
func New(name string, typ Type, format string) (Field, error) {
	if _, ok := typeTags[typ]; !ok {
		return Field{}, fmt.Errorf("unsupported field type %d", int(typ))
	}
	if typ == Time {
		return Timestamp(format), nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Field{}, ErrEmptyName
	}
	if strings.ContainsAny(name, "()") {
		return Field{}, &FormatError{Token: name, Reason: "column name must not contain parentheses"}
	}
	return Field{name: name, typ: typ}, nil
}

// MustNew is like New but panics on error. Intended for static definitions.
func MustNew(name string, typ Type, format string) Field {
	f, err := New(name, typ, format)
	if err != nil {
		panic(err)
	}
	return f
}

// Timestamp returns the timestamp column definition. Surrounding whitespace is
// not part of the layout.
func Timestamp(format string) Field {
	return Field{name: event.TimestampProperty, typ: Time, format: strings.TrimSpace(format)}
}

func (f Field) Name() string   { return f.name }
func (f Field) Type() Type     { return f.typ }
func (f Field) Format() string { return f.format }

// IsTimestamp reports whether f is the timestamp column.
func (f Field) IsTimestamp() bool { return f.typ == Time }

// Encode renders the header token for f.
func (f Field) Encode() string {
	if f.IsTimestamp() {
		tag := Time.Tag()
		if f.format != "" {
			tag += timeTagSeparator + f.format
		}
		return event.TimestampProperty + "(" + tag + ")"
	}
	return f.name + "(" + f.typ.Tag() + ")"
}

func (f Field) String() string { return f.Encode() }

// FormatError reports a header token that does not follow the name(tag) grammar.
type FormatError struct {
	Token  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid header token %q: %s", e.Token, e.Reason)
}

// The name runs up to the first parenthesis and the tag up to the last one, so
// a timestamp layout may itself contain parentheses.
var tokenPattern = regexp.MustCompile(`(?s)^([^()]*)\((.*)\)$`)

// Parse decodes a header token of the form name(tag).
func Parse(token string) (Field, error) {
	trimmed := strings.TrimSpace(token)

	m := tokenPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return Field{}, &FormatError{Token: token, Reason: "expected name(type)"}
	}

	name := strings.TrimSpace(m[1])
	tag := strings.TrimSpace(m[2])
	if name == "" {
		return Field{}, &FormatError{Token: token, Reason: "empty name"}
	}
	if tag == "" {
		return Field{}, &FormatError{Token: token, Reason: "empty type"}
	}

	if head, layout, ok := strings.Cut(tag, timeTagSeparator); ok {
		if t, known := TypeForTag(head); known && t == Time {
			return Timestamp(strings.TrimSpace(layout)), nil
		}
		return Field{}, &FormatError{Token: token, Reason: fmt.Sprintf("format is only supported for %s columns", Time.Tag())}
	}

	typ, ok := TypeForTag(tag)
	if !ok {
		return Field{}, &FormatError{Token: token, Reason: fmt.Sprintf("unknown type %q", tag)}
	}
	return New(name, typ, "")
}

// ParseHeader decodes a stored header value. In addition to name(tag) tokens it
// accepts bare column names, the form written when a header line is loaded from
// raw text: the reserved timestamp name becomes the timestamp column and any
// other bare name becomes a String column.
func ParseHeader(token string) (Field, error) {
	if strings.ContainsAny(token, "()") {
		return Parse(token)
	}
	name := strings.TrimSpace(token)
	if name == "" {
		return Field{}, &FormatError{Token: token, Reason: "empty name"}
	}
	if strings.EqualFold(name, event.TimestampProperty) {
		return Timestamp(""), nil
	}
	return New(name, String, "")
}

// ParseSpec builds a field from a command line column spec of the form
// name:type[:layout], e.g. "bytes:long" or "timestamp:time:2006-01-02".
// A bare name yields a String column.
func ParseSpec(spec string) (Field, error) {
	parts := strings.SplitN(spec, ":", 3)
	name := strings.TrimSpace(parts[0])
	if len(parts) == 1 {
		return New(name, String, "")
	}

	tag := strings.TrimSpace(parts[1])
	typ, ok := TypeForTag(tag)
	if !ok {
		return Field{}, &FormatError{Token: spec, Reason: fmt.Sprintf("unknown type %q", tag)}
	}
	if len(parts) == 3 && typ != Time {
		return Field{}, &FormatError{Token: spec, Reason: fmt.Sprintf("format is only supported for %s columns", Time.Tag())}
	}
	if typ != Time && name == "" {
		return Field{}, ErrEmptyName
	}

	layout := ""
	if len(parts) == 3 {
		layout = strings.TrimSpace(parts[2])
	}
	return New(name, typ, layout)
}
