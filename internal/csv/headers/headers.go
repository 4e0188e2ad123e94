// Package headers encodes CSV column definitions into the properties of an event
// and decodes them back.
//
// Each column is stored as a string property named HeaderNamePrefix+index whose
// value is the column's header token (see package field). Indices start at 0 and
// must be contiguous. The header properties may share the event with any number
// of unrelated properties; decoding only looks at its own keys and orders them
// by index, never by position in the event.
package headers

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/telhawk-systems/telhawk-csv/internal/csv/field"
	"github.com/telhawk-systems/telhawk-csv/internal/event"
	"github.com/telhawk-systems/telhawk-csv/internal/parser"
)

// HeaderNamePrefix prefixes the name of every header property.
const HeaderNamePrefix = "csv_header_"

// Key returns the property name of the header at index i.
func Key(i int) string {
	return HeaderNamePrefix + strconv.Itoa(i)
}

// Headers is a block of CSV column definitions layered over a property bag.
// A Headers value is not safe for concurrent use.
type Headers struct {
	bag        event.Bag
	lineNumber int64
	hasLine    bool
}

// New returns an empty header block backed by a fresh event.
func New() *Headers {
	return Over(event.New())
}

// Over layers a header block over an existing bag. The line number is taken from
// the bag's reserved line number property when present.
func Over(bag event.Bag) *Headers {
	h := &Headers{bag: bag}
	if n, ok := event.LineNumber(bag); ok {
		h.lineNumber, h.hasLine = n, true
	}
	return h
}

// FromFields encodes fields into a new header block. The resulting bag holds the
// line number followed by one header property per field, in order.
func FromFields(lineNumber int64, fields []field.Field) *Headers {
	h := New()
	h.lineNumber, h.hasLine = lineNumber, true
	h.bag.SetLong(event.LineNumberProperty, lineNumber)
	for i, f := range fields {
		h.bag.SetString(Key(i), f.Encode())
	}
	return h
}

// Bag returns the underlying property bag.
func (h *Headers) Bag() event.Bag { return h.bag }

// Properties returns the bag's properties in insertion order.
func (h *Headers) Properties() []event.Property { return h.bag.Properties() }

// LineNumber returns the source line of the block, if known.
func (h *Headers) LineNumber() (int64, bool) { return h.lineNumber, h.hasLine }

// Len returns the number of header properties in the bag.
func (h *Headers) Len() int {
	n := 0
	for _, p := range h.bag.Properties() {
		if strings.HasPrefix(p.Name, HeaderNamePrefix) {
			n++
		}
	}
	return n
}

type indexedToken struct {
	index uint64
	prop  event.Property
}

// Fields decodes the header block into column definitions, ordered by index.
// It fails with a *KeyError, *SequenceError or *TokenError when the stored
// state is corrupt; all of them match ErrCorrupt.
func (h *Headers) Fields() ([]field.Field, error) {
	entries, err := h.entries()
	if err != nil {
		return nil, err
	}

	fields := make([]field.Field, 0, len(entries))
	for _, e := range entries {
		token, ok := e.prop.String()
		if !ok {
			return nil, &TokenError{
				Key:   e.prop.Name,
				Token: fmt.Sprint(e.prop.Value),
				Err:   fmt.Errorf("header value is a %s, not a string", e.prop.Kind),
			}
		}
		f, err := field.ParseHeader(token)
		if err != nil {
			return nil, &TokenError{Key: e.prop.Name, Token: token, Err: err}
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// entries returns the header properties sorted by index after checking that the
// indices are exactly 0..N-1.
func (h *Headers) entries() ([]indexedToken, error) {
	var entries []indexedToken
	for _, p := range h.bag.Properties() {
		if !strings.HasPrefix(p.Name, HeaderNamePrefix) {
			continue
		}
		idx, err := strconv.ParseUint(p.Name[len(HeaderNamePrefix):], 10, 64)
		if errors.Is(err, strconv.ErrRange) {
			// Numeric but beyond any reachable position.
			idx = math.MaxUint64
		} else if err != nil {
			return nil, &KeyError{Key: p.Name}
		}
		entries = append(entries, indexedToken{index: idx, prop: p})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].index < entries[j].index
	})

	for i, e := range entries {
		if e.index != uint64(i) {
			return nil, &SequenceError{Key: e.prop.Name, Index: e.index, Expected: i}
		}
	}
	return entries, nil
}

// Load tokenizes a raw header line and stores its column names.
func (h *Headers) Load(lineNumber int64, line string) error {
	tokens, err := parser.SplitLine(line)
	if err != nil {
		return &parser.Error{Line: &lineNumber, Msg: "unreadable header line", Err: err}
	}
	return h.LoadTokens(lineNumber, tokens)
}

// LoadTokens stores already tokenized column names as header properties,
// replacing any header properties already present. Names are stored as they
// appear, trimmed; the timestamp column is stored under its reserved name.
// An empty name fails with a *parser.Error carrying lineNumber and no
// position, and leaves the bag untouched.
func (h *Headers) LoadTokens(lineNumber int64, tokens []string) error {
	names := make([]string, len(tokens))
	for i, tok := range tokens {
		name := strings.TrimSpace(tok)
		if name == "" {
			return parser.NewError(lineNumber, "missing header at column %d", i)
		}
		if strings.EqualFold(name, event.TimestampProperty) {
			name = event.TimestampProperty
		}
		names[i] = name
	}

	h.clear()
	h.lineNumber, h.hasLine = lineNumber, true
	for i, name := range names {
		h.bag.SetString(Key(i), name)
	}
	return nil
}

// Normalize rewrites every header property into its fully typed token, so a
// block produced by Load reads the same as one produced by FromFields.
// Keys written with leading zeros are renamed to their canonical form.
func (h *Headers) Normalize() error {
	fields, err := h.Fields()
	if err != nil {
		return err
	}
	h.clear()
	for i, f := range fields {
		h.bag.SetString(Key(i), f.Encode())
	}
	return nil
}

func (h *Headers) clear() {
	for _, p := range h.bag.Properties() {
		if strings.HasPrefix(p.Name, HeaderNamePrefix) {
			h.bag.Remove(p.Name)
		}
	}
}
