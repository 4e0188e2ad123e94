// Package event provides the generic property container shared by every record
// flowing through the CSV pipeline. Properties keep their insertion order and can
// be looked up by name.
package event

import "fmt"

// Reserved property names.
const (
	// LineNumberProperty holds the 1-based source line a record was read from.
	LineNumberProperty = "line_number"

	// TimestampProperty is the logical name of the column carrying event time.
	TimestampProperty = "timestamp"
)

// Kind identifies the type of value stored in a property.
type Kind int

const (
	KindString Kind = iota
	KindLong
	KindInt
	KindFloat
	KindDouble
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindLong:
		return "long"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindBoolean:
		return "boolean"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Property is a named, typed value.
type Property struct {
	Name  string `json:"name"`
	Kind  Kind   `json:"-"`
	Value any    `json:"value"`
}

// String returns the value when the property holds a string.
func (p Property) String() (string, bool) {
	s, ok := p.Value.(string)
	return s, ok && p.Kind == KindString
}

// Long returns the value when the property holds a long.
func (p Property) Long() (int64, bool) {
	v, ok := p.Value.(int64)
	return v, ok && p.Kind == KindLong
}

// Bag is the narrow contract the CSV codecs need from a record.
type Bag interface {
	// Property returns the named property.
	Property(name string) (Property, bool)

	// SetString stores a string property, replacing any property with the same name.
	SetString(name, value string)

	// SetLong stores a long property, replacing any property with the same name.
	SetLong(name string, value int64)

	// Remove deletes the named property. It reports whether it existed.
	Remove(name string) bool

	// Properties returns a snapshot of all properties in insertion order.
	Properties() []Property
}

// Generic is the default Bag implementation.
// Replacing an existing property keeps its original position.
type Generic struct {
	props []Property
	index map[string]int
}

// New returns an empty Generic event.
func New() *Generic {
	return &Generic{index: make(map[string]int)}
}

// Property returns the named property.
func (e *Generic) Property(name string) (Property, bool) {
	i, ok := e.index[name]
	if !ok {
		return Property{}, false
	}
	return e.props[i], true
}

// SetString stores a string property.
func (e *Generic) SetString(name, value string) {
	e.set(Property{Name: name, Kind: KindString, Value: value})
}

// SetLong stores a long property.
func (e *Generic) SetLong(name string, value int64) {
	e.set(Property{Name: name, Kind: KindLong, Value: value})
}

// Set stores an arbitrary property.
func (e *Generic) Set(p Property) {
	e.set(p)
}

func (e *Generic) set(p Property) {
	if e.index == nil {
		e.index = make(map[string]int)
	}
	if i, ok := e.index[p.Name]; ok {
		e.props[i] = p
		return
	}
	e.index[p.Name] = len(e.props)
	e.props = append(e.props, p)
}

// Remove deletes the named property.
func (e *Generic) Remove(name string) bool {
	i, ok := e.index[name]
	if !ok {
		return false
	}
	e.props = append(e.props[:i], e.props[i+1:]...)
	delete(e.index, name)
	for j := i; j < len(e.props); j++ {
		e.index[e.props[j].Name] = j
	}
	return true
}

// Properties returns a copy of the properties in insertion order.
func (e *Generic) Properties() []Property {
	out := make([]Property, len(e.props))
	copy(out, e.props)
	return out
}

// Len returns the number of properties.
func (e *Generic) Len() int {
	return len(e.props)
}

// LineNumber returns the reserved line number property, if present.
func LineNumber(b Bag) (int64, bool) {
	p, ok := b.Property(LineNumberProperty)
	if !ok {
		return 0, false
	}
	return p.Long()
}
