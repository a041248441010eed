// Package nbt implements the Named Binary Tag data model and its binary codec.
//
// A Tag is one of twelve closed variants (End, Byte, Short, Int, Long, Float,
// Double, ByteArray, String, List, Compound, IntArray). Compounds and Lists own
// their children exclusively; there is no sharing between trees, so Clone is a
// full deep copy and Equal is a full structural comparison. Child order is
// significant for both equality and serialization.
//
// Encoding and decoding operate on a bytestream.Cursor holding big-endian data:
//
//	tag := nbt.NewCompound("", nbt.NewInt("xPos", 5))
//	data, err := nbt.Marshal(tag)
//	if err != nil {
//		return err
//	}
//	decoded, err := nbt.Unmarshal(data)
package nbt

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownTagKind   = errors.New("nbt: unknown tag kind")
	ErrListKindMismatch = errors.New("nbt: list element kind mismatch")
	ErrInvalidList      = errors.New("nbt: list of end tags must be empty")
	ErrInvalidTag       = errors.New("nbt: invalid tag")
	ErrTooDeep          = errors.New("nbt: nesting too deep")
)

// Tag is a node in an NBT tree. The set of implementations is closed; use a
// type switch over the concrete pointer types to access payloads.
type Tag interface {
	Kind() Kind
	// Name is only meaningful for members of a Compound. List elements and End
	// tags carry an empty name.
	Name() string
	SetName(name string)
	String() string

	tag()
}

type named struct {
	name string
}

func (n *named) Name() string { return n.name }

func (n *named) SetName(name string) { n.name = name }

func (*named) tag() {}

// End terminates a compound on the wire. It is never stored as a child.
type End struct {
	named
}

type Byte struct {
	named
	Value int8
}

type Short struct {
	named
	Value int16
}

type Int struct {
	named
	Value int32
}

type Long struct {
	named
	Value int64
}

type Float struct {
	named
	Value float32
}

type Double struct {
	named
	Value float64
}

type ByteArray struct {
	named
	Value []byte
}

type String struct {
	named
	Value string
}

type IntArray struct {
	named
	Value []int32
}

// List is an ordered, homogeneous sequence. Elem is the declared element kind
// and is kept even when the list is empty.
type List struct {
	named
	elem  Kind
	items []Tag
}

// Compound is an ordered sequence of named members.
type Compound struct {
	named
	items []Tag
}

func (*End) Kind() Kind       { return KindEnd }
func (*Byte) Kind() Kind      { return KindByte }
func (*Short) Kind() Kind     { return KindShort }
func (*Int) Kind() Kind       { return KindInt }
func (*Long) Kind() Kind      { return KindLong }
func (*Float) Kind() Kind     { return KindFloat }
func (*Double) Kind() Kind    { return KindDouble }
func (*ByteArray) Kind() Kind { return KindByteArray }
func (*String) Kind() Kind    { return KindString }
func (*List) Kind() Kind      { return KindList }
func (*Compound) Kind() Kind  { return KindCompound }
func (*IntArray) Kind() Kind  { return KindIntArray }

// End has no name regardless of what is assigned.
func (*End) Name() string { return "" }

func (*End) SetName(string) {}

func NewEnd() *End { return &End{} }

func NewByte(name string, v int8) *Byte { return &Byte{named{name}, v} }

func NewShort(name string, v int16) *Short { return &Short{named{name}, v} }

func NewInt(name string, v int32) *Int { return &Int{named{name}, v} }

func NewLong(name string, v int64) *Long { return &Long{named{name}, v} }

func NewFloat(name string, v float32) *Float { return &Float{named{name}, v} }

func NewDouble(name string, v float64) *Double { return &Double{named{name}, v} }

func NewByteArray(name string, v []byte) *ByteArray { return &ByteArray{named{name}, v} }

func NewString(name string, v string) *String { return &String{named{name}, v} }

func NewIntArray(name string, v []int32) *IntArray { return &IntArray{named{name}, v} }

// Len returns the number of elements.
func (t *ByteArray) Len() int { return len(t.Value) }

// At returns the element at index i, or zero when i is out of range. Chunks
// routinely omit terrain arrays, and readers treat a missing value as zero.
func (t *ByteArray) At(i int) int8 {
	if i < 0 || i >= len(t.Value) {
		return 0
	}

	return int8(t.Value[i])
}

// Len returns the number of elements.
func (t *IntArray) Len() int { return len(t.Value) }

// At returns the element at index i, or zero when i is out of range.
func (t *IntArray) At(i int) int32 {
	if i < 0 || i >= len(t.Value) {
		return 0
	}

	return t.Value[i]
}

// NewList creates a list of elem-kind items. It panics if an item does not
// match elem; use Add for data that has not been validated.
func NewList(name string, elem Kind, items ...Tag) *List {
	l := &List{named: named{name}, elem: elem}
	for _, item := range items {
		if err := l.Add(item); err != nil {
			panic(err)
		}
	}

	return l
}

// Elem returns the declared element kind.
func (l *List) Elem() Kind { return l.elem }

func (l *List) Len() int { return len(l.items) }

// At returns the element at index i, or nil when i is out of range.
func (l *List) At(i int) Tag {
	if i < 0 || i >= len(l.items) {
		return nil
	}

	return l.items[i]
}

// Items returns the elements in order. The slice must not be modified.
func (l *List) Items() []Tag { return l.items }

// Add appends t, whose kind must equal the declared element kind. List
// elements are unnamed, so t's name is cleared.
func (l *List) Add(t Tag) error {
	if t == nil {
		return fmt.Errorf("%w: nil list element", ErrInvalidTag)
	}
	if t.Kind() != l.elem {
		return fmt.Errorf("%w: list of %s cannot hold %s", ErrListKindMismatch, l.elem, t.Kind())
	}
	t.SetName("")
	l.items = append(l.items, t)

	return nil
}

// NewCompound creates a compound holding children in order. It panics on a
// nil or End child; use Add for data that has not been validated.
func NewCompound(name string, children ...Tag) *Compound {
	c := &Compound{named: named{name}}
	for _, child := range children {
		if err := c.Add(child); err != nil {
			panic(err)
		}
	}

	return c
}

func (c *Compound) Len() int { return len(c.items) }

// At returns the member at index i, or nil when i is out of range.
func (c *Compound) At(i int) Tag {
	if i < 0 || i >= len(c.items) {
		return nil
	}

	return c.items[i]
}

// Children returns the members in order. The slice must not be modified.
func (c *Compound) Children() []Tag { return c.items }

// Get returns the first member called name, or nil.
func (c *Compound) Get(name string) Tag {
	for _, t := range c.items {
		if t.Name() == name {
			return t
		}
	}

	return nil
}

// Add appends t as the last member.
func (c *Compound) Add(t Tag) error {
	if t == nil {
		return fmt.Errorf("%w: nil compound member", ErrInvalidTag)
	}
	if t.Kind() == KindEnd {
		return fmt.Errorf("%w: end tag cannot be a compound member", ErrInvalidTag)
	}
	c.items = append(c.items, t)

	return nil
}

// Set replaces the first member with t's name, or appends t if there is none.
func (c *Compound) Set(t Tag) error {
	if t == nil || t.Kind() == KindEnd {
		return c.Add(t)
	}
	for i, existing := range c.items {
		if existing.Name() == t.Name() {
			c.items[i] = t
			return nil
		}
	}
	c.items = append(c.items, t)

	return nil
}

// Remove deletes the first member called name and reports whether one existed.
func (c *Compound) Remove(name string) bool {
	for i, t := range c.items {
		if t.Name() == name {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}

	return false
}
