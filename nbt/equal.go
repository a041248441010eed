package nbt

import (
	"math"
	"slices"
)

// Equal reports whether a and b are structurally equal: same kind, same name,
// same payload and, for containers, pairwise-equal children in the same order.
// Floating point payloads are compared bit for bit, so a NaN equals itself.
func Equal(a, b Tag) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() || a.Name() != b.Name() {
		return false
	}

	switch a := a.(type) {
	case *End:
		return true
	case *Byte:
		return a.Value == b.(*Byte).Value
	case *Short:
		return a.Value == b.(*Short).Value
	case *Int:
		return a.Value == b.(*Int).Value
	case *Long:
		return a.Value == b.(*Long).Value
	case *Float:
		return math.Float32bits(a.Value) == math.Float32bits(b.(*Float).Value)
	case *Double:
		return math.Float64bits(a.Value) == math.Float64bits(b.(*Double).Value)
	case *ByteArray:
		return slices.Equal(a.Value, b.(*ByteArray).Value)
	case *String:
		return a.Value == b.(*String).Value
	case *IntArray:
		return slices.Equal(a.Value, b.(*IntArray).Value)
	case *List:
		other := b.(*List)
		return a.elem == other.elem && equalItems(a.items, other.items)
	case *Compound:
		return equalItems(a.items, b.(*Compound).items)
	default:
		return false
	}
}

func equalItems(a, b []Tag) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}

	return true
}

// Clone returns a deep copy of t. Containers are cloned recursively; arrays
// get fresh backing storage.
func Clone(t Tag) Tag {
	switch t := t.(type) {
	case nil:
		return nil
	case *End:
		return &End{}
	case *Byte:
		c := *t
		return &c
	case *Short:
		c := *t
		return &c
	case *Int:
		c := *t
		return &c
	case *Long:
		c := *t
		return &c
	case *Float:
		c := *t
		return &c
	case *Double:
		c := *t
		return &c
	case *String:
		c := *t
		return &c
	case *ByteArray:
		return &ByteArray{t.named, slices.Clone(t.Value)}
	case *IntArray:
		return &IntArray{t.named, slices.Clone(t.Value)}
	case *List:
		l := &List{named: t.named, elem: t.elem, items: make([]Tag, len(t.items))}
		for i, item := range t.items {
			l.items[i] = Clone(item)
		}
		return l
	case *Compound:
		c := &Compound{named: t.named, items: make([]Tag, len(t.items))}
		for i, item := range t.items {
			c.items[i] = Clone(item)
		}
		return c
	default:
		panic("nbt: clone of unknown tag type")
	}
}
