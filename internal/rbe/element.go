// Package rbe implements the RBE binary tagged tree used by project files.
//
// An RBE document is a tree of elements. Containers are Dict (string keyed,
// insertion ordered) and List; leaves are fixed-width numbers, booleans,
// strings and byte blobs. Every element is written as a one-byte type tag
// followed by its payload.
package rbe

import "fmt"

// Type identifies the kind of an element on the wire.
type Type byte

const (
	TypeDict Type = iota + 1
	TypeList
	TypeBool
	TypeInt
	TypeLong
	TypeULong
	TypeDouble
	TypeString
	TypeBytes
)

// String returns a human-readable type name.
func (t Type) String() string {
	switch t {
	case TypeDict:
		return "dict"
	case TypeList:
		return "list"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeLong:
		return "long"
	case TypeULong:
		return "ulong"
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeBytes:
		return "bytes"
	default:
		return fmt.Sprintf("type(%d)", byte(t))
	}
}

// Element is a node of an RBE tree.
type Element interface {
	// Type returns the wire type of the element.
	Type() Type

	// Clone returns a deep copy of the element.
	Clone() Element
}

// Bool is a boolean leaf.
type Bool bool

// Int is a signed 32-bit leaf.
type Int int32

// Long is a signed 64-bit leaf.
type Long int64

// ULong is an unsigned 64-bit leaf.
type ULong uint64

// Double is a 64-bit floating point leaf.
type Double float64

// String is a UTF-8 string leaf.
type String string

// Bytes is a raw byte blob leaf.
type Bytes []byte

func (Bool) Type() Type   { return TypeBool }
func (Int) Type() Type    { return TypeInt }
func (Long) Type() Type   { return TypeLong }
func (ULong) Type() Type  { return TypeULong }
func (Double) Type() Type { return TypeDouble }
func (String) Type() Type { return TypeString }
func (Bytes) Type() Type  { return TypeBytes }

func (v Bool) Clone() Element   { return v }
func (v Int) Clone() Element    { return v }
func (v Long) Clone() Element   { return v }
func (v ULong) Clone() Element  { return v }
func (v Double) Clone() Element { return v }
func (v String) Clone() Element { return v }

// Clone returns a copy of the blob.
func (v Bytes) Clone() Element {
	c := make(Bytes, len(v))
	copy(c, v)
	return c
}

// List is an ordered sequence of elements.
type List struct {
	items []Element
}

// NewList creates an empty list.
func NewList() *List {
	return &List{}
}

// Type returns TypeList.
func (l *List) Type() Type { return TypeList }

// Clone returns a deep copy of the list.
func (l *List) Clone() Element {
	c := &List{items: make([]Element, len(l.items))}
	for i, e := range l.items {
		c.items[i] = e.Clone()
	}
	return c
}

// Len returns the number of elements.
func (l *List) Len() int {
	return len(l.items)
}

// At returns the element at index i.
func (l *List) At(i int) Element {
	return l.items[i]
}

// Items returns the elements of the list. The slice must not be modified.
func (l *List) Items() []Element {
	return l.items
}

// Add appends an element.
func (l *List) Add(e Element) {
	l.items = append(l.items, e)
}

// AddDict appends and returns a new empty dictionary.
func (l *List) AddDict() *Dict {
	d := NewDict()
	l.items = append(l.items, d)
	return d
}

// DictAt returns the element at index i as a dictionary.
func (l *List) DictAt(i int) (*Dict, error) {
	if i < 0 || i >= len(l.items) {
		return nil, fmt.Errorf("list index %d out of range [0, %d)", i, len(l.items))
	}
	d, ok := l.items[i].(*Dict)
	if !ok {
		return nil, &KeyError{Key: fmt.Sprintf("[%d]", i), Want: TypeDict, Got: l.items[i].Type(), Err: ErrTypeMismatch}
	}
	return d, nil
}
