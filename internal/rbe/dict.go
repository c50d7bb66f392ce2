package rbe

import "slices"

// Dict is a string-keyed map of elements that remembers insertion order,
// so encoding a tree is deterministic.
type Dict struct {
	keys   []string
	values map[string]Element
}

// NewDict creates an empty dictionary.
func NewDict() *Dict {
	return &Dict{values: make(map[string]Element)}
}

// Type returns TypeDict.
func (d *Dict) Type() Type { return TypeDict }

// Clone returns a deep copy of the dictionary.
func (d *Dict) Clone() Element {
	c := &Dict{
		keys:   slices.Clone(d.keys),
		values: make(map[string]Element, len(d.values)),
	}
	for k, v := range d.values {
		c.values[k] = v.Clone()
	}
	return c
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	return len(d.keys)
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []string {
	return slices.Clone(d.keys)
}

// Has returns true if key is present.
func (d *Dict) Has(key string) bool {
	_, ok := d.values[key]
	return ok
}

// Get returns the element stored under key.
func (d *Dict) Get(key string) (Element, bool) {
	e, ok := d.values[key]
	return e, ok
}

// Set stores an element. Replacing an existing key keeps its position.
func (d *Dict) Set(key string, e Element) {
	if e == nil {
		d.Delete(key)
		return
	}
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = e
}

// Delete removes key and returns true if it was present.
func (d *Dict) Delete(key string) bool {
	if _, ok := d.values[key]; !ok {
		return false
	}
	delete(d.values, key)
	d.keys = slices.DeleteFunc(d.keys, func(k string) bool { return k == key })
	return true
}

func (d *Dict) SetBool(key string, v bool)      { d.Set(key, Bool(v)) }
func (d *Dict) SetInt(key string, v int32)      { d.Set(key, Int(v)) }
func (d *Dict) SetLong(key string, v int64)     { d.Set(key, Long(v)) }
func (d *Dict) SetULong(key string, v uint64)   { d.Set(key, ULong(v)) }
func (d *Dict) SetDouble(key string, v float64) { d.Set(key, Double(v)) }
func (d *Dict) SetString(key string, v string)  { d.Set(key, String(v)) }
func (d *Dict) SetBytes(key string, v []byte)   { d.Set(key, Bytes(v)) }

// CreateDict stores and returns a new empty dictionary under key.
func (d *Dict) CreateDict(key string) *Dict {
	c := NewDict()
	d.Set(key, c)
	return c
}

// CreateList stores and returns a new empty list under key.
func (d *Dict) CreateList(key string) *List {
	l := NewList()
	d.Set(key, l)
	return l
}

// lookup returns the element under key asserted to T.
func lookup[T Element](d *Dict, key string, want Type) (T, error) {
	var zero T
	e, ok := d.values[key]
	if !ok {
		return zero, &KeyError{Key: key, Want: want, Err: ErrKeyNotFound}
	}
	v, ok := e.(T)
	if !ok {
		return zero, &KeyError{Key: key, Want: want, Got: e.Type(), Err: ErrTypeMismatch}
	}
	return v, nil
}

// GetBool returns the boolean stored under key.
func (d *Dict) GetBool(key string) (bool, error) {
	v, err := lookup[Bool](d, key, TypeBool)
	return bool(v), err
}

// GetInt returns the int32 stored under key.
func (d *Dict) GetInt(key string) (int32, error) {
	v, err := lookup[Int](d, key, TypeInt)
	return int32(v), err
}

// GetLong returns the int64 stored under key.
func (d *Dict) GetLong(key string) (int64, error) {
	v, err := lookup[Long](d, key, TypeLong)
	return int64(v), err
}

// GetULong returns the uint64 stored under key.
func (d *Dict) GetULong(key string) (uint64, error) {
	v, err := lookup[ULong](d, key, TypeULong)
	return uint64(v), err
}

// GetDouble returns the float64 stored under key.
func (d *Dict) GetDouble(key string) (float64, error) {
	v, err := lookup[Double](d, key, TypeDouble)
	return float64(v), err
}

// GetString returns the string stored under key.
func (d *Dict) GetString(key string) (string, error) {
	v, err := lookup[String](d, key, TypeString)
	return string(v), err
}

// GetBytes returns the blob stored under key.
func (d *Dict) GetBytes(key string) ([]byte, error) {
	v, err := lookup[Bytes](d, key, TypeBytes)
	return []byte(v), err
}

// GetDict returns the dictionary stored under key.
func (d *Dict) GetDict(key string) (*Dict, error) {
	return lookup[*Dict](d, key, TypeDict)
}

// GetList returns the list stored under key.
func (d *Dict) GetList(key string) (*List, error) {
	return lookup[*List](d, key, TypeList)
}

// TryGetString returns the string under key and whether it was present
// with the right type.
func (d *Dict) TryGetString(key string) (string, bool) {
	v, err := d.GetString(key)
	return v, err == nil
}

// TryGetDict returns the dictionary under key if present.
func (d *Dict) TryGetDict(key string) (*Dict, bool) {
	v, err := d.GetDict(key)
	return v, err == nil
}

// TryGetList returns the list under key if present.
func (d *Dict) TryGetList(key string) (*List, bool) {
	v, err := d.GetList(key)
	return v, err == nil
}

// GetBoolOr returns the boolean under key, or def if absent or mistyped.
func (d *Dict) GetBoolOr(key string, def bool) bool {
	if v, err := d.GetBool(key); err == nil {
		return v
	}
	return def
}

// GetIntOr returns the int32 under key, or def.
func (d *Dict) GetIntOr(key string, def int32) int32 {
	if v, err := d.GetInt(key); err == nil {
		return v
	}
	return def
}

// GetLongOr returns the int64 under key, or def.
func (d *Dict) GetLongOr(key string, def int64) int64 {
	if v, err := d.GetLong(key); err == nil {
		return v
	}
	return def
}

// GetULongOr returns the uint64 under key, or def.
func (d *Dict) GetULongOr(key string, def uint64) uint64 {
	if v, err := d.GetULong(key); err == nil {
		return v
	}
	return def
}

// GetDoubleOr returns the float64 under key, or def.
func (d *Dict) GetDoubleOr(key string, def float64) float64 {
	if v, err := d.GetDouble(key); err == nil {
		return v
	}
	return def
}

// GetStringOr returns the string under key, or def.
func (d *Dict) GetStringOr(key string, def string) string {
	if v, err := d.GetString(key); err == nil {
		return v
	}
	return def
}
