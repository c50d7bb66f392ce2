package rbe

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Decoding limits.
const (
	// MaxDepth is the maximum container nesting accepted by Decode.
	MaxDepth = 512

	// MaxLength is the maximum string, blob or container length (16 MB).
	MaxLength = 16 * 1024 * 1024
)

// Encode writes root and its subtree to w.
func Encode(w io.Writer, root Element) error {
	bw := bufio.NewWriter(w)
	if err := writeElement(bw, root); err != nil {
		return err
	}
	return bw.Flush()
}

// Marshal encodes root into a byte slice.
func Marshal(root Element) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads one element tree from r.
func Decode(r io.Reader) (Element, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return readElement(br, 0)
}

// Unmarshal decodes a byte slice that must hold exactly one element tree.
func Unmarshal(data []byte) (Element, error) {
	br := bufio.NewReader(bytes.NewReader(data))
	e, err := readElement(br, 0)
	if err != nil {
		return nil, err
	}
	if _, err := br.ReadByte(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data", ErrInvalidFormat)
	}
	return e, nil
}

// UnmarshalDict decodes data whose root must be a dictionary.
func UnmarshalDict(data []byte) (*Dict, error) {
	e, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	d, ok := e.(*Dict)
	if !ok {
		return nil, fmt.Errorf("%w: root is %s, want dict", ErrInvalidFormat, e.Type())
	}
	return d, nil
}

func writeElement(w *bufio.Writer, e Element) error {
	if e == nil {
		return fmt.Errorf("%w: nil element", ErrInvalidFormat)
	}
	if err := w.WriteByte(byte(e.Type())); err != nil {
		return err
	}

	switch v := e.(type) {
	case *Dict:
		writeUvarint(w, uint64(len(v.keys)))
		for _, k := range v.keys {
			if err := writeString(w, k); err != nil {
				return err
			}
			if err := writeElement(w, v.values[k]); err != nil {
				return err
			}
		}
		return nil
	case *List:
		writeUvarint(w, uint64(len(v.items)))
		for _, item := range v.items {
			if err := writeElement(w, item); err != nil {
				return err
			}
		}
		return nil
	case Bool:
		b := byte(0)
		if v {
			b = 1
		}
		return w.WriteByte(b)
	case Int:
		return binary.Write(w, binary.LittleEndian, int32(v))
	case Long:
		return binary.Write(w, binary.LittleEndian, int64(v))
	case ULong:
		return binary.Write(w, binary.LittleEndian, uint64(v))
	case Double:
		return binary.Write(w, binary.LittleEndian, math.Float64bits(float64(v)))
	case String:
		return writeString(w, string(v))
	case Bytes:
		writeUvarint(w, uint64(len(v)))
		_, err := w.Write(v)
		return err
	default:
		return fmt.Errorf("%w: %T", ErrUnknownType, e)
	}
}

func writeUvarint(w *bufio.Writer, n uint64) {
	var buf [binary.MaxVarintLen64]byte
	l := binary.PutUvarint(buf[:], n)
	_, _ = w.Write(buf[:l])
}

func writeString(w *bufio.Writer, s string) error {
	if len(s) > MaxLength {
		return ErrTooLarge
	}
	writeUvarint(w, uint64(len(s)))
	_, err := w.WriteString(s)
	return err
}

func readElement(r *bufio.Reader, depth int) (Element, error) {
	if depth > MaxDepth {
		return nil, ErrTooDeep
	}

	tag, err := r.ReadByte()
	if err != nil {
		return nil, truncated(err)
	}

	switch Type(tag) {
	case TypeDict:
		n, err := readLength(r)
		if err != nil {
			return nil, err
		}
		d := NewDict()
		for i := uint64(0); i < n; i++ {
			key, err := readString(r)
			if err != nil {
				return nil, err
			}
			if d.Has(key) {
				return nil, fmt.Errorf("%w: duplicate key %q", ErrInvalidFormat, key)
			}
			val, err := readElement(r, depth+1)
			if err != nil {
				return nil, err
			}
			d.Set(key, val)
		}
		return d, nil
	case TypeList:
		n, err := readLength(r)
		if err != nil {
			return nil, err
		}
		l := &List{items: make([]Element, 0, min(n, 1024))}
		for i := uint64(0); i < n; i++ {
			item, err := readElement(r, depth+1)
			if err != nil {
				return nil, err
			}
			l.items = append(l.items, item)
		}
		return l, nil
	case TypeBool:
		b, err := r.ReadByte()
		if err != nil {
			return nil, truncated(err)
		}
		if b > 1 {
			return nil, fmt.Errorf("%w: bool value %d", ErrInvalidFormat, b)
		}
		return Bool(b == 1), nil
	case TypeInt:
		var v int32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, truncated(err)
		}
		return Int(v), nil
	case TypeLong:
		var v int64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, truncated(err)
		}
		return Long(v), nil
	case TypeULong:
		var v uint64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, truncated(err)
		}
		return ULong(v), nil
	case TypeDouble:
		var bits uint64
		if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
			return nil, truncated(err)
		}
		return Double(math.Float64frombits(bits)), nil
	case TypeString:
		s, err := readString(r)
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case TypeBytes:
		n, err := readLength(r)
		if err != nil {
			return nil, err
		}
		b := make([]byte, n)
		if _, err := io.ReadFull(r, b); err != nil {
			return nil, truncated(err)
		}
		return Bytes(b), nil
	default:
		return nil, fmt.Errorf("%w: tag %d", ErrUnknownType, tag)
	}
}

func readLength(r *bufio.Reader) (uint64, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return 0, truncated(err)
	}
	if n > MaxLength {
		return 0, ErrTooLarge
	}
	return n, nil
}

func readString(r *bufio.Reader) (string, error) {
	n, err := readLength(r)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", truncated(err)
	}
	return string(b), nil
}

func truncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: unexpected end of data", ErrInvalidFormat)
	}
	return err
}
